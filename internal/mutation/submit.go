package mutation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/apperr"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/client"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
)

// Draft is a post being composed.
type Draft struct {
	Caption      string               `validate:"max=2200"`
	Media        []client.MediaUpload `validate:"max=10"`
	LocationName string               `validate:"max=120"`
	Hashtags     []string             `validate:"max=30,dive,min=1,max=64"`
}

// ValidateDraft checks the draft without touching the network. A draft needs at
// least one photo or a non-blank caption.
func (d *Dispatcher) ValidateDraft(draft Draft) error {
	if len(draft.Media) == 0 && strings.TrimSpace(draft.Caption) == "" {
		return apperr.Validation("posts.create", "Add a photo or a caption")
	}
	if err := d.validate.Struct(draft); err != nil {
		return apperr.Validation("posts.create", err.Error())
	}
	return nil
}

// key identifies a draft for deduplication of concurrent submissions.
func (dr Draft) key() string {
	names := make([]string, len(dr.Media))
	for i, m := range dr.Media {
		names[i] = m.Filename
	}
	return fmt.Sprintf("%q|%q|%q|%q", dr.Caption, dr.LocationName, dr.Hashtags, names)
}

// Submit validates draft, uploads its media in order and creates the post.
// Concurrent submissions of the same draft share one request; different
// drafts are sent one at a time.
func (d *Dispatcher) Submit(ctx context.Context, draft Draft) (*models.Post, error) {
	if err := d.ValidateDraft(draft); err != nil {
		return nil, err
	}
	if !d.session.Active() {
		return nil, apperr.Unauthorized("posts.create", "Please sign in again")
	}

	v, err, shared := d.submits.Do(draft.key(), func() (interface{}, error) {
		d.submitMu.Lock()
		defer d.submitMu.Unlock()
		return d.submit(ctx, draft)
	})
	if shared {
		d.logger.Debug("duplicate post submission joined")
	}
	if err != nil {
		return nil, err
	}
	post := *v.(*models.Post)
	return &post, nil
}

func (d *Dispatcher) submit(ctx context.Context, draft Draft) (*models.Post, error) {
	urls := make([]string, 0, len(draft.Media))
	for i, m := range draft.Media {
		var url string
		err := d.call(ctx, func(ctx context.Context) error {
			var err error
			url, err = d.backend.UploadMedia(ctx, m)
			return err
		})
		if err != nil {
			d.fail("media.upload", err, zap.Int("index", i))
			return nil, err
		}
		urls = append(urls, url)
	}

	req := models.CreatePostRequest{
		MediaURLs: urls,
		Caption:   strings.TrimSpace(draft.Caption),
		Hashtags:  draft.Hashtags,
	}
	if loc := strings.TrimSpace(draft.LocationName); loc != "" {
		req.LocationName = &loc
	}

	var post *models.Post
	err := d.call(ctx, func(ctx context.Context) error {
		var err error
		post, err = d.backend.CreatePost(ctx, req)
		return err
	})
	if err != nil {
		d.fail("posts.create", err)
		return nil, err
	}
	return post, nil
}

func (d *Dispatcher) fail(op string, err error, fields ...zap.Field) {
	d.mu.Lock()
	d.raiseLocked(op, err)
	d.mu.Unlock()
	d.logger.Warn("mutation failed", append(fields, zap.String("op", op), zap.Error(err))...)
}

// AddComment appends text to postID optimistically. Blank text is rejected
// without a request. On failure the pending comment is removed again and a
// notice is raised.
func (d *Dispatcher) AddComment(ctx context.Context, postID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("comments.create", "Comment cannot be empty")
	}
	if len([]rune(text)) > 500 {
		return nil, apperr.Validation("comments.create", "Comment is too long")
	}
	if !d.session.Active() {
		return nil, apperr.Unauthorized("comments.create", "Please sign in again")
	}

	tempID := "pending-" + uuid.NewString()
	pending := models.Comment{
		ID:        tempID,
		PostID:    postID,
		AuthorID:  d.session.UserID(),
		Text:      text,
		CreatedAt: time.Now(),
		Pending:   true,
	}

	d.patchMu.Lock()
	d.mu.Lock()
	d.comments[postID] = append(d.comments[postID], tempID)
	d.mu.Unlock()
	for _, p := range d.commentProjections() {
		p.InsertComment(postID, pending)
	}
	d.syncPost(postID)
	d.patchMu.Unlock()

	var stored *models.Comment
	err := d.call(ctx, func(ctx context.Context) error {
		var err error
		stored, err = d.backend.AddComment(ctx, postID, text)
		return err
	})

	d.patchMu.Lock()
	defer d.patchMu.Unlock()
	d.mu.Lock()
	d.forgetCommentLocked(postID, tempID)
	if err != nil {
		d.raiseLocked("comments.create", err)
	}
	d.mu.Unlock()

	// Items loaded after the comment was sent may not carry it; only those
	// that do are adjusted.
	settle := func(pd *models.PostDetails) { dropPendingComment(pd, tempID) }
	if err != nil {
		settle = func(pd *models.PostDetails) {
			if dropPendingComment(pd, tempID) {
				pd.CommentCount--
			}
		}
	}
	for _, p := range d.attached() {
		p.PatchPost(postID, settle)
	}

	if err != nil {
		for _, p := range d.commentProjections() {
			p.RemoveComment(postID, tempID)
		}
		d.logger.Warn("comment rolled back", zap.String("post_id", postID), zap.Error(err))
		return nil, err
	}
	for _, p := range d.commentProjections() {
		p.ReplaceComment(postID, tempID, *stored)
	}
	return stored, nil
}

func (d *Dispatcher) forgetCommentLocked(postID, tempID string) {
	ids := d.comments[postID]
	for i, id := range ids {
		if id == tempID {
			ids = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(d.comments, postID)
		return
	}
	d.comments[postID] = ids
}
