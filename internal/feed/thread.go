package feed

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/pkg/config"
)

// PostFetcher fetches a post with its comments.
type PostFetcher interface {
	FetchPost(ctx context.Context, postID string) (*models.PostThread, error)
}

// ThreadState is a snapshot of one post and its comments, oldest first.
type ThreadState struct {
	Phase    Phase
	Post     *models.PostDetails
	Comments []models.Comment
	Err      error
}

// Thread owns the detail view of a single post.
type Thread struct {
	fetcher PostFetcher
	postID  string
	timeout time.Duration
	logger  *zap.Logger

	mu       sync.Mutex
	state    ThreadState
	fetching bool
	overlay  func(*models.PostDetails)
}

func NewThread(fetcher PostFetcher, postID string, cfg *config.ClientConfig, logger *zap.Logger) *Thread {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Thread{
		fetcher: fetcher,
		postID:  postID,
		timeout: cfg.GetRequestTimeout(),
		logger:  logger,
	}
}

func (t *Thread) PostID() string { return t.postID }

// Dispatch accepts LoadAction, RefreshAction and DismissAction.
func (t *Thread) Dispatch(ctx context.Context, action Action) ThreadState {
	switch action.(type) {
	case LoadAction, RefreshAction:
		_ = t.Load(ctx)
	case DismissAction:
		t.Dismiss()
	}
	return t.Snapshot()
}

func (t *Thread) Snapshot() ThreadState {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.state
	if s.Post != nil {
		p := s.Post.Clone()
		s.Post = &p
	}
	s.Comments = append([]models.Comment(nil), t.state.Comments...)
	return s
}

// Load fetches the post and its comments. Comments still pending
// confirmation are kept after the server list.
func (t *Thread) Load(ctx context.Context) error {
	t.mu.Lock()
	if t.fetching {
		t.mu.Unlock()
		return nil
	}
	t.fetching = true
	t.state.Err = nil
	if t.state.Post == nil {
		t.state.Phase = PhaseLoading
	}
	t.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, t.timeout)
	thread, err := t.fetcher.FetchPost(fetchCtx, t.postID)
	cancel()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.fetching = false
	if err != nil {
		t.state.Err = err
		if t.state.Post == nil {
			t.state.Phase = PhaseFailed
		} else {
			t.state.Phase = PhaseLoaded
		}
		t.logger.Warn("post load failed", zap.String("post_id", t.postID), zap.Error(err))
		return err
	}

	post := thread.Post
	if t.overlay != nil {
		t.overlay(&post)
	}
	comments := append([]models.Comment(nil), thread.Comments...)
	for _, c := range t.state.Comments {
		if c.Pending {
			comments = append(comments, c)
		}
	}
	t.state.Post = &post
	t.state.Comments = comments
	t.state.Phase = PhaseLoaded
	return nil
}

func (t *Thread) Dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Err = nil
	if t.state.Phase == PhaseFailed {
		t.state.Phase = PhaseIdle
	}
}

// SetOverlay installs fn to be applied to the post whenever it is loaded.
func (t *Thread) SetOverlay(fn func(*models.PostDetails)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.overlay = fn
	if fn != nil && t.state.Post != nil {
		fn(t.state.Post)
	}
}

func (t *Thread) Lookup(postID string) (models.PostDetails, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Post == nil || postID != t.postID {
		return models.PostDetails{}, false
	}
	return t.state.Post.Clone(), true
}

func (t *Thread) LookupAuthor(authorID string) (following bool, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Post == nil || t.state.Post.Post.AuthorID != authorID {
		return false, false
	}
	return t.state.Post.IsFollowingAuthor, true
}

func (t *Thread) PatchPost(postID string, fn func(*models.PostDetails)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Post != nil && postID == t.postID {
		fn(t.state.Post)
	}
}

func (t *Thread) PatchAuthor(authorID string, fn func(*models.PostDetails)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Post != nil && t.state.Post.Post.AuthorID == authorID {
		fn(t.state.Post)
	}
}

func (t *Thread) InsertComment(postID string, c models.Comment) {
	if postID != t.postID {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Comments = append(t.state.Comments, c)
}

// ReplaceComment swaps the pending comment tempID for the stored one. If a
// reload already brought the stored comment in, the pending one is dropped.
func (t *Thread) ReplaceComment(postID, tempID string, c models.Comment) {
	if postID != t.postID {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.state.Comments {
		if t.state.Comments[i].ID == c.ID {
			t.removeLocked(tempID)
			return
		}
	}
	for i := range t.state.Comments {
		if t.state.Comments[i].ID == tempID {
			t.state.Comments[i] = c
			return
		}
	}
}

func (t *Thread) RemoveComment(postID, tempID string) {
	if postID != t.postID {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(tempID)
}

func (t *Thread) removeLocked(id string) {
	for i := range t.state.Comments {
		if t.state.Comments[i].ID == id {
			t.state.Comments = append(t.state.Comments[:i], t.state.Comments[i+1:]...)
			return
		}
	}
}
