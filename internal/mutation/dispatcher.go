// Package mutation applies like, follow, comment and post mutations
// optimistically to every attached projection and rolls them back when the
// backend rejects them.
package mutation

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/apperr"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/client"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/session"
	"github.com/Anthony-Yangg/reel-royale2-sub001/pkg/config"
	"github.com/Anthony-Yangg/reel-royale2-sub001/pkg/validators"
)

// Backend is the subset of the API the dispatcher writes through.
type Backend interface {
	SetLike(ctx context.Context, postID string, liked bool) error
	SetFollow(ctx context.Context, userID string, following bool) error
	UploadMedia(ctx context.Context, m client.MediaUpload) (string, error)
	CreatePost(ctx context.Context, req models.CreatePostRequest) (*models.Post, error)
	AddComment(ctx context.Context, postID, text string) (*models.Comment, error)
}

// Projection is a view of posts the dispatcher keeps in sync. A projection
// passes every item it (re)loads through the overlay installed with
// SetOverlay, so mutations still in flight survive a refresh.
type Projection interface {
	PatchPost(postID string, fn func(*models.PostDetails))
	PatchAuthor(authorID string, fn func(*models.PostDetails))
	Lookup(postID string) (models.PostDetails, bool)
	LookupAuthor(authorID string) (following bool, ok bool)
	SetOverlay(fn func(*models.PostDetails))
}

// CommentProjection is a Projection that also lists comments.
type CommentProjection interface {
	Projection
	InsertComment(postID string, c models.Comment)
	ReplaceComment(postID, tempID string, c models.Comment)
	RemoveComment(postID, tempID string)
}

// Notice is a transient, dismissible message about a failed mutation.
type Notice struct {
	Op      string
	Kind    apperr.Kind
	Message string
	At      time.Time
}

// toggle tracks one like or follow target. confirmed is the last state the
// backend accepted; desired is what the user sees.
type toggle struct {
	confirmed bool
	desired   bool
	inflight  bool
}

// Dispatcher serialises optimistic mutations against its projections.
//
// Lock order is patchMu, then a projection's own lock, then mu. Projections
// call the overlay with their lock held, so mu is never held while calling
// into a projection.
type Dispatcher struct {
	backend  Backend
	session  *session.Session
	timeout  time.Duration
	validate *validator.Validate
	logger   *zap.Logger

	submits  singleflight.Group
	submitMu sync.Mutex

	// patchMu makes a state change and the patches that publish it atomic
	// with respect to other mutations.
	patchMu sync.Mutex

	mu          sync.Mutex
	projections []Projection
	likes       map[string]*toggle
	follows     map[string]*toggle
	// comments maps a post id to the temporary ids of its unconfirmed
	// comments.
	comments map[string][]string
	notice   *Notice
}

func New(backend Backend, sess *session.Session, cfg *config.ClientConfig, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		backend:  backend,
		session:  sess,
		timeout:  cfg.GetRequestTimeout(),
		validate: validators.New(),
		logger:   logger,
		likes:    make(map[string]*toggle),
		follows:  make(map[string]*toggle),
		comments: make(map[string][]string),
	}
	sess.OnSignOut(d.reset)
	return d
}

// Attach registers p for optimistic patches and brings its items in line
// with the mutations in flight.
func (d *Dispatcher) Attach(p Projection) {
	d.patchMu.Lock()
	defer d.patchMu.Unlock()
	d.mu.Lock()
	d.projections = append(d.projections, p)
	d.mu.Unlock()
	p.SetOverlay(d.sync)
}

func (d *Dispatcher) Detach(p Projection) {
	d.patchMu.Lock()
	defer d.patchMu.Unlock()
	d.mu.Lock()
	found := false
	for i, q := range d.projections {
		if q == p {
			d.projections = append(d.projections[:i], d.projections[i+1:]...)
			found = true
			break
		}
	}
	d.mu.Unlock()
	if found {
		p.SetOverlay(nil)
	}
}

// Notice returns the pending notice, or nil.
func (d *Dispatcher) Notice() *Notice {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.notice == nil {
		return nil
	}
	n := *d.notice
	return &n
}

// Dismiss acknowledges the pending notice.
func (d *Dispatcher) Dismiss() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notice = nil
}

func (d *Dispatcher) reset() {
	d.patchMu.Lock()
	defer d.patchMu.Unlock()
	d.mu.Lock()
	detached := d.projections
	d.projections = nil
	d.notice = nil
	d.likes = make(map[string]*toggle)
	d.follows = make(map[string]*toggle)
	d.comments = make(map[string][]string)
	d.mu.Unlock()
	for _, p := range detached {
		p.SetOverlay(nil)
	}
}

func (d *Dispatcher) raiseLocked(op string, err error) {
	d.notice = &Notice{
		Op:      op,
		Kind:    apperr.KindOf(err),
		Message: apperr.Message(err),
		At:      time.Now(),
	}
}

// call bounds one backend request by the configured timeout.
func (d *Dispatcher) call(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return fn(ctx)
}

// attached returns a copy of the projection list. Callers must not hold mu
// while they use it.
func (d *Dispatcher) attached() []Projection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Projection(nil), d.projections...)
}

func (d *Dispatcher) commentProjections() []CommentProjection {
	var out []CommentProjection
	for _, p := range d.attached() {
		if cp, ok := p.(CommentProjection); ok {
			out = append(out, cp)
		}
	}
	return out
}

// sync brings pd in line with every mutation still tracked: the desired
// like and follow flags and the unconfirmed comments. It is idempotent, so
// it serves both as the patch after a state change and as the overlay for
// freshly loaded items.
func (d *Dispatcher) sync(pd *models.PostDetails) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.likes[pd.ID()]; ok && pd.IsLiked != t.desired {
		pd.IsLiked = t.desired
		if t.desired {
			pd.LikeCount++
		} else {
			pd.LikeCount--
		}
	}
	if t, ok := d.follows[pd.Post.AuthorID]; ok {
		pd.IsFollowingAuthor = t.desired
	}
	for _, id := range d.comments[pd.ID()] {
		if !hasPendingComment(pd, id) {
			pd.PendingComments = append(pd.PendingComments, id)
			pd.CommentCount++
		}
	}
}

func (d *Dispatcher) syncPost(postID string) {
	for _, p := range d.attached() {
		p.PatchPost(postID, d.sync)
	}
}

func (d *Dispatcher) syncAuthor(authorID string) {
	for _, p := range d.attached() {
		p.PatchAuthor(authorID, d.sync)
	}
}

func hasPendingComment(pd *models.PostDetails, id string) bool {
	for _, c := range pd.PendingComments {
		if c == id {
			return true
		}
	}
	return false
}

// dropPendingComment forgets id on pd and reports whether pd had counted it.
func dropPendingComment(pd *models.PostDetails, id string) bool {
	for i, c := range pd.PendingComments {
		if c == id {
			pd.PendingComments = append(pd.PendingComments[:i:i], pd.PendingComments[i+1:]...)
			return true
		}
	}
	return false
}
