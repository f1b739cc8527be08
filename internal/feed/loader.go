// Package feed holds the paginated community feed and single post threads
// as observable state. All network calls happen outside the state lock.
package feed

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/pkg/config"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
	PhaseLoadingMore
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	case PhaseLoadingMore:
		return "loading_more"
	default:
		return "idle"
	}
}

// PageFetcher fetches one page of the feed.
type PageFetcher interface {
	FetchFeed(ctx context.Context, cursor string, limit int) (models.FeedPage, error)
}

// State is a snapshot of the feed. Err is the blocking error of a failed
// load; pagination failures never set it and only raise Halted.
type State struct {
	Phase   Phase
	Items   []models.PostDetails
	Err     error
	HasMore bool
	Halted  bool
}

// Action is a command accepted by Dispatch.
type Action interface{ feedAction() }

type (
	LoadAction     struct{}
	RefreshAction  struct{}
	DismissAction  struct{}
	LoadMoreAction struct{ CurrentID string }
)

func (LoadAction) feedAction()     {}
func (RefreshAction) feedAction()  {}
func (DismissAction) feedAction()  {}
func (LoadMoreAction) feedAction() {}

// Loader owns the feed state.
type Loader struct {
	fetcher   PageFetcher
	pageSize  int
	threshold int
	timeout   time.Duration
	logger    *zap.Logger

	mu       sync.Mutex
	state    State
	cursor   string
	gen      uint64
	fetching bool
	// refreshing marks an in-flight first-page fetch.
	refreshing bool
	overlay    func(*models.PostDetails)
}

func NewLoader(fetcher PageFetcher, cfg *config.ClientConfig, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := cfg.PrefetchThreshold
	if threshold < 1 {
		threshold = 1
	}
	return &Loader{
		fetcher:   fetcher,
		pageSize:  cfg.PageSize,
		threshold: threshold,
		timeout:   cfg.GetRequestTimeout(),
		logger:    logger,
	}
}

// Dispatch runs action and returns the resulting snapshot.
func (l *Loader) Dispatch(ctx context.Context, action Action) State {
	switch a := action.(type) {
	case LoadAction:
		_ = l.Load(ctx)
	case RefreshAction:
		_ = l.Refresh(ctx)
	case LoadMoreAction:
		l.LoadMoreIfNeeded(ctx, a.CurrentID)
	case DismissAction:
		l.Dismiss()
	}
	return l.Snapshot()
}

// Snapshot returns a deep copy of the current state.
func (l *Loader) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Loader) snapshotLocked() State {
	s := l.state
	s.Items = make([]models.PostDetails, len(l.state.Items))
	for i, item := range l.state.Items {
		s.Items[i] = item.Clone()
	}
	return s
}

// Load fetches the first page. It does nothing unless the feed is idle or
// failed, so repeated calls issue one request.
func (l *Loader) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.fetching || (l.state.Phase != PhaseIdle && l.state.Phase != PhaseFailed) {
		l.mu.Unlock()
		return nil
	}
	gen := l.startFirstPageLocked()
	l.mu.Unlock()

	return l.firstPage(ctx, gen)
}

// Refresh drops the cursor and replaces the items with page one. A
// pagination request still in flight is superseded and its result ignored.
func (l *Loader) Refresh(ctx context.Context) error {
	l.mu.Lock()
	if l.refreshing {
		l.mu.Unlock()
		return nil
	}
	l.gen++
	gen := l.startFirstPageLocked()
	l.mu.Unlock()

	return l.firstPage(ctx, gen)
}

func (l *Loader) startFirstPageLocked() uint64 {
	l.fetching = true
	l.refreshing = true
	l.cursor = ""
	l.state.Halted = false
	l.state.Err = nil
	if len(l.state.Items) == 0 {
		l.state.Phase = PhaseLoading
	} else {
		l.state.Phase = PhaseLoaded
	}
	return l.gen
}

func (l *Loader) firstPage(ctx context.Context, gen uint64) error {
	page, err := l.fetch(ctx, "")

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return nil
	}
	l.fetching = false
	l.refreshing = false

	if err != nil {
		l.state.Err = err
		if len(l.state.Items) == 0 {
			l.state.Phase = PhaseFailed
		} else {
			l.state.Phase = PhaseLoaded
		}
		l.logger.Warn("feed load failed", zap.Error(err))
		return err
	}

	l.state.Items = append([]models.PostDetails(nil), page.Posts...)
	l.overlayLocked(l.state.Items)
	l.cursor = page.NextCursor
	l.state.HasMore = page.NextCursor != ""
	l.state.Phase = PhaseLoaded
	return nil
}

// LoadMoreIfNeeded fetches the next page when currentID is among the
// trailing items. A failure keeps the loaded items and halts further
// automatic loading until the next Refresh.
func (l *Loader) LoadMoreIfNeeded(ctx context.Context, currentID string) {
	l.mu.Lock()
	if l.fetching || l.state.Phase != PhaseLoaded || l.state.Halted || !l.state.HasMore {
		l.mu.Unlock()
		return
	}
	if !l.nearEndLocked(currentID) {
		l.mu.Unlock()
		return
	}
	l.fetching = true
	l.state.Phase = PhaseLoadingMore
	cursor, gen := l.cursor, l.gen
	l.mu.Unlock()

	page, err := l.fetch(ctx, cursor)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return
	}
	l.fetching = false
	l.state.Phase = PhaseLoaded

	if err != nil {
		l.state.Halted = true
		l.logger.Warn("feed pagination failed", zap.String("cursor", cursor), zap.Error(err))
		return
	}

	seen := make(map[string]bool, len(l.state.Items))
	for i := range l.state.Items {
		seen[l.state.Items[i].ID()] = true
	}
	n := len(l.state.Items)
	for _, p := range page.Posts {
		if !seen[p.ID()] {
			l.state.Items = append(l.state.Items, p)
		}
	}
	l.overlayLocked(l.state.Items[n:])
	l.cursor = page.NextCursor
	l.state.HasMore = page.NextCursor != ""
}

func (l *Loader) nearEndLocked(currentID string) bool {
	n := len(l.state.Items)
	for i := n - 1; i >= 0 && i >= n-l.threshold; i-- {
		if l.state.Items[i].ID() == currentID {
			return true
		}
	}
	return false
}

func (l *Loader) fetch(ctx context.Context, cursor string) (models.FeedPage, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.fetcher.FetchFeed(ctx, cursor, l.pageSize)
}

// Dismiss clears the surfaced error. A failed feed returns to idle so the
// next Load retries.
func (l *Loader) Dismiss() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Err = nil
	if l.state.Phase == PhaseFailed {
		l.state.Phase = PhaseIdle
	}
}

// Reset drops all cached items. Register it with session.OnSignOut.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.state = State{}
	l.cursor = ""
	l.fetching = false
	l.refreshing = false
}

// SetOverlay installs fn to be applied to every item as it is loaded, and
// applies it to the items already held. A nil fn removes the overlay.
func (l *Loader) SetOverlay(fn func(*models.PostDetails)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.overlay = fn
	l.overlayLocked(l.state.Items)
}

func (l *Loader) overlayLocked(items []models.PostDetails) {
	if l.overlay == nil {
		return
	}
	for i := range items {
		l.overlay(&items[i])
	}
}

// Lookup returns a copy of the item with postID.
func (l *Loader) Lookup(postID string) (models.PostDetails, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.state.Items {
		if l.state.Items[i].ID() == postID {
			return l.state.Items[i].Clone(), true
		}
	}
	return models.PostDetails{}, false
}

// LookupAuthor reports the follow flag shown on items by authorID.
func (l *Loader) LookupAuthor(authorID string) (following bool, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.state.Items {
		if l.state.Items[i].Post.AuthorID == authorID {
			return l.state.Items[i].IsFollowingAuthor, true
		}
	}
	return false, false
}

// PatchPost applies fn to the item with postID.
func (l *Loader) PatchPost(postID string, fn func(*models.PostDetails)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.state.Items {
		if l.state.Items[i].ID() == postID {
			fn(&l.state.Items[i])
		}
	}
}

// PatchAuthor applies fn to every item by authorID.
func (l *Loader) PatchAuthor(authorID string, fn func(*models.PostDetails)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.state.Items {
		if l.state.Items[i].Post.AuthorID == authorID {
			fn(&l.state.Items[i])
		}
	}
}
