package feed

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/apperr"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/pkg/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]models.FeedPage
	errs    map[string]error
	gates   map[string]chan struct{}
	calls   []string
	entered chan string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages:   make(map[string]models.FeedPage),
		errs:    make(map[string]error),
		gates:   make(map[string]chan struct{}),
		entered: make(chan string, 16),
	}
}

func (f *fakeFetcher) FetchFeed(ctx context.Context, cursor string, _ int) (models.FeedPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cursor)
	page, err, gate := f.pages[cursor], f.errs[cursor], f.gates[cursor]
	f.mu.Unlock()

	f.entered <- cursor
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return models.FeedPage{}, ctx.Err()
		}
	}
	return page, err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) set(cursor string, page models.FeedPage, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[cursor] = page
	f.errs[cursor] = err
}

func items(author string, n int) []models.PostDetails {
	out := make([]models.PostDetails, n)
	for i := range out {
		out[i] = models.PostDetails{
			Post:   models.Post{ID: primitive.NewObjectID(), AuthorID: author, Hashtags: []string{"bass"}},
			Author: models.UserCompact{ID: author},
		}
	}
	return out
}

func newTestLoader(f *fakeFetcher) *Loader {
	return NewLoader(f, config.DefaultClientConfig(), zap.NewNop())
}

func TestLoadEmptyIsNotFailure(t *testing.T) {
	f := newFakeFetcher()
	l := newTestLoader(f)

	state := l.Dispatch(context.Background(), LoadAction{})
	assert.Equal(t, PhaseLoaded, state.Phase)
	assert.Empty(t, state.Items)
	assert.NoError(t, state.Err)
	assert.False(t, state.HasMore)
}

func TestInitialLoadFailure(t *testing.T) {
	f := newFakeFetcher()
	f.set("", models.FeedPage{}, apperr.Network("feed.fetch", errors.New("offline")))
	l := newTestLoader(f)

	err := l.Load(context.Background())
	require.Error(t, err)

	state := l.Snapshot()
	assert.Equal(t, PhaseFailed, state.Phase)
	assert.ErrorIs(t, state.Err, apperr.ErrNetwork)

	state = l.Dispatch(context.Background(), DismissAction{})
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.NoError(t, state.Err)

	f.set("", models.FeedPage{Posts: items("a", 2)}, nil)
	state = l.Dispatch(context.Background(), LoadAction{})
	assert.Equal(t, PhaseLoaded, state.Phase)
	assert.Len(t, state.Items, 2)
	assert.Equal(t, 2, f.callCount())
}

func TestLoadTwiceFetchesOnce(t *testing.T) {
	f := newFakeFetcher()
	f.set("", models.FeedPage{Posts: items("a", 1)}, nil)
	l := newTestLoader(f)

	require.NoError(t, l.Load(context.Background()))
	require.NoError(t, l.Load(context.Background()))
	assert.Equal(t, 1, f.callCount())
}

func TestLoadMoreWhileFetchingIssuesOneCall(t *testing.T) {
	f := newFakeFetcher()
	first := items("a", 10)
	f.set("", models.FeedPage{Posts: first, NextCursor: "c1"}, nil)
	f.set("c1", models.FeedPage{Posts: items("a", 3)}, nil)
	gate := make(chan struct{})
	f.gates["c1"] = gate

	l := newTestLoader(f)
	require.NoError(t, l.Load(context.Background()))
	<-f.entered

	lastID := first[9].ID()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.LoadMoreIfNeeded(context.Background(), lastID)
	}()
	require.Equal(t, "c1", <-f.entered)

	for i := 0; i < 20; i++ {
		l.LoadMoreIfNeeded(context.Background(), lastID)
	}
	assert.Equal(t, PhaseLoadingMore, l.Snapshot().Phase)

	close(gate)
	wg.Wait()

	assert.Equal(t, 2, f.callCount())
	state := l.Snapshot()
	assert.Equal(t, PhaseLoaded, state.Phase)
	assert.Len(t, state.Items, 13)
	assert.False(t, state.HasMore)
}

func TestLoadMoreOnlyNearEnd(t *testing.T) {
	f := newFakeFetcher()
	first := items("a", 10)
	f.set("", models.FeedPage{Posts: first, NextCursor: "c1"}, nil)
	f.set("c1", models.FeedPage{Posts: items("a", 2)}, nil)
	l := newTestLoader(f)
	require.NoError(t, l.Load(context.Background()))

	l.LoadMoreIfNeeded(context.Background(), first[2].ID())
	l.LoadMoreIfNeeded(context.Background(), "unknown")
	assert.Equal(t, 1, f.callCount())

	l.LoadMoreIfNeeded(context.Background(), first[5].ID())
	assert.Equal(t, 2, f.callCount())
	assert.Len(t, l.Snapshot().Items, 12)
}

func TestPaginationFailureHaltsSilently(t *testing.T) {
	f := newFakeFetcher()
	first := items("a", 10)
	f.set("", models.FeedPage{Posts: first, NextCursor: "c1"}, nil)
	f.set("c1", models.FeedPage{}, apperr.Network("feed.fetch", errors.New("timeout")))
	l := newTestLoader(f)
	require.NoError(t, l.Load(context.Background()))

	state := l.Dispatch(context.Background(), LoadMoreAction{CurrentID: first[9].ID()})
	assert.Equal(t, PhaseLoaded, state.Phase)
	assert.True(t, state.Halted)
	assert.NoError(t, state.Err)
	assert.Len(t, state.Items, 10)

	l.LoadMoreIfNeeded(context.Background(), first[9].ID())
	assert.Equal(t, 2, f.callCount(), "halted feed stops auto-loading")

	state = l.Dispatch(context.Background(), RefreshAction{})
	assert.False(t, state.Halted)
	assert.True(t, state.HasMore)
	assert.Equal(t, 3, f.callCount())
}

func TestRefreshDiscardsStalePage(t *testing.T) {
	f := newFakeFetcher()
	first := items("a", 10)
	f.set("", models.FeedPage{Posts: first, NextCursor: "c1"}, nil)
	f.set("c1", models.FeedPage{Posts: items("a", 5)}, nil)
	gate := make(chan struct{})
	f.gates["c1"] = gate

	l := newTestLoader(f)
	require.NoError(t, l.Load(context.Background()))
	<-f.entered

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.LoadMoreIfNeeded(context.Background(), first[9].ID())
	}()
	<-f.entered

	fresh := items("b", 3)
	f.set("", models.FeedPage{Posts: fresh}, nil)
	require.NoError(t, l.Refresh(context.Background()))
	<-f.entered

	close(gate)
	wg.Wait()

	state := l.Snapshot()
	require.Len(t, state.Items, 3)
	assert.Equal(t, fresh[0].ID(), state.Items[0].ID())
	assert.Equal(t, PhaseLoaded, state.Phase)
	assert.False(t, state.HasMore)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	f := newFakeFetcher()
	f.set("", models.FeedPage{Posts: items("a", 1)}, nil)
	l := newTestLoader(f)
	require.NoError(t, l.Load(context.Background()))

	snap := l.Snapshot()
	snap.Items[0].LikeCount = 99
	snap.Items[0].Post.Hashtags[0] = "carp"

	again := l.Snapshot()
	assert.Equal(t, 0, again.Items[0].LikeCount)
	assert.Equal(t, "bass", again.Items[0].Post.Hashtags[0])
}

func TestPatchAuthorTouchesEveryItem(t *testing.T) {
	f := newFakeFetcher()
	posts := append(items("a", 2), items("b", 1)...)
	f.set("", models.FeedPage{Posts: posts}, nil)
	l := newTestLoader(f)
	require.NoError(t, l.Load(context.Background()))

	l.PatchAuthor("a", func(d *models.PostDetails) { d.IsFollowingAuthor = true })

	state := l.Snapshot()
	assert.True(t, state.Items[0].IsFollowingAuthor)
	assert.True(t, state.Items[1].IsFollowingAuthor)
	assert.False(t, state.Items[2].IsFollowingAuthor)
}

func TestResetClearsItems(t *testing.T) {
	f := newFakeFetcher()
	f.set("", models.FeedPage{Posts: items("a", 2)}, nil)
	l := newTestLoader(f)
	require.NoError(t, l.Load(context.Background()))

	l.Reset()
	state := l.Snapshot()
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.Empty(t, state.Items)
}

func TestOverlayAppliesToLoadedItems(t *testing.T) {
	f := newFakeFetcher()
	first, second := items("a", 2), items("b", 1)
	f.set("", models.FeedPage{Posts: first, NextCursor: "p2"}, nil)
	f.set("p2", models.FeedPage{Posts: second}, nil)
	l := newTestLoader(f)
	require.NoError(t, l.Load(context.Background()))

	var seen []string
	l.SetOverlay(func(d *models.PostDetails) {
		seen = append(seen, d.ID())
		d.IsLiked = true
	})
	assert.Equal(t, []string{first[0].ID(), first[1].ID()}, seen, "held items are overlaid at once")

	l.LoadMoreIfNeeded(context.Background(), first[1].ID())
	require.NoError(t, l.Refresh(context.Background()))
	for _, item := range l.Snapshot().Items {
		assert.True(t, item.IsLiked)
	}
	assert.Len(t, seen, 5)

	l.SetOverlay(nil)
	require.NoError(t, l.Refresh(context.Background()))
	assert.False(t, l.Snapshot().Items[0].IsLiked)
}

func TestLookup(t *testing.T) {
	f := newFakeFetcher()
	posts := append(items("a", 1), items("b", 1)...)
	posts[1].IsFollowingAuthor = true
	f.set("", models.FeedPage{Posts: posts}, nil)
	l := newTestLoader(f)

	_, ok := l.Lookup(posts[0].ID())
	assert.False(t, ok, "nothing loaded yet")

	require.NoError(t, l.Load(context.Background()))
	got, ok := l.Lookup(posts[0].ID())
	require.True(t, ok)
	got.Post.Hashtags[0] = "carp"
	assert.Equal(t, "bass", l.Snapshot().Items[0].Post.Hashtags[0])

	following, ok := l.LookupAuthor("b")
	assert.True(t, ok)
	assert.True(t, following)
	_, ok = l.LookupAuthor("nobody")
	assert.False(t, ok)
}
