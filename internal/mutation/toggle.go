package mutation

import (
	"context"

	"go.uber.org/zap"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/apperr"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
)

// ToggleLike flips the like on post in every projection before the backend
// confirms it. The flip is relative to the live local state: post seeds it
// only when no attached projection holds the post. While a request for the
// post is outstanding, further toggles only move the desired state; the
// caller that owns the request keeps sending until the backend matches it.
// A failure restores the last confirmed flag and count and raises a notice.
func (d *Dispatcher) ToggleLike(ctx context.Context, post models.PostDetails) error {
	if !d.session.Active() {
		return apperr.Unauthorized("posts.like", "Please sign in again")
	}
	id := post.ID()

	d.patchMu.Lock()
	liked := post.IsLiked
	for _, p := range d.attached() {
		if live, ok := p.Lookup(id); ok {
			liked = live.IsLiked
			break
		}
	}
	d.mu.Lock()
	targets := d.likes
	t, ok := targets[id]
	if !ok {
		t = &toggle{confirmed: liked, desired: liked}
		targets[id] = t
	}
	t.desired = !t.desired
	owner := !t.inflight
	t.inflight = true
	d.mu.Unlock()
	d.syncPost(id)
	d.patchMu.Unlock()

	if !owner {
		return nil
	}
	return d.reconcile(ctx, "posts.like", id, t, targets,
		func() { d.syncPost(id) },
		func(ctx context.Context, on bool) error { return d.backend.SetLike(ctx, id, on) })
}

// ToggleFollow flips the follow flag on every item by authorID. following
// is the flag as the caller last saw it; an attached projection holding a
// post by authorID takes precedence.
func (d *Dispatcher) ToggleFollow(ctx context.Context, authorID string, following bool) error {
	if !d.session.Active() {
		return apperr.Unauthorized("users.follow", "Please sign in again")
	}
	if authorID == d.session.UserID() {
		return apperr.Validation("users.follow", "You cannot follow yourself")
	}

	d.patchMu.Lock()
	for _, p := range d.attached() {
		if live, ok := p.LookupAuthor(authorID); ok {
			following = live
			break
		}
	}
	d.mu.Lock()
	targets := d.follows
	t, ok := targets[authorID]
	if !ok {
		t = &toggle{confirmed: following, desired: following}
		targets[authorID] = t
	}
	t.desired = !t.desired
	owner := !t.inflight
	t.inflight = true
	d.mu.Unlock()
	d.syncAuthor(authorID)
	d.patchMu.Unlock()

	if !owner {
		return nil
	}
	return d.reconcile(ctx, "users.follow", authorID, t, targets,
		func() { d.syncAuthor(authorID) },
		func(ctx context.Context, on bool) error { return d.backend.SetFollow(ctx, authorID, on) })
}

// reconcile sends the desired state until the backend has confirmed it.
// The entry is dropped only once it is settled and its projections show it.
func (d *Dispatcher) reconcile(
	ctx context.Context,
	op, id string,
	t *toggle,
	targets map[string]*toggle,
	publish func(),
	send func(ctx context.Context, on bool) error,
) error {
	for {
		d.patchMu.Lock()
		d.mu.Lock()
		if t.desired == t.confirmed {
			t.inflight = false
			if targets[id] == t {
				delete(targets, id)
			}
			d.mu.Unlock()
			d.patchMu.Unlock()
			return nil
		}
		want := t.desired
		d.mu.Unlock()
		d.patchMu.Unlock()

		err := d.call(ctx, func(ctx context.Context) error { return send(ctx, want) })

		if err == nil {
			d.mu.Lock()
			t.confirmed = want
			d.mu.Unlock()
			continue
		}

		d.patchMu.Lock()
		d.mu.Lock()
		t.desired = t.confirmed
		d.raiseLocked(op, err)
		d.mu.Unlock()
		publish()
		d.mu.Lock()
		t.inflight = false
		if targets[id] == t {
			delete(targets, id)
		}
		d.mu.Unlock()
		d.patchMu.Unlock()

		d.logger.Warn("optimistic update rolled back",
			zap.String("op", op),
			zap.String("target", id),
			zap.Error(err))
		return err
	}
}
