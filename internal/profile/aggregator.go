// Package profile holds the profile view: one consistent snapshot of a user,
// their stats, crowned spots and recent catches.
package profile

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/apperr"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/session"
	"github.com/Anthony-Yangg/reel-royale2-sub001/pkg/config"
	"github.com/Anthony-Yangg/reel-royale2-sub001/pkg/validators"
)

type Backend interface {
	FetchProfile(ctx context.Context, userID string) (*models.ProfileBundle, error)
	UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error)
}

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// State is a snapshot of the profile view. Own is set when the bundle
// belongs to the signed in user.
type State struct {
	Phase  Phase
	Bundle *models.ProfileBundle
	Own    bool
	Err    error
}

// Edits are the user editable profile fields. Nil fields are left alone.
type Edits struct {
	Username     *string
	Bio          *string
	HomeLocation *string
}

type Aggregator struct {
	backend  Backend
	session  *session.Session
	validate *validator.Validate
	timeout  time.Duration
	logger   *zap.Logger

	saveMu sync.Mutex

	mu    sync.Mutex
	state State
	gen   uint64
}

func NewAggregator(backend Backend, sess *session.Session, cfg *config.ClientConfig, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Aggregator{
		backend:  backend,
		session:  sess,
		validate: validators.New(),
		timeout:  cfg.GetRequestTimeout(),
		logger:   logger,
	}
	sess.OnSignOut(a.clear)
	return a
}

func (a *Aggregator) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.state
	s.Bundle = a.state.Bundle.Clone()
	return s
}

// Load fetches the profile of userID, or of the signed in user when userID
// is empty. Sections the backend could not compute are reported through
// Bundle.Degraded and do not fail the view. A result overtaken by a later
// Load is discarded.
func (a *Aggregator) Load(ctx context.Context, userID string) error {
	if !a.session.Active() {
		return apperr.Unauthorized("profile.get", "Please sign in again")
	}
	own := userID == "" || userID == a.session.UserID()
	if own {
		userID = ""
	}

	a.mu.Lock()
	a.gen++
	gen := a.gen
	if a.state.Bundle == nil || a.state.Own != own ||
		(!own && a.state.Bundle.User.ID != userID) {
		a.state = State{Phase: PhaseLoading, Own: own}
	} else {
		a.state.Err = nil
	}
	a.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
	bundle, err := a.backend.FetchProfile(fetchCtx, userID)
	cancel()

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		return nil
	}
	if err != nil {
		a.state.Err = err
		if a.state.Bundle == nil || apperr.KindOf(err) == apperr.KindNotFound {
			a.state.Bundle = nil
			a.state.Phase = PhaseFailed
		} else {
			a.state.Phase = PhaseLoaded
		}
		a.logger.Warn("profile load failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	if len(bundle.Degraded) > 0 {
		a.logger.Info("profile loaded with degraded sections",
			zap.String("user_id", bundle.User.ID),
			zap.Strings("degraded", bundle.Degraded))
	}
	a.state = State{Phase: PhaseLoaded, Bundle: bundle.Clone(), Own: own}
	return nil
}

// Save validates edits and sends the changed fields. Only the signed in
// user's profile can be saved; the returned user replaces the cached one in
// both the snapshot and the session.
func (a *Aggregator) Save(ctx context.Context, edits Edits) (*models.User, error) {
	if !a.session.Active() {
		return nil, apperr.Unauthorized("profile.update", "Please sign in again")
	}

	a.mu.Lock()
	own := a.state.Own && a.state.Bundle != nil
	a.mu.Unlock()
	if !own {
		return nil, apperr.Validation("profile.update", "Only your own profile can be edited")
	}

	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	current := a.session.User()
	if current == nil {
		return nil, apperr.Unauthorized("profile.update", "Please sign in again")
	}
	req := changes(current, edits)
	if req.Username == nil && req.Bio == nil && req.HomeLocation == nil {
		return current, nil
	}
	if err := a.validate.Struct(req); err != nil {
		return nil, apperr.Validation("profile.update", err.Error())
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	user, err := a.backend.UpdateProfile(callCtx, req)
	cancel()
	if err != nil {
		a.logger.Warn("profile save failed", zap.Error(err))
		return nil, err
	}

	a.session.SetUser(*user)
	a.mu.Lock()
	if a.state.Own && a.state.Bundle != nil {
		a.state.Bundle.User = *user
	}
	a.mu.Unlock()
	return user, nil
}

// changes keeps the edited fields that differ from current. Text is trimmed
// and an empty bio or home location clears it.
func changes(current *models.User, edits Edits) models.UpdateProfileRequest {
	var req models.UpdateProfileRequest
	if edits.Username != nil {
		if v := strings.TrimSpace(*edits.Username); v != current.Username {
			req.Username = &v
		}
	}
	if edits.Bio != nil {
		if v := strings.TrimSpace(*edits.Bio); v != deref(current.Bio) {
			req.Bio = &v
		}
	}
	if edits.HomeLocation != nil {
		if v := strings.TrimSpace(*edits.HomeLocation); v != deref(current.HomeLocation) {
			req.HomeLocation = &v
		}
	}
	return req
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SignOut ends the session. The first call clears every cached profile;
// later calls return session.ErrSignedOut.
func (a *Aggregator) SignOut() error {
	return a.session.SignOut()
}

func (a *Aggregator) clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen++
	a.state = State{}
}
