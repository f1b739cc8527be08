// Package session holds the signed-in user's token and record. A Session
// is created on login and torn down exactly once by SignOut.
package session

import (
	"errors"
	"sync"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
)

// ErrSignedOut is returned by SignOut on a session that was already signed out.
var ErrSignedOut = errors.New("session already signed out")

type Session struct {
	mu     sync.RWMutex
	token  string
	user   *models.User
	active bool
	hooks  []func()
}

func New(token string, user models.User) *Session {
	return &Session{token: token, user: &user, active: true}
}

// Token returns the bearer token, or "" after sign out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user, or nil after sign out.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SetUser replaces the cached user record after a profile save.
func (s *Session) SetUser(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		s.user = &user
	}
}

// OnSignOut registers a teardown hook. Hooks run once, in registration
// order, when the session is signed out. Registering on a signed-out
// session runs the hook immediately.
func (s *Session) OnSignOut(fn func()) {
	s.mu.Lock()
	if s.active {
		s.hooks = append(s.hooks, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	fn()
}

// SignOut clears the token and user and runs the teardown hooks. Only the
// first call does anything; later calls return ErrSignedOut.
func (s *Session) SignOut() error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return ErrSignedOut
	}
	s.active = false
	s.token = ""
	s.user = nil
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	return nil
}
