package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/session"
)

var errNoSession = errors.New("not signed in, run `reelctl login` first")

type savedUser struct {
	ID       string `yaml:"id"`
	Username string `yaml:"username"`
	Email    string `yaml:"email,omitempty"`
}

// savedSession is the on-disk form of a session. The file is written 0600.
type savedSession struct {
	Token string    `yaml:"token"`
	User  savedUser `yaml:"user"`
}

func saveSession(path string, sess *session.Session) error {
	user := sess.User()
	if user == nil {
		return errNoSession
	}
	data, err := yaml.Marshal(savedSession{
		Token: sess.Token(),
		User:  savedUser{ID: user.ID, Username: user.Username, Email: user.Email},
	})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func loadSession(path string) (*session.Session, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var saved savedSession
	if err := yaml.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	if saved.Token == "" || saved.User.ID == "" {
		return nil, errNoSession
	}
	return session.New(saved.Token, models.User{
		ID:       saved.User.ID,
		Username: saved.User.Username,
		Email:    saved.User.Email,
	}), nil
}

// forgetSession removes the session file. A missing file is not an error.
func forgetSession(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
