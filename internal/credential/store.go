// Package credential stores the bearer token issued at sign-in.
//
// Two stores exist, selected by the "remember me" choice: a persistent one
// in the config directory and a session one in the runtime directory. The
// Provider reads them in that order and hands the token to callers as an
// oauth2.TokenSource. It never refreshes or validates tokens.
package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

var (
	// ErrNotSignedIn is returned when no store holds a token.
	ErrNotSignedIn = errors.New("not signed in")

	// ErrExpired is returned when the stored token is past its expiry.
	ErrExpired = errors.New("session expired")
)

// Store holds at most one token.
type Store interface {
	Load() (*oauth2.Token, error)
	Save(tok *oauth2.Token) error
	Clear() error
}

// FileStore keeps a token as JSON in a single file with mode 0600.
type FileStore struct {
	Path string
}

// Load reads the token. A missing file yields ErrNotSignedIn.
func (s FileStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", filepath.Base(s.Path), err)
	}
	if tok.AccessToken == "" {
		return nil, ErrNotSignedIn
	}
	return &tok, nil
}

// Save writes the token, creating the parent directory with mode 0700.
func (s FileStore) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0600)
}

// Clear removes the file. Removing a missing file is not an error.
func (s FileStore) Clear() error {
	err := os.Remove(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Exists reports whether the file is present.
func (s FileStore) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}
