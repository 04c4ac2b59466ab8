/*
PURPOSE:
  The persisted bearer credential and its on-disk store. One token file
  per provider identity, rewritten atomically so a reader never sees a
  half-written credential.

REQUIREMENTS:
  User-specified:
  - At most one token per provider identity on disk at any time.
  - A crash mid-write must leave the previous token file intact.

  Implementation-discovered:
  - Expiries are stored as absolute timestamps computed when the
    provider's response arrives; relative "expires_in" values are
    useless after a process restart.
  - The file must be 0600: it is a live credential.

ARCHITECTURE INTEGRATION:
  - Used by: internal/auth/manager.go, internal/auth/device.go
  - Dependencies: standard library only

ERROR HANDLING:
  - Load surfaces fs.ErrNotExist unwrapped when no token was ever
    saved; callers translate that into their own "not authenticated"
    condition.

IMPLEMENTATION RULES:
  - Save writes to a temp file in the destination directory and
    renames. Never write the target path directly.

USAGE:
  store := auth.NewStore(cacheDir, clientID)
  tok, err := store.Load()

RELATED FILES:
  - internal/auth/manager.go

MAINTENANCE:
  - Keep the JSON field names stable; existing cached tokens must keep
    loading across upgrades.
*/

package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Token is a bearer credential obtained from the identity provider.
// Zero expiry timestamps mean "does not expire".
type Token struct {
	AccessToken      string    `json:"access_token"`
	TokenType        string    `json:"token_type,omitempty"`
	Scope            string    `json:"scope,omitempty"`
	RefreshToken     string    `json:"refresh_token,omitempty"`
	ExpiresAt        time.Time `json:"expires_at,omitempty"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at,omitempty"`
}

// expiryMargin keeps us from handing out a token that dies mid-upload.
const expiryMargin = time.Minute

// Valid reports whether the token can be used at instant now.
func (t *Token) Valid(now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	if t.ExpiresAt.IsZero() {
		return true
	}
	return now.Add(expiryMargin).Before(t.ExpiresAt)
}

// Refreshable reports whether a refresh grant is worth attempting at
// instant now.
func (t *Token) Refreshable(now time.Time) bool {
	if t == nil || t.RefreshToken == "" {
		return false
	}
	if t.RefreshExpiresAt.IsZero() {
		return true
	}
	return now.Before(t.RefreshExpiresAt)
}

// Store persists one Token for one provider identity. It is an
// explicit handle: nothing in this package touches a global cache
// location behind the caller's back.
type Store struct {
	path string
}

// NewStore returns a store rooted in dir, keyed by the provider
// identity (the OAuth client ID).
func NewStore(dir, clientID string) *Store {
	return &Store{path: filepath.Join(dir, clientID+".json")}
}

// Path returns the token file location.
func (s *Store) Path() string { return s.path }

// Load reads the persisted token. A missing file surfaces as
// fs.ErrNotExist via os.ReadFile.
func (s *Store) Load() (*Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("token cache %s is corrupt: %w", s.path, err)
	}
	return &tok, nil
}

// Save writes tok atomically, replacing any previous token for this
// identity.
func (s *Store) Save(tok *Token) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create token cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			os.Remove(tmpName)
		}
	}()

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close token file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("failed to restrict token permissions: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	tmpName = ""
	return nil
}

// Clear removes the persisted token, if any.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
