/*
PURPOSE:
  The auth manager: owns the token store for one provider identity,
  runs device flows, refreshes expired tokens, and hands out a valid
  bearer credential on demand.

REQUIREMENTS:
  User-specified:
  - Token() returns a cached, unexpired token without any network
    traffic.
  - Expired tokens are refreshed when a refresh credential exists;
    only when that fails does the full device flow run again.
  - No cached token at all means ErrNotAuthenticated, never a surprise
    interactive flow.
  - Two callers authenticating the same identity at once share one
    flow.

  Implementation-discovered:
  - The refresh grant reuses the same token endpoint as polling, just
    with grant_type=refresh_token.
  - Username lookup needs the provider's REST API, not the OAuth
    endpoints.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: golang.org/x/sync/singleflight

ERROR HANDLING:
  - ErrNotAuthenticated is a sentinel; callers match with errors.Is
    and tell the user to run the auth command.

IMPLEMENTATION RULES:
  - Every path that obtains a fresh token persists it before returning
    it. A token the store never saw does not exist.

USAGE:
  mgr := auth.NewManager(flowCfg, apiURL, store)
  tok, err := mgr.Token(ctx)

RELATED FILES:
  - internal/auth/device.go
  - internal/auth/token.go

MAINTENANCE:
  - Keep Token()'s no-network fast path first; the share workflow calls
    it on every upload.
*/

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/apertureless/burnbench/internal/output"
)

// ErrNotAuthenticated reports that no token has ever been obtained for
// this provider identity.
var ErrNotAuthenticated = errors.New("not authenticated")

// Manager obtains, persists and serves tokens for one provider
// identity. Safe for concurrent use.
type Manager struct {
	cfg    FlowConfig
	apiURL string
	store  *Store
	group  singleflight.Group
}

// NewManager wires a manager to its provider endpoints and token
// store. The flow config's callbacks fire on every interactive flow
// the manager starts.
func NewManager(cfg FlowConfig, apiURL string, store *Store) *Manager {
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{cfg: cfg, apiURL: apiURL, store: store}
}

// Store exposes the underlying token store.
func (m *Manager) Store() *Store { return m.store }

// Authenticate runs the device flow and persists the resulting token,
// replacing whatever was cached. Concurrent calls for the same
// identity share a single flow.
func (m *Manager) Authenticate(ctx context.Context) (*Token, error) {
	return m.obtain(ctx, nil)
}

// Token returns a usable bearer token: cached if still valid,
// refreshed if expired but refreshable, re-authenticated interactively
// as a last resort. With nothing cached it fails with
// ErrNotAuthenticated.
func (m *Manager) Token(ctx context.Context) (*Token, error) {
	tok, err := m.store.Load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	if tok.Valid(m.cfg.Now()) {
		return tok, nil
	}
	return m.obtain(ctx, tok)
}

// obtain gets a fresh token, trying a refresh grant off old first and
// falling back to a full device flow. Deduplicated per identity.
func (m *Manager) obtain(ctx context.Context, old *Token) (*Token, error) {
	v, err, _ := m.group.Do(m.cfg.ClientID, func() (any, error) {
		if old.Refreshable(m.cfg.Now()) {
			tok, err := m.refresh(ctx, old)
			if err == nil {
				return tok, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			output.Logger.Warn("token refresh failed, starting device flow", "error", err)
		}

		tok, err := NewFlow(m.cfg).Run(ctx)
		if err != nil {
			return nil, err
		}
		if err := m.store.Save(tok); err != nil {
			return nil, fmt.Errorf("authenticated but failed to persist token: %w", err)
		}
		output.Logger.Debug("token persisted", "path", m.store.Path())
		return tok, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Token), nil
}

func (m *Manager) refresh(ctx context.Context, old *Token) (*Token, error) {
	resp, err := tokenRequest(ctx, m.cfg.Client, m.cfg.TokenURL, m.cfg.UserAgent, url.Values{
		"client_id":     {m.cfg.ClientID},
		"grant_type":    {"refresh_token"},
		"refresh_token": {old.RefreshToken},
	})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("refresh rejected: %s", resp.Error)
	}
	if resp.AccessToken == "" {
		return nil, errors.New("refresh response carried no token")
	}

	tok := resp.token(m.cfg.Now())
	if err := m.store.Save(tok); err != nil {
		return nil, fmt.Errorf("refreshed but failed to persist token: %w", err)
	}
	return tok, nil
}

// Login fetches the authenticated user's login name from the provider
// API. Reports carry it so the results service can attribute uploads.
func (m *Manager) Login(ctx context.Context, tok *Token) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.apiURL+"/user", nil)
	if err != nil {
		return "", fmt.Errorf("failed to build user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if m.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", m.cfg.UserAgent)
	}

	resp, err := m.cfg.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("user request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("user endpoint returned %s", resp.Status)
	}

	var user struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("failed to decode user response: %w", err)
	}
	return user.Login, nil
}
