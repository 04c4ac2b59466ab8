/*
PURPOSE:
  The OAuth 2.0 device authorization flow, written as an explicit state
  machine: Idle, Requesting, AwaitingUserAction, Polling, then
  Authenticated or Failed. Polling waits are a cancellable primitive,
  not a bare sleep, so an interrupt lands between requests instead of
  mid-nap.

REQUIREMENTS:
  User-specified:
  - State transitions are observable; the `auth` command narrates them
    and tests assert the exact sequence.
  - "slow down" from the provider increases the polling interval.
  - Session expiry terminates the flow as Failed(Expired); user denial
    as Failed(Denied); transport breakage as Failed(NetworkError).

  Implementation-discovered:
  - GitHub answers polling errors with HTTP 200 and an `error` field in
    the JSON body, so decoding must be attempted regardless of status.
  - The clock and the wait primitive are injectable; the round-trip
    tests finish in microseconds instead of minutes.

ARCHITECTURE INTEGRATION:
  - Used by: internal/auth/manager.go, internal/cli
  - Dependencies: standard library only (net/http, encoding/json)

ERROR HANDLING:
  - Provider-signalled failures come back as *FlowError carrying the
    reason. Context cancellation comes back as the context's own error.

IMPLEMENTATION RULES:
  - One transition per provider response. The observer sees Polling
    once per "authorization pending", nothing for the request that
    succeeds.
  - Never retry above the cadence the polling interval already gives.

USAGE:
  flow := auth.NewFlow(cfg)
  tok, err := flow.Run(ctx)

RELATED FILES:
  - internal/auth/token.go
  - internal/auth/manager.go

MAINTENANCE:
  - The error strings "authorization_pending", "slow_down",
    "access_denied" and "expired_token" are wire constants from
    RFC 8628 §3.5. Do not rename.
*/

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// State identifies where a device flow currently is.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateAwaitingUserAction
	StatePolling
	StateAuthenticated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateAwaitingUserAction:
		return "awaiting user action"
	case StatePolling:
		return "polling"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// FailureReason classifies a terminal flow failure.
type FailureReason string

const (
	ReasonExpired      FailureReason = "expired"
	ReasonDenied       FailureReason = "denied"
	ReasonNetworkError FailureReason = "network error"
)

// FlowError is the terminal error of a failed device flow.
type FlowError struct {
	Reason FailureReason
	Err    error
}

func (e *FlowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("device flow failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("device flow failed (%s)", e.Reason)
}

func (e *FlowError) Unwrap() error { return e.Err }

// Session is the transient device-flow state handed out by the
// provider. It lives for one authentication attempt and is discarded
// afterwards, success or not.
type Session struct {
	DeviceCode      string
	UserCode        string
	VerificationURI string
	Interval        time.Duration
	ExpiresAt       time.Time
}

// WaitFunc blocks for d or until ctx is done, returning the context
// error on cancellation.
type WaitFunc func(ctx context.Context, d time.Duration) error

func sleepWait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const (
	defaultPollInterval = 5 * time.Second
	slowDownStep        = 5 * time.Second
)

// FlowConfig wires a Flow to one identity provider. Client, Now and
// Wait default to the real thing when nil.
type FlowConfig struct {
	ClientID      string
	Scope         string
	DeviceCodeURL string
	TokenURL      string
	UserAgent     string

	Client *http.Client
	Now    func() time.Time
	Wait   WaitFunc

	// OnState observes every transition out of Idle.
	OnState func(State)
	// OnSession surfaces the user code and verification URL to the
	// operator once the provider has issued a session.
	OnSession func(Session)
}

// Flow runs one device authorization attempt. Not reusable; make a new
// one per attempt.
type Flow struct {
	cfg FlowConfig

	mu    sync.Mutex
	state State
}

// NewFlow returns a Flow in state Idle.
func NewFlow(cfg FlowConfig) *Flow {
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Wait == nil {
		cfg.Wait = sleepWait
	}
	return &Flow{cfg: cfg, state: StateIdle}
}

// State returns the current flow state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) transition(to State) {
	f.mu.Lock()
	f.state = to
	f.mu.Unlock()
	if f.cfg.OnState != nil {
		f.cfg.OnState(to)
	}
}

func (f *Flow) fail(reason FailureReason, err error) error {
	f.transition(StateFailed)
	return &FlowError{Reason: reason, Err: err}
}

// Run drives the flow to a terminal state and returns the obtained
// token. The caller persists it; Run itself touches no storage.
func (f *Flow) Run(ctx context.Context) (*Token, error) {
	f.transition(StateRequesting)
	sess, err := f.requestSession(ctx)
	if err != nil {
		if ctx.Err() != nil {
			f.transition(StateFailed)
			return nil, ctx.Err()
		}
		return nil, f.fail(ReasonNetworkError, err)
	}

	f.transition(StateAwaitingUserAction)
	if f.cfg.OnSession != nil {
		f.cfg.OnSession(*sess)
	}

	interval := sess.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	for {
		if !f.cfg.Now().Before(sess.ExpiresAt) {
			return nil, f.fail(ReasonExpired, nil)
		}
		if err := f.cfg.Wait(ctx, interval); err != nil {
			f.transition(StateFailed)
			return nil, err
		}

		resp, err := tokenRequest(ctx, f.cfg.Client, f.cfg.TokenURL, f.cfg.UserAgent, url.Values{
			"client_id":   {f.cfg.ClientID},
			"device_code": {sess.DeviceCode},
			"grant_type":  {"urn:ietf:params:oauth:grant-type:device_code"},
		})
		if err != nil {
			if ctx.Err() != nil {
				f.transition(StateFailed)
				return nil, ctx.Err()
			}
			return nil, f.fail(ReasonNetworkError, err)
		}

		switch resp.Error {
		case "":
			if resp.AccessToken == "" {
				return nil, f.fail(ReasonNetworkError, errors.New("provider returned neither token nor error"))
			}
			tok := resp.token(f.cfg.Now())
			f.transition(StateAuthenticated)
			return tok, nil
		case "authorization_pending":
			f.transition(StatePolling)
		case "slow_down":
			f.transition(StatePolling)
			if resp.Interval > 0 {
				interval = time.Duration(resp.Interval) * time.Second
			} else {
				interval += slowDownStep
			}
		case "access_denied":
			return nil, f.fail(ReasonDenied, nil)
		case "expired_token":
			return nil, f.fail(ReasonExpired, nil)
		default:
			return nil, f.fail(ReasonNetworkError, fmt.Errorf("provider error %q: %s", resp.Error, resp.ErrorDescription))
		}
	}
}

type sessionResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int64  `json:"expires_in"`
	Interval        int64  `json:"interval"`
}

func (f *Flow) requestSession(ctx context.Context) (*Session, error) {
	form := url.Values{"client_id": {f.cfg.ClientID}}
	if f.cfg.Scope != "" {
		form.Set("scope", f.cfg.Scope)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.DeviceCodeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build device code request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}

	httpResp, err := f.cfg.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("device code request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read device code response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("device code endpoint returned %s", httpResp.Status)
	}

	var sr sessionResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("failed to decode device code response: %w", err)
	}
	if sr.DeviceCode == "" || sr.UserCode == "" {
		return nil, errors.New("device code response is missing codes")
	}

	return &Session{
		DeviceCode:      sr.DeviceCode,
		UserCode:        sr.UserCode,
		VerificationURI: sr.VerificationURI,
		Interval:        time.Duration(sr.Interval) * time.Second,
		ExpiresAt:       f.cfg.Now().Add(time.Duration(sr.ExpiresIn) * time.Second),
	}, nil
}

type tokenResponse struct {
	AccessToken           string `json:"access_token"`
	TokenType             string `json:"token_type"`
	Scope                 string `json:"scope"`
	ExpiresIn             int64  `json:"expires_in"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
	Interval              int64  `json:"interval"`
	Error                 string `json:"error"`
	ErrorDescription      string `json:"error_description"`
}

// token converts the wire response into a Token with absolute expiries
// anchored at now.
func (r *tokenResponse) token(now time.Time) *Token {
	tok := &Token{
		AccessToken:  r.AccessToken,
		TokenType:    r.TokenType,
		Scope:        r.Scope,
		RefreshToken: r.RefreshToken,
	}
	if r.ExpiresIn > 0 {
		tok.ExpiresAt = now.Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	if r.RefreshTokenExpiresIn > 0 {
		tok.RefreshExpiresAt = now.Add(time.Duration(r.RefreshTokenExpiresIn) * time.Second)
	}
	return tok
}

// tokenRequest posts form to the token endpoint and decodes the reply.
// Both the device-code grant and the refresh grant go through here.
func tokenRequest(ctx context.Context, client *http.Client, endpoint, userAgent string, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	httpResp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		if httpResp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("token endpoint returned %s", httpResp.Status)
		}
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return &tr, nil
}
