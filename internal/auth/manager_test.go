package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(t *testing.T, srv *httptest.Server, clock *fakeClock) (*Manager, *Store) {
	t.Helper()
	store := NewStore(t.TempDir(), "client-1")
	cfg := testFlowConfig(srv, clock, nil)
	return NewManager(cfg, srv.URL, store), store
}

func TestTokenWithoutCacheIsNotAuthenticated(t *testing.T) {
	var hits atomic.Int32
	count := func(w http.ResponseWriter, r *http.Request) { hits.Add(1) }
	srv := newProvider(t, count, count)

	mgr, _ := testManager(t, srv, newFakeClock())
	_, err := mgr.Token(context.Background())

	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.EqualValues(t, 0, hits.Load(), "no network traffic without a cached token")
}

func TestTokenServesCachedWithoutNetwork(t *testing.T) {
	var hits atomic.Int32
	count := func(w http.ResponseWriter, r *http.Request) { hits.Add(1) }
	srv := newProvider(t, count, count)

	mgr, store := testManager(t, srv, newFakeClock())
	require.NoError(t, store.Save(&Token{AccessToken: "tok-cache", TokenType: "bearer"}))

	tok, err := mgr.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-cache", tok.AccessToken)
	assert.EqualValues(t, 0, hits.Load())
}

func TestTokenRefreshesExpired(t *testing.T) {
	clock := newFakeClock()

	var deviceHits atomic.Int32
	device := func(w http.ResponseWriter, r *http.Request) { deviceHits.Add(1) }
	token := func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostFormValue("grant_type"))
		assert.Equal(t, "ref-1", r.PostFormValue("refresh_token"))
		assert.Equal(t, "client-1", r.PostFormValue("client_id"))
		writeJSON(w, grantResponse("tok-2"))
	}
	srv := newProvider(t, device, token)

	mgr, store := testManager(t, srv, clock)
	require.NoError(t, store.Save(&Token{
		AccessToken:  "tok-old",
		RefreshToken: "ref-1",
		ExpiresAt:    clock.Now().Add(-time.Hour),
	}))

	tok, err := mgr.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok.AccessToken)
	assert.Equal(t, clock.Now().Add(28800*time.Second), tok.ExpiresAt)
	assert.EqualValues(t, 0, deviceHits.Load(), "a working refresh grant never re-runs the device flow")

	cached, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-2", cached.AccessToken)
}

func TestTokenRefreshRejectedFallsBackToDeviceFlow(t *testing.T) {
	clock := newFakeClock()

	var deviceHits atomic.Int32
	device := func(w http.ResponseWriter, r *http.Request) {
		deviceHits.Add(1)
		sessionHandler(t, 900, 5)(w, r)
	}
	token := func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		switch r.PostFormValue("grant_type") {
		case "refresh_token":
			writeJSON(w, map[string]any{"error": "bad_refresh_token"})
		default:
			writeJSON(w, grantResponse("tok-3"))
		}
	}
	srv := newProvider(t, device, token)

	mgr, store := testManager(t, srv, clock)
	require.NoError(t, store.Save(&Token{
		AccessToken:  "tok-old",
		RefreshToken: "ref-1",
		ExpiresAt:    clock.Now().Add(-time.Hour),
	}))

	tok, err := mgr.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-3", tok.AccessToken)
	assert.EqualValues(t, 1, deviceHits.Load())

	cached, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-3", cached.AccessToken)
}

func TestAuthenticateRunsFlowAndPersists(t *testing.T) {
	clock := newFakeClock()
	tokens, _ := scriptedTokens(t, pending(), grantResponse("tok-1"))
	srv := newProvider(t, sessionHandler(t, 900, 5), tokens)

	store := NewStore(t.TempDir(), "client-1")
	cfg := testFlowConfig(srv, clock, nil)
	var sessions []Session
	cfg.OnSession = func(s Session) { sessions = append(sessions, s) }

	mgr := NewManager(cfg, srv.URL, store)
	tok, err := mgr.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok.AccessToken)

	require.Len(t, sessions, 1)
	assert.Equal(t, "ABCD-1234", sessions[0].UserCode)

	cached, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", cached.AccessToken)
}

func TestAuthenticateSharesOneFlow(t *testing.T) {
	var deviceHits, tokenHits atomic.Int32
	device := func(w http.ResponseWriter, r *http.Request) {
		deviceHits.Add(1)
		sessionHandler(t, 900, 5)(w, r)
	}
	token := func(w http.ResponseWriter, r *http.Request) {
		tokenHits.Add(1)
		writeJSON(w, grantResponse("tok-1"))
	}
	srv := newProvider(t, device, token)

	store := NewStore(t.TempDir(), "client-1")
	cfg := testFlowConfig(srv, nil, nil)
	// Slow the poll wait down so every caller lands inside the same
	// in-flight attempt.
	cfg.Wait = func(ctx context.Context, d time.Duration) error {
		time.Sleep(20 * time.Millisecond)
		return nil
	}
	mgr := NewManager(cfg, srv.URL, store)

	var wg sync.WaitGroup
	results := make([]*Token, 5)
	errs := make([]error, 5)
	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = mgr.Authenticate(context.Background())
		}()
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "tok-1", results[i].AccessToken)
	}
	assert.EqualValues(t, 1, deviceHits.Load())
	assert.EqualValues(t, 1, tokenHits.Load())
}

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))
		assert.Equal(t, "burnbench-test", r.Header.Get("User-Agent"))
		writeJSON(w, map[string]any{"login": "octocat"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mgr, _ := testManager(t, srv, newFakeClock())
	login, err := mgr.Login(context.Background(), &Token{AccessToken: "tok-1"})
	require.NoError(t, err)
	assert.Equal(t, "octocat", login)
}

func TestLoginRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mgr, _ := testManager(t, srv, newFakeClock())
	_, err := mgr.Login(context.Background(), &Token{AccessToken: "tok-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user endpoint returned 401")
}
