package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Ref-Hub/refhub-cli/internal/api"
	"github.com/Ref-Hub/refhub-cli/internal/log"
	"github.com/Ref-Hub/refhub-cli/internal/tokenstore"
)

func makeToken(t *testing.T, email string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"id":    "u1",
		"email": email,
		"name":  "Test User",
		"exp":   exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("Failed to build token: %v", err)
	}
	return token
}

func newTestStore(t *testing.T) *tokenstore.FileStore {
	t.Helper()
	return tokenstore.NewFileStore(filepath.Join(t.TempDir(), "credentials.json"), nil)
}

func newTestManager(t *testing.T, serverURL string, store *tokenstore.FileStore) *Manager {
	t.Helper()
	client := api.NewClient(serverURL, store, log.Discard())
	return NewManager(store, client, log.Discard())
}

// TestExpiry tests exp-claim decoding
func TestExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := makeToken(t, "me@example.com", exp)

	got, err := Expiry(token)
	if err != nil {
		t.Fatalf("Expiry failed: %v", err)
	}
	if !got.Equal(exp) {
		t.Errorf("Expected expiry %v, got %v", exp, got)
	}

	if _, err := Expiry("not-a-jwt"); err == nil {
		t.Error("Expected an error for a malformed token")
	}
}

// TestFresh tests the strict-after freshness rule
func TestFresh(t *testing.T) {
	now := time.Now().Truncate(time.Second)

	if !Fresh(makeToken(t, "me@example.com", now.Add(time.Minute)), now) {
		t.Error("Token expiring in a minute should be fresh")
	}
	if Fresh(makeToken(t, "me@example.com", now.Add(-time.Minute)), now) {
		t.Error("Expired token must not be fresh")
	}
	if Fresh(makeToken(t, "me@example.com", now), now) {
		t.Error("Token expiring exactly now must not be fresh")
	}
	if Fresh("garbage", now) {
		t.Error("Malformed token must never be fresh")
	}
}

// TestInitializeNoTokens tests the fail-closed empty path
func TestInitializeNoTokens(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	store := newTestStore(t)
	mgr := newTestManager(t, server.URL, store)

	if state := mgr.Initialize(context.Background()); state != StateUnauthenticated {
		t.Errorf("Expected StateUnauthenticated, got %v", state)
	}
	if hits.Load() != 0 {
		t.Errorf("Empty store must not hit the network, got %d requests", hits.Load())
	}
}

// TestInitializeFreshToken tests silent adoption without a network call
func TestInitializeFreshToken(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	store := newTestStore(t)
	token := makeToken(t, "me@example.com", time.Now().Add(time.Hour))
	if err := store.SetToken(token); err != nil {
		t.Fatal(err)
	}
	if err := store.SetStoredUser(&api.User{ID: "u1", Email: "me@example.com"}); err != nil {
		t.Fatal(err)
	}

	mgr := newTestManager(t, server.URL, store)

	if state := mgr.Initialize(context.Background()); state != StateAuthenticated {
		t.Fatalf("Expected StateAuthenticated, got %v", state)
	}
	if hits.Load() != 0 {
		t.Errorf("Fresh token must not hit the network, got %d requests", hits.Load())
	}
	if user := mgr.CurrentUser(); user == nil || user.Email != "me@example.com" {
		t.Errorf("Expected the stored user snapshot, got %+v", user)
	}
}

// TestInitializeExpiredTokenRefreshes tests the silent refresh path
func TestInitializeExpiredTokenRefreshes(t *testing.T) {
	fresh := makeToken(t, "me@example.com", time.Now().Add(time.Hour))
	var gotRefreshToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/token" {
			t.Errorf("Unexpected request to %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotRefreshToken = req["refreshToken"]
		_ = json.NewEncoder(w).Encode(api.RefreshResponse{AccessToken: fresh})
	}))
	defer server.Close()

	store := newTestStore(t)
	expired := makeToken(t, "me@example.com", time.Now().Add(-time.Hour))
	_ = store.SetToken(expired)
	_ = store.SetRefreshToken("R1")
	_ = store.SetStoredUser(&api.User{Email: "me@example.com"})

	mgr := newTestManager(t, server.URL, store)

	if state := mgr.Initialize(context.Background()); state != StateAuthenticated {
		t.Fatalf("Expected StateAuthenticated after silent refresh, got %v", state)
	}
	if gotRefreshToken != "R1" {
		t.Errorf("Expected the stored refresh token on the wire, got '%s'", gotRefreshToken)
	}
	if store.Token() != fresh {
		t.Error("Expected the refreshed access token to be persisted")
	}
	// No rotation in the response, so the old refresh token stays.
	if store.RefreshToken() != "R1" {
		t.Errorf("Expected refresh token 'R1' kept, got '%s'", store.RefreshToken())
	}
}

// TestInitializeRefreshFailureClears tests fail-closed on a rejected
// refresh token.
func TestInitializeRefreshFailureClears(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store := newTestStore(t)
	_ = store.SetToken(makeToken(t, "me@example.com", time.Now().Add(-time.Hour)))
	_ = store.SetRefreshToken("revoked")

	mgr := newTestManager(t, server.URL, store)

	if state := mgr.Initialize(context.Background()); state != StateUnauthenticated {
		t.Fatalf("Expected StateUnauthenticated, got %v", state)
	}
	if store.Token() != "" || store.RefreshToken() != "" {
		t.Error("Expected all credentials cleared after a failed refresh")
	}
	if mgr.State() != StateUnauthenticated {
		t.Errorf("Expected manager state unauthenticated, got %v", mgr.State())
	}
}

// TestLoginPersists tests the login happy path
func TestLoginPersists(t *testing.T) {
	token := makeToken(t, "me@example.com", time.Now().Add(time.Hour))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/login" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(api.LoginResponse{
			AccessToken:  token,
			RefreshToken: "R1",
		})
	}))
	defer server.Close()

	store := newTestStore(t)
	mgr := newTestManager(t, server.URL, store)

	user, err := mgr.Login(context.Background(), "me@example.com", "secret1234", true)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if user.Email != "me@example.com" {
		t.Errorf("Expected email from token claims, got '%s'", user.Email)
	}
	if store.Token() != token {
		t.Error("Expected the access token persisted")
	}
	if store.RefreshToken() != "R1" {
		t.Error("Expected the refresh token persisted")
	}
	if !store.RememberMe() {
		t.Error("Expected remember-me persisted")
	}
	if mgr.State() != StateAuthenticated {
		t.Errorf("Expected StateAuthenticated, got %v", mgr.State())
	}
}

// TestLoginFailure tests that a rejected login leaves no session
func TestLoginFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid credentials"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	store := newTestStore(t)
	mgr := newTestManager(t, server.URL, store)

	if _, err := mgr.Login(context.Background(), "me@example.com", "wrong", false); err == nil {
		t.Fatal("Expected login to fail")
	}
	if store.Token() != "" {
		t.Error("Expected no token persisted after a failed login")
	}
}

// TestRefreshRotation tests that a rotated refresh token replaces the
// stored one.
func TestRefreshRotation(t *testing.T) {
	fresh := makeToken(t, "me@example.com", time.Now().Add(time.Hour))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.RefreshResponse{
			AccessToken:  fresh,
			RefreshToken: "R2",
		})
	}))
	defer server.Close()

	store := newTestStore(t)
	_ = store.SetRefreshToken("R1")

	mgr := newTestManager(t, server.URL, store)

	if _, err := mgr.RefreshAccessToken(context.Background()); err != nil {
		t.Fatalf("RefreshAccessToken failed: %v", err)
	}
	if store.RefreshToken() != "R2" {
		t.Errorf("Expected rotated refresh token 'R2', got '%s'", store.RefreshToken())
	}
}

// TestRefreshSingleFlight tests that concurrent refresh triggers share
// one exchange.
func TestRefreshSingleFlight(t *testing.T) {
	fresh := makeToken(t, "me@example.com", time.Now().Add(time.Hour))
	var exchanges atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(api.RefreshResponse{AccessToken: fresh})
	}))
	defer server.Close()

	store := newTestStore(t)
	_ = store.SetRefreshToken("R1")

	mgr := newTestManager(t, server.URL, store)

	const workers = 8
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = mgr.RefreshAccessToken(context.Background())
		}(i)
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Worker %d failed: %v", i, err)
		}
	}
	if got := exchanges.Load(); got != 1 {
		t.Errorf("Expected exactly 1 refresh exchange, got %d", got)
	}
}

// TestRefreshWithoutToken tests fail-closed with nothing to exchange
func TestRefreshWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("No request expected")
	}))
	defer server.Close()

	store := newTestStore(t)
	mgr := newTestManager(t, server.URL, store)

	if _, err := mgr.RefreshAccessToken(context.Background()); err == nil {
		t.Fatal("Expected an error with no refresh token")
	}
	if mgr.State() != StateUnauthenticated {
		t.Errorf("Expected StateUnauthenticated, got %v", mgr.State())
	}
}

// TestLogoutClears tests local logout
func TestLogoutClears(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	store := newTestStore(t)
	_ = store.SetToken(makeToken(t, "me@example.com", time.Now().Add(time.Hour)))
	_ = store.SetRefreshToken("R1")

	mgr := newTestManager(t, server.URL, store)

	if err := mgr.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if store.Token() != "" || store.RefreshToken() != "" {
		t.Error("Expected credentials cleared on logout")
	}
	if mgr.State() != StateUnauthenticated {
		t.Errorf("Expected StateUnauthenticated, got %v", mgr.State())
	}
}
