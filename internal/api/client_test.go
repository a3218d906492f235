package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	apperrors "github.com/Ref-Hub/refhub-cli/internal/errors"
	"github.com/Ref-Hub/refhub-cli/internal/log"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

// fakeRefresher counts refresh calls and hands out a fixed token
type fakeRefresher struct {
	token       string
	err         error
	refreshes   atomic.Int32
	invalidated atomic.Bool
}

func (f *fakeRefresher) RefreshAccessToken(ctx context.Context) (string, error) {
	f.refreshes.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

func (f *fakeRefresher) Invalidate() {
	f.invalidated.Store(true)
}

func newTestClient(serverURL, token string) *Client {
	return NewClient(serverURL, staticToken(token), log.Discard())
}

// TestBearerAttached tests that authenticated requests carry the token
func TestBearerAttached(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		_ = json.NewEncoder(w).Encode(ListCollectionsResponse{})
	}))
	defer server.Close()

	client := newTestClient(server.URL, "T1")
	if _, err := client.ListCollections(context.Background(), ListParams{}); err != nil {
		t.Fatalf("ListCollections failed: %v", err)
	}

	if gotAuth != "Bearer T1" {
		t.Errorf("Expected 'Bearer T1', got '%s'", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("Expected an X-Request-ID header")
	}
}

// TestLoginSkipsBearer tests that the auth endpoints never attach a token
func TestLoginSkipsBearer(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(LoginResponse{AccessToken: "T"})
	}))
	defer server.Close()

	client := newTestClient(server.URL, "stale")
	resp, err := client.Login(context.Background(), "me@example.com", "secret1234")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if gotAuth != "" {
		t.Errorf("Login must not send Authorization, got '%s'", gotAuth)
	}
	if resp.AccessToken != "T" {
		t.Errorf("Expected access token 'T', got '%s'", resp.AccessToken)
	}
}

// TestRefreshRetryExactlyOnce tests the 401 refresh-and-replay cycle
func TestRefreshRetryExactlyOnce(t *testing.T) {
	var hits atomic.Int32
	var secondAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		secondAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(Collection{ID: "c1"})
	}))
	defer server.Close()

	refresher := &fakeRefresher{token: "T2"}
	client := newTestClient(server.URL, "T1")
	client.SetRefresher(refresher)

	col, err := client.GetCollection(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetCollection failed: %v", err)
	}

	if col.ID != "c1" {
		t.Errorf("Expected collection c1, got '%s'", col.ID)
	}
	if hits.Load() != 2 {
		t.Errorf("Expected 2 requests (original + replay), got %d", hits.Load())
	}
	if refresher.refreshes.Load() != 1 {
		t.Errorf("Expected exactly 1 refresh, got %d", refresher.refreshes.Load())
	}
	if secondAuth != "Bearer T2" {
		t.Errorf("Replay must carry the refreshed token, got '%s'", secondAuth)
	}
}

// TestSecond401IsTerminal tests that a 401 after the replay clears the
// session instead of looping.
func TestSecond401IsTerminal(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	refresher := &fakeRefresher{token: "T2"}
	client := newTestClient(server.URL, "T1")
	client.SetRefresher(refresher)

	_, err := client.GetCollection(context.Background(), "c1")
	if err == nil {
		t.Fatal("Expected an error")
	}

	var rhErr *apperrors.RefHubError
	if !stderrors.As(err, &rhErr) || rhErr.Code != apperrors.ErrCodeSessionExpired {
		t.Errorf("Expected session-expired error, got %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("Expected exactly 2 requests, got %d", hits.Load())
	}
	if refresher.refreshes.Load() != 1 {
		t.Errorf("Expected exactly 1 refresh, got %d", refresher.refreshes.Load())
	}
	if !refresher.invalidated.Load() {
		t.Error("Expected the session to be invalidated")
	}
}

// TestRefreshFailureSurfaces tests the failed-exchange error path
func TestRefreshFailureSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	refresher := &fakeRefresher{err: stderrors.New("refresh token rejected")}
	client := newTestClient(server.URL, "T1")
	client.SetRefresher(refresher)

	_, err := client.GetCollection(context.Background(), "c1")
	var rhErr *apperrors.RefHubError
	if !stderrors.As(err, &rhErr) || rhErr.Code != apperrors.ErrCodeRefreshFailed {
		t.Errorf("Expected refresh-failed error, got %v", err)
	}
}

// TestNoRetryWithoutRefresher tests that a 401 without a wired session
// manager is returned as a plain API error.
func TestNoRetryWithoutRefresher(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "T1")

	_, err := client.GetCollection(context.Background(), "c1")
	var apiErr *APIError
	if !stderrors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected a 401 APIError, got %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("Expected no replay, got %d requests", hits.Load())
	}
}

// TestUploadErrorRewrites tests the fixed 413 and 415 substitutions
func TestUploadErrorRewrites(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"too large bare", http.StatusRequestEntityTooLarge, "", MsgFileTooLarge},
		{"too large with body", http.StatusRequestEntityTooLarge, `{"message":"Request Entity Too Large"}`, MsgFileTooLarge},
		{"unsupported type", http.StatusUnsupportedMediaType, "", MsgUnsupportedFileType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL, "T1")
			_, err := client.CreateReference(context.Background(), ReferenceInput{
				CollectionID: "c1",
				Title:        "big",
				Files:        []Upload{{Name: "big.pdf", Data: []byte("data")}},
			})

			var apiErr *APIError
			if !stderrors.As(err, &apiErr) {
				t.Fatalf("Expected APIError, got %v", err)
			}
			if apiErr.Message != tt.message {
				t.Errorf("Expected message '%s', got '%s'", tt.message, apiErr.Message)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
		})
	}
}

// TestErrorNormalization tests the message extraction fallbacks
func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusBadRequest, `{"message":"title is required"}`, "title is required"},
		{"error field", http.StatusBadRequest, `{"error":"bad input"}`, "bad input"},
		{"plain text", http.StatusBadRequest, "broken", "broken"},
		{"empty body", http.StatusBadGateway, "", "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL, "T1")
			_, err := client.GetCollection(context.Background(), "c1")

			var apiErr *APIError
			if !stderrors.As(err, &apiErr) {
				t.Fatalf("Expected APIError, got %v", err)
			}
			if apiErr.Message != tt.message {
				t.Errorf("Expected message '%s', got '%s'", tt.message, apiErr.Message)
			}
		})
	}
}

// TestMultipartReplayIdentical tests that a 401 replay reuses the exact
// multipart body, boundary included.
func TestMultipartReplayIdentical(t *testing.T) {
	var bodies [][]byte
	var contentTypes []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, body)
		contentTypes = append(contentTypes, r.Header.Get("Content-Type"))
		if len(bodies) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(Reference{ID: "r1"})
	}))
	defer server.Close()

	refresher := &fakeRefresher{token: "T2"}
	client := newTestClient(server.URL, "T1")
	client.SetRefresher(refresher)

	_, err := client.CreateReference(context.Background(), ReferenceInput{
		CollectionID: "c1",
		Title:        "paper",
		Keywords:     []string{"go", "testing"},
		Files:        []Upload{{Name: "paper.pdf", Data: []byte("pdf-bytes")}},
	})
	if err != nil {
		t.Fatalf("CreateReference failed: %v", err)
	}

	if len(bodies) != 2 {
		t.Fatalf("Expected 2 requests, got %d", len(bodies))
	}
	if !bytes.Equal(bodies[0], bodies[1]) {
		t.Error("Replay body differs from the original")
	}
	if contentTypes[0] != contentTypes[1] {
		t.Errorf("Replay content type differs: '%s' vs '%s'", contentTypes[0], contentTypes[1])
	}
	if !strings.HasPrefix(contentTypes[0], "multipart/form-data; boundary=") {
		t.Errorf("Expected multipart content type, got '%s'", contentTypes[0])
	}
	if !bytes.Contains(bodies[0], []byte(Checksum([]byte("pdf-bytes")))) {
		t.Error("Expected the upload checksum in the multipart body")
	}
}

// TestIsNotFound tests 404 detection
func TestIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"collection not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "T1")
	_, err := client.GetCollection(context.Background(), "missing")

	if !IsNotFound(err) {
		t.Errorf("Expected IsNotFound to be true for %v", err)
	}
	if IsNotFound(stderrors.New("other")) {
		t.Error("Expected IsNotFound to be false for unrelated errors")
	}
}

// TestNetworkErrorWrapped tests that transport failures become coded errors
func TestNetworkErrorWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL, "T1")
	_, err := client.GetCollection(context.Background(), "c1")

	var rhErr *apperrors.RefHubError
	if !stderrors.As(err, &rhErr) || rhErr.Code != apperrors.ErrCodeAPINetwork {
		t.Errorf("Expected network error, got %v", err)
	}
}
