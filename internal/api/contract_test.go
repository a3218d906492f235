package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestLoadContract tests that the embedded contract parses and validates
func TestLoadContract(t *testing.T) {
	doc, err := LoadContract()
	if err != nil {
		t.Fatalf("LoadContract failed: %v", err)
	}
	if doc.Info == nil || doc.Info.Title == "" {
		t.Error("Expected the contract to carry an info title")
	}
}

// TestCheckContract tests that every client call path is declared
func TestCheckContract(t *testing.T) {
	if err := CheckContract(); err != nil {
		t.Fatalf("CheckContract failed: %v", err)
	}
}

// TestCallPathsDeclared cross-checks each call path individually so a
// missing path names itself in the failure.
func TestCallPathsDeclared(t *testing.T) {
	doc, err := LoadContract()
	if err != nil {
		t.Fatalf("LoadContract failed: %v", err)
	}

	for _, path := range CallPaths() {
		if doc.Paths.Find(path) == nil {
			t.Errorf("Path '%s' is called but not declared in the contract", path)
		}
	}
}

// TestPing tests reachability semantics
func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "")
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Any HTTP response should count as reachable, got %v", err)
	}

	server.Close()
	if err := client.Ping(context.Background()); err == nil {
		t.Error("Expected a transport failure after the server closed")
	}
}
