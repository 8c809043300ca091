package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWebSearchRequiresAPIKey(t *testing.T) {
	cache := newTestCache(t)
	tool := NewWebSearchTool(cache, "", "")

	text, isError, err := tool.Handle(context.Background(), []byte(`{"query":"golang context"}`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !isError || !strings.Contains(text, "API key") {
		t.Errorf("expected api key error, got isError=%v text=%s", isError, text)
	}
}

func TestWebSearchFormatsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"title":"Go Docs","url":"https://go.dev","text":"package docs"}]}`))
	}))
	defer srv.Close()

	cache := newTestCache(t)
	tool := NewWebSearchTool(cache, "fake-key", srv.URL)

	text, isError, err := tool.Handle(context.Background(), []byte(`{"query":"golang context"}`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if isError {
		t.Fatalf("unexpected error: %s", text)
	}
	if !strings.Contains(text, "Go Docs") || !strings.Contains(text, "package docs") {
		t.Errorf("expected formatted result, got: %s", text)
	}
}
