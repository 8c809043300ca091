package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestStreamRetriesOn500ThenSucceeds(t *testing.T) {
	var attempts int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, "server error")
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	// Shrink retry delays for the test.
	old := retryDelays
	retryDelays = []time.Duration{10 * time.Millisecond, 10 * time.Millisecond}
	defer func() { retryDelays = old }()

	client := NewHTTPClient(srv.URL, "test-key", 5*time.Second)
	defer client.Close()

	var retryCount int
	resp, err := client.Stream(context.Background(), "test-model",
		[]Message{{Role: RoleUser, Content: "hello"}},
		Sampler{},
		Callbacks{Retry: func(attempt, status int) { retryCount++ }},
		Opts{},
	)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if resp.Text != "hi" {
		t.Errorf("text = %q, want %q", resp.Text, "hi")
	}
	if retryCount != 1 {
		t.Errorf("retryCount = %d, want 1", retryCount)
	}
}

func TestCompleteDecodesUnaryResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"done"},"finish_reason":"stop"}],"usage":{"prompt_tokens":4,"completion_tokens":2,"total_tokens":6}}`)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "", 5*time.Second)
	defer client.Close()

	resp, err := client.Complete(context.Background(), "test-model", []Message{{Role: RoleUser, Content: "hi"}}, Sampler{}, Opts{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "done" || resp.Ctx != 6 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestCompleteRejectsDanglingToolCall(t *testing.T) {
	client := NewHTTPClient("http://unused", "", time.Second)
	_, err := client.Complete(context.Background(), "m", []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "c1"}}},
	}, Sampler{}, Opts{})
	if err == nil {
		t.Fatal("expected sequence validation error")
	}
}
