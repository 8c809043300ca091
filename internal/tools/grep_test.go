package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGrepFindsMatchingLines(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\nfunc Widget() {}\n"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.go"), []byte("package b\nfunc Gadget() {}\n"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tool := NewGrepTool(dir)
	args := []byte(`{"pattern":"Widget"}`)
	text, isError, err := tool.Handle(context.Background(), args)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if isError {
		t.Fatalf("unexpected error: %s", text)
	}
	if !strings.Contains(text, "a.go:2:") {
		t.Errorf("expected match in a.go, got: %s", text)
	}
	if strings.Contains(text, "b.go") {
		t.Errorf("unexpected match in b.go: %s", text)
	}
}

func TestGrepNoMatches(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0600)

	tool := NewGrepTool(dir)
	args := []byte(`{"pattern":"nonexistentpattern123"}`)
	text, isError, err := tool.Handle(context.Background(), args)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if isError {
		t.Fatalf("unexpected error result: %s", text)
	}
	if !strings.Contains(text, "No matches") {
		t.Errorf("expected no-matches message, got: %s", text)
	}
}
