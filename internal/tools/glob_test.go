package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSearchFindsMatchingPaths(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "widget.go"), []byte("package a\n"), 0600)
	os.WriteFile(filepath.Join(dir, "gadget.go"), []byte("package b\n"), 0600)

	tool := NewFileSearchTool(dir)
	args := []byte(`{"pattern":"widget"}`)
	text, isError, err := tool.Handle(context.Background(), args)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if isError {
		t.Fatalf("unexpected error: %s", text)
	}
	if !strings.Contains(text, "widget.go") {
		t.Errorf("expected widget.go in results, got: %s", text)
	}
	if strings.Contains(text, "gadget.go") {
		t.Errorf("unexpected gadget.go in results: %s", text)
	}
}
