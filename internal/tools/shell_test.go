package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/xonecas/symbagent/internal/shell"
)

func TestShellRunsCommandAndCapturesOutput(t *testing.T) {
	dir := t.TempDir()
	sh := shell.New(dir, nil)
	tool := NewShellTool(sh)

	args := []byte(`{"command":"echo hello","description":"print hello"}`)
	text, isError, err := tool.Handle(context.Background(), args)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if isError {
		t.Fatalf("unexpected error result: %s", text)
	}
	if !strings.Contains(text, "hello") {
		t.Errorf("expected output to contain hello, got: %s", text)
	}
}

func TestShellReportsNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	sh := shell.New(dir, nil)
	tool := NewShellTool(sh)

	args := []byte(`{"command":"exit 3","description":"fail"}`)
	text, isError, err := tool.Handle(context.Background(), args)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !isError {
		t.Fatalf("expected error result for nonzero exit, got: %s", text)
	}
	if !strings.Contains(text, "exit code: 3") {
		t.Errorf("expected exit code in output, got: %s", text)
	}
}
