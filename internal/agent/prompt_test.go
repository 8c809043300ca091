package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xonecas/symbagent/internal/index"
)

func TestBuildSystemPromptAppendsIndexOutline(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	idx := index.New(dir)
	if err := idx.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	got := BuildSystemPrompt("base prompt", idx)
	if !strings.Contains(got, "base prompt") {
		t.Errorf("expected base prompt preserved, got: %q", got)
	}
	outline := idx.Outline()
	if outline == "" || !strings.Contains(got, outline) {
		t.Errorf("expected index outline %q in prompt, got: %q", outline, got)
	}
}

func TestBuildSystemPromptHandlesNilIndex(t *testing.T) {
	got := BuildSystemPrompt("base prompt", nil)
	if got != "base prompt" {
		t.Errorf("got %q, want base prompt unchanged", got)
	}
}
