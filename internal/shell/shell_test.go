package shell

import (
	"context"
	"strings"
	"testing"
)

func TestExecStreamCapturesOutput(t *testing.T) {
	sh := New(t.TempDir(), nil)
	var stdout, stderr strings.Builder
	if err := sh.ExecStream(context.Background(), "echo hello", &stdout, &stderr); err != nil {
		t.Fatalf("ExecStream: %v", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != "hello" {
		t.Errorf("stdout = %q, want %q", got, "hello")
	}
}

func TestExecStreamPersistsCwdAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	sh := New(dir, nil)
	var out strings.Builder
	if err := sh.ExecStream(context.Background(), "mkdir sub && cd sub", &out, &out); err != nil {
		t.Fatalf("ExecStream: %v", err)
	}
	out.Reset()
	if err := sh.ExecStream(context.Background(), "pwd", &out, &out); err != nil {
		t.Fatalf("ExecStream: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out.String()), "sub") {
		t.Errorf("pwd = %q, want cwd to have persisted into sub/", out.String())
	}
}

func TestExecStreamClampsCdOutsideRoot(t *testing.T) {
	sh := New(t.TempDir(), nil)
	var out strings.Builder
	if err := sh.ExecStream(context.Background(), "cd /", &out, &out); err != nil {
		t.Fatalf("ExecStream: %v", err)
	}
	if !strings.Contains(out.String(), "cd rejected") {
		t.Errorf("out = %q, want a cd-rejected warning", out.String())
	}
	if sh.Dir() != sh.root {
		t.Errorf("Dir() = %q, want clamped back to root %q", sh.Dir(), sh.root)
	}
}

func TestExecStreamBlocksBannedCommand(t *testing.T) {
	sh := New(t.TempDir(), DefaultBlockFuncs())
	var out strings.Builder
	err := sh.ExecStream(context.Background(), "curl http://example.com", &out, &out)
	if err == nil {
		t.Fatal("expected ExecStream to fail for a blocked command")
	}
}

func TestExecStreamTruncatesRunawayOutput(t *testing.T) {
	sh := New(t.TempDir(), nil)
	var stdout, stderr strings.Builder
	// yes(1) produces far more than maxOutputBytes before head(1) stops it;
	// the limiting writer should cap what reaches stdout regardless.
	cmd := "yes | head -c 200000"
	if err := sh.ExecStream(context.Background(), cmd, &stdout, &stderr); err != nil {
		t.Fatalf("ExecStream: %v", err)
	}
	if stdout.Len() > maxOutputBytes+len("\n[output truncated]\n") {
		t.Errorf("stdout len = %d, want capped near %d", stdout.Len(), maxOutputBytes)
	}
	if !strings.Contains(stdout.String(), "[output truncated]") {
		t.Errorf("stdout = %q, want a truncation notice", firstAndLast(stdout.String()))
	}
}

func TestExecReturnsBufferedOutput(t *testing.T) {
	sh := New(t.TempDir(), nil)
	stdout, _, err := sh.Exec(context.Background(), "echo buffered")
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if got := strings.TrimSpace(stdout); got != "buffered" {
		t.Errorf("stdout = %q, want %q", got, "buffered")
	}
}

func firstAndLast(s string) string {
	if len(s) < 120 {
		return s
	}
	return s[:60] + "..." + s[len(s)-60:]
}
