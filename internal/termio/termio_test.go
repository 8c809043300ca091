package termio

import "testing"

func TestCursorUpZeroOrNegativeIsEmpty(t *testing.T) {
	if CursorUp(0) != "" {
		t.Errorf("expected empty sequence for n=0")
	}
	if CursorUp(-1) != "" {
		t.Errorf("expected empty sequence for n<0")
	}
	if CursorUp(3) != "\x1b[3A" {
		t.Errorf("unexpected sequence: %q", CursorUp(3))
	}
}

func TestCancelHandlerFlagDefaultsFalse(t *testing.T) {
	h := Install()
	defer h.Remove()
	if h.IsCancelled() {
		t.Errorf("expected not cancelled before any signal")
	}
}

func TestCancelHandlerRemoveResetsFlag(t *testing.T) {
	h := Install()
	h.flag.Store(true)
	h.Remove()
	if h.IsCancelled() {
		t.Errorf("expected Remove to clear the cancel flag")
	}
}
