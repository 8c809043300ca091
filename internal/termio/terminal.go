// Package termio provides the terminal primitives the controller and
// renderer share: raw/sane mode switching, cursor movement, cancellation
// signal wiring, and window-size queries. Grounded on
// github.com/charmbracelet/x/term (the teacher's terminal dependency,
// otherwise consumed indirectly through its bubbletea program loop) since
// this driver owns its own terminal instead of delegating to a TUI framework.
package termio

import (
	"os"

	xterm "github.com/charmbracelet/x/term"
)

// Terminal wraps the process's controlling terminal and tracks whether it
// is currently in raw mode, so Restore is always safe to call.
type Terminal struct {
	fd       int
	oldState *xterm.State
}

// New wraps stdin as the controlling terminal.
func New() *Terminal {
	return &Terminal{fd: int(os.Stdin.Fd())}
}

// IsTerminal reports whether stdin is an interactive terminal.
func (t *Terminal) IsTerminal() bool {
	return xterm.IsTerminal(t.fd)
}

// Raw puts the terminal into raw mode (no echo, no line buffering).
func (t *Terminal) Raw() error {
	state, err := xterm.MakeRaw(t.fd)
	if err != nil {
		return err
	}
	t.oldState = state
	return nil
}

// Restore returns the terminal to sane (cooked, line-buffered) mode. Safe
// to call when not currently raw.
func (t *Terminal) Restore() error {
	if t.oldState == nil {
		return nil
	}
	err := xterm.Restore(t.fd, t.oldState)
	t.oldState = nil
	return err
}

// Size returns the terminal's width and height in columns/rows.
func (t *Terminal) Size() (width, height int, err error) {
	return xterm.GetSize(t.fd)
}
