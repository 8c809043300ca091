package termio

import (
	"fmt"
	"io"
)

// Cursor visibility and synchronized-output escape sequences.
const (
	HideCursor = "\x1b[?25l"
	ShowCursor = "\x1b[?25h"

	SyncBegin = "\x1b[?2026h"
	SyncEnd   = "\x1b[?2026l"
)

// CursorUp returns the escape sequence to move the cursor up n lines.
func CursorUp(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("\x1b[%dA", n)
}

// CursorDown returns the escape sequence to move the cursor down n lines.
func CursorDown(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("\x1b[%dB", n)
}

// ClearToEnd returns the escape sequence that clears from the cursor to
// the end of the screen.
const ClearToEnd = "\x1b[0J"

// CarriageReturn moves the cursor to column 0 without advancing a line.
const CarriageReturn = "\r"

// WriteHidden wraps w so cursor movement during fn happens with the
// cursor hidden, restoring visibility afterward regardless of error.
func WriteHidden(w io.Writer, fn func()) {
	io.WriteString(w, HideCursor)
	defer io.WriteString(w, ShowCursor)
	fn()
}
