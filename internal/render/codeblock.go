package render

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// closeCodeBlock implements spec.md §4.5's code-block repaint: enter
// synchronized output, move up by the echoed line count, clear, repaint the
// whole block highlighted and bordered, exit synchronized output.
func (r *Renderer) closeCodeBlock() {
	f := r.popCapture()
	if f == nil {
		return
	}
	raw := strings.TrimSuffix(f.raw.String(), "\n")
	highlighted := r.highlightCode(raw, f.class)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		Width(f.width).
		Render(highlighted)

	r.syncRepaint(f.linesWritten, box+"\n")
}

// closeContainer implements the div repaint: the captured content (already
// echoed live) is wrapped in a bordered box, optionally labeled with the
// div's class.
func (r *Renderer) closeContainer(ev Event) {
	f := r.popCapture()
	if f == nil {
		return
	}
	content := strings.TrimSuffix(f.raw.String(), "\n")

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		Width(f.width)

	box := style.Render(content)
	if f.class != "" {
		label := r.styles.Muted.Render(fmt.Sprintf("[%s]", f.class))
		box = label + "\n" + box
	}
	r.syncRepaint(f.linesWritten, box+"\n")
}

// closeBlockquote prefixes each captured line with a styled bar glyph and
// repaints using the same sync-up-clear-repaint protocol (no full border).
func (r *Renderer) closeBlockquote() {
	f := r.popCapture()
	if f == nil {
		return
	}
	content := strings.TrimSuffix(f.raw.String(), "\n")
	bar := r.styles.Border.Render("│ ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = bar + line
	}
	r.syncRepaint(f.linesWritten, strings.Join(lines, "\n")+"\n")
}
