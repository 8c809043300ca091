package render

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
)

const listIndentStep = 2

// listState tracks one nesting level of list rendering state: marker
// style, ordered-list counter, and indent depth.
type listState struct {
	ordered bool
	task    bool
	start   int
	count   int // items emitted so far at this level
	depth   int
}

func newListState(attrs map[string]string) *listState {
	ls := &listState{start: 1}
	if attrs == nil {
		return ls
	}
	if v, ok := attrs["ordered"]; ok && v == "true" {
		ls.ordered = true
	}
	if v, ok := attrs["task"]; ok && v == "true" {
		ls.task = true
	}
	if v, ok := attrs["start"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			ls.start = n
		}
	}
	if v, ok := attrs["depth"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			ls.depth = n
		}
	}
	return ls
}

// unorderedGlyph is the configured bullet glyph for unordered list items.
const unorderedGlyph = "•"

// marker renders this item's leading marker: a bullet, "N. ", or a
// checkbox, per spec.md §4.5's list rules. Ordered markers format
// `list.start + item_count - 1`.
func (l *listState) marker(styles Styles) string {
	indent := strings.Repeat(" ", l.depth*listIndentStep)
	var glyph string
	switch {
	case l.task:
		glyph = "[ ] "
	case l.ordered:
		glyph = fmt.Sprintf("%d. ", l.start+l.count)
	default:
		glyph = unorderedGlyph + " "
	}
	return indent + lipgloss.NewStyle().Foreground(ColorMuted).Render(glyph)
}

// advance moves to the next item's ordinal.
func (l *listState) advance() {
	l.count++
}
