package render

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/xonecas/symbagent/internal/highlight"
)

const (
	syncBegin = "\x1b[?2026h"
	syncEnd   = "\x1b[?2026l"

	defaultWidth = 80
	tabWidth     = 4
)

// Renderer consumes a stream of parser events and writes styled bytes to
// an output sink, per spec.md §4.5. One Renderer is owned by a single turn.
type Renderer struct {
	out         io.Writer
	width       int
	styles      Styles
	syntaxTheme string

	inlineStack []string // tag names, innermost last
	captures    []*captureFrame

	headingBuf    strings.Builder
	headingActive bool

	table *tableState
	lists []*listState

	hadOutput    bool
	checkpointed bool
}

// New creates a Renderer writing to out at the given terminal width.
func New(out io.Writer, width int, syntaxTheme string) *Renderer {
	if width <= 0 {
		width = defaultWidth
	}
	if syntaxTheme == "" {
		syntaxTheme = highlight.DefaultTheme
	}
	return &Renderer{
		out:          out,
		width:        width,
		styles:       DefaultStyles(),
		syntaxTheme:  syntaxTheme,
		checkpointed: true,
	}
}

// Handle processes one event from the parser stream.
func (r *Renderer) Handle(ev Event) {
	switch ev.Type {
	case BlockStart:
		r.blockStart(ev)
	case BlockEnd:
		r.blockEnd(ev)
	case InlineStart:
		r.inlineStack = append(r.inlineStack, ev.Tag)
	case InlineEnd:
		if n := len(r.inlineStack); n > 0 {
			r.inlineStack = r.inlineStack[:n-1]
		}
	case Text:
		r.text(ev.Text)
	case SoftBreak:
		r.text("\n")
	}
}

// currentWidth is the display width available to content at the current
// nesting depth (each div/blockquote frame shrinks it further).
func (r *Renderer) currentWidth() int {
	w := r.width
	for _, f := range r.captures {
		if f.kind == TagDiv || f.kind == TagBlockquote {
			w -= divWidthReduction
		}
	}
	if w < 10 {
		w = 10
	}
	return w
}

// inlineStyle composes the active inline stack into one lipgloss style.
func (r *Renderer) inlineStyle() lipgloss.Style {
	style := r.styles.Text
	for _, tag := range r.inlineStack {
		switch tag {
		case TagBold:
			style = style.Bold(true)
		case TagItalic:
			style = style.Italic(true)
		case TagStrike:
			style = style.Strikethrough(true)
		case TagCode:
			style = style.Foreground(ColorHighlight)
		case TagLinkTitle, TagImageAlt:
			style = style.Foreground(ColorHighlight).Underline(true)
		}
	}
	return style
}

// text handles a text event: buffered inside headings/tables/lists/captures,
// emitted immediately otherwise.
func (r *Renderer) text(s string) {
	if s == "" {
		return
	}
	s = expandTabs(s)

	if r.headingActive {
		r.headingBuf.WriteString(s)
		return
	}
	if r.table != nil {
		r.table.appendText(s)
		return
	}
	if n := len(r.captures); n > 0 {
		top := r.captures[n-1]
		if top.kind == TagCodeBlock {
			top.append(s)
			r.write(s) // raw echo, no inline styling inside code
			return
		}
		styled := r.inlineStyle().Render(s)
		top.append(styled)
		r.write(styled)
		return
	}

	styled := r.inlineStyle().Render(s)
	r.write(styled)
}

// write emits bytes to the terminal and marks the turn as having produced output.
func (r *Renderer) write(s string) {
	if s == "" {
		return
	}
	io.WriteString(r.out, s)
	r.hadOutput = true
	r.checkpointed = false
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func (r *Renderer) blockStart(ev Event) {
	switch ev.Tag {
	case TagHeading:
		r.headingActive = true
		r.headingBuf.Reset()
	case TagCodeBlock:
		f := &captureFrame{kind: TagCodeBlock, class: ev.Attrs["lang"], width: r.currentWidth()}
		r.captures = append(r.captures, f)
	case TagDiv:
		f := &captureFrame{kind: TagDiv, class: ev.Attrs["class"], width: r.currentWidth() - divWidthReduction}
		r.captures = append(r.captures, f)
	case TagBlockquote:
		f := &captureFrame{kind: TagBlockquote, width: r.currentWidth() - divWidthReduction}
		r.captures = append(r.captures, f)
	case TagTable:
		r.table = newTableState()
	case TagTableRow:
		if r.table != nil {
			r.table.startRow()
		}
	case TagTableCell, TagTableHeadCell:
		if r.table != nil {
			r.table.startCell(ev.Tag == TagTableHeadCell)
		}
	case TagList:
		r.lists = append(r.lists, newListState(ev.Attrs))
	case TagListItem:
		if n := len(r.lists); n > 0 {
			r.write(r.lists[n-1].marker(r.styles))
		}
	case TagThematicBreak:
		r.write(r.styles.Border.Render(strings.Repeat("─", r.currentWidth())) + "\n")
	}
}

func (r *Renderer) blockEnd(ev Event) {
	switch ev.Tag {
	case TagHeading:
		r.headingActive = false
		r.write(r.styles.Bold.Render(r.headingBuf.String()) + "\n")
	case TagCodeBlock:
		r.closeCodeBlock()
	case TagDiv:
		r.closeContainer(ev)
	case TagBlockquote:
		r.closeBlockquote()
	case TagTable:
		r.closeTable()
	case TagTableCell, TagTableHeadCell:
		if r.table != nil {
			r.table.endCell()
		}
	case TagList:
		if n := len(r.lists); n > 0 {
			r.lists = r.lists[:n-1]
		}
	case TagListItem:
		if n := len(r.lists); n > 0 {
			r.lists[n-1].advance()
		}
	}
}

// popCapture removes and returns the innermost capture frame.
func (r *Renderer) popCapture() *captureFrame {
	n := len(r.captures)
	if n == 0 {
		return nil
	}
	f := r.captures[n-1]
	r.captures = r.captures[:n-1]
	return f
}

// syncRepaint moves the cursor up by linesUp, clears to end of screen, and
// writes content, bracketed by synchronized-output escapes.
func (r *Renderer) syncRepaint(linesUp int, content string) {
	var b strings.Builder
	b.WriteString(syncBegin)
	if linesUp > 0 {
		fmt.Fprintf(&b, "\x1b[%dA", linesUp)
	}
	b.WriteString("\r\x1b[0J")
	b.WriteString(content)
	b.WriteString(syncEnd)
	r.write(b.String())
}

// Checkpoint marks a boundary at which non-rendered output (prompts, info
// lines) may be printed, and resets HadOutput. It writes nothing: an open
// heading or table stays buffered, and open code blocks, divs and
// blockquotes stay open until their closing events or Finalize.
func (r *Renderer) Checkpoint() {
	r.checkpointed = true
	r.hadOutput = false
}

// HadOutput reports whether any styled text has been emitted since the
// last Checkpoint.
func (r *Renderer) HadOutput() bool {
	return r.hadOutput
}

// Finalize closes any still-open captures/headings/tables at end of turn.
func (r *Renderer) Finalize() {
	for len(r.captures) > 0 {
		f := r.captures[len(r.captures)-1]
		switch f.kind {
		case TagCodeBlock:
			r.closeCodeBlock()
		case TagDiv:
			r.closeContainer(Event{Tag: TagDiv})
		case TagBlockquote:
			r.closeBlockquote()
		default:
			r.popCapture()
		}
	}
	if r.headingActive {
		r.headingActive = false
		r.write(r.styles.Bold.Render(r.headingBuf.String()) + "\n")
	}
	if r.table != nil {
		r.closeTable()
	}
	r.hadOutput = false
	r.checkpointed = true
}

// highlightCode renders source through Chroma for the given language.
func (r *Renderer) highlightCode(source, lang string) string {
	if lang == "" {
		return source
	}
	bg := highlight.ThemeBg(r.syntaxTheme)
	return highlight.Highlight(source, lang, r.syntaxTheme, bg)
}
