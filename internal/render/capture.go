package render

import "strings"

// captureFrame buffers one nested block (code block, div, or blockquote)
// while its content streams in, so block_end can repaint it wrapped in
// chrome. Raw content is echoed to the terminal as it arrives (for visual
// feedback) and also retained here for the repaint.
type captureFrame struct {
	kind  string // TagCodeBlock, TagDiv, or TagBlockquote
	class string // div class / code block language

	raw          strings.Builder
	linesWritten int
	width        int // available display width inside this frame
}

func (f *captureFrame) append(s string) {
	f.raw.WriteString(s)
	f.linesWritten += strings.Count(s, "\n")
}

// divWidthReduction is how much a nested div or blockquote shrinks the
// available rendering width, per spec.md §4.5 ("width shrinks by 2+padding").
const divWidthReduction = 4
