package render

import (
	"fmt"
	"math"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

// TextSizeConfig is a fractional scale n/d carried on a styled fragment's
// `ts` attribute (spec.md §4.5's text-sizing pathway). D defaults to 1
// (an integer scale) when unset.
type TextSizeConfig struct {
	N, D int
}

// Integer reports whether this is a whole-number scale (d == 1), which
// skips chunking entirely.
func (c TextSizeConfig) Integer() bool { return c.D <= 1 }

// wrapOSC66 wraps already-styled text in an OSC 66 text-sizing sequence
// with the given per-chunk cell width.
func wrapOSC66(styled string, cellWidth int) string {
	return fmt.Sprintf("\x1b]66;w=%d;%s\x1b\\", cellWidth, styled)
}

// RenderTextSized renders text under a text-sizing configuration. Integer
// scales emit a single OSC 66 sequence per style run. Fractional scales
// chunk the input at style boundaries and at a width boundary derived from
// floor(availableWidth·d/n) display columns per chunk, emitting one OSC 66
// per chunk with a per-chunk cell width of ceil(chunkWidth·n/d) capped at 7.
func RenderTextSized(text string, style lipgloss.Style, cfg TextSizeConfig, availableWidth int) string {
	if cfg.Integer() {
		return wrapOSC66(style.Render(text), cfg.N)
	}

	chunkCols := (availableWidth * cfg.D) / cfg.N
	if chunkCols <= 0 {
		chunkCols = 1
	}

	var b strings.Builder
	remaining := []rune(text)
	for len(remaining) > 0 {
		chunk, rest := splitByDisplayWidth(remaining, chunkCols)
		chunkStr := string(chunk)
		chunkWidth := runewidth.StringWidth(chunkStr)
		cellWidth := int(math.Ceil(float64(chunkWidth*cfg.N) / float64(cfg.D)))
		if cellWidth > 7 {
			cellWidth = 7
		}
		b.WriteString(wrapOSC66(style.Render(chunkStr), cellWidth))
		remaining = rest
	}
	return b.String()
}

// splitByDisplayWidth splits runes at the first boundary where accumulated
// display width would exceed maxWidth, always consuming at least one rune
// so a single over-wide rune can't stall the loop.
func splitByDisplayWidth(runes []rune, maxWidth int) (chunk, rest []rune) {
	width := 0
	for i, r := range runes {
		rw := runewidth.RuneWidth(r)
		if i > 0 && width+rw > maxWidth {
			return runes[:i], runes[i:]
		}
		width += rw
	}
	return runes, nil
}
