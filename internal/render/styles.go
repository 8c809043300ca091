package render

import "charm.land/lipgloss/v2"

// Color palette, grounded on the teacher's tui/styles.go "suit and tie"
// grayscale-with-accent palette, carried over to lipgloss/v2.
var (
	ColorHighlight = lipgloss.Color("#00E5CC")
	ColorFg        = lipgloss.Color("#c8c8c8")
	ColorMuted     = lipgloss.Color("#6e6e6e")
	ColorDim       = lipgloss.Color("#3f3f3f")
	ColorBorder    = lipgloss.Color("#1c1c1c")
	ColorError     = lipgloss.Color("#932e2e")
)

// Styles holds the pre-built lipgloss styles the renderer composes inline
// spans and block chrome from. Constructed once per Renderer.
type Styles struct {
	Text      lipgloss.Style
	Bold      lipgloss.Style
	Italic    lipgloss.Style
	Code      lipgloss.Style
	Strike    lipgloss.Style
	Link      lipgloss.Style
	Muted     lipgloss.Style
	Border    lipgloss.Style
	ListGlyph lipgloss.Style
}

// DefaultStyles builds the renderer's complete style set.
func DefaultStyles() Styles {
	base := lipgloss.NewStyle().Foreground(ColorFg)
	return Styles{
		Text:      base,
		Bold:      base.Bold(true),
		Italic:    base.Italic(true),
		Code:      base.Foreground(ColorHighlight),
		Strike:    base.Strikethrough(true),
		Link:      base.Foreground(ColorHighlight).Underline(true),
		Muted:     base.Foreground(ColorMuted),
		Border:    lipgloss.NewStyle().Foreground(ColorBorder),
		ListGlyph: lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// styleForTag returns the style associated with an inline tag.
func (s Styles) styleForTag(tag string) lipgloss.Style {
	switch tag {
	case TagBold:
		return s.Bold
	case TagItalic:
		return s.Italic
	case TagCode:
		return s.Code
	case TagStrike:
		return s.Strike
	case TagLinkTitle, TagImageAlt:
		return s.Link
	default:
		return s.Text
	}
}
