package ui

import "github.com/charmbracelet/lipgloss"

// Default palette, overridable from the config file.
var (
	ColorGreen = lipgloss.Color("#a6e3a1")
	ColorRed   = lipgloss.Color("#f38ba8")
	ColorMuted = lipgloss.Color("#5a6278")
)

// Theme holds optional color overrides.
type Theme struct {
	Green *string
	Red   *string
	Muted *string
}

// ApplyTheme overrides the palette. Styles built afterwards use it.
func ApplyTheme(t Theme) {
	if t.Green != nil {
		ColorGreen = lipgloss.Color(*t.Green)
	}
	if t.Red != nil {
		ColorRed = lipgloss.Color(*t.Red)
	}
	if t.Muted != nil {
		ColorMuted = lipgloss.Color(*t.Muted)
	}
}

// Styles renders result words. Without color every method returns its
// input unchanged, so piped output stays byte-stable.
type Styles struct {
	ok     lipgloss.Style
	failed lipgloss.Style
	muted  lipgloss.Style
	color  bool
}

// NewStyles builds styles from the current palette.
func NewStyles(color bool) Styles {
	return Styles{
		ok:     lipgloss.NewStyle().Foreground(ColorGreen),
		failed: lipgloss.NewStyle().Foreground(ColorRed).Bold(true),
		muted:  lipgloss.NewStyle().Foreground(ColorMuted),
		color:  color,
	}
}

func (s Styles) OK(str string) string     { return s.render(s.ok, str) }
func (s Styles) Failed(str string) string { return s.render(s.failed, str) }
func (s Styles) Muted(str string) string  { return s.render(s.muted, str) }

func (s Styles) render(st lipgloss.Style, str string) string {
	if !s.color {
		return str
	}
	return st.Render(str)
}
