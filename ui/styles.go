package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles are plain render funcs so views can be tested without a terminal.
type Styles struct {
	Header           func(string) string
	Normal           func(string) string
	Selected         func(string) string
	Disabled         func(string) string
	DisabledSelected func(string) string
	Secondary        func(string) string
	Branch           func(string) string
	OK               func(string) string
	Warn             func(string) string
	Error            func(string) string
}

const accent = lipgloss.Color("#7D56F4")

var (
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	normalStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("251"))
	selectedStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	disabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	secondaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	branchStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// NewStyles returns colored styles, or identity funcs when color is false.
func NewStyles(color bool) Styles {
	if !color {
		return PlainStyles()
	}
	render := func(s lipgloss.Style) func(string) string {
		return func(v string) string { return s.Render(v) }
	}
	return Styles{
		Header:           render(headerStyle),
		Normal:           render(normalStyle),
		Selected:         render(selectedStyle),
		Disabled:         render(disabledStyle),
		DisabledSelected: render(selectedStyle),
		Secondary:        render(secondaryStyle),
		Branch:           render(branchStyle),
		OK:               render(okStyle),
		Warn:             render(warnStyle),
		Error:            render(errorStyle),
	}
}

func PlainStyles() Styles {
	id := func(s string) string { return s }
	return Styles{
		Header: id, Normal: id, Selected: id, Disabled: id, DisabledSelected: id,
		Secondary: id, Branch: id, OK: id, Warn: id, Error: id,
	}
}

// ConfigureColor pins lipgloss to Ascii when color is off, so even direct
// lipgloss renders (the picker, huh forms) stay plain.
func ConfigureColor(enabled bool) {
	if !enabled {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// ColorEnabled reports whether output should be colored: not disabled by
// flag or NO_COLOR, and the terminal supports at least ANSI.
func ColorEnabled(noColorFlag bool) bool {
	if noColorFlag || termenv.EnvNoColor() {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}

// PadOrTrim fits s into width display cells.
func PadOrTrim(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := lipgloss.Width(s)
	if w == width {
		return s
	}
	if w < width {
		return s + strings.Repeat(" ", width-w)
	}
	if width == 1 {
		return "…"
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	out := string(runes) + "…"
	if pad := width - lipgloss.Width(out); pad > 0 {
		out += strings.Repeat(" ", pad)
	}
	return out
}
