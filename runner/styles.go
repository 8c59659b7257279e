package runner

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Semantic colors.
var (
	colorError   = lipgloss.Color("#ef4444") // red-500
	colorWarning = lipgloss.Color("#eab308") // yellow-500
	colorInfo    = lipgloss.Color("#06b6d4") // cyan-500
	colorOK      = lipgloss.Color("#10b981") // green-500

	colorDim    = lipgloss.Color("#6b7280") // gray-500
	colorAccent = lipgloss.Color("#3b82f6") // blue-500
)

// Styles holds the lipgloss styles used by the reporter.
type Styles struct {
	// Severity badges
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	OK      lipgloss.Style

	// Text styles
	Dim   lipgloss.Style
	Bold  lipgloss.Style
	Path  lipgloss.Style
	Caret lipgloss.Style

	// Symbols
	SymbolOK     string
	SymbolFail   string
	SymbolCaret  string
	SymbolGutter string
}

// DefaultStyles returns coloured styles for terminals.
func DefaultStyles() *Styles {
	return &Styles{
		Error:   lipgloss.NewStyle().Foreground(colorError).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(colorWarning).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(colorInfo).Bold(true),
		OK:      lipgloss.NewStyle().Foreground(colorOK).Bold(true),

		Dim:   lipgloss.NewStyle().Foreground(colorDim),
		Bold:  lipgloss.NewStyle().Bold(true),
		Path:  lipgloss.NewStyle().Foreground(colorAccent),
		Caret: lipgloss.NewStyle().Foreground(colorError),

		SymbolOK:     "✓",
		SymbolFail:   "✗",
		SymbolCaret:  "^",
		SymbolGutter: "│",
	}
}

// PlainStyles returns styles that render text unchanged, for pipes and files.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()

	return &Styles{
		Error:   plain,
		Warning: plain,
		Info:    plain,
		OK:      plain,

		Dim:   plain,
		Bold:  plain,
		Path:  plain,
		Caret: plain,

		SymbolOK:     "ok",
		SymbolFail:   "FAIL",
		SymbolCaret:  "^",
		SymbolGutter: "|",
	}
}

// StylesFor picks DefaultStyles when w is a terminal and PlainStyles otherwise.
func StylesFor(w io.Writer) *Styles {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return DefaultStyles()
	}

	return PlainStyles()
}
