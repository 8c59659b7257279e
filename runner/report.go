package runner

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"

	"github.com/charmbracelet/lipgloss"

	"github.com/silex-lang/silex"
	"github.com/silex-lang/silex/analysis"
)

// Reporter renders analysis results as text.
type Reporter struct {
	w       io.Writer
	styles  *Styles
	tabSize int
}

// NewReporter creates a reporter. Tabs in quoted source lines expand to tabSize columns.
func NewReporter(w io.Writer, styles *Styles, tabSize int) *Reporter {
	if styles == nil {
		styles = PlainStyles()
	}

	if tabSize < 1 {
		tabSize = silex.DefaultTabSize
	}

	return &Reporter{w: w, styles: styles, tabSize: tabSize}
}

// Diagnostics writes every diagnostic of res with the offending source line underlined.
func (r *Reporter) Diagnostics(res *FileResult) {
	lines := bytes.Split(res.Source, []byte("\n"))

	for _, d := range res.Diagnostics {
		_, _ = fmt.Fprintf(r.w, "%s:%d:%d: %s %s %s\n",
			r.styles.Path.Render(res.Path),
			d.Span.Start.Line, d.Span.Start.Column,
			r.severity(d.Severity),
			d.Message,
			r.styles.Dim.Render("["+d.Code+"]"),
		)

		idx := d.Span.Start.Line - 1
		if idx < 0 || idx >= len(lines) {
			continue
		}

		endCol := d.Span.End.Column
		if d.Span.End.Line != d.Span.Start.Line {
			endCol = d.Span.Start.Column
		}

		text, caretStart, caretLen := expandLine(string(lines[idx]), r.tabSize, d.Span.Start.Column, endCol)
		gutter := r.styles.Dim.Render(r.styles.SymbolGutter)

		_, _ = fmt.Fprintf(r.w, "  %s %s\n", gutter, text)
		_, _ = fmt.Fprintf(r.w, "  %s %s%s\n", gutter,
			strings.Repeat(" ", caretStart),
			r.styles.Caret.Render(strings.Repeat(r.styles.SymbolCaret, max(1, caretLen))),
		)
	}
}

// Tokens writes one line per token: position, category and text.
func (r *Reporter) Tokens(res *FileResult, tokens []analysis.SemanticToken) {
	_, _ = fmt.Fprintln(r.w, r.styles.Bold.Render(res.Path))

	for _, tok := range tokens {
		_, _ = fmt.Fprintf(r.w, "  %s %-12s %s\n",
			r.styles.Dim.Render(fmt.Sprintf("%4d:%-3d", tok.Line+1, tok.StartChar+1)),
			tok.Category,
			tok.Text,
		)
	}
}

// Summary writes the closing line of a check run.
func (r *Reporter) Summary(s Summary) {
	if s.Errors == 0 {
		_, _ = fmt.Fprintf(r.w, "%s %d %s checked, %d %s\n",
			r.styles.OK.Render(r.styles.SymbolOK),
			s.Files, pluralize(s.Files, "file"),
			s.Warnings, pluralize(s.Warnings, "warning"),
		)

		return
	}

	_, _ = fmt.Fprintf(r.w, "%s %d %s, %d %s in %d %s\n",
		r.styles.Error.Render(r.styles.SymbolFail),
		s.Errors, pluralize(s.Errors, "error"),
		s.Warnings, pluralize(s.Warnings, "warning"),
		s.Files, pluralize(s.Files, "file"),
	)
}

func (r *Reporter) severity(sev analysis.DiagnosticSeverity) string {
	switch sev {
	case analysis.SeverityError:
		return r.styles.Error.Render(sev.String() + ":")
	case analysis.SeverityWarning:
		return r.styles.Warning.Render(sev.String() + ":")
	default:
		return r.styles.Info.Render(sev.String() + ":")
	}
}

// expandLine expands tabs in line and maps the 1-based UTF-16 columns
// startCol..endCol (inclusive) to a display offset and width.
func expandLine(line string, tabSize, startCol, endCol int) (string, int, int) {
	var b strings.Builder

	line = strings.TrimRight(line, "\r")
	col, width := 1, 0
	caretStart, caretEnd := -1, -1

	for _, ch := range line {
		if col == startCol {
			caretStart = width
		}

		w := lipgloss.Width(string(ch))
		if ch == '\t' {
			w = tabSize - width%tabSize
			b.WriteString(strings.Repeat(" ", w))
		} else {
			b.WriteRune(ch)
		}

		width += w

		if col+max(1, utf16.RuneLen(ch))-1 >= endCol && caretEnd < 0 && caretStart >= 0 {
			caretEnd = width
		}

		col += max(1, utf16.RuneLen(ch))
	}

	if caretStart < 0 {
		caretStart = width
	}

	if caretEnd < 0 {
		caretEnd = max(width, caretStart+1)
	}

	return b.String(), caretStart, caretEnd - caretStart
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}

	return word + "s"
}
