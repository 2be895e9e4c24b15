// Package pretty renders lineml output for terminals with lipgloss.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/yaklabco/lineml/pkg/flatxml"
)

// ANSI colours used across the palette.
const (
	colorGrey    = "8"
	colorRed     = "9"
	colorGreen   = "10"
	colorYellow  = "11"
	colorBlue    = "12"
	colorMagenta = "13"
	colorCyan    = "14"
	colorWhite   = "7"
)

// Styles is the palette shared by the reporters and the help output.
type Styles struct {
	Error, Warning, Info lipgloss.Style

	// Parts of a reported line.
	FilePath, Location, Tag, Text, Capture, Cursor lipgloss.Style

	// One style per flatxml.Kind; see KindStyle.
	KindText, KindOpen, KindClose, KindSelfClosed lipgloss.Style

	SummaryTitle, SummaryValue, Success, Failure lipgloss.Style

	TableHeader, TableErrorRow, TableWarnRow, TableLegend, TableSeparator lipgloss.Style

	Dim, Bold lipgloss.Style
}

// NewStyles returns the palette. With colour disabled every style renders
// its text unchanged.
func NewStyles(colorEnabled bool) *Styles {
	fg := func(color string) lipgloss.Style {
		if !colorEnabled {
			return lipgloss.NewStyle()
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	bold := func(style lipgloss.Style) lipgloss.Style {
		if !colorEnabled {
			return style
		}
		return style.Bold(true)
	}
	plain := lipgloss.NewStyle()

	dim := fg(colorGrey)
	legend := dim
	if colorEnabled {
		legend = legend.Italic(true)
	}

	return &Styles{
		Error:   bold(fg(colorRed)),
		Warning: bold(fg(colorYellow)),
		Info:    bold(fg(colorBlue)),

		FilePath: bold(plain),
		Location: dim,
		Tag:      fg(colorCyan),
		Text:     fg(colorWhite),
		Capture:  fg(colorGreen),
		Cursor:   fg(colorMagenta),

		KindText:       dim,
		KindOpen:       fg(colorBlue),
		KindClose:      fg(colorMagenta),
		KindSelfClosed: fg(colorCyan),

		SummaryTitle: bold(plain),
		SummaryValue: plain,
		Success:      bold(fg(colorGreen)),
		Failure:      bold(fg(colorRed)),

		TableHeader:    bold(fg(colorWhite)),
		TableErrorRow:  fg(colorRed),
		TableWarnRow:   fg(colorYellow),
		TableLegend:    legend,
		TableSeparator: dim,

		Dim:  dim,
		Bold: bold(plain),
	}
}

// KindStyle returns the style for a line kind.
func (s *Styles) KindStyle(kind flatxml.Kind) lipgloss.Style {
	switch kind {
	case flatxml.Open:
		return s.KindOpen
	case flatxml.Close:
		return s.KindClose
	case flatxml.SelfClosed:
		return s.KindSelfClosed
	}
	return s.KindText
}

// IsColorEnabled decides colour for mode ("auto", "always" or "never").
// Auto colours a terminal unless NO_COLOR is set; any other mode is auto.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := writer.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
