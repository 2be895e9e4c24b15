package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/yaklabco/lineml/pkg/runner"
)

// Table formatting constants.
const (
	tablePadding     = 2
	minFlexWidth     = 12
	ellipsis         = "..."
	heavySeparator   = "="
	lightSeparator   = "-"
	defaultTermWidth = 100
)

// Align controls how a column pads its cells.
type Align int

const (
	// AlignLeft pads on the right.
	AlignLeft Align = iota
	// AlignRight pads on the left, for numbers.
	AlignRight
)

// Column describes one table column.
type Column struct {
	Title string
	Align Align

	// Flex columns give up width when the table is wider than the terminal.
	Flex bool

	// Path columns are truncated from the left so the file name survives.
	Path bool
}

// RowStatus selects a row's color.
type RowStatus int

const (
	// RowPlain is an unremarkable row.
	RowPlain RowStatus = iota
	// RowWarn marks rows that need attention, such as pending changes.
	RowWarn
	// RowError marks failed or malformed rows.
	RowError
)

// TableRow represents a single row in a table.
type TableRow struct {
	Cells  []string
	Status RowStatus
}

// TableFormatter formats rows as a styled table.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
	}
}

// FormatTable formats groups of rows under a shared header. Groups are
// divided by a light separator.
func (t *TableFormatter) FormatTable(columns []Column, groups [][]TableRow) string {
	if len(columns) == 0 || len(groups) == 0 {
		return ""
	}

	widths := t.columnWidths(columns, groups)

	var builder strings.Builder

	titles := make([]string, len(columns))
	for i, col := range columns {
		titles[i] = col.Title
	}
	builder.WriteString(t.styles.TableHeader.Render(t.formatCells(columns, widths, titles)))
	builder.WriteString("\n")
	builder.WriteString(t.separator(widths, heavySeparator))
	builder.WriteString("\n")

	for i, group := range groups {
		if i > 0 {
			builder.WriteString(t.separator(widths, lightSeparator))
			builder.WriteString("\n")
		}
		for _, row := range group {
			builder.WriteString(t.rowStyle(row.Status).Render(t.formatCells(columns, widths, row.Cells)))
			builder.WriteString("\n")
		}
	}

	builder.WriteString(t.separator(widths, heavySeparator))
	builder.WriteString("\n")

	return builder.String()
}

// columnWidths sizes each column to its widest cell, then shrinks flex
// columns until the table fits the terminal.
func (t *TableFormatter) columnWidths(columns []Column, groups [][]TableRow) []int {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = ansi.PrintableRuneWidth(col.Title)
	}
	for _, group := range groups {
		for _, row := range group {
			for i := range min(len(row.Cells), len(columns)) {
				widths[i] = max(widths[i], ansi.PrintableRuneWidth(row.Cells[i]))
			}
		}
	}

	excess := totalWidth(widths) - t.termWidth
	for i := len(columns) - 1; i >= 0 && excess > 0; i-- {
		if !columns[i].Flex || widths[i] <= minFlexWidth {
			continue
		}
		cut := min(excess, widths[i]-minFlexWidth)
		widths[i] -= cut
		excess -= cut
	}

	return widths
}

// totalWidth is the printed width of a line: a leading space, the
// columns, and the padding between them.
func totalWidth(widths []int) int {
	total := 1 + tablePadding*max(len(widths)-1, 0)
	for _, w := range widths {
		total += w
	}
	return total
}

// formatCells lays out one line. Cells are padded before any styling so
// that escape sequences do not disturb the alignment.
func (t *TableFormatter) formatCells(columns []Column, widths []int, cells []string) string {
	var builder strings.Builder
	builder.WriteString(" ")
	for i, col := range columns {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		if col.Path {
			cell = truncateFilePath(cell, widths[i])
		} else {
			cell = truncateString(cell, widths[i])
		}

		pad := strings.Repeat(" ", max(0, widths[i]-ansi.PrintableRuneWidth(cell)))
		if col.Align == AlignRight {
			builder.WriteString(pad + cell)
		} else {
			builder.WriteString(cell + pad)
		}
		if i < len(columns)-1 {
			builder.WriteString(strings.Repeat(" ", tablePadding))
		}
	}
	return builder.String()
}

func (t *TableFormatter) separator(widths []int, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, totalWidth(widths)))
}

// rowStyle returns the style for a row status.
func (t *TableFormatter) rowStyle(status RowStatus) lipgloss.Style {
	switch status {
	case RowError:
		return t.styles.TableErrorRow
	case RowWarn:
		return t.styles.TableWarnRow
	default:
		return lipgloss.NewStyle()
	}
}

// FormatLegend explains the row colors.
func (t *TableFormatter) FormatLegend(errorMeaning, warnMeaning string) string {
	if !t.colorEnabled {
		return ""
	}

	return t.styles.TableLegend.Render(
		fmt.Sprintf(" Legend: %s = %s  %s = %s",
			t.styles.TableErrorRow.Render(" red "), errorMeaning,
			t.styles.TableWarnRow.Render(" yellow "), warnMeaning),
	)
}

// FormatTableSummary formats a summary line for table output.
func (t *TableFormatter) FormatTableSummary(stats runner.Stats, duration string) string {
	parts := []string{plural(stats.FilesProcessed, wordFile, wordFiles) + " checked"}

	if stats.FilesErrored > 0 {
		parts = append(parts, t.styles.Error.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}
	if stats.FilesMalformed > 0 {
		parts = append(parts, t.styles.Warning.Render(fmt.Sprintf("%d malformed", stats.FilesMalformed)))
	}
	if stats.Matches > 0 {
		parts = append(parts, t.styles.Success.Render(plural(stats.Matches, "match", "matches")))
	}
	if stats.FilesChanged > 0 {
		parts = append(parts, t.styles.Warning.Render(fmt.Sprintf("%d changed", stats.FilesChanged)))
	}
	if stats.FilesModified > 0 {
		parts = append(parts, t.styles.Success.Render(fmt.Sprintf("%d rewritten", stats.FilesModified)))
	}
	if duration != "" {
		parts = append(parts, t.styles.Dim.Render(duration))
	}

	return " " + strings.Join(parts, " | ")
}

// truncateString truncates a string to width cells, adding "..." if truncated.
func truncateString(str string, width int) string {
	if ansi.PrintableRuneWidth(str) <= width {
		return str
	}
	if width <= len(ellipsis) {
		return truncate.String(str, uint(max(width, 0)))
	}
	return truncate.StringWithTail(str, uint(width), ellipsis)
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, width int) string {
	if ansi.PrintableRuneWidth(path) <= width {
		return path
	}
	runes := []rune(path)
	if width <= len(ellipsis) {
		keep := min(max(width, 0), len(runes))
		return string(runes[len(runes)-keep:])
	}
	keep := min(width-len(ellipsis), len(runes))
	return ellipsis + string(runes[len(runes)-keep:])
}
