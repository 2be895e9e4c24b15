package reporter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/yaklabco/lineml/internal/ui/pretty"
	"github.com/yaklabco/lineml/pkg/pipeline"
	"github.com/yaklabco/lineml/pkg/runner"
)

// defaultTermWidth is used when terminal width cannot be determined.
const defaultTermWidth = 100

// TableReporter formats results as a styled table with color-coded rows.
type TableReporter struct {
	opts      Options
	styles    *pretty.Styles
	formatter *pretty.TableFormatter
	bw        *bufio.Writer
}

// NewTableReporter creates a new table reporter.
func NewTableReporter(opts Options) *TableReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	styles := pretty.NewStyles(colorEnabled)

	return &TableReporter{
		opts:      opts,
		styles:    styles,
		formatter: pretty.NewTableFormatter(styles, colorEnabled, getTerminalWidth(opts.Writer)),
		bw:        bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TableReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No files to check."))
		}
		return 0, nil
	}

	var (
		columns []pretty.Column
		groups  [][]pretty.TableRow
		legend  string
	)

	switch r.opts.Mode {
	case pipeline.ModeMatch:
		columns, groups = r.matchTable(result)
	case pipeline.ModeRender:
		columns, groups = r.fileTable(result, []pretty.Column{{Title: "STATUS", Flex: true}}, func(pr *pipeline.Result) []string {
			return []string{pr.Summary()}
		})
		legend = r.formatter.FormatLegend("failed", "changed")
	case pipeline.ModeScan:
		columns, groups = r.fileTable(result, []pretty.Column{
			{Title: "MARKUP", Align: pretty.AlignRight},
			{Title: "ATTRS", Align: pretty.AlignRight},
			{Title: "DEPTH", Align: pretty.AlignRight},
			{Title: "DEMOTED", Align: pretty.AlignRight},
			{Title: "UNBAL", Align: pretty.AlignRight},
			{Title: "STATUS", Flex: true},
		}, func(pr *pipeline.Result) []string {
			s := pr.Stats
			return []string{
				strconv.Itoa(s.Markup()),
				strconv.Itoa(s.Attrs),
				strconv.Itoa(s.MaxDepth),
				strconv.Itoa(s.Demoted),
				strconv.Itoa(s.Unbalanced + s.Unclosed),
				pr.Summary(),
			}
		})
		legend = r.formatter.FormatLegend("malformed or failed", "skipped")
	}

	if len(groups) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats, r.opts.Mode))
		}
		return findings(result, r.opts.Mode), nil
	}

	fmt.Fprint(r.bw, r.formatter.FormatTable(columns, groups))
	if legend != "" {
		fmt.Fprintln(r.bw, legend)
	}

	if r.opts.Tags != nil && len(r.opts.Tags.ByTag) > 0 {
		fmt.Fprintln(r.bw)
		fmt.Fprint(r.bw, r.formatter.FormatTable(r.tagTable()))
	}

	if r.opts.ShowSummary {
		fmt.Fprintln(r.bw, r.formatter.FormatTableSummary(result.Stats, ""))
		if r.opts.Mode == pipeline.ModeScan {
			fmt.Fprint(r.bw, r.styles.FormatSummary(result.Stats))
		}
	}

	return findings(result, r.opts.Mode), nil
}

// fileTable builds one row per file: FILE, LINES, SIZE, then extra columns.
func (r *TableReporter) fileTable(
	result *runner.Result,
	extra []pretty.Column,
	cells func(*pipeline.Result) []string,
) ([]pretty.Column, [][]pretty.TableRow) {
	columns := append([]pretty.Column{
		{Title: "FILE", Path: true, Flex: true},
		{Title: "LINES", Align: pretty.AlignRight},
		{Title: "SIZE", Align: pretty.AlignRight},
	}, extra...)

	rows := make([]pretty.TableRow, 0, len(result.Files))
	for _, file := range result.Files {
		path := r.opts.displayPath(file.Path)

		if file.Error != nil {
			row := make([]string, len(columns))
			row[0] = path
			row[len(row)-1] = "error: " + file.Error.Error()
			rows = append(rows, pretty.TableRow{Cells: row, Status: pretty.RowError})
			continue
		}
		if file.Result == nil {
			continue
		}

		pr := file.Result
		row := append([]string{
			path,
			humanize.Comma(int64(pr.Stats.Lines)),
			humanize.IBytes(uint64(max(pr.Stats.Bytes, 0))),
		}, cells(pr)...)

		status := pretty.RowPlain
		switch {
		case r.opts.Mode == pipeline.ModeScan && pr.Stats.Malformed():
			status = pretty.RowError
		case pr.Skipped, pr.Changed:
			status = pretty.RowWarn
		}
		rows = append(rows, pretty.TableRow{Cells: row, Status: status})
	}

	return columns, [][]pretty.TableRow{rows}
}

// matchTable builds one group per file with one row per match.
func (r *TableReporter) matchTable(result *runner.Result) ([]pretty.Column, [][]pretty.TableRow) {
	columns := []pretty.Column{
		{Title: "FILE", Path: true, Flex: true},
		{Title: "LINE", Align: pretty.AlignRight},
	}
	if r.opts.ShowCursor {
		columns = append(columns, pretty.Column{Title: "CURSOR", Align: pretty.AlignRight})
	}
	columns = append(columns,
		pretty.Column{Title: "TEXT", Flex: true},
		pretty.Column{Title: "CAPTURES", Flex: true},
	)

	var groups [][]pretty.TableRow
	for _, file := range result.Files {
		path := r.opts.displayPath(file.Path)

		if file.Error != nil {
			row := make([]string, len(columns))
			row[0] = path
			row[len(row)-1] = "error: " + file.Error.Error()
			groups = append(groups, []pretty.TableRow{{Cells: row, Status: pretty.RowError}})
			continue
		}
		if file.Result == nil || len(file.Result.Matches) == 0 {
			continue
		}

		rows := make([]pretty.TableRow, 0, len(file.Result.Matches))
		for _, match := range file.Result.Matches {
			row := []string{path, strconv.Itoa(match.Lineno)}
			if r.opts.ShowCursor {
				row = append(row, strconv.Itoa(match.Cursor))
			}
			values := make([]string, len(match.Captures))
			for i, c := range match.Captures {
				values[i] = c.String()
			}
			row = append(row, match.Line, strings.Join(values, ", "))
			rows = append(rows, pretty.TableRow{Cells: row})
		}
		groups = append(groups, rows)
	}

	return columns, groups
}

// tagTable builds one row per tag of the tag report.
func (r *TableReporter) tagTable() ([]pretty.Column, [][]pretty.TableRow) {
	columns := []pretty.Column{
		{Title: "TAG", Flex: true},
		{Title: "COUNT", Align: pretty.AlignRight},
		{Title: "FILES", Align: pretty.AlignRight},
	}

	rows := make([]pretty.TableRow, 0, len(r.opts.Tags.ByTag))
	for _, tag := range r.opts.Tags.ByTag {
		rows = append(rows, pretty.TableRow{Cells: []string{
			tag.Tag,
			humanize.Comma(int64(tag.Count)),
			strconv.Itoa(tag.FileCount()),
		}})
	}

	return columns, [][]pretty.TableRow{rows}
}

// getTerminalWidth attempts to get the terminal width from the writer.
func getTerminalWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}
