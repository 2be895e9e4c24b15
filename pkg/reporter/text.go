package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/yaklabco/lineml/internal/ui/pretty"
	"github.com/yaklabco/lineml/pkg/pipeline"
	"github.com/yaklabco/lineml/pkg/runner"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
//
// A render preview writes the rendered content itself, with a header per
// file when there is more than one.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
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

	multiple := len(result.Files) > 1
	for _, file := range result.Files {
		path := r.opts.displayPath(file.Path)

		if file.Error != nil {
			fmt.Fprintf(r.bw, "%s: %s\n",
				r.styles.FilePath.Render(path),
				r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
			)
			continue
		}
		if file.Result == nil {
			continue
		}

		switch r.opts.Mode {
		case pipeline.ModeMatch:
			for _, match := range file.Result.Matches {
				fmt.Fprint(r.bw, r.styles.FormatMatch(path, match, r.opts.ShowCursor))
			}
		case pipeline.ModeRender:
			r.reportRender(path, file.Result, multiple)
		case pipeline.ModeScan:
			r.reportScan(path, file.Result)
		}
	}

	if r.opts.Tags != nil {
		fmt.Fprintln(r.bw, r.styles.FormatTags(r.opts.Tags))
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats, r.opts.Mode))
	}

	return findings(result, r.opts.Mode), nil
}

func (r *TextReporter) reportScan(path string, pr *pipeline.Result) {
	stats := pr.Stats
	fmt.Fprintf(r.bw, "%s %s\n",
		r.styles.FormatFileHeader(path, pr.Summary(), stats.Malformed()),
		r.styles.Dim.Render(fmt.Sprintf("%s, %s, %d markup, %d text, depth %d",
			plural(stats.Lines, "line", "lines"),
			humanize.IBytes(uint64(max(stats.Bytes, 0))),
			stats.Markup(), stats.Text, stats.MaxDepth,
		)),
	)

	if stats.Malformed() {
		fmt.Fprintln(r.bw, "  "+r.styles.Warning.Render(fmt.Sprintf(
			"%d demoted, %d unbalanced, %d unclosed", stats.Demoted, stats.Unbalanced, stats.Unclosed)))
	}

	if r.opts.ShowLines {
		for _, info := range pr.Lines {
			fmt.Fprint(r.bw, r.styles.FormatLineInfo(info))
		}
		fmt.Fprintln(r.bw)
	}
}

func (r *TextReporter) reportRender(path string, pr *pipeline.Result, multiple bool) {
	if r.opts.Write {
		if pr.Changed || pr.Skipped {
			fmt.Fprintln(r.bw, r.styles.FormatFileHeader(path, pr.Summary(), pr.Skipped))
		}
		return
	}

	if r.opts.ShowDiff {
		if pr.Diff.HasChanges() {
			diff := *pr.Diff
			diff.Path = path
			fmt.Fprint(r.bw, r.styles.FormatDiff(&diff))
		}
		return
	}

	if multiple {
		fmt.Fprintln(r.bw, r.styles.Bold.Render("==> "+path+" <=="))
	}
	_, _ = r.bw.Write(pr.Rendered)
}

func plural(n int, singular, pluralWord string) string {
	if n == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %s", n, pluralWord)
}
