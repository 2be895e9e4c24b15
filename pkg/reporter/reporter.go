// Package reporter writes runner results as text, a table or JSON.
package reporter

import (
	"cmp"
	"context"
	"fmt"
	"os"

	"github.com/yaklabco/lineml/pkg/pipeline"
	"github.com/yaklabco/lineml/pkg/runner"
)

// Reporter writes one run's results.
type Reporter interface {
	// Report writes result and returns its number of findings: malformed
	// files for a scan, matches for a match run and changed files for a
	// render.
	Report(ctx context.Context, result *runner.Result) (int, error)
}

// New returns the Reporter for opts.Format. A missing format is text and
// a missing writer is stdout.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	switch format := cmp.Or(opts.Format, FormatText); format {
	case FormatText:
		return NewTextReporter(opts), nil
	case FormatTable:
		return NewTableReporter(opts), nil
	case FormatJSON:
		return NewJSONReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func findings(result *runner.Result, mode pipeline.Mode) int {
	switch {
	case result == nil:
		return 0
	case mode == pipeline.ModeMatch:
		return result.Stats.Matches
	case mode == pipeline.ModeRender:
		return result.Stats.FilesChanged
	}
	return result.Stats.FilesMalformed
}
