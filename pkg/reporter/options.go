package reporter

import (
	"io"
	"path/filepath"

	"github.com/yaklabco/lineml/pkg/analysis"
	"github.com/yaklabco/lineml/pkg/pipeline"
)

const bufWriterSize = 64 << 10

// Options configures a Reporter.
type Options struct {
	Writer io.Writer // stdout when nil
	Format Format
	Color  string // auto, always or never

	// Mode is the pipeline mode that produced the result.
	Mode pipeline.Mode

	// Write marks a render run that rewrote files: changed files are
	// listed instead of each rendering.
	Write bool

	ShowLines   bool // list every classified line of a scan
	ShowCursor  bool // print the attribute cursor of each match
	ShowSummary bool

	// ShowDiff prints each render as a unified diff. The result must have
	// been built with pipeline.Options.Diff.
	ShowDiff bool

	// Tags, when set, is appended as a tag breakdown.
	Tags *analysis.Report

	// Compact writes JSON without indentation.
	Compact bool

	// WorkingDir, when set, makes paths beneath it relative.
	WorkingDir string
}

// displayPath makes path relative to WorkingDir when it lies beneath it.
func (o Options) displayPath(path string) string {
	if o.WorkingDir == "" || !filepath.IsAbs(path) {
		return path
	}
	if rel, err := filepath.Rel(o.WorkingDir, path); err == nil && filepath.IsLocal(rel) {
		return rel
	}
	return path
}
