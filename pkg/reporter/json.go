package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/lineml/pkg/analysis"
	"github.com/yaklabco/lineml/pkg/pipeline"
	"github.com/yaklabco/lineml/pkg/runner"
)

// jsonVersion is the schema version of JSONOutput.
const jsonVersion = "1.0.0"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	Mode    string           `json:"mode"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
	Tags    *analysis.Report `json:"tags,omitempty"`
}

// JSONFileResult represents a single file's results.
type JSONFileResult struct {
	Path          string          `json:"path"`
	Status        string          `json:"status,omitempty"`
	Stats         *pipeline.Stats `json:"stats,omitempty"`
	Lines         []JSONLine      `json:"lines,omitempty"`
	Matches       []JSONMatch     `json:"matches,omitempty"`
	Rendered      *string         `json:"rendered,omitempty"`
	Diff          string          `json:"diff,omitempty"`
	Changed       bool            `json:"changed,omitempty"`
	Modified      bool            `json:"modified,omitempty"`
	BackupCreated bool            `json:"backupCreated,omitempty"`
	Skipped       string          `json:"skipped,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// JSONLine represents one classified line.
type JSONLine struct {
	Line        int    `json:"line"`
	Kind        string `json:"kind"`
	Tag         string `json:"tag,omitempty"`
	Attrs       int    `json:"attrs,omitempty"`
	Depth       int    `json:"depth"`
	Demoted     bool   `json:"demoted,omitempty"`
	ErrorOffset int    `json:"errorOffset,omitempty"`
}

// JSONMatch represents one pattern match. Captures are numbers, strings,
// or null for an absent optional attribute.
type JSONMatch struct {
	Line     int    `json:"line"`
	Text     string `json:"text"`
	Cursor   int    `json:"cursor"`
	Captures []any  `json:"captures"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesChecked   int            `json:"filesChecked"`
	FilesErrored   int            `json:"filesErrored"`
	FilesMalformed int            `json:"filesMalformed"`
	FilesMatched   int            `json:"filesMatched"`
	FilesChanged   int            `json:"filesChanged"`
	FilesModified  int            `json:"filesModified"`
	Matches        int            `json:"matches"`
	Lines          pipeline.Stats `json:"lines"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return findings(result, r.opts.Mode), nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: jsonVersion,
		Mode:    r.opts.Mode.String(),
		Files:   make([]JSONFileResult, 0),
		Tags:    r.opts.Tags,
	}

	if result == nil {
		return output
	}

	stats := result.Stats
	output.Summary = JSONSummary{
		FilesChecked:   stats.FilesProcessed,
		FilesErrored:   stats.FilesErrored,
		FilesMalformed: stats.FilesMalformed,
		FilesMatched:   stats.FilesMatched,
		FilesChanged:   stats.FilesChanged,
		FilesModified:  stats.FilesModified,
		Matches:        stats.Matches,
		Lines:          stats.Lines,
	}

	if len(result.Files) > 0 {
		output.Files = make([]JSONFileResult, 0, len(result.Files))
	}

	for _, file := range result.Files {
		output.Files = append(output.Files, r.buildFile(file))
	}

	return output
}

func (r *JSONReporter) buildFile(file runner.FileOutcome) JSONFileResult {
	fileResult := JSONFileResult{Path: r.opts.displayPath(file.Path)}

	if file.Error != nil {
		fileResult.Status = "error"
		fileResult.Error = file.Error.Error()
		return fileResult
	}

	pr := file.Result
	if pr == nil {
		return fileResult
	}

	stats := pr.Stats
	fileResult.Status = pr.Summary()
	fileResult.Stats = &stats
	fileResult.Changed = pr.Changed
	fileResult.Modified = pr.Written
	fileResult.BackupCreated = pr.BackupCreated
	if pr.Skipped {
		fileResult.Skipped = pr.SkipReason
	}

	for _, info := range pr.Lines {
		fileResult.Lines = append(fileResult.Lines, JSONLine{
			Line:        info.Lineno,
			Kind:        info.Kind.String(),
			Tag:         info.Tag,
			Attrs:       info.Attrs,
			Depth:       info.Depth,
			Demoted:     info.Demoted,
			ErrorOffset: info.ErrorOffset,
		})
	}

	for _, match := range pr.Matches {
		captures := make([]any, len(match.Captures))
		for i, c := range match.Captures {
			captures[i] = c
		}
		fileResult.Matches = append(fileResult.Matches, JSONMatch{
			Line:     match.Lineno,
			Text:     match.Line,
			Cursor:   match.Cursor,
			Captures: captures,
		})
	}

	if r.opts.Mode == pipeline.ModeRender && !r.opts.Write {
		rendered := string(pr.Rendered)
		fileResult.Rendered = &rendered
	}
	if pr.Diff != nil {
		fileResult.Diff = pr.Diff.String()
	}

	return fileResult
}
