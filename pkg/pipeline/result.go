package pipeline

import (
	"github.com/yaklabco/lineml/pkg/flatxml"
	"github.com/yaklabco/lineml/pkg/fsutil"
	"github.com/yaklabco/lineml/pkg/linediff"
	"github.com/yaklabco/lineml/pkg/scanpat"
)

// Stats counts what a file's lines were classified as.
type Stats struct {
	Lines      int   `json:"lines"`
	Bytes      int64 `json:"bytes"`
	Text       int   `json:"text"`
	Open       int   `json:"open"`
	Close      int   `json:"close"`
	SelfClosed int   `json:"self_closed"`
	Attrs      int   `json:"attrs"`
	Demoted    int   `json:"demoted"`
	CRLF       int   `json:"crlf"`
	MaxDepth   int   `json:"max_depth"`

	// Unbalanced counts close tags that do not match the innermost open tag.
	Unbalanced int `json:"unbalanced"`

	// Unclosed counts open tags still pending at end of input.
	Unclosed int `json:"unclosed"`
}

// Add folds o into s. MaxDepth takes the larger of the two.
func (s *Stats) Add(o Stats) {
	s.Lines += o.Lines
	s.Bytes += o.Bytes
	s.Text += o.Text
	s.Open += o.Open
	s.Close += o.Close
	s.SelfClosed += o.SelfClosed
	s.Attrs += o.Attrs
	s.Demoted += o.Demoted
	s.CRLF += o.CRLF
	s.MaxDepth = max(s.MaxDepth, o.MaxDepth)
	s.Unbalanced += o.Unbalanced
	s.Unclosed += o.Unclosed
}

// Markup returns the number of lines classified as markup.
func (s Stats) Markup() int {
	return s.Open + s.Close + s.SelfClosed
}

// Malformed reports whether the file had demoted lines or tags that do
// not nest.
func (s Stats) Malformed() bool {
	return s.Demoted > 0 || s.Unbalanced > 0 || s.Unclosed > 0
}

// LineInfo describes one classified line.
type LineInfo struct {
	Lineno int          `json:"line"`
	Kind   flatxml.Kind `json:"kind"`
	Tag    string       `json:"tag,omitempty"`
	Attrs  int          `json:"attrs,omitempty"`
	Depth  int          `json:"depth"`

	// Demoted lines record where attribute decoding stopped.
	Demoted     bool `json:"demoted,omitempty"`
	ErrorOffset int  `json:"error_offset,omitempty"`
}

// Match is one successful pattern match.
type Match struct {
	Lineno   int            `json:"line"`
	Line     string         `json:"text"`
	Cursor   int            `json:"cursor"`
	Captures scanpat.Result `json:"captures"`
}

// Result contains the result of processing a single file.
type Result struct {
	// Path is the file path that was processed ("-" for standard input).
	Path string

	// Info is the file state before processing (render mode only).
	Info *fsutil.FileInfo

	Stats Stats

	// Lines holds per-line details when Options.KeepLines is set.
	Lines []LineInfo

	// Matches holds pattern matches in match mode.
	Matches []Match

	// Tags counts elements (open and self-closed tags) by name when
	// Options.CountTags is set.
	Tags map[string]int

	// Rendered is the canonical rendering of the input in render mode.
	Rendered []byte

	// Changed is true if Rendered differs from the input.
	Changed bool

	// Diff compares the input with Rendered when Options.Diff is set and
	// the input is kept. It is nil when nothing changed.
	Diff *linediff.Diff

	// Written is true if the file was rewritten on disk.
	Written bool

	// BackupCreated is true if a backup was created for this file.
	BackupCreated bool

	// Skipped is true if the file was left alone (e.g., due to concurrent modification).
	Skipped bool

	// SkipReason explains why the file was skipped.
	SkipReason string
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	switch {
	case r.Skipped:
		return "skipped: " + r.SkipReason
	case r.Written && r.BackupCreated:
		return "rewritten (backup created)"
	case r.Written:
		return "rewritten"
	case r.Changed:
		return "changes pending"
	case r.Stats.Malformed():
		return "malformed"
	default:
		return "ok"
	}
}
