package runner

import "github.com/yaklabco/lineml/pkg/pipeline"

// FileOutcome is what happened to one discovered file. Exactly one of
// Result and Error is set.
type FileOutcome struct {
	Path   string
	Result *pipeline.Result
	Error  error
}

// Stats are the totals of a run.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int // finished without error
	FilesSkipped    int // changed on disk while being rendered
	FilesErrored    int
	FilesMalformed  int // demoted lines or unbalanced close tags
	FilesMatched    int // at least one match
	FilesChanged    int // rendering differs from the input
	FilesModified   int // rewritten on disk

	Matches int
	Lines   pipeline.Stats // per-file line stats summed
}

// Result is the outcome of a run, with Files sorted by path.
type Result struct {
	Files []FileOutcome
	Stats Stats
}

// HasMalformed reports whether a file had malformed markup.
func (r *Result) HasMalformed() bool { return r != nil && r.Stats.FilesMalformed > 0 }

// HasMatches reports whether the pattern matched anywhere.
func (r *Result) HasMatches() bool { return r != nil && r.Stats.Matches > 0 }

// HasErrors reports whether a file could not be processed.
func (r *Result) HasErrors() bool { return r != nil && r.Stats.FilesErrored > 0 }

// Accumulate appends outcome and adds it to the totals.
func (r *Result) Accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	pr := outcome.Result
	switch {
	case outcome.Error != nil:
		r.Stats.FilesErrored++
		return
	case pr == nil:
		return
	}

	s := &r.Stats
	s.FilesProcessed++
	s.Lines.Add(pr.Stats)
	s.Matches += len(pr.Matches)
	s.FilesSkipped += count(pr.Skipped)
	s.FilesMalformed += count(pr.Stats.Malformed())
	s.FilesMatched += count(len(pr.Matches) > 0)
	s.FilesChanged += count(pr.Changed)
	s.FilesModified += count(pr.Written)
}

func count(b bool) int {
	if b {
		return 1
	}
	return 0
}
