// Package pipeline runs the line scanner over a single input: it counts
// and classifies lines, matches scan patterns, and renders canonical
// output, rewriting files safely when asked to.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/yaklabco/lineml/pkg/flatxml"
	"github.com/yaklabco/lineml/pkg/fsutil"
	"github.com/yaklabco/lineml/pkg/linebuf"
	"github.com/yaklabco/lineml/pkg/linediff"
	"github.com/yaklabco/lineml/pkg/scanpat"
)

// Pipeline error types for categorization.
var (
	// ErrFileNotFound indicates the file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrReadFailure indicates the line reader stopped on an error.
	ErrReadFailure = errors.New("read failure")

	// ErrWriteFailure indicates a write error.
	ErrWriteFailure = errors.New("write failure")
)

// cancelCheckInterval is how many lines are processed between context checks.
const cancelCheckInterval = 4096

// Mode selects what ProcessFile does with each line.
type Mode int

const (
	// ModeScan classifies lines and gathers statistics.
	ModeScan Mode = iota
	// ModeMatch additionally matches every line against a pattern.
	ModeMatch
	// ModeRender additionally produces the canonical rendering.
	ModeRender
)

// String returns the command name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeScan:
		return "scan"
	case ModeMatch:
		return "match"
	case ModeRender:
		return "render"
	default:
		return "unknown"
	}
}

// Options controls pipeline behavior.
type Options struct {
	Mode Mode

	// Pattern is matched against every line in ModeMatch.
	Pattern *scanpat.Pattern

	// Sequential walks the attribute cursor across each line, so one
	// line can produce several matches. Patterns with literal names
	// cannot be used sequentially.
	Sequential bool

	// KeepLines records a LineInfo for every line.
	KeepLines bool

	// CountTags fills Result.Tags.
	CountTags bool

	// Diff fills Result.Diff in ModeRender.
	Diff bool

	// Write rewrites changed files in ModeRender.
	Write bool

	// Backup configures backup behavior for Write.
	Backup fsutil.BackupConfig

	// MaxLineSize caps the reader's buffer. Zero keeps the reader default.
	MaxLineSize int

	// Counters, if set, observes the reader's internal paths.
	Counters linebuf.Counters
}

// Validate checks option combinations that would fail mid-run.
func (o Options) Validate() error {
	if o.Mode == ModeMatch && o.Pattern == nil {
		return errors.New("match mode needs a pattern")
	}
	if o.Sequential && o.Pattern != nil && o.Pattern.HasLiteralNames() {
		return &scanpat.SyntaxError{
			Pattern: o.Pattern.String(),
			Reason:  "bad mix of sequential and literal names",
		}
	}
	return nil
}

func (o Options) readerOptions() []linebuf.Option {
	var opts []linebuf.Option
	if o.MaxLineSize > 0 {
		opts = append(opts, linebuf.WithMaxBufferSize(o.MaxLineSize))
	}
	if o.Counters != nil {
		opts = append(opts, linebuf.WithCounters(o.Counters))
	}
	return opts
}

// Pipeline processes single inputs.
type Pipeline struct {
	// Fs is the filesystem files are read from and written to.
	Fs afero.Fs
}

// New creates a pipeline over fsys. A nil fsys means the OS filesystem.
func New(fsys afero.Fs) *Pipeline {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Pipeline{Fs: fsys}
}

// ProcessFile runs the pipeline over the file at path.
//
// Scan and match stream the file through the line reader. Render reads
// the whole file so that it can be rewritten:
//  1. Read and hash the original file.
//  2. Render every line.
//  3. Stop unless Write is set and the rendering changed.
//  4. Check for concurrent modifications.
//  5. Create a backup (if enabled).
//  6. Write the rendering atomically.
func (p *Pipeline) ProcessFile(ctx context.Context, path string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if opts.Mode != ModeRender {
		src, err := linebuf.OpenFile(p.Fs, path)
		if err != nil {
			return nil, categorizeError(err)
		}
		return p.process(ctx, path, linebuf.New(src, append(opts.readerOptions(), linebuf.WithOwnedSource())...), opts)
	}

	content, info, err := fsutil.ReadFile(ctx, p.Fs, path)
	if err != nil {
		return nil, categorizeError(err)
	}

	result, err := p.ProcessContent(ctx, path, content, opts)
	if err != nil {
		return nil, err
	}
	result.Info = info

	if !opts.Write || !result.Changed {
		return result, nil
	}

	modified, err := fsutil.CheckModified(ctx, p.Fs, info)
	if err != nil {
		return nil, fmt.Errorf("check modified: %w", err)
	}
	if modified {
		result.Skipped = true
		result.SkipReason = "file modified during processing"
		return result, nil
	}

	if opts.Backup.Enabled {
		created, err := fsutil.CreateBackup(ctx, p.Fs, path, opts.Backup)
		if err != nil {
			return nil, fmt.Errorf("create backup: %w", err)
		}
		result.BackupCreated = created
	}

	written, err := fsutil.WriteAtomicIfChanged(ctx, p.Fs, path, result.Rendered, info.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	result.Written = written

	return result, nil
}

// ProcessContent runs the pipeline over in-memory content without file I/O.
func (p *Pipeline) ProcessContent(ctx context.Context, path string, content []byte, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result, err := p.process(ctx, path, linebuf.New(linebuf.NewMemorySpan(content), opts.readerOptions()...), opts)
	if err != nil {
		return nil, err
	}
	if opts.Mode == ModeRender {
		result.Changed = !bytes.Equal(content, result.Rendered)
		if opts.Diff && result.Changed {
			result.Diff = linediff.Compare(path, content, result.Rendered)
		}
	}
	return result, nil
}

// ProcessSource runs the pipeline over a stream such as standard input.
// The source is not closed. Write is ignored and Changed is never set,
// since the input is not kept.
func (p *Pipeline) ProcessSource(ctx context.Context, name string, src linebuf.Source, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return p.process(ctx, name, linebuf.New(src, opts.readerOptions()...), opts)
}

// process walks every line of r.
func (p *Pipeline) process(ctx context.Context, path string, r *linebuf.Reader, opts Options) (result *Result, err error) {
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	result = &Result{Path: path}
	w := walker{stats: &result.Stats}
	if opts.CountTags {
		result.Tags = make(map[string]int)
		w.tags = result.Tags
	}
	in := flatxml.NewScanner(r)

	for ; !in.Done(); in.Next() {
		if result.Stats.Lines%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("processing cancelled: %w", err)
			}
		}

		info := w.line(in)
		if opts.KeepLines {
			result.Lines = append(result.Lines, info)
		}

		switch opts.Mode {
		case ModeMatch:
			result.Matches = appendMatches(result.Matches, in, opts)
		case ModeRender:
			result.Rendered = in.AppendRender(result.Rendered)
			result.Rendered = append(result.Rendered, r.CurrentLineEnding()...)
		case ModeScan:
		}
	}

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s line %d (%d bytes stranded): %w",
			ErrReadFailure, path, r.Lineno()+1, len(r.Stranded()), err)
	}

	result.Stats.Bytes = r.Position()
	result.Stats.Unclosed = len(w.stack)

	return result, nil
}

// appendMatches matches the current line, walking the cursor across the
// attributes when the options ask for it.
func appendMatches(matches []Match, in *flatxml.Scanner, opts Options) []Match {
	record := func(cursor int, captures scanpat.Result) {
		matches = append(matches, Match{
			Lineno:   in.Lineno(),
			Line:     string(in.RawLine()),
			Cursor:   cursor,
			Captures: captures,
		})
	}

	if !opts.Sequential {
		if captures, ok := opts.Pattern.Match(in); ok {
			record(0, captures)
		}
		return matches
	}

	cursor := 0
	for {
		start := cursor
		if captures, ok := opts.Pattern.MatchFrom(in, &cursor); ok {
			record(start, captures)
		}
		if cursor == start || cursor >= in.AttrCount() {
			return matches
		}
	}
}

// walker tracks nesting across lines.
type walker struct {
	stats *Stats
	stack []string
	tags  map[string]int
}

func (w *walker) line(in *flatxml.Scanner) LineInfo {
	s := w.stats
	s.Lines++
	if in.Reader().LineEnding() == linebuf.EndingCRLF {
		s.CRLF++
	}

	kind := in.Kind()
	tag, _ := in.Tag()
	info := LineInfo{
		Lineno: in.Lineno(),
		Kind:   kind,
		Tag:    tag,
		Attrs:  in.AttrCount(),
		Depth:  len(w.stack),
	}

	switch kind {
	case flatxml.Text:
		s.Text++
		if in.Demoted() {
			s.Demoted++
			info.Demoted = true
			info.ErrorOffset = in.ErrorOffset()
		}
	case flatxml.Open:
		s.Open++
		w.stack = append(w.stack, tag)
		s.MaxDepth = max(s.MaxDepth, len(w.stack))
		w.count(tag)
	case flatxml.Close:
		s.Close++
		w.pop(tag)
		info.Depth = len(w.stack)
	case flatxml.SelfClosed:
		s.SelfClosed++
		w.count(tag)
	}
	s.Attrs += info.Attrs

	return info
}

func (w *walker) count(tag string) {
	if w.tags != nil {
		w.tags[tag]++
	}
}

// pop closes tag. A close tag that does not match the innermost open tag
// is unbalanced; if tag is open further out, the tags inside it are
// abandoned.
func (w *walker) pop(tag string) {
	n := len(w.stack)
	if n > 0 && w.stack[n-1] == tag {
		w.stack = w.stack[:n-1]
		return
	}

	w.stats.Unbalanced++
	for i := n - 2; i >= 0; i-- {
		if w.stack[i] == tag {
			w.stack = w.stack[:i]
			return
		}
	}
}

// categorizeError wraps an error with the appropriate pipeline error type.
func categorizeError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, fsutil.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}

	if errors.Is(err, fsutil.ErrPermissionDenied) || errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}

	return err
}

// IsPipelineError checks if an error is a known pipeline error type.
func IsPipelineError(err error) bool {
	return errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrReadFailure) ||
		errors.Is(err, ErrWriteFailure)
}
