package cli

import (
	"context"
	"errors"
	"io/fs"

	"github.com/yaklabco/lineml/internal/configloader"
	"github.com/yaklabco/lineml/pkg/pipeline"
	"github.com/yaklabco/lineml/pkg/scanpat"
)

// Exit codes for lineml.
const (
	// ExitSuccess indicates successful execution with nothing to report.
	ExitSuccess = 0

	// ExitFindings indicates the run completed but its check failed:
	// no match was found, --strict saw malformed markup, or --check saw
	// a file that would change.
	ExitFindings = 1

	// ExitInvalidUsage indicates invalid command-line usage, including a
	// pattern that does not compile.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74

	// ExitInterrupted is the conventional code for SIGINT.
	ExitInterrupted = 130
)

// Errors that select an exit code.
var (
	// ErrMatchesNotFound is returned by match when no line matched.
	ErrMatchesNotFound = errors.New("no matches found")

	// ErrMalformedLines is returned by scan --strict when a file has
	// demoted lines or unbalanced tags.
	ErrMalformedLines = errors.New("malformed markup found")

	// ErrNotCanonical is returned by render --check when a file would change.
	ErrNotCanonical = errors.New("files not in canonical form")

	// ErrFilesFailed is returned when at least one file could not be
	// processed. The per-file errors have already been reported.
	ErrFilesFailed = errors.New("some files could not be processed")

	// ErrInvalidUsage marks bad arguments or flags.
	ErrInvalidUsage = errors.New("invalid usage")

	// ErrConfig marks configuration that could not be loaded.
	ErrConfig = errors.New("configuration error")
)

// IsSignal reports whether err only signals an outcome that the command
// has already reported, so it should not be logged again.
func IsSignal(err error) bool {
	return errors.Is(err, ErrMatchesNotFound) ||
		errors.Is(err, ErrMalformedLines) ||
		errors.Is(err, ErrNotCanonical) ||
		errors.Is(err, ErrFilesFailed)
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var syntaxErr *scanpat.SyntaxError
	var validationErr *configloader.ValidationError

	switch {
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, ErrMatchesNotFound), errors.Is(err, ErrMalformedLines),
		errors.Is(err, ErrNotCanonical):
		return ExitFindings
	case errors.Is(err, ErrInvalidUsage), errors.As(err, &syntaxErr):
		return ExitInvalidUsage
	case errors.Is(err, ErrConfig), errors.As(err, &validationErr):
		return ExitConfigError
	case errors.Is(err, ErrFilesFailed), pipeline.IsPipelineError(err),
		errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
