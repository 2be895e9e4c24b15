// Package runner finds input files and feeds them to the pipeline on a
// bounded pool of workers.
package runner

import (
	"github.com/spf13/afero"

	"github.com/yaklabco/lineml/pkg/pipeline"
)

// Options controls a run.
type Options struct {
	// Paths are files and directories to process; "." when empty.
	// Relative paths are resolved against WorkingDir, or the process
	// working directory when that is empty.
	Paths      []string
	WorkingDir string

	Fs afero.Fs // OS filesystem when nil

	// Extensions filters the files found by walking a directory. Files
	// named in Paths are always processed. Empty keeps every file.
	Extensions []string

	// IncludeGlobs and ExcludeGlobs are matched against paths relative to
	// WorkingDir. An empty include list keeps everything.
	IncludeGlobs []string
	ExcludeGlobs []string

	FollowSymlinks bool

	// IncludeVendored keeps the vendored directories and binary files a
	// walk skips by default.
	IncludeVendored bool

	Jobs int // workers; runtime.NumCPU() when <= 0

	Pipeline pipeline.Options
}

// DefaultExtensions are the suffixes walked when none are configured.
func DefaultExtensions() []string {
	return []string{".xml", ".log"}
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}

func (o Options) fs() afero.Fs {
	if o.Fs == nil {
		return afero.NewOsFs()
	}
	return o.Fs
}
