package logging

// Keys for structured log fields.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Run settings.
	FieldCommand    = "command"
	FieldMode       = "mode"
	FieldPattern    = "pattern"
	FieldJobs       = "jobs"
	FieldWrite      = "write"
	FieldSequential = "sequential"

	// Per-file fields.
	FieldLines   = "lines"
	FieldBytes   = "bytes"
	FieldMatches = "matches"
	FieldDemoted = "demoted"
	FieldSkipped = "skipped"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesProcessed  = "files_processed"
	FieldFilesErrored    = "files_errored"
	FieldFilesModified   = "files_modified"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
