package configloader

import (
	"fmt"
	"path"
	"strings"

	"github.com/yaklabco/lineml/pkg/config"
	"github.com/yaklabco/lineml/pkg/fsutil"
)

// MinLineSize is the smallest accepted max_line_size.
const MinLineSize config.ByteSize = 1 << 10

// ValidationError is one invalid config field.
type ValidationError struct {
	FilePath string // config file, when known
	Field    string // e.g. "output.format"
	Message  string
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.FilePath != "" {
		msg = e.FilePath + ": " + msg
	}
	return msg
}

// ValidationResult collects every problem in a config. Errors stop the
// load; warnings are logged.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// Valid reports whether there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

func (r *ValidationResult) fail(field, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validate checks every field of cfg and reports all problems at once.
// Empty fields are left for the defaults and are not errors.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if f := cfg.Output.Format; f != "" && !f.IsValid() {
		result.fail("output.format", "invalid format %q; must be one of: text, table, json", f)
	}
	if c := cfg.Output.Color; c != "" && !c.IsValid() {
		result.fail("output.color", "invalid color mode %q; must be one of: auto, always, never", c)
	}
	if cfg.Jobs < 0 {
		result.fail("jobs", "jobs must be >= 0 (0 means auto)")
	}
	if size := cfg.MaxLineSize; size != 0 && size < MinLineSize {
		result.fail("max_line_size", "max_line_size %s is below the minimum of %s", size, MinLineSize)
	}
	switch mode := fsutil.BackupMode(cfg.Render.Backups.Mode); mode {
	case "", fsutil.BackupModeSidecar, fsutil.BackupModeNone:
	default:
		result.fail("render.backups.mode", "invalid backup mode %q; must be one of: sidecar, none", mode)
	}

	seen := make(map[string]bool, len(cfg.Extensions))
	for i, ext := range cfg.Extensions {
		field := fmt.Sprintf("extensions[%d]", i)
		switch {
		case seen[ext]:
			result.warn(field, "extension %q is listed twice", ext)
		case !strings.HasPrefix(ext, "."):
			result.warn(field, "extension %q does not start with '.'; it matches as a plain suffix", ext)
		}
		seen[ext] = true
	}

	for _, globs := range []struct {
		field    string
		patterns []string
	}{{"include", cfg.Include}, {"exclude", cfg.Exclude}} {
		for i, pattern := range globs.patterns {
			// Discovery matches one path segment at a time, so each
			// segment must be a valid path.Match pattern.
			for seg := range strings.SplitSeq(pattern, "/") {
				if _, err := path.Match(seg, ""); err != nil {
					result.fail(fmt.Sprintf("%s[%d]", globs.field, i), "invalid glob pattern %q: %v", pattern, err)
					break
				}
			}
		}
	}

	return result
}

// ValidateWithFile is Validate with every finding attributed to filePath.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for _, list := range [][]ValidationError{result.Errors, result.Warnings} {
		for i := range list {
			list[i].FilePath = filePath
		}
	}
	return result
}
