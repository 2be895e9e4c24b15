// Package config defines core configuration types for lineml.
// These types are pure data structures; discovery and layering live in
// internal/configloader.
package config

// OutputFormat specifies the output format for reports.
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
)

// IsValid returns true if the output format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatTable, FormatJSON:
		return true
	default:
		return false
	}
}

// ColorMode controls when output is colorized.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// IsValid returns true if the color mode is known.
func (m ColorMode) IsValid() bool {
	switch m {
	case ColorAuto, ColorAlways, ColorNever:
		return true
	default:
		return false
	}
}

// DefaultMaxLineSize bounds the buffer a single line may occupy.
const DefaultMaxLineSize ByteSize = 64 << 20

// OutputConfig controls how reports are printed.
type OutputConfig struct {
	Format OutputFormat `json:"format,omitempty" yaml:"format,omitempty"`
	Color  ColorMode    `json:"color,omitempty"  yaml:"color,omitempty"`
}

// BackupsConfig controls backup behavior when render rewrites files.
type BackupsConfig struct {
	// Enabled is a pointer so that an explicit false in a config file
	// survives layering over the default.
	Enabled *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Mode    string `json:"mode,omitempty"    yaml:"mode,omitempty"` // "sidecar" or "none"
}

// IsEnabled reports whether backups should be written.
func (b BackupsConfig) IsEnabled() bool {
	return b.Enabled != nil && *b.Enabled && b.Mode != "none"
}

// RenderConfig holds settings for the render command.
type RenderConfig struct {
	Backups BackupsConfig `json:"backups" yaml:"backups"`
}

// Config is the root configuration structure for lineml.
type Config struct {
	// Extensions limits directory walks to files with these suffixes.
	// Files named explicitly on the command line are always read.
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`

	// Include contains glob patterns a discovered file must match.
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`

	// Exclude contains glob patterns for files to skip.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`

	// FollowSymlinks makes directory walks descend through symbolic links.
	FollowSymlinks *bool `json:"follow_symlinks,omitempty" yaml:"follow_symlinks,omitempty"`

	// Jobs specifies the number of parallel workers (0 = GOMAXPROCS).
	Jobs int `json:"jobs,omitempty" yaml:"jobs,omitempty"`

	// MaxLineSize is the largest line the reader will buffer.
	MaxLineSize ByteSize `json:"max_line_size,omitempty" yaml:"max_line_size,omitempty"`

	Output OutputConfig `json:"output" yaml:"output"`
	Render RenderConfig `json:"render" yaml:"render"`

	// CLI-level options (not persisted to config files).

	// Strict turns malformed or unbalanced markup into a failing exit.
	Strict bool `json:"-" yaml:"-"`

	// NoBackups disables backup creation when rewriting files.
	NoBackups bool `json:"-" yaml:"-"`
}

// FollowsSymlinks reports whether directory walks follow symbolic links.
func (c *Config) FollowsSymlinks() bool {
	return c.FollowSymlinks != nil && *c.FollowSymlinks
}

// BackupsEnabled reports whether render --write should leave backups,
// taking the CLI override into account.
func (c *Config) BackupsEnabled() bool {
	return !c.NoBackups && c.Render.Backups.IsEnabled()
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Extensions:     []string{".xml", ".log"},
		FollowSymlinks: Bool(false),
		Jobs:           0, // 0 means use GOMAXPROCS
		MaxLineSize:    DefaultMaxLineSize,
		Output: OutputConfig{
			Format: FormatText,
			Color:  ColorAuto,
		},
		Render: RenderConfig{
			Backups: BackupsConfig{
				Enabled: Bool(true),
				Mode:    "sidecar",
			},
		},
	}
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}
