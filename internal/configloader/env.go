package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yaklabco/lineml/pkg/config"
)

const envVarPrefix = "LINEML_"

// envMapping binds one LINEML_ variable to the config field it sets.
type envMapping struct {
	suffix string
	field  string
	help   string
	set    func(cfg *config.Config, value string) error
}

// envMappings are applied in this order.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = []envMapping{
	{"EXTENSIONS", "extensions", "Comma-separated file suffixes read from directories",
		func(cfg *config.Config, v string) error { cfg.Extensions = splitList(v); return nil }},
	{"INCLUDE", "include", "Comma-separated include globs",
		func(cfg *config.Config, v string) error { cfg.Include = splitList(v); return nil }},
	{"EXCLUDE", "exclude", "Comma-separated exclude globs",
		func(cfg *config.Config, v string) error { cfg.Exclude = splitList(v); return nil }},
	{"FOLLOW_SYMLINKS", "follow_symlinks", "Follow symbolic links: true or false",
		boolSetter(func(cfg *config.Config, b bool) { cfg.FollowSymlinks = config.Bool(b) })},
	{"JOBS", "jobs", "Number of parallel workers (0 = auto)",
		func(cfg *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("not an integer: %q", v)
			}
			cfg.Jobs = n
			return nil
		}},
	{"MAX_LINE_SIZE", "max_line_size", "Largest line buffered, e.g. 64MiB",
		func(cfg *config.Config, v string) error {
			size, err := config.ParseByteSize(v)
			if err != nil {
				return err
			}
			cfg.MaxLineSize = size
			return nil
		}},
	{"FORMAT", "output.format", "Output format: text, table, or json",
		func(cfg *config.Config, v string) error { cfg.Output.Format = config.OutputFormat(v); return nil }},
	{"COLOR", "output.color", "Color mode: auto, always, or never",
		func(cfg *config.Config, v string) error { cfg.Output.Color = config.ColorMode(v); return nil }},
	{"BACKUPS_ENABLED", "render.backups.enabled", "Leave backups when rewriting: true or false",
		boolSetter(func(cfg *config.Config, b bool) { cfg.Render.Backups.Enabled = config.Bool(b) })},
	{"BACKUPS_MODE", "render.backups.mode", "Backup mode: sidecar or none",
		func(cfg *config.Config, v string) error { cfg.Render.Backups.Mode = v; return nil }},
	{"NO_BACKUPS", "no_backups", "Disable backups: true or false",
		boolSetter(func(cfg *config.Config, b bool) { cfg.NoBackups = b })},
}

func boolSetter(set func(*config.Config, bool)) func(*config.Config, string) error {
	return func(cfg *config.Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("not a boolean: %q (expected true/false/1/0)", v)
		}
		set(cfg, b)
		return nil
	}
}

// LoadFromEnv applies LINEML_* overrides from the process environment.
func LoadFromEnv(cfg *config.Config) error {
	return LoadFromEnvFunc(cfg, os.Getenv)
}

// LoadFromEnvFunc applies LINEML_* overrides read through getenv. Unset
// and empty variables leave the field alone.
func LoadFromEnvFunc(cfg *config.Config, getenv func(string) string) error {
	if cfg == nil {
		return nil
	}

	for _, m := range envMappings {
		value := getenv(envVarPrefix + m.suffix)
		if value == "" {
			continue
		}
		if err := m.set(cfg, value); err != nil {
			return fmt.Errorf("%s%s: %w", envVarPrefix, m.suffix, err)
		}
	}

	return nil
}

// splitList splits a comma-separated value, dropping blank elements.
func splitList(value string) []string {
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetEnvVarName returns the variable that sets a config field, or "".
func GetEnvVarName(field string) string {
	for _, m := range envMappings {
		if m.field == field {
			return envVarPrefix + m.suffix
		}
	}
	return ""
}

// ListEnvVars maps every supported variable to its description.
func ListEnvVars() map[string]string {
	vars := make(map[string]string, len(envMappings))
	for _, m := range envMappings {
		vars[envVarPrefix+m.suffix] = m.help
	}
	return vars
}
