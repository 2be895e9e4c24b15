// Package configloader resolves the lineml configuration from defaults,
// config files, LINEML_* environment variables and command-line flags.
package configloader

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/yaklabco/lineml/pkg/config"
)

// LoadOptions controls Load.
type LoadOptions struct {
	WorkingDir   string // start of the project search; cwd when empty
	ExplicitPath string // --config

	Fs     afero.Fs            // OS filesystem when nil
	Getenv func(string) string // os.Getenv when nil

	IgnoreSystemConfig  bool
	IgnoreUserConfig    bool
	IgnoreProjectConfig bool
	IgnoreEnv           bool

	// CLIConfig holds the values set by flags. It wins over every other
	// source.
	CLIConfig *config.Config
}

// LoadResult is a resolved configuration.
type LoadResult struct {
	Config     *config.Config
	Paths      *ConfigPaths
	LoadedFrom []string // files merged, lowest precedence first
	Warnings   []string
}

// Load merges, from lowest to highest precedence: defaults, the system,
// user, project and explicit config files, the environment, and
// CLIConfig. The merged result must pass Validate.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	paths, err := DiscoverPaths(ctx, fsys, opts.WorkingDir, getenv)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	paths.Explicit = opts.ExplicitPath

	result := &LoadResult{Paths: paths}
	cfg := config.NewConfig()

	for _, file := range []struct {
		layer, path string
		ignore      bool
	}{
		{"system", paths.System, opts.IgnoreSystemConfig},
		{"user", paths.User, opts.IgnoreUserConfig},
		{"project", paths.Project, opts.IgnoreProjectConfig},
		{"explicit", paths.Explicit, false},
	} {
		if file.ignore || file.path == "" {
			continue
		}
		fileCfg, err := readConfig(fsys, file.path)
		if err != nil {
			return nil, fmt.Errorf("load %s config: %w", file.layer, err)
		}
		for _, warning := range ValidateWithFile(fileCfg, file.path).Warnings {
			result.Warnings = append(result.Warnings, warning.Error())
		}
		cfg = merge(cfg, fileCfg)
		result.LoadedFrom = append(result.LoadedFrom, file.path)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnvFunc(cfg, getenv); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}
	cfg = merge(cfg, opts.CLIConfig)

	if v := Validate(cfg); !v.Valid() {
		return nil, &v.Errors[0]
	}
	result.Config = cfg
	return result, nil
}

func readConfig(fsys afero.Fs, path string) (*config.Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	cfg, err := config.FromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
