package configloader

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"
)

// ConfigPaths are the config files found for one run. Empty means absent.
type ConfigPaths struct {
	System   string // /etc/lineml/config.yml
	User     string // $XDG_CONFIG_HOME/lineml/config.yml
	Project  string // nearest .lineml.yml above the working directory
	Explicit string // --config
}

// ProjectConfigFiles are the project file names in order of preference.
// lineml init writes the first.
//
//nolint:gochecknoglobals // Read-only lookup table.
var ProjectConfigFiles = []string{".lineml.yml", ".lineml.yaml", "lineml.yml", "lineml.yaml"}

//nolint:gochecknoglobals // Read-only lookup tables.
var (
	dirConfigFiles = []string{"config.yml", "config.yaml"}
	vcsRootMarkers = []string{".git", ".hg", ".svn"}
)

// DiscoverPaths finds the system, user and project config files for
// workDir. getenv defaults to os.Getenv.
func DiscoverPaths(ctx context.Context, fsys afero.Fs, workDir string, getenv func(string) string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("discover config: %w", err)
	}
	if getenv == nil {
		getenv = os.Getenv
	}

	project, err := FindProjectConfig(ctx, fsys, workDir)
	if err != nil {
		return nil, err
	}

	return &ConfigPaths{
		System:  firstFile(fsys, systemConfigDir(getenv), dirConfigFiles),
		User:    firstFile(fsys, userConfigDir(getenv), dirConfigFiles),
		Project: project,
	}, nil
}

func systemConfigDir(getenv func(string) string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(cmp.Or(getenv("ProgramData"), `C:\ProgramData`), "lineml")
	}
	return "/etc/lineml"
}

func userConfigDir(getenv func(string) string) string {
	if dir := getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "lineml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "lineml")
}

// FindProjectConfig walks up from startDir (the working directory when
// empty) to the first directory holding a project config file. The walk
// ends without a result at a VCS root, the home directory or the
// filesystem root.
func FindProjectConfig(ctx context.Context, fsys afero.Fs, startDir string) (string, error) {
	dir, err := filepath.Abs(cmp.Or(startDir, "."))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", startDir, err)
	}
	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("find project config: %w", err)
		}
		if path := firstFile(fsys, dir, ProjectConfigFiles); path != "" {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir || dir == home || isVCSRoot(fsys, dir) {
			return "", nil
		}
		dir = parent
	}
}

func isVCSRoot(fsys afero.Fs, dir string) bool {
	for _, marker := range vcsRootMarkers {
		if ok, _ := afero.IsDir(fsys, filepath.Join(dir, marker)); ok {
			return true
		}
	}
	return false
}

// firstFile returns the first of names that is a regular file in dir.
func firstFile(fsys afero.Fs, dir string, names []string) string {
	if dir == "" {
		return ""
	}
	for _, name := range names {
		path := filepath.Join(dir, name)
		if info, err := fsys.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
