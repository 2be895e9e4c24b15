package fsutil

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// BackupMode says where backups go.
type BackupMode string

// Backup modes.
const (
	BackupModeSidecar BackupMode = "sidecar" // path + BackupSuffix
	BackupModeNone    BackupMode = "none"
)

// BackupSuffix is appended to a file name to form its sidecar backup.
const BackupSuffix = ".lineml.bak"

// BackupConfig controls CreateBackup.
type BackupConfig struct {
	Enabled bool
	Mode    BackupMode
}

// DefaultBackupConfig is a disabled sidecar backup.
func DefaultBackupConfig() BackupConfig {
	return BackupConfig{Mode: BackupModeSidecar}
}

// BackupPath returns the backup location of path, or "" when mode is
// BackupModeNone. Any other mode is sidecar.
func BackupPath(path string, mode BackupMode) string {
	if mode == BackupModeNone {
		return ""
	}
	return path + BackupSuffix
}

// CreateBackup copies path to its backup location. An existing backup is
// kept, so it always holds the content from before the first rewrite. It
// reports whether a backup was written; a missing path writes none.
func CreateBackup(ctx context.Context, fsys afero.Fs, path string, cfg BackupConfig) (bool, error) {
	backup := BackupPath(path, cfg.Mode)
	if !cfg.Enabled || backup == "" {
		return false, nil
	}
	fsys = orOS(fsys)

	if BackupExists(fsys, path, cfg.Mode) {
		return false, nil
	}
	copied, err := copyFile(ctx, fsys, path, backup)
	if err != nil {
		return false, fmt.Errorf("create backup: %w", err)
	}
	return copied, nil
}

// RestoreBackup writes the backup of path back over path. It reports
// false when there is no backup.
func RestoreBackup(ctx context.Context, fsys afero.Fs, path string, mode BackupMode) (bool, error) {
	backup := BackupPath(path, mode)
	if backup == "" {
		return false, nil
	}
	copied, err := copyFile(ctx, orOS(fsys), backup, path)
	if err != nil {
		return false, fmt.Errorf("restore backup: %w", err)
	}
	return copied, nil
}

// RemoveBackup deletes the backup of path. It reports whether one existed.
func RemoveBackup(fsys afero.Fs, path string, mode BackupMode) (bool, error) {
	backup := BackupPath(path, mode)
	if backup == "" {
		return false, nil
	}
	err := orOS(fsys).Remove(backup)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("remove backup: %w", err)
	}
	return true, nil
}

// BackupExists reports whether path has a backup.
func BackupExists(fsys afero.Fs, path string, mode BackupMode) bool {
	backup := BackupPath(path, mode)
	if backup == "" {
		return false
	}
	ok, err := afero.Exists(orOS(fsys), backup)
	return err == nil && ok
}

// copyFile atomically copies src to dst with src's mode. It reports false
// without error when src does not exist.
func copyFile(ctx context.Context, fsys afero.Fs, src, dst string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	info, err := fsys.Stat(src)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", src, err)
	}
	content, err := afero.ReadFile(fsys, src)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", src, err)
	}
	if err := WriteAtomic(ctx, fsys, dst, content, info.Mode()); err != nil {
		return false, err
	}
	return true, nil
}
