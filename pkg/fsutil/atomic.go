package fsutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// DefaultFileMode is the mode WriteAtomic gives a file when none is given.
const DefaultFileMode os.FileMode = 0o644

// WriteAtomic replaces path with content. The content goes to a synced
// temp file in the same directory that is then renamed over path, so
// readers see the old file or the new one and never a partial write. The
// temp file is removed on failure.
func WriteAtomic(ctx context.Context, fsys afero.Fs, path string, content []byte, mode os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write atomic: %w", err)
	}
	fsys = orOS(fsys)
	if mode == 0 {
		mode = DefaultFileMode
	}

	tmpPath, err := writeTemp(fsys, path, content)
	if err != nil {
		return err
	}
	if err := fsys.Chmod(tmpPath, mode); err != nil {
		_ = fsys.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := fsys.Rename(tmpPath, path); err != nil {
		_ = fsys.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// writeTemp writes content to a new synced and closed file next to path
// and returns its name.
func writeTemp(fsys afero.Fs, path string, content []byte) (string, error) {
	tmp, err := afero.TempFile(fsys, filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	_, err = tmp.Write(content)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = fsys.Remove(tmp.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	return tmp.Name(), nil
}

// WriteAtomicIfChanged calls WriteAtomic unless path already holds
// content, and reports whether it wrote.
func WriteAtomicIfChanged(ctx context.Context, fsys afero.Fs, path string, content []byte, mode os.FileMode) (bool, error) {
	fsys = orOS(fsys)

	existing, err := afero.ReadFile(fsys, path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("read existing: %w", err)
	}
	if err == nil && bytes.Equal(existing, content) {
		return false, nil
	}

	if err := WriteAtomic(ctx, fsys, path, content, mode); err != nil {
		return false, err
	}
	return true, nil
}
