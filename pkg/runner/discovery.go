package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/yaklabco/lineml/internal/logging"
	"github.com/yaklabco/lineml/pkg/langdetect"
)

// Discover finds input files matching opts under the given working directory.
// It returns a deterministically sorted list of absolute file paths.
//
// Paths naming a file are kept as long as they are not excluded. Directory
// walks skip hidden entries, vendored directories, and binary files, and
// keep only files with a configured extension.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	d := &discoverer{
		fsys:    opts.fs(),
		workDir: workDir,
		opts:    opts,
		seen:    make(map[string]struct{}),
		visited: make(map[string]struct{}),
	}

	for _, inputPath := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		absPath := inputPath
		if !filepath.IsAbs(inputPath) {
			absPath = filepath.Join(workDir, inputPath)
		}
		absPath = filepath.Clean(absPath)

		info, err := d.fsys.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", inputPath, err)
		}

		if info.IsDir() {
			if err := d.walk(ctx, absPath); err != nil {
				return nil, err
			}
			continue
		}

		if !d.excluded(d.rel(absPath)) {
			d.add(absPath)
		}
	}

	sort.Strings(d.files)

	return d.files, nil
}

// resolveWorkDir resolves the working directory, defaulting to os.Getwd().
func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

type discoverer struct {
	fsys    afero.Fs
	workDir string
	opts    Options
	files   []string
	seen    map[string]struct{}
	visited map[string]struct{}
}

func (d *discoverer) add(path string) {
	if _, ok := d.seen[path]; ok {
		return
	}
	d.seen[path] = struct{}{}
	d.files = append(d.files, path)
}

// rel returns path relative to the working directory, slash separated.
func (d *discoverer) rel(path string) string {
	relPath, err := filepath.Rel(d.workDir, path)
	if err != nil {
		relPath = path
	}
	return filepath.ToSlash(relPath)
}

func (d *discoverer) excluded(relPath string) bool {
	return matchesAny(relPath, d.opts.ExcludeGlobs)
}

// walk recursively walks a directory and collects matching files.
func (d *discoverer) walk(ctx context.Context, root string) error {
	if _, ok := d.visited[root]; ok {
		return nil
	}
	d.visited[root] = struct{}{}

	logger := logging.FromContext(ctx)

	err := afero.Walk(d.fsys, root, func(path string, info os.FileInfo, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		relPath := d.rel(path)
		name := info.Name()

		if info.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(name, ".") || d.excluded(relPath) {
				return filepath.SkipDir
			}
			if !d.opts.IncludeVendored && langdetect.VendoredDir(relPath) {
				logger.Debug("skipping vendored directory", logging.FieldPath, relPath)
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			return d.symlink(ctx, path)
		}

		return d.consider(path, relPath)
	})
	if err != nil {
		return fmt.Errorf("walk directory %s: %w", root, err)
	}

	return nil
}

// symlink handles a symlink met during a walk. File links are considered
// like regular files; directory links are walked only when following is on.
func (d *discoverer) symlink(ctx context.Context, link string) error {
	target, err := d.resolveLink(link)
	if err != nil {
		// Broken or unreadable links are skipped.
		return nil //nolint:nilerr // Intentionally skip broken symlinks
	}

	info, err := d.fsys.Stat(target)
	if err != nil {
		return nil //nolint:nilerr // Intentionally skip inaccessible symlink targets
	}

	if !info.IsDir() {
		return d.consider(link, d.rel(link))
	}
	if !d.opts.FollowSymlinks {
		return nil
	}

	// Walk the target, not the link, so cycles are caught by visited.
	return d.walk(ctx, target)
}

func (d *discoverer) resolveLink(link string) (string, error) {
	reader, ok := d.fsys.(afero.LinkReader)
	if !ok {
		return "", errors.New("filesystem does not support symlinks")
	}
	target, err := reader.ReadlinkIfPossible(link)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(link), target)
	}
	return filepath.Clean(target), nil
}

// consider adds a walked file that passes every filter.
func (d *discoverer) consider(path, relPath string) error {
	if !hasMatchingExtension(path, d.opts.Extensions) || d.excluded(relPath) {
		return nil
	}
	if len(d.opts.IncludeGlobs) > 0 && !matchesAny(relPath, d.opts.IncludeGlobs) {
		return nil
	}

	if !d.opts.IncludeVendored {
		head, err := d.head(path)
		if err != nil {
			if os.IsPermission(err) {
				return nil
			}
			return err
		}
		if langdetect.Sniff(relPath, head).Skippable() {
			return nil
		}
	}

	d.add(path)
	return nil
}

// head reads the bytes Sniff needs.
func (d *discoverer) head(path string) ([]byte, error) {
	f, err := d.fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, langdetect.SniffSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buf[:n], nil
}

// hasMatchingExtension checks if the file name ends with one of extensions.
// An empty list matches every file.
func hasMatchingExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	name := strings.ToLower(filepath.Base(path))
	for _, e := range extensions {
		if strings.HasSuffix(name, strings.ToLower(e)) {
			return true
		}
	}
	return false
}

// matchesAny checks if the path matches any of patterns.
func matchesAny(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchGlob(relPath, pattern) {
			return true
		}
	}
	return false
}

// matchGlob matches a slash-separated path against a glob pattern.
// "**" matches any number of path segments, including none. A pattern
// without a slash is also tried against the base name, so "*.log"
// matches at any depth.
func matchGlob(relPath, pattern string) bool {
	pattern = filepath.ToSlash(pattern)
	pattern = strings.TrimPrefix(pattern, "./")
	pattern = strings.TrimSuffix(pattern, "/")

	if matchSegments(strings.Split(relPath, "/"), strings.Split(pattern, "/")) {
		return true
	}

	if !strings.Contains(pattern, "/") {
		matched, err := path.Match(pattern, path.Base(relPath))
		return err == nil && matched
	}

	return false
}

func matchSegments(segs, pats []string) bool {
	for len(pats) > 0 {
		if pats[0] == "**" {
			// Collapse runs of "**".
			for len(pats) > 1 && pats[1] == "**" {
				pats = pats[1:]
			}
			if len(pats) == 1 {
				return true
			}
			for i := 0; i <= len(segs); i++ {
				if matchSegments(segs[i:], pats[1:]) {
					return true
				}
			}
			return false
		}

		if len(segs) == 0 {
			return false
		}
		matched, err := path.Match(pats[0], segs[0])
		if err != nil || !matched {
			return false
		}
		segs, pats = segs[1:], pats[1:]
	}

	return len(segs) == 0
}
