//go:build stave

package main

import (
	"bufio"
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

// Default target runs build.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]any{
	"b":   Build,
	"t":   Test.Default,
	"tf":  Test.Fuzz,
	"l":   Lint.Default,
	"c":   Check,
	"fmt": Lint.Fmt,
	"bc":  Bench.Corpus,
	"bf":  Bench.Fast,
}

type (
	Test  st.Namespace
	Lint  st.Namespace
	CI    st.Namespace
	Bench st.Namespace
)

const binary = "bin/lineml"

// Build compiles bin/lineml with version info when a source changed.
func Build() error {
	rebuild, err := target.Dir(binary, "cmd/", "pkg/", "internal/", "go.mod", "go.sum")
	if err != nil {
		return err
	}
	if !rebuild {
		fmt.Println(binary, "is up to date")
		return nil
	}
	fmt.Println("Building lineml...")
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", binary, "./cmd/lineml")
}

// Check runs format, lint, and test sequentially.
func Check() {
	st.SerialDeps(Lint.Fmt, Lint.Default, Test.Default)
}

// Clean removes build, coverage and benchmark artifacts.
func Clean() error {
	for _, path := range []string{"bin", "bench", "coverage.out"} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}
	return nil
}

// Install installs lineml to $GOBIN or $GOPATH/bin.
func Install() error {
	return sh.RunV("go", "install", "-ldflags", ldflags(), "./cmd/lineml")
}

// Default runs the test suite with the race detector and coverage.
func (Test) Default() error {
	return gotestsum("pkgname-and-test-fails", "-race", "-coverprofile=coverage.out", "-covermode=atomic", "./...")
}

// Verbose runs the test suite printing every test.
func (Test) Verbose() error {
	return gotestsum("standard-verbose", "-race", "./...")
}

// Fuzz runs each fuzz target for FUZZ_TIME (default 30s).
func (Test) Fuzz() error {
	fuzzTime := cmp.Or(os.Getenv("FUZZ_TIME"), "30s")
	targets := []struct{ pkg, name string }{
		{"./pkg/scanpat", "FuzzCompile"},
		{"./pkg/flatxml", "FuzzRender"},
		{"./pkg/fsutil", "FuzzWriteAtomic"},
	}
	for _, t := range targets {
		fmt.Printf("Fuzzing %s %s for %s...\n", t.pkg, t.name, fuzzTime)
		if err := sh.RunV("go", "test", "-run=^$", "-fuzz=^"+t.name+"$", "-fuzztime="+fuzzTime, t.pkg); err != nil {
			return err
		}
	}
	return nil
}

// Default runs golangci-lint with auto-fix.
func (Lint) Default() error {
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// CI runs golangci-lint without auto-fix.
func (Lint) CI() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Fmt formats all Go code.
func (Lint) Fmt() error {
	return sh.RunV("gofmt", "-w", "cmd", "internal", "pkg", "stavefile.go")
}

// FmtCheck fails when a file is not gofmt-clean.
func (Lint) FmtCheck() error {
	out, err := sh.Output("gofmt", "-l", "cmd", "internal", "pkg", "stavefile.go")
	if err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	if out != "" {
		return fmt.Errorf("unformatted files:\n%s\nrun 'stave lint:fmt' to fix", out)
	}
	return nil
}

// Vet runs go vet.
func (Lint) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Gate runs every check CI runs, in order.
func (CI) Gate() {
	st.SerialDeps(Lint.FmtCheck, Lint.Vet, Lint.CI, Build, Test.Default, CI.ModTidy, CI.Cross)
}

// ModTidy fails when go mod tidy changes go.mod or go.sum.
func (CI) ModTidy() error {
	before, err := readModFiles()
	if err != nil {
		return err
	}
	if err := sh.RunV("go", "mod", "tidy"); err != nil {
		return err
	}
	after, err := readModFiles()
	if err != nil {
		return err
	}
	if !bytes.Equal(before, after) {
		return errors.New("go.mod or go.sum changed after 'go mod tidy'")
	}
	return nil
}

// Cross builds for the release platforms.
func (CI) Cross() error {
	for _, platform := range []string{"linux/amd64", "linux/arm64", "darwin/arm64", "windows/amd64", "freebsd/amd64"} {
		goos, goarch, _ := strings.Cut(platform, "/")
		fmt.Printf("  %s\n", platform)
		env := map[string]string{"GOOS": goos, "GOARCH": goarch, "CGO_ENABLED": "0"}
		if err := sh.RunWith(env, "go", "build", "-o", os.DevNull, "./cmd/lineml"); err != nil {
			return fmt.Errorf("build %s: %w", platform, err)
		}
	}
	return nil
}

// Default runs the Go benchmarks of the line buffer and the pipeline.
func (Bench) Default() error {
	return sh.RunV("go", "test", "-run=^$", "-bench=.", "-benchmem", "./pkg/linebuf", "./pkg/pipeline")
}

// Corpus times lineml scan, match and render over a generated corpus.
// BENCH_LINES sets the corpus size (default 2000000 lines).
func (Bench) Corpus() error {
	st.Deps(Build)
	lines, err := strconv.Atoi(cmp.Or(os.Getenv("BENCH_LINES"), "2000000"))
	if err != nil {
		return fmt.Errorf("BENCH_LINES: %w", err)
	}
	path := filepath.Join("bench", "corpus.xml")
	if err := writeCorpus(path, lines); err != nil {
		return err
	}

	runs := [][]string{
		{"scan", "--no-summary", path},
		{"scan", "--tags", "--no-summary", path},
		{"match", "--no-summary", "entry id='%d' level='%p'", path},
		{"render", "--check", path},
	}
	for _, args := range runs {
		start := time.Now()
		// match and render --check fail on findings, so only scan errors count.
		if _, err := sh.Output(binary, args...); err != nil && args[0] == "scan" {
			return fmt.Errorf("lineml %s: %w", strings.Join(args[:len(args)-1], " "), err)
		}
		fmt.Printf("  %-28s %d lines in %s\n", strings.Join(args[:len(args)-1], " "), lines,
			time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// Fast runs the corpus benchmark on a small corpus.
func (Bench) Fast() error {
	return sh.RunWithV(map[string]string{"BENCH_LINES": "100000"}, "stave", "bench:corpus")
}

func gotestsum(format string, args ...string) error {
	procs := cmp.Or(os.Getenv("STAVE_NUM_PROCESSORS"), "4")
	cmdArgs := append([]string{"tool", "gotestsum", "-f", format, "--", "-p", procs, "-parallel", procs}, args...)
	return sh.RunV("go", cmdArgs...)
}

func readModFiles() ([]byte, error) {
	var all []byte
	for _, name := range []string{"go.mod", "go.sum"} {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		all = append(all, data...)
	}
	return all, nil
}

func gitOutput(args ...string) string {
	out, err := sh.Output("git", args...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// ldflags injects the version, commit and build date into main.
func ldflags() string {
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s",
		cmp.Or(gitOutput("describe", "--tags", "--always", "--dirty"), "dev"),
		cmp.Or(gitOutput("rev-parse", "--short", "HEAD"), "none"),
		time.Now().UTC().Format(time.RFC3339),
	)
}

// writeCorpus writes n lines of log-style markup and text to path. A
// quarter of the lines are not canonical, so render has work to do.
func writeCorpus(path string, n int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create bench dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create corpus: %w", err)
	}
	w := bufio.NewWriterSize(f, 1<<20)
	levels := []string{"debug", "info", "warn", "error"}
	fmt.Fprintln(w, "<log>")
	for i := range n {
		switch i % 4 {
		case 0:
			fmt.Fprintf(w, "<entry id='%d' level='%s'>\n", i, levels[i/4%len(levels)])
		case 1:
			fmt.Fprintf(w, "request %d took %d ms\n", i, i%997)
		case 2:
			fmt.Fprintf(w, "<metric name='latency'   value=%d.%d  />\n", i%1000, i%10)
		default:
			fmt.Fprintln(w, "</entry>")
		}
	}
	fmt.Fprintln(w, "</log>")
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write corpus: %w", err)
	}
	return f.Close()
}
