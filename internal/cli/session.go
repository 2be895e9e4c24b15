package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/lineml/internal/configloader"
	"github.com/yaklabco/lineml/internal/logging"
	"github.com/yaklabco/lineml/pkg/config"
	"github.com/yaklabco/lineml/pkg/fsutil"
	"github.com/yaklabco/lineml/pkg/pipeline"
	"github.com/yaklabco/lineml/pkg/reporter"
	"github.com/yaklabco/lineml/pkg/runner"
)

// stdinPath is the argument that reads standard input instead of files.
const stdinPath = "-"

// inputFlags holds the discovery flags shared by the processing commands.
type inputFlags struct {
	include         []string
	exclude         []string
	extensions      []string
	followSymlinks  bool
	includeVendored bool
	maxLineSize     string
	compact         bool
}

func addInputFlags(cmd *cobra.Command, flags *inputFlags) {
	cmd.Flags().StringSliceVar(&flags.include, "include", nil,
		"only process files matching these globs (supports **)")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil,
		"skip files and directories matching these globs")
	cmd.Flags().StringSliceVar(&flags.extensions, "ext", nil,
		"file extensions to process when walking directories (default .xml,.log)")
	cmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false,
		"follow symbolic links to directories")
	cmd.Flags().BoolVar(&flags.includeVendored, "include-vendored", false,
		"process vendored and binary files too")
	cmd.Flags().StringVar(&flags.maxLineSize, "max-line-size", "",
		`longest line accepted, e.g. "1 MiB"`)
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "compact JSON output")
}

// cliConfig collects the flags the user actually set into a config
// layer, so that unset flags never override files or the environment.
func (f *inputFlags) cliConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	cfg := &config.Config{}

	if flags.Changed("jobs") {
		jobs, err := flags.GetInt("jobs")
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidUsage, err)
		}
		cfg.Jobs = jobs
	}
	if flags.Changed("format") {
		format := config.OutputFormat(stringFlag(flags, "format", ""))
		if !format.IsValid() {
			return nil, fmt.Errorf("%w: unknown format %q; valid formats: text, table, json", ErrInvalidUsage, format)
		}
		cfg.Output.Format = format
	}
	if flags.Changed("color") {
		color := config.ColorMode(stringFlag(flags, "color", ""))
		if !color.IsValid() {
			return nil, fmt.Errorf("%w: unknown color mode %q; valid modes: auto, always, never", ErrInvalidUsage, color)
		}
		cfg.Output.Color = color
	}

	if flags.Changed("include") {
		cfg.Include = f.include
	}
	if flags.Changed("exclude") {
		cfg.Exclude = f.exclude
	}
	if flags.Changed("ext") {
		cfg.Extensions = f.extensions
	}
	if flags.Changed("follow-symlinks") {
		cfg.FollowSymlinks = config.Bool(f.followSymlinks)
	}
	if flags.Changed("max-line-size") {
		size, err := config.ParseByteSize(f.maxLineSize)
		if err != nil {
			return nil, fmt.Errorf("%w: --max-line-size: %w", ErrInvalidUsage, err)
		}
		cfg.MaxLineSize = size
	}

	return cfg, nil
}

func stringFlag(flags *pflag.FlagSet, name, fallback string) string {
	value, err := flags.GetString(name)
	if err != nil {
		return fallback
	}
	return value
}

// session is the resolved state shared by one scan, match or render run.
type session struct {
	cmd     *cobra.Command
	ctx     context.Context
	logger  *log.Logger
	cfg     *config.Config
	flags   *inputFlags
	workDir string
}

// newSession loads the layered configuration with cliCfg on top.
func newSession(cmd *cobra.Command, flags *inputFlags, cliCfg *config.Config) (*session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithFields(logging.WithLogger(ctx, logging.Default()), logging.FieldCommand, cmd.Name())
	logger := logging.FromContext(ctx)

	configPath := stringFlag(cmd.Flags(), "config", "")

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", logging.FieldFiles, loadResult.LoadedFrom)
	}

	cfg := loadResult.Config
	logger.Debug("configuration resolved",
		logging.FieldJobs, cfg.Jobs,
		"extensions", cfg.Extensions,
		"max_line_size", cfg.MaxLineSize,
	)

	return &session{
		cmd:     cmd,
		ctx:     ctx,
		logger:  logger,
		cfg:     cfg,
		flags:   flags,
		workDir: workDir,
	}, nil
}

// pipelineOptions fills in the configured limits and backup policy.
func (s *session) pipelineOptions(opts pipeline.Options) pipeline.Options {
	opts.MaxLineSize = s.cfg.MaxLineSize.Int()
	mode := fsutil.BackupMode(s.cfg.Render.Backups.Mode)
	if mode == "" {
		mode = fsutil.BackupModeSidecar
	}
	opts.Backup = fsutil.BackupConfig{
		Enabled: s.cfg.BackupsEnabled() && mode != fsutil.BackupModeNone,
		Mode:    mode,
	}
	return opts
}

// runnerOptions builds the discovery options for args.
func (s *session) runnerOptions(args []string, opts pipeline.Options) runner.Options {
	return runner.Options{
		Paths:           args,
		WorkingDir:      s.workDir,
		Extensions:      s.cfg.Extensions,
		IncludeGlobs:    s.cfg.Include,
		ExcludeGlobs:    s.cfg.Exclude,
		FollowSymlinks:  s.cfg.FollowsSymlinks(),
		IncludeVendored: s.flags.includeVendored,
		Jobs:            s.cfg.Jobs,
		Pipeline:        s.pipelineOptions(opts),
	}
}

// execute processes args, or standard input when the only argument is "-".
func (s *session) execute(args []string, opts pipeline.Options) (*runner.Result, error) {
	if slices.Contains(args, stdinPath) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %q cannot be combined with other paths", ErrInvalidUsage, stdinPath)
		}
		return s.executeStdin(s.pipelineOptions(opts))
	}

	runOpts := s.runnerOptions(args, opts)
	s.logger.Debug("starting run",
		logging.FieldMode, opts.Mode,
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldJobs, runOpts.Jobs,
	)

	return runner.New(pipeline.New(nil)).Run(s.ctx, runOpts)
}

func (s *session) executeStdin(opts pipeline.Options) (*runner.Result, error) {
	if opts.Write {
		return nil, fmt.Errorf("%w: cannot --write standard input", ErrInvalidUsage)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &runner.Result{}
	result.Stats.FilesDiscovered = 1

	outcome := runner.FileOutcome{Path: stdinPath}
	pr, err := s.processStdin(opts)
	if err != nil {
		if s.ctx.Err() != nil {
			return nil, fmt.Errorf("run cancelled: %w", s.ctx.Err())
		}
		outcome.Error = err
	} else {
		outcome.Result = pr
	}
	result.Accumulate(outcome)

	return result, nil
}

// processStdin streams standard input through the pipeline. A rendering
// is held in memory anyway, so render mode buffers the input too and
// reports whether it changed.
func (s *session) processStdin(opts pipeline.Options) (*pipeline.Result, error) {
	p := pipeline.New(nil)
	if opts.Mode != pipeline.ModeRender {
		return p.ProcessSource(s.ctx, stdinPath, io.NopCloser(s.cmd.InOrStdin()), opts)
	}

	content, err := io.ReadAll(s.cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", pipeline.ErrReadFailure, stdinPath, err)
	}
	return p.ProcessContent(s.ctx, stdinPath, content, opts)
}

// report writes result in the configured format. It returns the number
// of findings, or ErrFilesFailed once the report is out if any file
// could not be processed.
func (s *session) report(result *runner.Result, opts reporter.Options) (int, error) {
	format, err := reporter.ParseFormat(string(s.cfg.Output.Format))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidUsage, err)
	}

	opts.Writer = s.cmd.OutOrStdout()
	opts.Format = format
	opts.Color = string(s.cfg.Output.Color)
	opts.Compact = s.flags.compact
	opts.WorkingDir = s.workDir

	rep, err := reporter.New(opts)
	if err != nil {
		return 0, fmt.Errorf("create reporter: %w", err)
	}

	findings, err := rep.Report(s.ctx, result)
	if err != nil {
		return 0, fmt.Errorf("write report: %w", err)
	}

	if result.HasErrors() {
		return findings, ErrFilesFailed
	}
	return findings, nil
}

// displayPath makes path relative to workDir when it lies beneath it.
func displayPath(workDir, path string) string {
	rel, err := filepath.Rel(workDir, path)
	if err != nil || !filepath.IsLocal(rel) {
		return path
	}
	return rel
}
