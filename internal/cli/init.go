package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/yaklabco/lineml/internal/logging"
	"github.com/yaklabco/lineml/pkg/config"
	"github.com/yaklabco/lineml/pkg/fsutil"
)

// defaultConfigNames are the files init writes when --output is not given.
//
//nolint:gochecknoglobals // Read-only lookup table.
var defaultConfigNames = map[string]string{
	"yaml": ".lineml.yml",
	"json": ".lineml.json",
}

type initFlags struct {
	force  bool
	full   bool
	format string
	output string
}

func newInitCommand() *cobra.Command {
	var flags initFlags

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long: `Write a .lineml.yml with the default settings to the current directory.
Edit it to choose which files are read, the longest line accepted, the
output format and whether render --write leaves backups.

Examples:
  lineml init                      # Minimal .lineml.yml
  lineml init --full               # Every option, with comments
  lineml init --format json        # .lineml.json instead
  lineml init -o ci/lineml.yml     # Somewhere else`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runInit(ctx, afero.NewOsFs(), cmd.OutOrStdout(), &flags)
		},
	}

	fs := cmd.Flags()
	fs.BoolVarP(&flags.force, "force", "f", false, "overwrite an existing file")
	fs.BoolVar(&flags.full, "full", false, "document every option in the file")
	fs.StringVar(&flags.format, "format", "yaml", "file format: yaml or json")
	fs.StringVarP(&flags.output, "output", "o", "", "path to write (default .lineml.yml or .lineml.json)")

	return cmd
}

func runInit(ctx context.Context, fsys afero.Fs, out io.Writer, flags *initFlags) error {
	name, ok := defaultConfigNames[flags.format]
	if !ok {
		return fmt.Errorf("%w: invalid format %q: must be yaml or json", ErrInvalidUsage, flags.format)
	}
	if flags.output != "" {
		name = flags.output
	}

	path, err := filepath.Abs(name)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", name, err)
	}

	logger := logging.NewInteractive(out)
	switch exists, err := afero.Exists(fsys, path); {
	case err != nil:
		return fmt.Errorf("check %s: %w", name, err)
	case exists && !flags.force:
		return fmt.Errorf("%w: %s already exists; use --force to overwrite", ErrInvalidUsage, name)
	case exists:
		logger.Warn("overwriting", logging.FieldPath, name)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{Full: flags.full, Format: flags.format})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}
	if err := fsutil.WriteAtomic(ctx, fsys, path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	logger.Info("wrote configuration", logging.FieldPath, name)
	logger.Info("next: lineml scan")
	return nil
}
