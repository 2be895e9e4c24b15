package cli

import (
	"github.com/spf13/cobra"

	"github.com/yaklabco/lineml/internal/logging"
	"github.com/yaklabco/lineml/pkg/pipeline"
	"github.com/yaklabco/lineml/pkg/reporter"
)

type renderFlags struct {
	input     inputFlags
	write     bool
	noBackups bool
	check     bool
	diff      bool
}

func newRenderCommand() *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render [paths...]",
		Short: "Print or write the canonical form of every line",
		Long:  renderLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, flags)
		},
	}

	addInputFlags(cmd, &flags.input)
	cmd.Flags().BoolVarP(&flags.write, "write", "w", false, "rewrite changed files in place")
	cmd.Flags().BoolVar(&flags.noBackups, "no-backups", false, "do not leave backups when rewriting")
	cmd.Flags().BoolVar(&flags.check, "check", false, "exit 1 when a file is not in canonical form")
	cmd.Flags().BoolVarP(&flags.diff, "diff", "d", false, "print a unified diff instead of the rendering")

	return cmd
}

const renderLongDescription = `Render every line in canonical form: one space between attributes, every
value quoted, text escaped. Lines whose markup is malformed are rendered
as escaped text.

Without --write the rendering is printed. With --write each changed file
is replaced atomically, after a sidecar backup unless backups are
disabled. Files that are already canonical are never touched.

Examples:
  lineml render task.xml              # Print the rendering
  lineml render --write feeds/        # Rewrite files in place
  lineml render --write --no-backups  # Rewrite without backups
  lineml render --check               # Exit 1 if anything would change
  lineml render --diff --check        # Show what would change, exit 1 if any`

func runRender(cmd *cobra.Command, args []string, flags *renderFlags) error {
	cliCfg, err := flags.input.cliConfig(cmd)
	if err != nil {
		return err
	}
	cliCfg.NoBackups = flags.noBackups

	sess, err := newSession(cmd, &flags.input, cliCfg)
	if err != nil {
		return err
	}

	result, err := sess.execute(args, pipeline.Options{
		Mode:  pipeline.ModeRender,
		Write: flags.write,
		Diff:  flags.diff,
	})
	if err != nil {
		return err
	}

	if flags.write {
		sess.logger.Debug("render complete",
			logging.FieldWrite, true,
			logging.FieldFilesModified, result.Stats.FilesModified,
		)
	}

	// A plain preview prints the rendering itself, so it is left bare.
	// Writing and checking list the changed files instead, unless a diff
	// was asked for.
	listOnly := flags.write || (flags.check && !flags.diff)
	changed, err := sess.report(result, reporter.Options{
		Mode:        pipeline.ModeRender,
		Write:       listOnly,
		ShowDiff:    flags.diff,
		ShowSummary: listOnly || flags.diff,
	})
	if err != nil {
		return err
	}

	if flags.check && !flags.write && changed > 0 {
		return ErrNotCanonical
	}
	return nil
}
