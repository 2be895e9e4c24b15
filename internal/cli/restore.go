package cli

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/yaklabco/lineml/internal/logging"
	"github.com/yaklabco/lineml/pkg/fsutil"
	"github.com/yaklabco/lineml/pkg/pipeline"
	"github.com/yaklabco/lineml/pkg/runner"
)

type restoreFlags struct {
	input       inputFlags
	keepBackups bool
}

func newRestoreCommand() *cobra.Command {
	flags := &restoreFlags{}

	cmd := &cobra.Command{
		Use:   "restore [paths...]",
		Short: "Undo render --write from the sidecar backups",
		Long: `Put back the content saved by "render --write" for every discovered file
that has a backup, then delete the backup.

Examples:
  lineml restore                  # Restore the current directory
  lineml restore feeds/a.xml      # Restore one file
  lineml restore --keep-backups   # Restore but keep the backups`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(cmd, args, flags)
		},
	}

	addInputFlags(cmd, &flags.input)
	cmd.Flags().BoolVar(&flags.keepBackups, "keep-backups", false, "keep the backups after restoring")

	return cmd
}

func runRestore(cmd *cobra.Command, args []string, flags *restoreFlags) error {
	cliCfg, err := flags.input.cliConfig(cmd)
	if err != nil {
		return err
	}

	sess, err := newSession(cmd, &flags.input, cliCfg)
	if err != nil {
		return err
	}

	opts := sess.runnerOptions(args, pipeline.Options{})
	mode := opts.Pipeline.Backup.Mode
	if mode == fsutil.BackupModeNone {
		return fmt.Errorf("%w: backups are disabled (render.backups.mode: none)", ErrConfig)
	}

	files, err := runner.Discover(sess.ctx, opts)
	if err != nil {
		return err
	}

	fsys := afero.NewOsFs()
	out := cmd.OutOrStdout()
	restored := 0
	var failed error

	for _, path := range files {
		ok, err := fsutil.RestoreBackup(sess.ctx, fsys, path, mode)
		if err != nil {
			if sess.ctx.Err() != nil {
				return err
			}
			sess.logger.Error("restore failed", logging.FieldPath, path, logging.FieldError, err)
			failed = ErrFilesFailed
			continue
		}
		if !ok {
			continue
		}
		restored++

		if !flags.keepBackups {
			if _, err := fsutil.RemoveBackup(fsys, path, mode); err != nil {
				sess.logger.Warn("backup not removed", logging.FieldPath, path, logging.FieldError, err)
			}
		}
		fmt.Fprintf(out, "%s (restored)\n", displayPath(sess.workDir, path))
	}

	fmt.Fprintf(out, "%d of %d files restored\n", restored, len(files))

	return failed
}
