package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/lineml/internal/logging"
	"github.com/yaklabco/lineml/pkg/reporter"
)

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the version, commit hash, and build date of lineml.
With --format json the same fields are printed as a JSON object.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := reporter.ParseFormat(stringFlag(cmd.Flags(), "format", ""))
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidUsage, err)
			}

			if format == reporter.FormatJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]string{
					logging.FieldVersion: info.Version,
					logging.FieldCommit:  info.Commit,
					logging.FieldBuilt:   info.Date,
				})
			}

			logger := log.NewWithOptions(cmd.OutOrStdout(), log.Options{Level: log.InfoLevel})
			logger.Info("lineml",
				logging.FieldVersion, info.Version,
				logging.FieldCommit, info.Commit,
				logging.FieldBuilt, info.Date,
			)
			return nil
		},
	}
}
