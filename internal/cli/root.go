// Package cli implements the lineml commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/lineml/internal/logging"
)

// BuildInfo is the version stamped into the binary at build time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand returns the lineml command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var (
		debug bool
		color string
	)

	root := &cobra.Command{
		Use:   "lineml",
		Short: "Scan, match and canonicalize line-oriented XML",
		Long: `lineml reads files in which every line is either text or a single XML
element: an open tag, a close tag, or a self-closed tag. Lines are read
through a bounded buffer, so arbitrarily large logs and feeds stream in
constant memory.

It classifies lines and reports malformed markup, matches scanf-like
patterns against each element to pull out typed values, and renders lines
in canonical form, rewriting files safely with optional backups.`,
		PersistentPreRun: func(*cobra.Command, []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Commands read these back by name; see session.
	pf := root.PersistentFlags()
	pf.BoolVar(&debug, "debug", false, "enable debug logging")
	pf.String("config", "", "path to config file")
	pf.StringVar(&color, "color", "auto", "colorize output: auto, always, never")
	pf.String("format", "text", "output format: text, table, json")
	pf.IntP("jobs", "j", 0, "files processed in parallel (default: number of CPUs)")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrInvalidUsage, err)
	})

	root.AddCommand(
		newScanCommand(),
		newMatchCommand(),
		newRenderCommand(),
		newRestoreCommand(),
		newInitCommand(),
		newVersionCommand(info),
	)

	NewHelpFormatter(color, os.Stdout).ApplyToCommand(root)
	return root
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidUsage, err)
		}
		return nil
	}
}
