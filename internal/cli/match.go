package cli

import (
	"github.com/spf13/cobra"

	"github.com/yaklabco/lineml/internal/logging"
	"github.com/yaklabco/lineml/pkg/pipeline"
	"github.com/yaklabco/lineml/pkg/reporter"
	"github.com/yaklabco/lineml/pkg/scanpat"
)

type matchFlags struct {
	input      inputFlags
	sequential bool
	cursor     bool
	noSummary  bool
}

func newMatchCommand() *cobra.Command {
	flags := &matchFlags{}

	cmd := &cobra.Command{
		Use:   "match PATTERN [paths...]",
		Short: "Match a scan pattern against every line",
		Long:  matchLongDescription,
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, args[0], args[1:], flags)
		},
	}

	addInputFlags(cmd, &flags.input)
	cmd.Flags().BoolVarP(&flags.sequential, "sequential", "s", false,
		"walk the attribute cursor across each line, matching once per attribute")
	cmd.Flags().BoolVar(&flags.cursor, "cursor", false, "print the attribute cursor of each match")
	cmd.Flags().BoolVar(&flags.noSummary, "no-summary", false, "omit the summary line")

	return cmd
}

const matchLongDescription = `Match a scan pattern against every line and print the lines that match
with their captured values.

A pattern is a tag followed by name='value' pairs. Each part is literal
text mixed with directives:

  %d %x %i  capture an integer (decimal, hex, C base prefix)
  %f        capture a floating point number
  %p        capture text up to the next literal or whitespace
  %n        attribute index, or bytes matched so far
  *         anything that is left
  ' '       any run of whitespace

Names are literal ("level='%p'") or sequential ("%p='%p'"); a name ending
in '?' makes the pair optional.

Exits 1 when no line matched, and 64 when the pattern does not compile.

Examples:
  lineml match "task id='%d'" tasks.xml
  lineml match "* %p='%p'" --sequential feed.xml
  lineml match "point x='%f' y='%f'" --format json shapes/`

func runMatch(cmd *cobra.Command, expr string, args []string, flags *matchFlags) error {
	pattern, err := scanpat.Cached(expr)
	if err != nil {
		return err
	}

	cliCfg, err := flags.input.cliConfig(cmd)
	if err != nil {
		return err
	}

	sess, err := newSession(cmd, &flags.input, cliCfg)
	if err != nil {
		return err
	}
	sess.logger.Debug("compiled pattern",
		logging.FieldPattern, pattern.String(),
		logging.FieldSequential, flags.sequential,
	)

	result, err := sess.execute(args, pipeline.Options{
		Mode:       pipeline.ModeMatch,
		Pattern:    pattern,
		Sequential: flags.sequential,
	})
	if err != nil {
		return err
	}

	matches, err := sess.report(result, reporter.Options{
		Mode:        pipeline.ModeMatch,
		ShowCursor:  flags.cursor,
		ShowSummary: !flags.noSummary,
	})
	if err != nil {
		return err
	}

	if matches == 0 {
		return ErrMatchesNotFound
	}
	return nil
}
