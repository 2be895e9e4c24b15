package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/lineml/pkg/analysis"
	"github.com/yaklabco/lineml/pkg/pipeline"
	"github.com/yaklabco/lineml/pkg/reporter"
)

type scanFlags struct {
	input     inputFlags
	lines     bool
	strict    bool
	noSummary bool
	tags      bool
	sortBy    string
	top       int
}

func newScanCommand() *cobra.Command {
	flags := &scanFlags{}

	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Classify every line of markup files",
		Long:  scanLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, flags)
		},
	}

	addInputFlags(cmd, &flags.input)
	cmd.Flags().BoolVarP(&flags.lines, "lines", "l", false, "list the kind and tag of every line")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "exit 1 when a file has malformed markup")
	cmd.Flags().BoolVar(&flags.noSummary, "no-summary", false, "omit the summary line")
	cmd.Flags().BoolVar(&flags.tags, "tags", false, "count elements per tag name")
	cmd.Flags().StringVar(&flags.sortBy, "sort", string(analysis.SortByCount),
		"order of the tag breakdown: count, alpha, files")
	cmd.Flags().IntVar(&flags.top, "top", 0, "show only the first N tags (0 shows all)")

	return cmd
}

const scanLongDescription = `Classify every line of every input as text, an open tag, a close tag or
a self-closed tag, and report per-file statistics: line and byte counts,
attributes, nesting depth, and lines whose markup was malformed and
demoted to text.

By default, scans all .xml and .log files in the current directory and
subdirectories. Use "-" to read standard input.

Examples:
  lineml scan                      # Scan current directory
  lineml scan feeds/ app.log       # Scan a directory and a file
  lineml scan --lines task.xml     # List every line
  lineml scan --strict             # Exit 1 on malformed markup
  lineml scan --format table       # Per-file table
  lineml scan --tags --top 10      # Ten most frequent tags
  cat x.xml | lineml scan -        # Scan standard input`

func runScan(cmd *cobra.Command, args []string, flags *scanFlags) error {
	cliCfg, err := flags.input.cliConfig(cmd)
	if err != nil {
		return err
	}
	cliCfg.Strict = flags.strict

	sortBy, err := analysis.ParseSortField(flags.sortBy)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUsage, err)
	}
	if flags.top < 0 {
		return fmt.Errorf("%w: --top must be >= 0", ErrInvalidUsage)
	}

	sess, err := newSession(cmd, &flags.input, cliCfg)
	if err != nil {
		return err
	}

	result, err := sess.execute(args, pipeline.Options{
		Mode:      pipeline.ModeScan,
		KeepLines: flags.lines,
		CountTags: flags.tags,
	})
	if err != nil {
		return err
	}

	var tags *analysis.Report
	if flags.tags {
		opts := analysis.DefaultOptions()
		opts.SortBy = sortBy
		opts.SortDesc = sortBy.Descending()
		opts.Limit = flags.top
		opts.WorkingDir = sess.workDir
		tags = analysis.Analyze(result, opts)
	}

	malformed, err := sess.report(result, reporter.Options{
		Mode:        pipeline.ModeScan,
		ShowLines:   flags.lines,
		ShowSummary: !flags.noSummary,
		Tags:        tags,
	})
	if err != nil {
		return err
	}

	if sess.cfg.Strict && malformed > 0 {
		return ErrMalformedLines
	}
	return nil
}
