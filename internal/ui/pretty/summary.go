package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/yaklabco/lineml/pkg/pipeline"
	"github.com/yaklabco/lineml/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

// plural returns "1 file" or "n files".
func plural(n int, singular, pluralWord string) string {
	if n == 1 {
		return "1 " + singular
	}
	return strconv.Itoa(n) + " " + pluralWord
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "3 files, 120 lines (4.2 KiB), 1 malformed file, 2 demoted lines".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats, mode pipeline.Mode) string {
	var parts []string

	switch mode {
	case pipeline.ModeMatch:
		if stats.Matches == 0 {
			parts = append(parts, s.Warning.Render("No matches")+
				s.Dim.Render(fmt.Sprintf(" (%s checked)", plural(stats.FilesProcessed, wordFile, wordFiles))))
		} else {
			parts = append(parts, s.Success.Render(plural(stats.Matches, "match", "matches"))+
				fmt.Sprintf(" in %d of %s", stats.FilesMatched, plural(stats.FilesProcessed, wordFile, wordFiles)))
		}

	case pipeline.ModeRender:
		switch {
		case stats.FilesModified > 0:
			parts = append(parts, s.Success.Render(plural(stats.FilesModified, wordFile, wordFiles)+" rewritten"))
		case stats.FilesChanged > 0:
			parts = append(parts, s.Warning.Render(fmt.Sprintf("%d of %s would change",
				stats.FilesChanged, plural(stats.FilesProcessed, wordFile, wordFiles))))
		default:
			parts = append(parts, s.Success.Render("All files canonical")+
				s.Dim.Render(fmt.Sprintf(" (%s checked)", plural(stats.FilesProcessed, wordFile, wordFiles))))
		}
		if stats.FilesSkipped > 0 {
			parts = append(parts, s.Warning.Render(fmt.Sprintf("%d skipped", stats.FilesSkipped)))
		}

	case pipeline.ModeScan:
		parts = append(parts, fmt.Sprintf("%s, %s %s",
			plural(stats.FilesProcessed, wordFile, wordFiles),
			plural(stats.Lines.Lines, "line", "lines"),
			s.Dim.Render("("+humanize.IBytes(uint64(max(stats.Lines.Bytes, 0)))+")"),
		))
		if stats.FilesMalformed == 0 {
			parts = append(parts, s.Success.Render("all well formed"))
		} else {
			parts = append(parts, s.Failure.Render(plural(stats.FilesMalformed, "malformed file", "malformed files")))
			if stats.Lines.Demoted > 0 {
				parts = append(parts, s.Warning.Render(plural(stats.Lines.Demoted, "demoted line", "demoted lines")))
			}
			if stats.Lines.Unbalanced > 0 {
				parts = append(parts, s.Warning.Render(plural(stats.Lines.Unbalanced, "unbalanced tag", "unbalanced tags")))
			}
		}
	}

	if stats.FilesErrored > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	row := func(label, value string) {
		fmt.Fprintf(&builder, "  %-19s%s\n", label+":", value)
	}

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	row("Files checked", s.SummaryValue.Render(strconv.Itoa(stats.FilesProcessed)))
	if stats.FilesErrored > 0 {
		row("Files failed", s.Error.Render(strconv.Itoa(stats.FilesErrored)))
	}
	if stats.FilesMalformed > 0 {
		row("Files malformed", s.Failure.Render(strconv.Itoa(stats.FilesMalformed)))
	}
	if stats.FilesModified > 0 {
		row("Files rewritten", s.Success.Render(strconv.Itoa(stats.FilesModified)))
	}

	builder.WriteString("\n")

	lines := stats.Lines
	row("Lines", s.SummaryValue.Render(humanize.Comma(int64(lines.Lines))))
	row("Bytes", s.SummaryValue.Render(humanize.IBytes(uint64(max(lines.Bytes, 0)))))
	row("Markup lines", s.SummaryValue.Render(humanize.Comma(int64(lines.Markup()))))
	row("Attributes", s.SummaryValue.Render(humanize.Comma(int64(lines.Attrs))))
	row("Max depth", s.SummaryValue.Render(strconv.Itoa(lines.MaxDepth)))
	if lines.Demoted > 0 {
		row("Demoted", s.Warning.Render(strconv.Itoa(lines.Demoted)))
	}
	if lines.Unbalanced > 0 {
		row("Unbalanced", s.Warning.Render(strconv.Itoa(lines.Unbalanced)))
	}
	if stats.Matches > 0 {
		row("Matches", s.Success.Render(strconv.Itoa(stats.Matches)))
	}

	builder.WriteString("\n")

	switch {
	case stats.FilesErrored > 0:
		builder.WriteString(s.Failure.Render("Some files could not be read"))
	case stats.FilesMalformed > 0:
		builder.WriteString(s.Warning.Render("Malformed markup found"))
	default:
		builder.WriteString(s.Success.Render("All markup well formed"))
	}
	builder.WriteString("\n")

	return builder.String()
}
