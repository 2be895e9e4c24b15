package pretty

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/yaklabco/lineml/pkg/analysis"
)

// FormatTags formats a tag report as an aligned list.
// Example: "  task          4  in 2 files".
func (s *Styles) FormatTags(report *analysis.Report) string {
	if report == nil {
		return ""
	}

	var builder strings.Builder
	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Tags"))
	builder.WriteString(s.Dim.Render(fmt.Sprintf(" (%s, %s elements)",
		plural(report.Totals.Tags, "name", "names"), humanize.Comma(int64(report.Totals.Elements)))))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	width := 0
	for _, tag := range report.ByTag {
		width = max(width, len(tag.Tag))
	}

	for _, tag := range report.ByTag {
		fmt.Fprintf(&builder, "  %s%s %8s  %s\n",
			s.Tag.Render(tag.Tag),
			strings.Repeat(" ", width-len(tag.Tag)),
			humanize.Comma(int64(tag.Count)),
			s.Dim.Render("in "+plural(tag.FileCount(), wordFile, wordFiles)),
		)
	}

	return builder.String()
}
