package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/lineml/pkg/flatxml"
	"github.com/yaklabco/lineml/pkg/pipeline"
)

// kindColumnWidth fits the longest kind name, "self-closed".
const kindColumnWidth = 11

// FormatLineInfo formats one classified line, indented by its depth.
// Example: "  12  open         <item> 2 attrs".
func (s *Styles) FormatLineInfo(info pipeline.LineInfo) string {
	var builder strings.Builder

	builder.WriteString(s.Location.Render(fmt.Sprintf("%6d", info.Lineno)))
	builder.WriteString("  ")
	builder.WriteString(s.KindStyle(info.Kind).Render(fmt.Sprintf("%-*s", kindColumnWidth, info.Kind)))
	builder.WriteString("  ")
	builder.WriteString(strings.Repeat("  ", info.Depth))

	switch info.Kind {
	case flatxml.Open:
		builder.WriteString(s.Tag.Render("<" + info.Tag + ">"))
	case flatxml.Close:
		builder.WriteString(s.Tag.Render("</" + info.Tag + ">"))
	case flatxml.SelfClosed:
		builder.WriteString(s.Tag.Render("<" + info.Tag + "/>"))
	case flatxml.Text:
		if info.Demoted {
			builder.WriteString(s.Warning.Render(fmt.Sprintf("demoted at offset %d", info.ErrorOffset)))
		}
	}

	if info.Attrs > 0 {
		builder.WriteString(" ")
		builder.WriteString(s.Dim.Render(plural(info.Attrs, "attr", "attrs")))
	}

	builder.WriteString("\n")
	return builder.String()
}

// FormatMatch formats a pattern match with its captures.
// Example: "feed.xml:3: <item id='7'/>  [7]".
func (s *Styles) FormatMatch(path string, match pipeline.Match, showCursor bool) string {
	var builder strings.Builder

	builder.WriteString(s.FilePath.Render(path))
	builder.WriteString(s.Location.Render(fmt.Sprintf(":%d:", match.Lineno)))
	if showCursor {
		builder.WriteString(s.Cursor.Render(fmt.Sprintf("@%d:", match.Cursor)))
	}
	builder.WriteString(" ")
	builder.WriteString(s.Text.Render(match.Line))

	if len(match.Captures) > 0 {
		values := make([]string, len(match.Captures))
		for i, c := range match.Captures {
			values[i] = c.String()
		}
		builder.WriteString("  ")
		builder.WriteString(s.Capture.Render("[" + strings.Join(values, ", ") + "]"))
	}

	builder.WriteString("\n")
	return builder.String()
}

// FormatFileHeader formats a file header with a short status.
func (s *Styles) FormatFileHeader(path, status string, failed bool) string {
	style := s.Success
	if failed {
		style = s.Failure
	}
	return s.FilePath.Render(path) + " " + style.Render("("+status+")")
}
