package pretty

import (
	"strings"

	"github.com/yaklabco/lineml/pkg/linediff"
)

// FormatDiff formats d as a unified diff with removed lines in the error
// color and added lines in the success color.
func (s *Styles) FormatDiff(d *linediff.Diff) string {
	if !d.HasChanges() {
		return ""
	}

	path := strings.TrimPrefix(d.Path, "/")

	var builder strings.Builder
	builder.WriteString(s.Bold.Render("--- a/"+path) + "\n")
	builder.WriteString(s.Bold.Render("+++ b/"+path) + "\n")
	for _, h := range d.Hunks {
		builder.WriteString(s.Info.Render(h.Range()) + "\n")
		for _, line := range h.Lines {
			text := line.Prefix() + line.Text
			switch line.Kind {
			case linediff.Removed:
				text = s.Error.Render(text)
			case linediff.Added:
				text = s.Success.Render(text)
			case linediff.Context:
			}
			builder.WriteString(text + "\n")
		}
	}
	return builder.String()
}
