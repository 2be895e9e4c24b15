package cli

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/yaklabco/lineml/internal/ui/pretty"
)

// Help text is wrapped to the terminal, within these bounds.
const (
	defaultHelpWidth = 80
	maxHelpWidth     = 100
	minUsageWidth    = 30
)

type helpStyles struct {
	command    lipgloss.Style
	heading    lipgloss.Style
	subcommand lipgloss.Style
	flag       lipgloss.Style
	dim        lipgloss.Style
}

// newHelpStyles reuses the report palette, so help and output agree on
// what a tag or a path looks like.
func newHelpStyles(colorEnabled bool) helpStyles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return helpStyles{command: plain, heading: plain, subcommand: plain, flag: plain, dim: plain}
	}
	styles := pretty.NewStyles(true)
	return helpStyles{
		command:    styles.Tag.Bold(true),
		heading:    styles.SummaryTitle,
		subcommand: styles.KindOpen,
		flag:       styles.FilePath,
		dim:        styles.Dim,
	}
}

// HelpFormatter renders styled help and usage for a command tree.
type HelpFormatter struct {
	styles helpStyles
	width  int
}

// NewHelpFormatter creates a help formatter for writer under colorMode.
func NewHelpFormatter(colorMode string, writer io.Writer) *HelpFormatter {
	return &HelpFormatter{
		styles: newHelpStyles(pretty.IsColorEnabled(colorMode, writer)),
		width:  helpWidth(writer),
	}
}

// helpWidth is the terminal width of writer, clamped to maxHelpWidth.
func helpWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return min(width, maxHelpWidth)
		}
	}
	return defaultHelpWidth
}

const helpTemplate = `{{define "usage"}}{{heading "Usage:"}}
{{- if .Runnable}}
  {{command .UseLine}}{{end}}
{{- if .HasAvailableSubCommands}}
  {{command .CommandPath}} [command]{{end}}
{{- if .HasAvailableSubCommands}}

{{heading "Commands:"}}{{range .Commands}}{{if or .IsAvailableCommand (eq .Name "help")}}
  {{subcommand (rpad .Name .NamePadding)}} {{.Short}}{{end}}{{end}}
{{- end}}
{{- if .HasAvailableLocalFlags}}

{{heading "Flags:"}}
{{flags .LocalFlags}}
{{- end}}
{{- if .HasAvailableInheritedFlags}}

{{heading "Global Flags:"}}
{{flags .InheritedFlags}}
{{- end}}
{{- if .HasAvailableSubCommands}}

Use "{{command (print .CommandPath " [command] --help")}}" for more information about a command.
{{- end}}
{{end}}{{command .CommandPath}}

{{with (or .Long .Short)}}{{describe .}}

{{end}}{{template "usage" .}}`

// ApplyToCommand installs the help and usage functions on cmd. Subcommands
// inherit them.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	help := template.Must(template.New("help").Funcs(template.FuncMap{
		"command":    h.styles.command.Render,
		"heading":    h.styles.heading.Render,
		"subcommand": h.styles.subcommand.Render,
		"rpad":       rpad,
		"describe":   h.describe,
		"flags":      h.flags,
	}).Parse(helpTemplate))
	usage := help.Lookup("usage")

	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		if err := help.Execute(c.OutOrStdout(), c); err != nil {
			c.PrintErrln(err)
		}
	})
	cmd.SetUsageFunc(func(c *cobra.Command) error {
		if err := usage.Execute(c.OutOrStderr(), c); err != nil {
			return fmt.Errorf("render usage: %w", err)
		}
		return nil
	})
}

// describe wraps the prose of a long description. Indented lines are
// examples: they keep their layout and their "#" comments are dimmed.
func (h *HelpFormatter) describe(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		if !strings.HasPrefix(line, "  ") {
			lines[i] = wordwrap.String(line, h.width)
			continue
		}
		if idx := strings.Index(line, "# "); idx > 0 {
			lines[i] = line[:idx] + h.styles.dim.Render(line[idx:])
		}
	}
	return strings.Join(lines, "\n")
}

// flags lays out a flag set in two columns with the usage wrapped to the
// help width.
func (h *HelpFormatter) flags(fs *pflag.FlagSet) string {
	type row struct {
		names, arg, usage string
		width             int
	}

	var rows []row
	nameWidth := 0
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		r := row{names: "    --" + f.Name}
		if f.Shorthand != "" {
			r.names = "-" + f.Shorthand + ", --" + f.Name
		}
		r.arg, r.usage = pflag.UnquoteUsage(f)
		r.usage += defaultSuffix(f)
		r.width = len(r.names)
		if r.arg != "" {
			r.width += 1 + len(r.arg)
		}
		nameWidth = max(nameWidth, r.width)
		rows = append(rows, r)
	})

	indent := 2 + nameWidth + 3
	usageWidth := max(h.width-indent, minUsageWidth)

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("  ")
		b.WriteString(h.styles.flag.Render(r.names))
		if r.arg != "" {
			b.WriteString(" " + h.styles.dim.Render(r.arg))
		}
		b.WriteString(strings.Repeat(" ", nameWidth-r.width+3))

		wrapped := wordwrap.String(r.usage, usageWidth)
		b.WriteString(strings.ReplaceAll(wrapped, "\n", "\n"+strings.Repeat(" ", indent)))
	}
	return b.String()
}

// defaultSuffix describes a non-zero default value.
func defaultSuffix(f *pflag.Flag) string {
	switch f.DefValue {
	case "", "0", "false", "[]":
		return ""
	}
	if f.Value.Type() == "string" {
		return fmt.Sprintf(" (default %q)", f.DefValue)
	}
	return " (default " + f.DefValue + ")"
}

func rpad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
