package reporter

import (
	"fmt"
	"slices"
)

// Format is an output format name.
type Format string

// Output formats.
const (
	FormatText  Format = "text"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

//nolint:gochecknoglobals // Read-only list of Format values.
var formats = []Format{FormatText, FormatTable, FormatJSON}

// ParseFormat parses a format name. The empty name is text.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return FormatText, nil
	}
	if f := Format(name); f.IsValid() {
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q; valid formats: text, table, json", name)
}

func (f Format) String() string {
	return string(f)
}

// IsValid reports whether f is one of the output formats.
func (f Format) IsValid() bool {
	return slices.Contains(formats, f)
}
