package config

import (
	"encoding/json"
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full writes every setting uncommented with its default value.
	// If false, generates a minimal commented template.
	Full bool

	// Format is the output format: "yaml" or "json".
	Format string
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return templateToJSON()
	}
	if opts.Full {
		return generateFullTemplate()
	}
	return []byte(minimalTemplate), nil
}

const minimalTemplate = `# lineml configuration
# See: https://github.com/yaklabco/lineml

# File suffixes read when walking directories
extensions:
  - .xml
  - .log

# Glob patterns a file must match / must not match
# include:
#   - "logs/**"
# exclude:
#   - "**/tmp/**"

# Largest single line the reader will buffer
# max_line_size: 64 MiB

# Number of parallel workers (0 = auto)
# jobs: 0

# output:
#   format: text   # text, table, or json
#   color: auto    # auto, always, or never
`

// generateFullTemplate writes every setting with its default value.
func generateFullTemplate() ([]byte, error) {
	body, err := NewConfig().ToYAMLWithHeader(`# lineml configuration - Full Template
# See: https://github.com/yaklabco/lineml
#
# Every setting is listed with its default value.
# Environment variables (LINEML_*) and flags override this file.`)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return body, nil
}

// templateToJSON renders the default configuration as JSON.
func templateToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(NewConfig(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return append(jsonBytes, '\n'), nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# lineml configuration
# See: https://github.com/yaklabco/lineml`
}
