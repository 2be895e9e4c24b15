package analysis

// Report contains the tag views of a scan.
// Computed once by Analyze, used by all reporters.
type Report struct {
	// ByTag aggregates element counts per tag name.
	ByTag []TagAnalysis `json:"byTag"`

	// ByFile summarizes the tags of each file.
	ByFile []FileAnalysis `json:"byFile,omitempty"`

	// Totals contains aggregate statistics.
	Totals Totals `json:"totals"`

	// Version is the report format version.
	Version string `json:"version"`
}

// Totals contains aggregate statistics for the report.
type Totals struct {
	Files    int `json:"files"`
	Elements int `json:"elements"`
	Tags     int `json:"tags"`
}

// TagAnalysis contains aggregated data for a single tag name.
type TagAnalysis struct {
	Tag   string   `json:"tag"`
	Count int      `json:"count"`
	Files []string `json:"files,omitempty"`
}

// FileCount returns the number of files the tag appears in.
func (t TagAnalysis) FileCount() int {
	return len(t.Files)
}

// FileAnalysis contains aggregated data for a single file.
type FileAnalysis struct {
	Path     string `json:"path"`
	Elements int    `json:"elements"`
	Tags     int    `json:"tags"`

	// Top is the most frequent tag of the file.
	Top string `json:"top,omitempty"`
}
