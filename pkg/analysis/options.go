package analysis

import "fmt"

// SortField orders the tags of a Report.
type SortField string

// Sort orders.
const (
	SortByCount SortField = "count" // element count
	SortByAlpha SortField = "alpha" // tag name
	SortByFiles SortField = "files" // files the tag appears in
)

// ParseSortField parses a sort order name.
func ParseSortField(name string) (SortField, error) {
	if s := SortField(name); s.IsValid() {
		return s, nil
	}
	return "", fmt.Errorf("invalid sort %q: must be count, alpha or files", name)
}

// IsValid reports whether s is a known sort order.
func (s SortField) IsValid() bool {
	return s == SortByCount || s == SortByAlpha || s == SortByFiles
}

// Descending reports whether s naturally lists the largest first. Names
// read best ascending, counts descending.
func (s SortField) Descending() bool {
	return s != SortByAlpha
}

// Options configures Analyze.
type Options struct {
	IncludeByFile bool      // also build the per-file breakdown
	SortBy        SortField // order of ByTag and ByFile
	SortDesc      bool      // largest first
	Limit         int       // keep the first Limit tags; 0 keeps all

	// WorkingDir, when set, makes file paths relative to it.
	WorkingDir string
}

// DefaultOptions sorts by descending count and keeps the per-file view.
func DefaultOptions() Options {
	return Options{IncludeByFile: true, SortBy: SortByCount, SortDesc: SortByCount.Descending()}
}
