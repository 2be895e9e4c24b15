// Package linediff compares a file with its rendering.
//
// Rendering maps every input line to exactly one output line, so the two
// versions are aligned by line number and no edit-distance search is
// needed: line i of one side is compared with line i of the other. When
// the sides differ in length, the surplus lines are reported as removed
// or added at the end.
package linediff

import (
	"bytes"
	"fmt"
	"strings"
)

// Kind tells whether a line is context, removed or added.
type Kind int

const (
	// Context is an unchanged line shown around a change.
	Context Kind = iota
	// Removed is a line of the original.
	Removed
	// Added is a line of the rendering.
	Added
)

// contextLines is the number of unchanged lines shown around a change.
const contextLines = 3

// Line is one line of a hunk, without its terminator.
type Line struct {
	Kind Kind
	Text string
}

// Hunk is a run of changes with surrounding context. Starts are 1-based.
type Hunk struct {
	OldStart, OldCount int
	NewStart, NewCount int
	Lines              []Line
}

// Diff is the set of hunks between two versions of a file.
type Diff struct {
	Path      string
	Hunks     []Hunk
	Additions int
	Deletions int
}

// Compare returns the diff from before to after, or nil if they hold the
// same lines.
func Compare(path string, before, after []byte) *Diff {
	if bytes.Equal(before, after) {
		return nil
	}

	oldLines := split(before)
	newLines := split(after)

	var changed []int
	for i := range max(len(oldLines), len(newLines)) {
		if i >= len(oldLines) || i >= len(newLines) || oldLines[i] != newLines[i] {
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	d := &Diff{Path: path}
	for len(changed) > 0 {
		// Changes closer than two context windows share a hunk.
		n := 1
		for n < len(changed) && changed[n]-changed[n-1] <= 2*contextLines {
			n++
		}
		d.addHunk(oldLines, newLines, changed[0], changed[n-1])
		changed = changed[n:]
	}
	return d
}

// addHunk appends the hunk covering changed lines first through last.
func (d *Diff) addHunk(oldLines, newLines []string, first, last int) {
	from := max(first-contextLines, 0)
	to := min(last+contextLines, max(len(oldLines), len(newLines))-1)

	h := Hunk{OldStart: from + 1, NewStart: from + 1}
	var removed, added []Line

	flush := func() {
		h.Lines = append(h.Lines, removed...)
		h.Lines = append(h.Lines, added...)
		removed, added = removed[:0], added[:0]
	}

	for i := from; i <= to; i++ {
		hasOld, hasNew := i < len(oldLines), i < len(newLines)
		if hasOld && hasNew && oldLines[i] == newLines[i] {
			flush()
			h.Lines = append(h.Lines, Line{Kind: Context, Text: oldLines[i]})
			h.OldCount++
			h.NewCount++
			continue
		}
		if hasOld {
			removed = append(removed, Line{Kind: Removed, Text: oldLines[i]})
			h.OldCount++
			d.Deletions++
		}
		if hasNew {
			added = append(added, Line{Kind: Added, Text: newLines[i]})
			h.NewCount++
			d.Additions++
		}
	}
	flush()

	d.Hunks = append(d.Hunks, h)
}

// HasChanges reports whether d holds any hunk.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// Header returns the "diff --git" header line.
func (d *Diff) Header() string {
	if d == nil {
		return ""
	}
	path := strings.TrimPrefix(d.Path, "/")
	return fmt.Sprintf("diff --git a/%s b/%s", path, path)
}

// String returns the diff in unified format, without the git header.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}

	path := strings.TrimPrefix(d.Path, "/")

	var builder strings.Builder
	fmt.Fprintf(&builder, "--- a/%s\n+++ b/%s\n", path, path)
	for _, h := range d.Hunks {
		builder.WriteString(h.Range())
		builder.WriteByte('\n')
		for _, line := range h.Lines {
			builder.WriteString(line.Prefix())
			builder.WriteString(line.Text)
			builder.WriteByte('\n')
		}
	}
	return builder.String()
}

// Range returns the "@@ -a,b +c,d @@" line of the hunk.
func (h Hunk) Range() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
}

// Prefix returns the unified diff marker of the line.
func (l Line) Prefix() string {
	switch l.Kind {
	case Removed:
		return "-"
	case Added:
		return "+"
	default:
		return " "
	}
}

// split breaks content into lines without their terminators. A final
// line without a terminator is kept.
func split(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
