// Package analysis aggregates the tag counts of a scan into per-tag and
// per-file views.
package analysis

import (
	"cmp"
	"path/filepath"
	"slices"

	"github.com/yaklabco/lineml/pkg/runner"
)

// ReportVersion is the current report format version.
const ReportVersion = "1.0.0"

// makeRelativePath converts an absolute path to a relative path from workDir.
// If workDir is empty or conversion fails, returns the original path.
func makeRelativePath(absPath, workDir string) string {
	if workDir == "" {
		return absPath
	}
	relPath, err := filepath.Rel(workDir, absPath)
	if err != nil || !filepath.IsLocal(relPath) {
		return absPath
	}
	return relPath
}

// Analyze transforms a runner.Result into a Report. Files are counted
// only when they were scanned with tag counting on.
func Analyze(result *runner.Result, opts Options) *Report {
	report := &Report{Version: ReportVersion}
	if result == nil {
		return report
	}

	byTag := make(map[string]*TagAnalysis)

	for _, file := range result.Files {
		if file.Result == nil || file.Result.Tags == nil {
			continue
		}
		report.Totals.Files++

		path := makeRelativePath(file.Path, opts.WorkingDir)
		fa := FileAnalysis{Path: path, Tags: len(file.Result.Tags)}
		topCount := 0

		for tag, count := range file.Result.Tags {
			fa.Elements += count
			if count > topCount || (count == topCount && tag < fa.Top) {
				fa.Top, topCount = tag, count
			}

			ta, ok := byTag[tag]
			if !ok {
				ta = &TagAnalysis{Tag: tag}
				byTag[tag] = ta
			}
			ta.Count += count
			ta.Files = append(ta.Files, path)
		}

		report.Totals.Elements += fa.Elements
		if opts.IncludeByFile {
			report.ByFile = append(report.ByFile, fa)
		}
	}

	report.Totals.Tags = len(byTag)
	report.ByTag = make([]TagAnalysis, 0, len(byTag))
	for _, ta := range byTag {
		slices.Sort(ta.Files)
		report.ByTag = append(report.ByTag, *ta)
	}

	sortTagAnalysis(report.ByTag, opts.SortBy, opts.SortDesc)
	sortFileAnalysis(report.ByFile, opts.SortBy, opts.SortDesc)

	if opts.Limit > 0 && len(report.ByTag) > opts.Limit {
		report.ByTag = report.ByTag[:opts.Limit]
	}

	return report
}

// byCount orders by count, breaking ties alphabetically so output is stable.
func byCount(leftCount, rightCount int, leftName, rightName string, desc bool) int {
	result := cmp.Compare(leftCount, rightCount)
	if desc {
		result = -result
	}
	if result == 0 {
		result = cmp.Compare(leftName, rightName)
	}
	return result
}

func sortTagAnalysis(tags []TagAnalysis, sortBy SortField, desc bool) {
	slices.SortFunc(tags, func(left, right TagAnalysis) int {
		switch sortBy {
		case SortByAlpha:
			// Alphabetical sorting is always ascending (A-Z)
			return cmp.Compare(left.Tag, right.Tag)
		case SortByFiles:
			return byCount(left.FileCount(), right.FileCount(), left.Tag, right.Tag, desc)
		default: // SortByCount
			return byCount(left.Count, right.Count, left.Tag, right.Tag, desc)
		}
	})
}

func sortFileAnalysis(files []FileAnalysis, sortBy SortField, desc bool) {
	slices.SortFunc(files, func(left, right FileAnalysis) int {
		switch sortBy {
		case SortByAlpha:
			return cmp.Compare(left.Path, right.Path)
		case SortByFiles:
			return byCount(left.Tags, right.Tags, left.Path, right.Path, desc)
		default: // SortByCount
			return byCount(left.Elements, right.Elements, left.Path, right.Path, desc)
		}
	})
}
