package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/lineml/pkg/analysis"
	"github.com/yaklabco/lineml/pkg/flatxml"
	"github.com/yaklabco/lineml/pkg/linediff"
	"github.com/yaklabco/lineml/pkg/pipeline"
	"github.com/yaklabco/lineml/pkg/reporter"
	"github.com/yaklabco/lineml/pkg/runner"
	"github.com/yaklabco/lineml/pkg/scanpat"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{name: "empty defaults to text", input: "", want: reporter.FormatText},
		{name: "text", input: "text", want: reporter.FormatText},
		{name: "json", input: "json", want: reporter.FormatJSON},
		{name: "table", input: "table", want: reporter.FormatTable},
		{name: "unknown format", input: "sarif", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, format := range []reporter.Format{reporter.FormatText, reporter.FormatJSON, reporter.FormatTable, ""} {
		rep, err := reporter.New(reporter.Options{Writer: &bytes.Buffer{}, Format: format, Color: "never"})
		require.NoError(t, err)
		assert.NotNil(t, rep)
	}

	rep, err := reporter.New(reporter.Options{Writer: &bytes.Buffer{}, Format: "xml"})
	require.Error(t, err)
	assert.Nil(t, rep)
}

// scanResult holds a clean file, a malformed file, and a failed file.
func scanResult() *runner.Result {
	result := &runner.Result{}
	result.Accumulate(runner.FileOutcome{Path: "/work/a.xml", Result: &pipeline.Result{
		Path:  "/work/a.xml",
		Stats: pipeline.Stats{Lines: 3, Bytes: 30, Open: 1, Close: 1, SelfClosed: 1, Attrs: 2, MaxDepth: 1},
		Lines: []pipeline.LineInfo{
			{Lineno: 1, Kind: flatxml.Open, Tag: "a"},
			{Lineno: 2, Kind: flatxml.SelfClosed, Tag: "b", Attrs: 2, Depth: 1},
			{Lineno: 3, Kind: flatxml.Close, Tag: "a"},
		},
	}})
	result.Accumulate(runner.FileOutcome{Path: "/work/feeds/b.xml", Result: &pipeline.Result{
		Path:  "/work/feeds/b.xml",
		Stats: pipeline.Stats{Lines: 2, Bytes: 20, Text: 1, Open: 1, Demoted: 1, Unclosed: 1, MaxDepth: 1},
	}})
	result.Accumulate(runner.FileOutcome{Path: "/work/c.xml", Error: errors.New("read failure")})
	return result
}

func matchResult() *runner.Result {
	result := &runner.Result{}
	result.Accumulate(runner.FileOutcome{Path: "/work/a.xml", Result: &pipeline.Result{
		Path:  "/work/a.xml",
		Stats: pipeline.Stats{Lines: 2},
		Matches: []pipeline.Match{
			{Lineno: 1, Line: "<item id='7' name='x'/>", Captures: scanpat.Result{
				{Kind: scanpat.KindInt, Int: 7},
				{Kind: scanpat.KindString, Str: "x"},
			}},
			{Lineno: 2, Line: "<item id='8'/>", Cursor: 1, Captures: scanpat.Result{
				{Kind: scanpat.KindInt, Int: 8},
				{Kind: scanpat.KindString, Null: true},
			}},
		},
	}})
	result.Accumulate(runner.FileOutcome{Path: "/work/b.xml", Result: &pipeline.Result{Path: "/work/b.xml"}})
	return result
}

func TestTextReporter_NilResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{Writer: &buf, Color: "never", ShowSummary: true})

	count, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Contains(t, buf.String(), "No files to check")
}

func TestTextReporter_Scan(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer:      &buf,
		Color:       "never",
		Mode:        pipeline.ModeScan,
		ShowLines:   true,
		ShowSummary: true,
		WorkingDir:  "/work",
	})

	count, err := rep.Report(context.Background(), scanResult())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	output := buf.String()
	assert.Contains(t, output, "a.xml (ok) 3 lines, 30 B, 3 markup, 0 text, depth 1")
	assert.Contains(t, output, "feeds/b.xml (malformed)")
	assert.Contains(t, output, "1 demoted, 0 unbalanced, 1 unclosed")
	assert.Contains(t, output, "  <b/> 2 attrs")
	assert.Contains(t, output, "c.xml: error: read failure")
	assert.Contains(t, output, "2 files, 5 lines (50 B), 1 malformed file, 1 demoted line, 1 failed")
	assert.NotContains(t, output, "/work/")
}

func TestTextReporter_Match(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer:     &buf,
		Color:      "never",
		Mode:       pipeline.ModeMatch,
		ShowCursor: true,
	})

	count, err := rep.Report(context.Background(), matchResult())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t,
		"/work/a.xml:1:@0: <item id='7' name='x'/>  [7, x]\n"+
			"/work/a.xml:2:@1: <item id='8'/>  [8, <nil>]\n",
		buf.String())
}

func TestTextReporter_Render(t *testing.T) {
	t.Parallel()

	newResult := func() *runner.Result {
		result := &runner.Result{}
		result.Accumulate(runner.FileOutcome{Path: "a.xml", Result: &pipeline.Result{
			Rendered: []byte("<a x='1'>\n"), Changed: true, Written: true, BackupCreated: true,
		}})
		result.Accumulate(runner.FileOutcome{Path: "b.xml", Result: &pipeline.Result{
			Rendered: []byte("<b/>\n"),
		}})
		return result
	}

	t.Run("preview prints renderings", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		rep := reporter.NewTextReporter(reporter.Options{Writer: &buf, Color: "never", Mode: pipeline.ModeRender})
		count, err := rep.Report(context.Background(), newResult())
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, "==> a.xml <==\n<a x='1'>\n==> b.xml <==\n<b/>\n", buf.String())
	})

	t.Run("write lists changed files", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		rep := reporter.NewTextReporter(reporter.Options{
			Writer:      &buf,
			Color:       "never",
			Mode:        pipeline.ModeRender,
			Write:       true,
			ShowSummary: true,
		})
		_, err := rep.Report(context.Background(), newResult())
		require.NoError(t, err)
		assert.Equal(t, "a.xml (rewritten (backup created))\n1 file rewritten\n", buf.String())
	})
}

func TestTextReporter_RenderDiff(t *testing.T) {
	t.Parallel()

	before := []byte("<a>\n<b  x=1/>\n</a>\n")
	after := []byte("<a>\n<b x='1'/>\n</a>\n")

	result := &runner.Result{}
	result.Accumulate(runner.FileOutcome{Path: "/work/a.xml", Result: &pipeline.Result{
		Rendered: after, Changed: true, Diff: linediff.Compare("/work/a.xml", before, after),
	}})
	result.Accumulate(runner.FileOutcome{Path: "/work/b.xml", Result: &pipeline.Result{
		Rendered: []byte("<b/>\n"),
	}})

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer:     &buf,
		Color:      "never",
		Mode:       pipeline.ModeRender,
		ShowDiff:   true,
		WorkingDir: "/work",
	})
	count, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "--- a/a.xml\n"+
		"+++ b/a.xml\n"+
		"@@ -1,3 +1,3 @@\n"+
		" <a>\n"+
		"-<b  x=1/>\n"+
		"+<b x='1'/>\n"+
		" </a>\n", buf.String())
}

func tagReport() *analysis.Report {
	return &analysis.Report{
		ByTag: []analysis.TagAnalysis{
			{Tag: "item", Count: 1200, Files: []string{"a.xml", "b.xml"}},
			{Tag: "feed", Count: 2, Files: []string{"a.xml"}},
		},
		Totals: analysis.Totals{Files: 2, Elements: 1202, Tags: 2},
	}
}

func TestReporter_Tags(t *testing.T) {
	t.Parallel()

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		rep := reporter.NewTextReporter(reporter.Options{Writer: &buf, Color: "never", Tags: tagReport()})
		_, err := rep.Report(context.Background(), scanResult())
		require.NoError(t, err)

		output := buf.String()
		assert.Contains(t, output, "Tags (2 names, 1,202 elements)")
		assert.Contains(t, output, "  item    1,200  in 2 files\n")
		assert.Contains(t, output, "  feed        2  in 1 file\n")
	})

	t.Run("table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		rep := reporter.NewTableReporter(reporter.Options{Writer: &buf, Color: "never", Tags: tagReport()})
		_, err := rep.Report(context.Background(), scanResult())
		require.NoError(t, err)

		output := buf.String()
		assert.Contains(t, output, "TAG")
		assert.Contains(t, output, "COUNT")
		assert.Contains(t, output, "1,200")
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, Tags: tagReport()})
		_, err := rep.Report(context.Background(), scanResult())
		require.NoError(t, err)

		var output reporter.JSONOutput
		require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
		require.NotNil(t, output.Tags)
		assert.Equal(t, tagReport().ByTag, output.Tags.ByTag)
		assert.Equal(t, 1202, output.Tags.Totals.Elements)
	})

	t.Run("json without tags", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf})
		_, err := rep.Report(context.Background(), scanResult())
		require.NoError(t, err)
		assert.NotContains(t, buf.String(), `"tags"`)
	})
}

func TestJSONReporter_NilResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf})

	count, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Equal(t, "1.0.0", output.Version)
	assert.Equal(t, "scan", output.Mode)
	assert.Empty(t, output.Files)
}

func TestJSONReporter_Scan(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, Compact: true, WorkingDir: "/work"})

	count, err := rep.Report(context.Background(), scanResult())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"), "compact output is one line")

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	require.Len(t, output.Files, 3)
	assert.Equal(t, "a.xml", output.Files[0].Path)
	assert.Equal(t, "ok", output.Files[0].Status)
	require.Len(t, output.Files[0].Lines, 3)
	assert.Equal(t, "self-closed", output.Files[0].Lines[1].Kind)
	assert.Equal(t, "malformed", output.Files[1].Status)
	assert.Equal(t, 1, output.Files[1].Stats.Demoted)
	assert.Equal(t, "error", output.Files[2].Status)
	assert.Equal(t, "read failure", output.Files[2].Error)
	assert.Nil(t, output.Files[0].Rendered)

	assert.Equal(t, 2, output.Summary.FilesChecked)
	assert.Equal(t, 1, output.Summary.FilesErrored)
	assert.Equal(t, 1, output.Summary.FilesMalformed)
	assert.Equal(t, 5, output.Summary.Lines.Lines)
}

func TestJSONReporter_MatchCaptures(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, Mode: pipeline.ModeMatch})

	count, err := rep.Report(context.Background(), matchResult())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	require.Len(t, output.Files[0].Matches, 2)
	assert.Equal(t, []any{float64(7), "x"}, output.Files[0].Matches[0].Captures)
	assert.Equal(t, []any{float64(8), nil}, output.Files[0].Matches[1].Captures)
	assert.Empty(t, output.Files[1].Matches)
	assert.Equal(t, 2, output.Summary.Matches)
}

func TestJSONReporter_RenderPreview(t *testing.T) {
	t.Parallel()

	result := &runner.Result{}
	result.Accumulate(runner.FileOutcome{Path: "a.xml", Result: &pipeline.Result{Rendered: []byte("<a/>\n")}})

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, Mode: pipeline.ModeRender})
	_, err := rep.Report(context.Background(), result)
	require.NoError(t, err)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	require.NotNil(t, output.Files[0].Rendered)
	assert.Equal(t, "<a/>\n", *output.Files[0].Rendered)
	assert.Empty(t, output.Files[0].Diff)
}

func TestTableReporter(t *testing.T) {
	t.Parallel()

	t.Run("scan", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		rep := reporter.NewTableReporter(reporter.Options{
			Writer:      &buf,
			Color:       "never",
			Mode:        pipeline.ModeScan,
			ShowSummary: true,
			WorkingDir:  "/work",
		})

		count, err := rep.Report(context.Background(), scanResult())
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		output := buf.String()
		assert.Contains(t, output, "FILE")
		assert.Contains(t, output, "DEMOTED")
		assert.Contains(t, output, "feeds/b.xml")
		assert.Contains(t, output, "error: read failure")
		assert.Contains(t, output, "2 files checked | 1 failed | 1 malformed")
		assert.Contains(t, output, "Some files could not be read")
	})

	t.Run("match", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		rep := reporter.NewTableReporter(reporter.Options{Writer: &buf, Color: "never", Mode: pipeline.ModeMatch})

		count, err := rep.Report(context.Background(), matchResult())
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		output := buf.String()
		assert.Contains(t, output, "CAPTURES")
		assert.NotContains(t, output, "CURSOR")
		assert.Contains(t, output, "8, <nil>")
		assert.NotContains(t, output, "b.xml")
	})

	t.Run("no matches", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		rep := reporter.NewTableReporter(reporter.Options{
			Writer:      &buf,
			Color:       "never",
			Mode:        pipeline.ModeMatch,
			ShowSummary: true,
		})

		result := &runner.Result{}
		result.Accumulate(runner.FileOutcome{Path: "a.xml", Result: &pipeline.Result{}})
		count, err := rep.Report(context.Background(), result)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.Equal(t, "No matches (1 file checked)\n", buf.String())
	})
}
