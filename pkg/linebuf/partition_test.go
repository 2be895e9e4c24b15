package linebuf_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/lineml/pkg/linebuf"
)

const (
	patternCols = 30
	patternLen  = patternCols*(patternCols-1) - 1
)

// patternChar is the byte expected at a 1-based line and column.
func patternChar(line, col int) byte {
	return byte('/' + (col*line)%80)
}

// fillPattern lays out ncols printable columns per line followed by "\n",
// for patternLen bytes, and reports how the bytes split into lines.
func fillPattern(ncols int) (pat []byte, fullLines, partialLine int) {
	pat = make([]byte, patternLen)
	for i := range pat {
		line := i/(ncols+1) + 1
		col := i%(ncols+1) + 1
		if col <= ncols {
			pat[i] = patternChar(line, col)
			partialLine = 1
		} else {
			pat[i] = '\n'
			fullLines++
			partialLine = 0
		}
	}

	return pat, fullLines, partialLine
}

type coverageCounter map[linebuf.CoverageCase]int

func (c coverageCounter) Count(cc linebuf.CoverageCase) { c[cc]++ }

type lineRecord struct {
	Lineno int
	Line   string
	Ending string
}

// TestPartition runs every column width against the three sources, with
// pushback of every third line, and checks the exact line partition.
func TestPartition(t *testing.T) {
	t.Parallel()

	counts := coverageCounter{}
	opts := []linebuf.Option{
		linebuf.WithBufferSizes(10, 20),
		linebuf.WithCounters(counts),
	}

	fs := afero.NewOsFs()
	tempFile := filepath.Join(t.TempDir(), "partition.txt")

	for ncols := 0; ncols <= patternLen; ncols++ {
		if ncols > patternCols {
			ncols += ncols / 7
			if ncols > patternLen {
				ncols = patternLen
			}
		}

		pat, fullLines, partialLine := fillPattern(ncols)
		pat2 := bytes.Clone(pat)

		require.NoError(t, afero.WriteFile(fs, tempFile, pat, 0o644))
		fileSrc, err := linebuf.OpenFile(fs, tempFile)
		require.NoError(t, err)

		readers := map[string]*linebuf.Reader{
			"string": linebuf.NewBytes(pat2, opts...),
			"file":   linebuf.New(fileSrc, append(opts, linebuf.WithOwnedSource())...),
			"memory": linebuf.New(linebuf.NewMemorySpan(pat2), opts...),
		}

		records := make(map[string][]lineRecord, len(readers))
		for name, in := range readers {
			records[name] = checkPartition(t, name, in, ncols, fullLines, partialLine)
			assert.Equal(t, pat, pat2, "%s ncols=%d: input was modified", name, ncols)
			require.NoError(t, in.Close())
		}

		if diff := cmp.Diff(records["string"], records["file"]); diff != "" {
			t.Errorf("ncols=%d string vs file (-want +got):\n%s", ncols, diff)
		}
		if diff := cmp.Diff(records["string"], records["memory"]); diff != "" {
			t.Errorf("ncols=%d string vs memory (-want +got):\n%s", ncols, diff)
		}

		if t.Failed() {
			return // no error cascades please
		}
	}

	for _, c := range linebuf.AllCoverageCases() {
		assert.NotZero(t, counts[c], "no coverage for %s", c)
	}
}

func checkPartition(
	t *testing.T,
	name string,
	in *linebuf.Reader,
	ncols, fullLines, partialLine int,
) []lineRecord {
	t.Helper()

	var records []lineRecord
	lastLine := fullLines + partialLine

	for lineno := 1; lineno <= lastLine; lineno++ {
		require.False(t, in.Done(), "%s ncols=%d lineno=%d: early done", name, ncols, lineno)

		line := in.CurrentLine()
		if lineno%3 == 0 {
			saved := in.SaveLine()
			oldLen := in.CurrentLineLength()
			assert.Equal(t, string(line), string(saved))

			ending := []byte(in.CurrentLineEnding())
			if lineno%6 == 0 {
				in.Pushback(ending, true)
				in.Pushback(saved, false)
			} else {
				sawNext := in.Next()
				in.Pushback(ending, false)
				in.Pushback(saved, false)
				// Two newlines were eaten, unless there was no next line.
				if sawNext {
					in.AddToLineno(-1)
				}
			}

			line = in.CurrentLine()
			assert.Equal(t, string(saved), string(line), "%s ncols=%d lineno=%d", name, ncols, lineno)
			assert.Equal(t, oldLen, in.CurrentLineLength())

			if lineno == lastLine {
				// A final line pushed back after EOF is counted twice.
				in.SetLineno(lineno)
			}
		}

		require.Equal(t, lineno, in.Lineno(), "%s ncols=%d", name, ncols)

		expectLen := ncols
		if lineno > fullLines {
			expectLen = patternLen % (ncols + 1)
		}
		require.Len(t, line, expectLen, "%s ncols=%d lineno=%d", name, ncols, lineno)
		require.Equal(t, expectLen, in.CurrentLineLength())
		for j, ch := range line {
			require.Equal(t, patternChar(lineno, j+1), ch,
				"%s ncols=%d lineno=%d col=%d", name, ncols, lineno, j+1)
		}

		expectEnding := ""
		if lineno <= fullLines {
			expectEnding = "\n"
		}
		assert.Equal(t, expectEnding, in.CurrentLineEnding())

		records = append(records, lineRecord{
			Lineno: in.Lineno(),
			Line:   string(line),
			Ending: in.CurrentLineEnding(),
		})
		in.Next()
	}

	for doneTest := 0; doneTest <= 3; doneTest++ {
		if doneTest == 2 {
			in.SetDone()
		}
		line := in.CurrentLine()
		assert.NotNil(t, line)
		require.True(t, in.Done(), "%s ncols=%d: not done", name, ncols)
		assert.Empty(t, line)
		assert.Zero(t, in.CurrentLineLength())
		assert.Empty(t, in.CurrentLineEnding())
		assert.False(t, in.Next())
	}

	return records
}
