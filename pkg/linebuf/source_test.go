package linebuf_test

import (
	"io"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/lineml/pkg/linebuf"
)

func TestFileSource(t *testing.T) {
	t.Parallel()

	t.Run("reads lines through the reader", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/data/in.xml", []byte("<a>\ntext\n</a>"), 0o644))

		src, err := linebuf.OpenFile(fs, "/data/in.xml")
		require.NoError(t, err)
		assert.Equal(t, "/data/in.xml", src.Name())

		in := linebuf.New(src, linebuf.WithOwnedSource())
		assert.Equal(t, []string{"<a>|\n", "text|\n", "</a>|"}, collectLines(in))
		require.NoError(t, in.Close())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "f", []byte("x"), 0o644))

		src, err := linebuf.OpenFile(fs, "f")
		require.NoError(t, err)
		require.NoError(t, src.Close())
		require.NoError(t, src.Close())

		n, err := src.Read(make([]byte, 4))
		assert.Zero(t, n)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := linebuf.OpenFile(afero.NewMemMapFs(), "nope")
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("wraps an open file", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "g", []byte("one\n"), 0o644))
		f, err := fs.Open("g")
		require.NoError(t, err)

		in := linebuf.New(linebuf.NewFileSource(f), linebuf.WithOwnedSource())
		assert.Equal(t, "one", string(in.CurrentLine()))
		require.NoError(t, in.Close())
	})
}

func TestMemorySource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		offset, limit int
		want          string
	}{
		{name: "whole span", offset: 0, limit: 11, want: "hello world"},
		{name: "window", offset: 6, limit: 9, want: "wor"},
		{name: "limit clamped", offset: 6, limit: 100, want: "world"},
		{name: "offset past limit", offset: 20, limit: 5, want: ""},
		{name: "negative offset", offset: -3, limit: 5, want: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			base := []byte("hello world")
			src := linebuf.NewMemorySource(base, tt.offset, tt.limit)
			assert.Equal(t, len(tt.want), src.Remaining())

			got, err := io.ReadAll(src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, "hello world", string(base))

			// Reading again after the end stays at the end.
			n, err := src.Read(make([]byte, 1))
			assert.Zero(t, n)
			assert.ErrorIs(t, err, io.EOF)
			assert.NoError(t, src.Close())
		})
	}
}
