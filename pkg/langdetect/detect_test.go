package langdetect_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/lineml/pkg/langdetect"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		content  string
		expected string
	}{
		{
			name:     "xml declaration",
			path:     "feed.xml",
			content:  "<?xml version='1.0'?>\n<feed>\n</feed>\n",
			expected: "xml",
		},
		{
			name:     "empty xml by extension",
			path:     "empty.xml",
			expected: "xml",
		},
		{
			name:     "empty unknown",
			path:     "empty.unknownext",
			expected: "text",
		},
		{
			name:     "go source",
			path:     "main.go",
			content:  "package main\n",
			expected: "go",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, langdetect.Detect(tt.path, []byte(tt.content)))
		})
	}
}

func TestSniff(t *testing.T) {
	t.Parallel()

	t.Run("binary", func(t *testing.T) {
		t.Parallel()

		info := langdetect.Sniff("blob.xml", []byte("<a>\x00\x01\x02</a>"))
		assert.True(t, info.Binary)
		assert.True(t, info.Skippable())
		assert.Equal(t, "text", info.Language)
	})

	t.Run("vendored", func(t *testing.T) {
		t.Parallel()

		info := langdetect.Sniff("vendor/dep/a.xml", []byte("<a/>\n"))
		assert.True(t, info.Vendored)
		assert.True(t, info.Skippable())
	})

	t.Run("plain markup", func(t *testing.T) {
		t.Parallel()

		info := langdetect.Sniff("feeds/a.xml", []byte("<?xml version='1.0'?>\n<a/>\n"))
		assert.False(t, info.Skippable())
		assert.True(t, langdetect.IsMarkup(info.Language))
	})

	t.Run("head is truncated", func(t *testing.T) {
		t.Parallel()

		head := strings.Repeat("a", langdetect.SniffSize) + "\x00"
		assert.False(t, langdetect.Sniff("big.log", []byte(head)).Binary)
	})
}

func TestVendoredDir(t *testing.T) {
	t.Parallel()

	assert.True(t, langdetect.VendoredDir("vendor"))
	assert.True(t, langdetect.VendoredDir("web/node_modules/"))
	assert.False(t, langdetect.VendoredDir("feeds"))
}

func TestIsMarkup(t *testing.T) {
	t.Parallel()

	assert.True(t, langdetect.IsMarkup("xml"))
	assert.True(t, langdetect.IsMarkup("html"))
	assert.False(t, langdetect.IsMarkup("go"))
	assert.False(t, langdetect.IsMarkup("text"))
}
