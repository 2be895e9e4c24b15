package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/lineml/pkg/config"
)

func TestConfigClone(t *testing.T) {
	t.Run("nil config returns nil", func(t *testing.T) {
		var c *config.Config
		clone := c.Clone()
		assert.Nil(t, clone)
	})

	t.Run("empty config", func(t *testing.T) {
		c := &config.Config{}
		clone := c.Clone()
		require.NotNil(t, clone)
		assert.NotSame(t, c, clone)
	})

	t.Run("deep copies slices", func(t *testing.T) {
		original := &config.Config{
			Extensions: []string{".xml"},
			Exclude:    []string{"**/tmp/**", "vendor/**"},
		}

		clone := original.Clone()
		require.NotNil(t, clone)
		assert.Equal(t, original.Exclude, clone.Exclude)

		clone.Exclude[0] = "changed"
		clone.Extensions[0] = ".log"
		assert.Equal(t, "**/tmp/**", original.Exclude[0])
		assert.Equal(t, ".xml", original.Extensions[0])
	})

	t.Run("deep copies pointers", func(t *testing.T) {
		original := config.NewConfig()
		clone := original.Clone()

		*clone.Render.Backups.Enabled = false
		*clone.FollowSymlinks = true
		assert.True(t, *original.Render.Backups.Enabled)
		assert.False(t, *original.FollowSymlinks)
	})

	t.Run("preserves all fields", func(t *testing.T) {
		original := config.NewConfig()
		original.Include = []string{"logs/**"}
		original.Jobs = 4
		original.Output.Format = config.FormatJSON
		original.Strict = true
		original.NoBackups = true

		clone := original.Clone()
		assert.Equal(t, original, clone)
	})
}

func TestConfigToYAML(t *testing.T) {
	t.Run("nil config returns nil", func(t *testing.T) {
		var cfg *config.Config
		data, err := cfg.ToYAML()
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("defaults serialize", func(t *testing.T) {
		data, err := config.NewConfig().ToYAML()
		require.NoError(t, err)
		assert.Contains(t, string(data), "max_line_size: 64 MiB")
		assert.Contains(t, string(data), "format: text")
		assert.Contains(t, string(data), "mode: sidecar")
		assert.NotContains(t, string(data), "strict")
	})

	t.Run("header is prepended", func(t *testing.T) {
		data, err := config.NewConfig().ToYAMLWithHeader("# top")
		require.NoError(t, err)
		assert.Contains(t, string(data), "# top\n\n")
	})
}

func TestFromYAML(t *testing.T) {
	t.Run("parses valid YAML", func(t *testing.T) {
		cfg, err := config.FromYAML([]byte(`
extensions: [.xml]
follow_symlinks: true
max_line_size: 1 MiB
output:
  format: table
render:
  backups:
    enabled: false
`))
		require.NoError(t, err)
		assert.Equal(t, []string{".xml"}, cfg.Extensions)
		assert.True(t, cfg.FollowsSymlinks())
		assert.Equal(t, config.ByteSize(1<<20), cfg.MaxLineSize)
		assert.Equal(t, config.FormatTable, cfg.Output.Format)
		require.NotNil(t, cfg.Render.Backups.Enabled)
		assert.False(t, cfg.Render.Backups.IsEnabled())
	})

	t.Run("plain integer sizes", func(t *testing.T) {
		cfg, err := config.FromYAML([]byte("max_line_size: 4096\n"))
		require.NoError(t, err)
		assert.Equal(t, config.ByteSize(4096), cfg.MaxLineSize)
	})

	t.Run("empty document", func(t *testing.T) {
		cfg, err := config.FromYAML([]byte("\n"))
		require.NoError(t, err)
		assert.Equal(t, &config.Config{}, cfg)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		_, err := config.FromYAML([]byte("flavor: gfm\n"))
		require.Error(t, err)
	})

	t.Run("rejects bad sizes", func(t *testing.T) {
		_, err := config.FromYAML([]byte("max_line_size: lots\n"))
		require.Error(t, err)
	})

	t.Run("round trips", func(t *testing.T) {
		data, err := config.NewConfig().ToYAML()
		require.NoError(t, err)
		cfg, err := config.FromYAML(data)
		require.NoError(t, err)
		assert.Equal(t, config.NewConfig(), cfg)
	})
}
