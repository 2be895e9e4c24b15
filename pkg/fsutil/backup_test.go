package fsutil_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/lineml/pkg/fsutil"
)

func TestBackupPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/x/a.xml.lineml.bak", fsutil.BackupPath("/x/a.xml", fsutil.BackupModeSidecar))
	assert.Equal(t, "/x/a.xml.lineml.bak", fsutil.BackupPath("/x/a.xml", "weird"))
	assert.Empty(t, fsutil.BackupPath("/x/a.xml", fsutil.BackupModeNone))
	assert.Equal(t, fsutil.BackupConfig{Mode: fsutil.BackupModeSidecar}, fsutil.DefaultBackupConfig())
}

func TestBackupLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/a.xml", []byte("original"), 0o640))
	cfg := fsutil.BackupConfig{Enabled: true, Mode: fsutil.BackupModeSidecar}

	created, err := fsutil.CreateBackup(ctx, fsys, "/a.xml", cfg)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, fsutil.BackupExists(fsys, "/a.xml", cfg.Mode))

	// A second backup never replaces the first.
	require.NoError(t, afero.WriteFile(fsys, "/a.xml", []byte("changed"), 0o640))
	created, err = fsutil.CreateBackup(ctx, fsys, "/a.xml", cfg)
	require.NoError(t, err)
	assert.False(t, created)

	restored, err := fsutil.RestoreBackup(ctx, fsys, "/a.xml", cfg.Mode)
	require.NoError(t, err)
	assert.True(t, restored)
	got, err := afero.ReadFile(fsys, "/a.xml")
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))

	removed, err := fsutil.RemoveBackup(fsys, "/a.xml", cfg.Mode)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, fsutil.BackupExists(fsys, "/a.xml", cfg.Mode))

	removed, err = fsutil.RemoveBackup(fsys, "/a.xml", cfg.Mode)
	require.NoError(t, err)
	assert.False(t, removed)

	restored, err = fsutil.RestoreBackup(ctx, fsys, "/a.xml", cfg.Mode)
	require.NoError(t, err)
	assert.False(t, restored)
}

func TestCreateBackupDisabled(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/a.xml", []byte("x"), 0o644))

	for _, cfg := range []fsutil.BackupConfig{
		{Enabled: false, Mode: fsutil.BackupModeSidecar},
		{Enabled: true, Mode: fsutil.BackupModeNone},
	} {
		created, err := fsutil.CreateBackup(context.Background(), fsys, "/a.xml", cfg)
		require.NoError(t, err)
		assert.False(t, created)
	}

	created, err := fsutil.CreateBackup(context.Background(), fsys, "/missing.xml",
		fsutil.BackupConfig{Enabled: true, Mode: fsutil.BackupModeSidecar})
	require.NoError(t, err)
	assert.False(t, created)
}
