package fsutil_test

import (
	"context"
	"os"
	"testing"

	"github.com/spf13/afero"

	"github.com/yaklabco/lineml/pkg/fsutil"
)

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	t.Run("writes new file", func(t *testing.T) {
		t.Parallel()

		fsys := afero.NewMemMapFs()
		if err := fsys.MkdirAll("/work", 0o755); err != nil {
			t.Fatalf("setup: %v", err)
		}

		err := fsutil.WriteAtomic(context.Background(), fsys, "/work/a.xml", []byte("<a/>\n"), 0)
		if err != nil {
			t.Fatalf("WriteAtomic() error = %v", err)
		}

		got, err := afero.ReadFile(fsys, "/work/a.xml")
		if err != nil {
			t.Fatalf("read back: %v", err)
		}
		if string(got) != "<a/>\n" {
			t.Errorf("content = %q, want %q", got, "<a/>\n")
		}

		info, err := fsys.Stat("/work/a.xml")
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if info.Mode().Perm() != fsutil.DefaultFileMode {
			t.Errorf("mode = %v, want %v", info.Mode().Perm(), fsutil.DefaultFileMode)
		}
	})

	t.Run("overwrites and leaves no temp files", func(t *testing.T) {
		t.Parallel()

		fsys := afero.NewMemMapFs()
		if err := afero.WriteFile(fsys, "/work/a.xml", []byte("old"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		if err := fsutil.WriteAtomic(context.Background(), fsys, "/work/a.xml", []byte("new"), 0o600); err != nil {
			t.Fatalf("WriteAtomic() error = %v", err)
		}

		entries, err := afero.ReadDir(fsys, "/work")
		if err != nil {
			t.Fatalf("read dir: %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "a.xml" {
			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			t.Errorf("directory holds %v, want only a.xml", names)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		fsys := afero.NewMemMapFs()
		if err := fsutil.WriteAtomic(ctx, fsys, "/a.xml", []byte("x"), 0); err == nil {
			t.Fatal("expected error for cancelled context")
		}
		if ok, _ := afero.Exists(fsys, "/a.xml"); ok {
			t.Error("file written despite cancelled context")
		}
	})

	t.Run("read-only filesystem", func(t *testing.T) {
		t.Parallel()

		base := afero.NewMemMapFs()
		if err := afero.WriteFile(base, "/a.xml", []byte("keep"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		fsys := afero.NewReadOnlyFs(base)

		if err := fsutil.WriteAtomic(context.Background(), fsys, "/a.xml", []byte("x"), 0); err == nil {
			t.Fatal("expected error on read-only filesystem")
		}
		got, _ := afero.ReadFile(base, "/a.xml")
		if string(got) != "keep" {
			t.Errorf("original changed to %q", got)
		}
	})
}

func TestWriteAtomicIfChanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		existing  *string
		content   string
		wantWrite bool
	}{
		{name: "missing file is written", content: "x", wantWrite: true},
		{name: "same content is skipped", existing: ptr("same"), content: "same", wantWrite: false},
		{name: "different content is written", existing: ptr("old"), content: "new", wantWrite: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fsys := afero.NewMemMapFs()
			if tt.existing != nil {
				if err := afero.WriteFile(fsys, "/f", []byte(*tt.existing), 0o644); err != nil {
					t.Fatalf("setup: %v", err)
				}
			}

			wrote, err := fsutil.WriteAtomicIfChanged(context.Background(), fsys, "/f", []byte(tt.content), 0)
			if err != nil {
				t.Fatalf("WriteAtomicIfChanged() error = %v", err)
			}
			if wrote != tt.wantWrite {
				t.Errorf("wrote = %v, want %v", wrote, tt.wantWrite)
			}

			got, _ := afero.ReadFile(fsys, "/f")
			if string(got) != tt.content {
				t.Errorf("content = %q, want %q", got, tt.content)
			}
		})
	}
}

func ptr(s string) *string { return &s }

func FuzzWriteAtomic(f *testing.F) {
	f.Add([]byte(""))
	f.Add([]byte("<a x='1'>\n"))
	f.Add([]byte("no newline"))
	f.Add([]byte("\r\n\r\n"))
	f.Add([]byte("\x00\x01\x02\x03"))

	f.Fuzz(func(t *testing.T, content []byte) {
		fsys := afero.NewMemMapFs()
		if err := fsutil.WriteAtomic(context.Background(), fsys, "/f.xml", content, os.FileMode(0o644)); err != nil {
			t.Fatalf("WriteAtomic failed: %v", err)
		}

		got, err := afero.ReadFile(fsys, "/f.xml")
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if string(got) != string(content) {
			t.Errorf("content mismatch: got %q, want %q", got, content)
		}
	})
}
