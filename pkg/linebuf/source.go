package linebuf

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// Source supplies raw bytes to a Reader.
//
// Read follows io.Reader, with one extra rule: it reports zero bytes only
// at genuine end of data, and it must be safe to call again after that.
// A zero-byte read with a nil error is treated the same as io.EOF.
// Close must be safe to call more than once.
type Source interface {
	io.Reader
	io.Closer
}

// FileSource reads a file through an afero filesystem.
type FileSource struct {
	file   afero.File
	name   string
	closed bool
}

// OpenFile opens name on fs and returns a source reading it.
// A nil fs means the host operating system filesystem.
func OpenFile(fs afero.Fs, name string) (*FileSource, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	f, err := fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	return &FileSource{file: f, name: name}, nil
}

// NewFileSource wraps an already open file.
func NewFileSource(f afero.File) *FileSource {
	return &FileSource{file: f, name: f.Name()}
}

// Name reports the file name the source was opened with.
func (s *FileSource) Name() string {
	return s.name
}

// Read implements io.Reader. After Close it reports io.EOF.
func (s *FileSource) Read(p []byte) (int, error) {
	if s.closed {
		return 0, io.EOF
	}

	n, err := s.file.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("read %s: %w", s.name, err)
	}

	return n, err
}

// Close closes the underlying file once; later calls are no-ops.
func (s *FileSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", s.name, err)
	}

	return nil
}

// MemorySource reads from a shared block of memory without copying it up
// front. Each Read copies the next span of base[offset:limit] into the
// caller's buffer; base itself is never written.
type MemorySource struct {
	base   []byte
	offset int
	limit  int
}

// NewMemorySource returns a source over base[offset:limit].
// Out-of-range bounds are clamped to base.
func NewMemorySource(base []byte, offset, limit int) *MemorySource {
	limit = min(max(limit, 0), len(base))
	offset = min(max(offset, 0), limit)

	return &MemorySource{base: base, offset: offset, limit: limit}
}

// NewMemorySpan returns a source over all of base.
func NewMemorySpan(base []byte) *MemorySource {
	return NewMemorySource(base, 0, len(base))
}

// Remaining reports how many bytes have not been read yet.
func (s *MemorySource) Remaining() int {
	return s.limit - s.offset
}

// Read implements io.Reader.
func (s *MemorySource) Read(p []byte) (int, error) {
	if s.offset >= s.limit {
		return 0, io.EOF
	}

	n := copy(p, s.base[s.offset:s.limit])
	s.offset += n

	return n, nil
}

// Close is a no-op; the memory belongs to the caller.
func (s *MemorySource) Close() error {
	return nil
}
