// Package linebuf reads text one line at a time from a block source.
//
// A Reader keeps at least the current line in a growable arena, pulling
// more bytes from its Source only when the arena holds no complete line.
// Lines are split on "\n", and a "\r" directly before it is stripped as
// well; a bare "\r" is ordinary data. An unterminated final line is still
// delivered, exactly once, with an empty line ending.
//
// Bytes can be pushed back in front of (or over) the current line, which
// lets a caller re-read or rewrite input before the reader moves on.
//
// A Reader is meant for a single owner and is not safe for concurrent use.
package linebuf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
)

// ErrLineTooLong is recorded when a line would need an arena larger than
// the reader's maximum buffer size. The part of the line read so far is
// left in place; see Reader.Stranded.
var ErrLineTooLong = errors.New("line exceeds maximum buffer size")

// Ending identifies the terminator that was stripped from a line.
type Ending int8

const (
	// EndingNone marks a final line with no terminator, or no line at all.
	EndingNone Ending = iota
	// EndingLF marks a line terminated by "\n".
	EndingLF
	// EndingCRLF marks a line terminated by "\r\n".
	EndingCRLF
)

// String returns the terminator bytes as a string.
func (e Ending) String() string {
	switch e {
	case EndingLF:
		return "\n"
	case EndingCRLF:
		return "\r\n"
	default:
		return ""
	}
}

// Reader is an incrementally buffered line reader.
//
// Buffer states, in terms of the offsets into buf:
//
//	buf == nil                 not started
//	beg <= end <  contentEnd   current line is buf[beg:end], buf[end] == '\n'
//	beg == end == contentEnd   nothing buffered, must read
//	beg <  end == contentEnd   partial line buffered, must read
//	done                       no more lines (err != nil: stopped by an error)
type Reader struct {
	src        Source
	ownsSource bool
	counters   Counters
	readErr    error

	small    [smallSize]byte
	smallCap int
	bigCap   int
	maxSize  int
	buf      []byte
	onHeap   bool

	beg        int
	end        int
	contentEnd int

	lineno     int
	position   int64
	ending     Ending
	done       bool
	err        error
	generation uint64
}

// New returns a reader pulling lines from src.
func New(src Source, opts ...Option) *Reader {
	r := newReader(opts)
	r.src = src

	return r
}

// NewBytes returns a reader over a private copy of b.
func NewBytes(b []byte, opts ...Option) *Reader {
	r := newReader(opts)
	r.Pushback(b, false)

	return r
}

// NewString returns a reader over the lines of s.
func NewString(s string, opts ...Option) *Reader {
	return NewBytes([]byte(s), opts...)
}

func newReader(opts []Option) *Reader {
	r := &Reader{
		smallCap: smallSize,
		bigCap:   bigSize,
		maxSize:  DefaultMaxBufferSize,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Reader) needToRead() bool {
	return !r.done && r.end == r.contentEnd
}

func (r *Reader) haveLine() bool {
	return !r.done && r.end < r.contentEnd
}

// lineEnd is the exclusive end of the current line's visible bytes.
func (r *Reader) lineEnd() int {
	if r.ending == EndingCRLF {
		return r.end - 1
	}
	return r.end
}

func (r *Reader) preload() {
	if r.needToRead() {
		r.fill()
	}
}

func (r *Reader) clear() {
	r.beg, r.end, r.contentEnd = 0, 0, 0
	r.ending = EndingNone
}

// CurrentLine returns the current line without its terminator, reading
// from the source if no line is buffered yet. Once the reader is done it
// returns an empty slice. The slice is valid until the next call that
// advances, pushes back or reconfigures the reader.
func (r *Reader) CurrentLine() []byte {
	r.preload()
	if r.done {
		return []byte{}
	}

	end := r.lineEnd()

	return r.buf[r.beg:end:end]
}

// CurrentLineLength reports the length of CurrentLine.
func (r *Reader) CurrentLineLength() int {
	r.preload()
	if r.done {
		return 0
	}

	return r.lineEnd() - r.beg
}

// CurrentLineEnding returns "\n" or "\r\n" for a terminated line, and ""
// for an unterminated final line or when the reader is done.
func (r *Reader) CurrentLineEnding() string {
	return r.LineEnding().String()
}

// LineEnding reports which terminator was stripped from the current line.
func (r *Reader) LineEnding() Ending {
	r.preload()
	if r.done {
		return EndingNone
	}

	return r.ending
}

// Next discards the current line and reports whether another one exists.
// It is always the opposite of Done, and calling it after the reader is
// done is a no-op.
func (r *Reader) Next() bool {
	// Look at the current line first, in case nobody asked for it yet.
	r.preload()
	if r.done {
		return false
	}

	newBeg := r.end + 1
	consumed := newBeg - r.beg
	if r.ending == EndingNone {
		consumed-- // the newline was synthesized, not read
	}
	r.position += int64(consumed)

	r.setContent(newBeg, r.contentEnd)
	if !r.needToRead() {
		r.cover(CoverNextBuffered)
		return true
	}

	r.cover(CoverNextRefill)

	return r.fill()
}

// Done reports whether there are no more lines.
func (r *Reader) Done() bool {
	r.preload()
	return r.done
}

// SetDone discards pending input and stops reading.
func (r *Reader) SetDone() {
	if r.done {
		return
	}

	r.done = true
	r.clear()
	r.generation++
}

// Err returns the error that stopped the reader, if any. A reader with a
// non-nil Err is also done, and stays that way.
func (r *Reader) Err() error {
	return r.err
}

// SetErr puts the reader into the error state. Unlike SetDone it keeps
// whatever was buffered, so Stranded and Dump can still show the line the
// reader stopped in. A nil err takes an errored reader back to the plain
// done state.
func (r *Reader) SetErr(err error) {
	if err == nil {
		if r.err != nil {
			r.err = nil
			r.clear()
		}
		return
	}

	if !r.done {
		r.done = true
		r.generation++
	}
	r.err = err
}

// Stranded returns the bytes an error left in the buffer, starting with
// the line the reader was working on. It is empty unless Err is set.
func (r *Reader) Stranded() []byte {
	if r.err == nil || r.beg >= r.contentEnd {
		return []byte{}
	}

	return r.buf[r.beg:r.contentEnd:r.contentEnd]
}

// Lineno reports the 1-based number of the current line, or 0 before the
// first line.
func (r *Reader) Lineno() int { return r.lineno }

// SetLineno overrides the line counter.
func (r *Reader) SetLineno(n int) { r.lineno = n }

// AddToLineno adjusts the line counter.
func (r *Reader) AddToLineno(delta int) { r.lineno += delta }

// Position reports how many bytes preceded the current line.
func (r *Reader) Position() int64 { return r.position }

// SetPosition overrides the byte position.
func (r *Reader) SetPosition(pos int64) { r.position = pos }

// AddToPosition adjusts the byte position.
func (r *Reader) AddToPosition(delta int64) { r.position += delta }

// Generation changes whenever the current line or the arena holding it
// changes. Views into the arena taken under one generation must not be
// used under another.
func (r *Reader) Generation() uint64 { return r.generation }

// Source returns the attached source, or nil.
func (r *Reader) Source() Source { return r.src }

// SetInput discards everything buffered and starts reading from src.
// An owned previous source is closed; its error, if any, is returned.
func (r *Reader) SetInput(src Source) error {
	r.clear()
	r.done = false
	r.err = nil
	r.readErr = nil
	r.generation++

	old := r.src
	r.src = src
	if old != nil && r.ownsSource && old != src {
		if err := old.Close(); err != nil {
			return fmt.Errorf("close previous input: %w", err)
		}
	}

	return nil
}

// Close stops the reader and releases its arena. An owned source is closed.
func (r *Reader) Close() error {
	r.SetDone()
	r.clear()
	r.buf = nil
	r.onHeap = false

	if r.src != nil && r.ownsSource {
		if err := r.src.Close(); err != nil {
			return fmt.Errorf("close input: %w", err)
		}
	}

	return nil
}

// fill makes sure a whole line is buffered, or marks the reader done.
func (r *Reader) fill() bool {
	for r.needToRead() {
		off, n := r.prepareToFill()
		if r.err != nil {
			return false
		}

		nr, err := r.read(r.buf[off : off+n])
		if err != nil {
			r.SetErr(err)
			return false
		}

		synthetic := 0
		if nr == 0 {
			if r.beg == r.end {
				r.cover(CoverFillEOF)
				r.SetDone()
				return false
			}
			r.cover(CoverFillSynthetic)
			// Pretend to read a newline to complete the last partial line.
			r.buf[off] = '\n'
			synthetic = 1
		}

		r.setContent(r.beg, off+nr+synthetic)
		if r.needToRead() {
			r.cover(CoverFillPartial)
		} else {
			r.cover(CoverFillLine)
		}

		if synthetic != 0 {
			r.ending = EndingNone
			break
		}
	}

	return true
}

func (r *Reader) read(p []byte) (int, error) {
	if r.readErr != nil {
		return 0, r.readErr
	}
	if r.src == nil {
		return 0, nil
	}

	n, err := r.src.Read(p)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return n, nil
	case n > 0:
		// Deliver what was read; report the failure on the next read.
		r.readErr = fmt.Errorf("read input: %w", err)
		return n, nil
	default:
		return 0, fmt.Errorf("read input: %w", err)
	}
}

// prepareToFill finds room to read into. A pending partial line must stay
// directly in front of the new bytes, so the arena is compacted or grown
// as needed.
func (r *Reader) prepareToFill() (offset, length int) {
	if len(r.buf) == 0 {
		r.cover(CoverPrepareFirst)
		r.expand(r.smallCap, r.smallCap)
	}

	if r.beg == r.end {
		r.cover(CoverPrepareClear)
		r.clear()
		return 0, len(r.buf)
	}

	if r.beg > 0 {
		r.cover(CoverPrepareCompact)
		n := copy(r.buf, r.buf[r.beg:r.contentEnd])
		r.beg, r.end, r.contentEnd = 0, n, n
		r.generation++
	}

	if r.end < len(r.buf) {
		r.cover(CoverPrepareAppend)
		return r.end, len(r.buf) - r.end
	}

	// The whole arena holds one partial line.
	r.cover(CoverPrepareGrow)
	size := r.bigCap
	if len(r.buf) >= r.bigCap {
		size = len(r.buf) + len(r.buf)/2
	}
	if r.expand(size, len(r.buf)+1) {
		r.cover(CoverPrepareGrown)
		return r.end, len(r.buf) - r.end
	}

	r.SetErr(fmt.Errorf("%w (%d bytes)", ErrLineTooLong, r.maxSize))

	return 0, 0
}

// setContent points the reader at buf[start:stop] and scans it for the
// first line terminator.
func (r *Reader) setContent(start, stop int) {
	r.generation++
	if start >= stop {
		r.cover(CoverContentEmpty)
		r.clear()
		return
	}

	r.cover(CoverContentScan)
	r.beg, r.contentEnd = start, stop
	r.end = stop
	r.ending = EndingNone

	if i := bytes.IndexByte(r.buf[start:stop], '\n'); i >= 0 {
		r.end = start + i
		r.lineno++
		r.ending = EndingLF
		if r.end > start && r.buf[r.end-1] == '\r' {
			r.ending = EndingCRLF
		}
	}

	if r.needToRead() {
		r.cover(CoverContentPartial)
	} else {
		r.cover(CoverContentLine)
	}
}

// expand grows the arena to want bytes, settling for less (but at least
// need) when the maximum buffer size is in the way.
func (r *Reader) expand(want, need int) bool {
	if want <= r.smallCap {
		r.cover(CoverExpandSmall)
		r.buf = r.small[:r.smallCap]
		return true
	}

	if want > r.maxSize {
		if need > r.maxSize {
			return false
		}
		want = r.maxSize
	}
	if want <= len(r.buf) {
		return false
	}

	if r.onHeap {
		r.cover(CoverExpandRealloc)
		r.buf = slices.Grow(r.buf, want-len(r.buf))[:want]
	} else {
		r.cover(CoverExpandAlloc)
		grown := make([]byte, want)
		copy(grown, r.buf[:r.contentEnd])
		r.buf = grown
		r.onHeap = true
	}
	r.generation++

	return true
}
