package linebuf

import (
	"bytes"
	"fmt"
	"io"
)

// Pushback forces b into the buffer in front of the current line, or in
// place of it when overwrite is set. The result is scanned for line
// endings exactly as if it had just been read, so b may hold any number
// of lines, and a final line without "\n" joins the line after it.
//
// Overwriting a terminated line with b that holds no "\n" replaces only
// the line's bytes and keeps its terminator, so Pushback(SaveLine(), true)
// leaves the current line as it was. To drop the terminator too, end b
// with it (Pushback([]byte("\n"), true) empties the line in place).
// Overwriting an unterminated final line with empty b deletes it.
//
// The line counter is stepped back by one for a current line that will be
// seen again or deleted; it is not otherwise adjusted, so pushing back a
// line that was already counted is the caller's bookkeeping. Pushback
// revives a reader that is done, but not one stopped by an error.
func (r *Reader) Pushback(b []byte, overwrite bool) {
	if r.err != nil {
		return
	}
	if overwrite {
		// Find out how much there is to overwrite.
		r.preload()
		if r.err != nil {
			return
		}
	}

	have := r.haveLine()
	if !have {
		overwrite = false
	}
	keepEnding := overwrite && r.ending != EndingNone && bytes.IndexByte(b, '\n') < 0
	if len(b) == 0 && !overwrite {
		return
	}
	b = bytes.Clone(b)
	partial := len(b) == 0 || b[len(b)-1] != '\n'

	pending, pendingBeg := 0, 0
	if !r.done {
		pendingBeg = r.beg
		switch {
		case keepEnding:
			pendingBeg = r.lineEnd()
		case overwrite:
			pendingBeg = r.end + 1
		}
		pending = r.contentEnd - pendingBeg
	}

	if have {
		// Its terminator will be scanned again, or it is being deleted.
		r.lineno--
		if !overwrite && r.ending == EndingNone {
			pending-- // drop the synthetic newline; it comes back at EOF
		}
	}

	need := len(b) + pending
	if pending == 0 {
		need++
	}
	if len(r.buf) < need && !r.expand(need, need) {
		r.SetErr(fmt.Errorf("%w (pushback of %d bytes)", ErrLineTooLong, len(b)))
		return
	}

	fill := len(r.buf)
	if pending > 0 {
		fill -= pending
		if fill != pendingBeg {
			copy(r.buf[fill:], r.buf[pendingBeg:pendingBeg+pending])
		}
	} else if partial {
		fill-- // leave room for the newline synthesized at EOF
	}
	fill -= len(b)
	copy(r.buf[fill:], b)

	r.done = false
	r.setContent(fill, fill+len(b)+pending)
}

// SaveLine returns a copy of the current line that later buffer activity
// cannot disturb.
func (r *Reader) SaveLine() []byte {
	line := r.CurrentLine()
	saved := make([]byte, len(line))
	copy(saved, line)

	return saved
}

// WriteLine copies the current line, without its terminator, to w.
func (r *Reader) WriteLine(w io.Writer) (int, error) {
	n, err := w.Write(r.CurrentLine())
	if err != nil {
		return n, fmt.Errorf("write line %d: %w", r.lineno, err)
	}

	return n, nil
}

// SaveData collects whatever fn writes into a fresh byte slice. fn may
// advance the reader, so several lines can be saved at once.
func (r *Reader) SaveData(fn func(r *Reader, w io.Writer) error) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(r.CurrentLineLength() + 10)

	if err := fn(r, &out); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// BufferedAfterCurrent returns the bytes already buffered after the
// current line's terminator. The bytes processed by a reader are the
// current line, its terminator, these bytes, and whatever the source has
// not delivered yet.
func (r *Reader) BufferedAfterCurrent() []byte {
	r.preload()
	if r.done {
		return []byte{}
	}

	return r.buf[r.end+1 : r.contentEnd : r.contentEnd]
}

// Dump writes a one-line description of the buffer state to w.
func (r *Reader) Dump(w io.Writer, what string) {
	state := ""
	if r.buf == nil {
		state += "U"
	}
	if r.needToRead() {
		state += "N"
	}
	if r.haveLine() {
		state += "L"
	}
	if r.done {
		state += "D"
	}
	if r.err != nil {
		state += "E"
	}

	preview := []byte{}
	if r.beg <= r.end && r.end <= len(r.buf) {
		preview = r.buf[r.beg:min(r.end, r.beg+10)]
	}

	if what != "" {
		what += ": "
	}
	fmt.Fprintf(w, "%slinebuf %s [%d<%q>%d/%d/%d] heap=%t gen=%d LN=%d\n",
		what, state, r.beg, preview, r.end, r.contentEnd, len(r.buf),
		r.onHeap, r.generation, r.lineno)
}
