package linebuf

const (
	// smallSize is the capacity of the inline arena used before any heap
	// allocation happens.
	smallSize = 240

	// bigSize is the first heap arena size. Larger arenas grow by half.
	bigSize = 2048

	// DefaultMaxBufferSize caps arena growth. A line that does not fit puts
	// the reader into its error state with ErrLineTooLong.
	DefaultMaxBufferSize = 64 << 20
)

// Option configures a Reader.
type Option func(*Reader)

// WithOwnedSource makes the reader responsible for closing its source.
// Close and SetInput then close the source they release.
func WithOwnedSource() Option {
	return func(r *Reader) {
		r.ownsSource = true
	}
}

// WithMaxBufferSize sets the largest arena the reader may allocate.
// Values below the inline capacity are raised to it.
func WithMaxBufferSize(n int) Option {
	return func(r *Reader) {
		r.maxSize = max(n, r.smallCap)
	}
}

// WithCounters installs a coverage collaborator.
func WithCounters(c Counters) Option {
	return func(r *Reader) {
		r.counters = c
	}
}

// withBufferSizes shrinks the inline and first heap arena sizes so that
// tests can reach the growth paths with short inputs.
func withBufferSizes(small, big int) Option {
	return func(r *Reader) {
		r.smallCap = min(max(small, 1), smallSize)
		r.bigCap = max(big, r.smallCap+1)
		r.maxSize = max(r.maxSize, r.bigCap)
	}
}
