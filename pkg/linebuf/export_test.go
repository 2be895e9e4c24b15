package linebuf

// WithBufferSizes exposes the arena sizing knob to the external tests.
var WithBufferSizes = withBufferSizes
