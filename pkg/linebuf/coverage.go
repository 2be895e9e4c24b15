package linebuf

// CoverageCase names one internal path through the buffer management code.
type CoverageCase int

// Coverage cases, grouped by the operation that reaches them.
const (
	// Next found the following line already buffered.
	CoverNextBuffered CoverageCase = iota
	// Next had to go back to the source.
	CoverNextRefill

	// The source was exhausted with no partial line pending.
	CoverFillEOF
	// The source was exhausted while a partial line was pending.
	CoverFillSynthetic
	// A fill still left the reader needing more input.
	CoverFillPartial
	// A fill produced a complete line.
	CoverFillLine

	// The arena was empty and got its first (inline) storage.
	CoverPrepareFirst
	// Nothing was pending, so the whole arena was reused.
	CoverPrepareClear
	// Consumed bytes were discarded to make room.
	CoverPrepareCompact
	// Free space after the pending partial line was used.
	CoverPrepareAppend
	// The pending partial line filled the arena, so it had to grow.
	CoverPrepareGrow
	// The growth succeeded.
	CoverPrepareGrown

	// New content was empty.
	CoverContentEmpty
	// New content was scanned for a line terminator.
	CoverContentScan
	// No terminator was found.
	CoverContentPartial
	// A terminator was found.
	CoverContentLine

	// Growth landed in the inline array.
	CoverExpandSmall
	// Heap storage was grown in place.
	CoverExpandRealloc
	// Heap storage was allocated for the first time.
	CoverExpandAlloc

	numCoverageCases
)

var coverageNames = [...]string{
	CoverNextBuffered:   "NXT_L",
	CoverNextRefill:     "NXT_N",
	CoverFillEOF:        "FIB_P",
	CoverFillSynthetic:  "FIB_E",
	CoverFillPartial:    "FIB_N",
	CoverFillLine:       "FIB_L",
	CoverPrepareFirst:   "PFB_X",
	CoverPrepareClear:   "PFB_C",
	CoverPrepareCompact: "PFB_P",
	CoverPrepareAppend:  "PFB_A",
	CoverPrepareGrow:    "PFB_G",
	CoverPrepareGrown:   "PFB_H",
	CoverContentEmpty:   "SBC_C",
	CoverContentScan:    "SBC_B",
	CoverContentPartial: "SBC_N",
	CoverContentLine:    "SBC_L",
	CoverExpandSmall:    "EXB_S",
	CoverExpandRealloc:  "EXB_R",
	CoverExpandAlloc:    "EXB_A",
}

// String returns the short mnemonic for the case, e.g. "PFB_G".
func (c CoverageCase) String() string {
	if c < 0 || c >= numCoverageCases {
		return "unknown"
	}
	return coverageNames[c]
}

// AllCoverageCases lists every case in declaration order.
func AllCoverageCases() []CoverageCase {
	cases := make([]CoverageCase, 0, numCoverageCases)
	for c := range numCoverageCases {
		cases = append(cases, c)
	}
	return cases
}

// Counters receives a call each time the reader takes an internal path.
// Tests install one with WithCounters to check that a workload exercised
// every path; production readers leave it nil.
type Counters interface {
	Count(c CoverageCase)
}

func (r *Reader) cover(c CoverageCase) {
	if r.counters != nil {
		r.counters.Count(c)
	}
}
