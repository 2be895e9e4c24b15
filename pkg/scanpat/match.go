package scanpat

import "strings"

// Element is the view of a classified line a pattern matches against.
// *flatxml.Scanner implements it.
type Element interface {
	IsMarkup() bool
	Tag() (string, bool)
	AttrCount() int
	AttrIndex(name string) int
	AttrName(i int) (string, bool)
	AttrValue(i int) (string, bool)
}

// Match matches e against the pattern, starting sequential names at the
// first attribute.
func (p *Pattern) Match(e Element) (Result, bool) {
	cursor := 0
	return p.match(e, &cursor)
}

// MatchFrom is Match with sequential names starting at *cursor. The
// cursor advances once for every sequential name tried, whether or not the
// match succeeds, so a caller can walk the attributes of a line in steps.
// Literal names cannot be combined with a non-zero cursor; MatchFrom
// panics with a *SyntaxError in that case.
func (p *Pattern) MatchFrom(e Element, cursor *int) (Result, bool) {
	if *cursor != 0 && p.literal {
		panic(&SyntaxError{Pattern: p.src, Reason: "bad mix of sequential and literal names"})
	}
	return p.match(e, cursor)
}

func (p *Pattern) match(e Element, cursor *int) (Result, bool) {
	if !e.IsMarkup() && !p.question {
		return nil, false
	}

	m := matcher{out: make(Result, 0, p.captures)}

	tag, _ := e.Tag()
	if !m.segment(&p.tag, tag, false, -1) {
		return nil, false
	}
	if !p.tag.total && tag == "" {
		return nil, false
	}

	for i := range p.attrs {
		pair := &p.attrs[i]

		var idx int
		if pair.literal {
			idx = e.AttrIndex(pair.literalName)
		} else {
			idx = *cursor
			*cursor++
			if idx >= e.AttrCount() {
				idx = -1
			}
		}
		if idx < 0 && !pair.name.total {
			return nil, false
		}
		missing := idx < 0

		name, _ := e.AttrName(idx)
		if !m.segment(&pair.name, name, missing, idx) {
			return nil, false
		}
		value, _ := e.AttrValue(idx)
		if !m.segment(&pair.value, value, missing, idx) {
			return nil, false
		}
	}

	return m.out, true
}

type pendingString struct {
	out   int
	start int
}

// matcher holds the state of one match. The per-segment fields are reset
// by segment.
type matcher struct {
	out Result

	scan     int
	lastN    int
	prematch int
	// terms are the offsets where %0p ended a capture.
	terms   []int
	pending []pendingString
}

// segment runs the directives of seg over target. missing is set for an
// absent optional attribute, whose position is -1.
func (m *matcher) segment(seg *segment, target string, missing bool, attrNum int) bool {
	m.scan, m.lastN, m.prematch = 0, 0, -1
	m.terms = m.terms[:0]
	m.pending = m.pending[:0]
	limit := len(target)

	for i := range seg.dirs {
		d := &seg.dirs[i]
		switch d.op {
		case opAll:
			m.scan = limit

		case opSpaces:
			for m.scan < limit && isSpace(target[m.scan]) {
				m.scan++
			}

		case opPosition:
			if i == 0 {
				m.emitInt(int64(attrNum), d)
				// A lone %n accepts the whole segment.
				if len(seg.dirs) == 1 {
					m.scan = limit
				}
				continue
			}
			count := m.scan - m.lastN
			m.lastN = m.scan
			m.emitInt(int64(count), d)

		case opString:
			m.matchString(seg, d, target, missing)

		case opInt:
			v, n, ok := parseInt(target[m.scan:], d.base)
			if !ok {
				return false
			}
			m.scan += n
			m.emitInt(v, d)

		case opFloat:
			v, n, ok := parseFloat(target[m.scan:], d.bits)
			if !ok {
				return false
			}
			m.scan += n
			m.out = append(m.out, Capture{Kind: KindFloat, Float: v})

		case opLiteral:
			lit := d.lit
			if i == m.prematch {
				// The preceding %p already found the first character.
				m.prematch = -1
				lit = lit[d.first:]
				if lit == "" {
					continue
				}
			}
			if missing {
				m.scan++
				continue
			}
			if !strings.HasPrefix(target[m.scan:], lit) {
				return false
			}
			m.scan += len(lit)
		}
	}

	if m.scan != limit && !seg.total {
		return false
	}

	for _, ps := range m.pending {
		end := limit
		for _, t := range m.terms {
			if t >= ps.start && t < end {
				end = t
			}
		}
		m.out[ps.out].Str = target[ps.start:end]
	}

	return true
}

// matchString runs a %p or %0p directive.
func (m *matcher) matchString(seg *segment, d *directive, target string, missing bool) {
	if missing {
		m.out = append(m.out, Capture{Kind: KindString, Null: true})
		return
	}

	limit := len(target)
	terminate := d.terminate && seg.which == segValue
	start := m.scan

	switch d.limitc {
	case 0:
		m.scan = limit
	case ' ':
		for m.scan < limit && !isSpace(target[m.scan]) {
			m.scan++
		}
		m.prematch = -1
		if terminate && m.scan < limit {
			m.terms = append(m.terms, m.scan)
			m.scan++
		}
	default:
		idx := strings.IndexByte(target[m.scan:], d.limitc)
		if idx < 0 {
			m.scan = limit
			m.prematch = -1
			break
		}
		m.scan += idx
		m.prematch = d.prematch
		if terminate {
			m.terms = append(m.terms, m.scan)
			m.scan++
		}
	}

	m.pending = append(m.pending, pendingString{out: len(m.out), start: start})
	m.out = append(m.out, Capture{Kind: KindString})
}

// emitInt stores an integer capture narrowed to the directive's width.
func (m *matcher) emitInt(v int64, d *directive) {
	if d.discard {
		return
	}
	if d.bits == 32 {
		v = int64(int32(v)) //nolint:gosec // %d and %n store 32-bit ints
	}
	m.out = append(m.out, Capture{Kind: KindInt, Int: v})
}
