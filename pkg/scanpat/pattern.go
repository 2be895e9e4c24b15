// Package scanpat implements a scanf-like pattern language for picking
// apart single-line XML elements.
//
// A pattern has the shape
//
//	tag (name['?']='value')*
//
// and each of the tag, name and value segments is itself a sequence of
// directives matched against the element's tag, an attribute name, or an
// attribute value:
//
//	%n %ln %*n  at the start: the attribute's index; elsewhere: bytes
//	            matched since the previous %n (%*n stores nothing)
//	%p %0p      the text from here on; followed by a literal, stop before
//	            it, otherwise stop at whitespace. %0p in a value ends its
//	            capture at that delimiter and consumes it
//	%d %ld %lld decimal integer, as by strtoll
//	%x %lx %llx hexadecimal integer
//	%i %li %lli integer with C base prefixes
//	%f %lf      floating point number, as by strtod
//	%%          a literal percent sign
//	' '         any run of whitespace, possibly empty
//	*           everything that is left; must come last
//	&apos; ...  an entity stands for its character
//	other       literal text
//
// Names are either literal ("level='%p'": the attribute is looked up by
// name) or sequential ("%p='%p'": the next attribute in line order). A
// pattern must use one style for all its names. A name ending in '?' makes
// the pair total: when the attribute is absent the match carries on, and
// its captures are -1 or null. The tag may be made total too, which lets a
// text line match.
package scanpat

import (
	"fmt"
	"strings"

	"github.com/yaklabco/lineml/pkg/flatxml"
)

// SyntaxError describes a malformed pattern. Malformed patterns are
// programming errors, not data conditions.
type SyntaxError struct {
	Pattern string
	Offset  int
	Reason  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bad scan pattern %q (position=%d): %s", e.Pattern, e.Offset, e.Reason)
}

type segKind uint8

const (
	segTag segKind = iota
	segName
	segValue
)

type opKind uint8

const (
	opAll opKind = iota
	opSpaces
	opPosition
	opString
	opInt
	opFloat
	opLiteral
)

type directive struct {
	op  opKind
	pos int

	// opPosition, opInt, opFloat
	bits    int
	discard bool
	// opInt
	base int
	// opString
	terminate bool
	limitc    byte
	prematch  int
	// opLiteral
	lit     string
	first   int
	percent bool
	escape  bool
}

func (d *directive) emits() bool {
	switch d.op {
	case opPosition:
		return !d.discard
	case opString, opInt, opFloat:
		return true
	default:
		return false
	}
}

type segment struct {
	which segKind
	total bool
	pos   int
	dirs  []directive
}

type attrPair struct {
	name        segment
	value       segment
	literal     bool
	literalName string
}

// Pattern is a compiled scan pattern. It is immutable and safe for
// concurrent use.
type Pattern struct {
	src      string
	tag      segment
	attrs    []attrPair
	literal  bool
	question bool
	captures int
}

// String returns the source text of the pattern.
func (p *Pattern) String() string { return p.src }

// NumCaptures reports how many values a successful match returns.
func (p *Pattern) NumCaptures() int { return p.captures }

// HasLiteralNames reports whether any attribute is looked up by name.
// Such patterns cannot be used with a non-zero MatchFrom cursor.
func (p *Pattern) HasLiteralNames() bool { return p.literal }

// NumAttrs reports how many name='value' pairs the pattern has.
func (p *Pattern) NumAttrs() int { return len(p.attrs) }

// Compile parses a pattern.
func Compile(pattern string) (*Pattern, error) {
	c := compiler{src: pattern}
	p, err := c.compile()
	if err != nil {
		return nil, err
	}

	return p, nil
}

// MustCompile is like Compile but panics with a *SyntaxError.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}

	return p
}

type compiler struct {
	src string
}

func (c *compiler) fail(pos int, reason string) error {
	return &SyntaxError{Pattern: c.src, Offset: pos, Reason: reason}
}

func (c *compiler) compile() (*Pattern, error) {
	p := &Pattern{
		src:      c.src,
		question: strings.ContainsRune(c.src, '?'),
	}
	end := len(c.src)

	// tag
	limit := indexFrom(c.src, " ", 0, end)
	next := limit
	if next < end {
		next++
	}
	total := limit > 0 && c.src[limit-1] == '?'
	if total {
		limit--
	}
	if limit == 0 || !isNameLead(c.src[0]) || hasExclusion(c.src[:limit]) {
		return nil, c.fail(0, "bad tag")
	}
	tag, err := c.segment(segTag, 0, limit, total)
	if err != nil {
		return nil, err
	}
	p.tag = tag

	sawLiteral, sawSequential := false, false
	for {
		base := next
		for base < end && c.src[base] == ' ' {
			base++
		}
		if base == end {
			break
		}

		// name|='value'
		eq := indexFrom(c.src, "='", base, end)
		limit = eq
		total = limit > base && c.src[limit-1] == '?'
		if total {
			limit--
		}
		if eq == end || (!total && limit == base) {
			return nil, c.fail(base, "missing attribute name")
		}
		if (limit > base && !isNameLead(c.src[base])) || hasExclusion(c.src[base:limit]) {
			return nil, c.fail(base, "bad attribute name")
		}
		name, err := c.segment(segName, base, limit, total)
		if err != nil {
			return nil, err
		}

		// name='value|'
		vbase := eq + 2
		vlimit := strings.IndexByte(c.src[vbase:], '\'')
		if vlimit < 0 {
			return nil, c.fail(vbase, "no closing ' for attribute")
		}
		vlimit += vbase
		value, err := c.segment(segValue, vbase, vlimit, total)
		if err != nil {
			return nil, err
		}
		next = vlimit + 1

		pair := attrPair{name: name, value: value}
		pair.literalName, pair.literal = literalName(&name)
		if pair.literal {
			sawLiteral = true
		} else {
			sawSequential = true
		}
		if sawLiteral && sawSequential {
			return nil, c.fail(base, "bad mix of sequential and literal names")
		}
		p.attrs = append(p.attrs, pair)
	}
	p.literal = sawLiteral

	p.captures = countCaptures(&p.tag)
	for i := range p.attrs {
		p.captures += countCaptures(&p.attrs[i].name) + countCaptures(&p.attrs[i].value)
	}

	return p, nil
}

// segment parses and checks the directives of one tag, name or value.
func (c *compiler) segment(which segKind, base, limit int, total bool) (segment, error) {
	seg := segment{which: which, total: total, pos: base}

	for fp := base; fp < limit; {
		d := directive{pos: fp}
		switch c.src[fp] {
		case '*':
			d.op = opAll
			fp++
		case ' ':
			d.op = opSpaces
			fp++
		case '%':
			n, ok := parsePercent(c.src[fp:limit], &d)
			if !ok {
				return seg, c.fail(fp, "unknown % pattern")
			}
			fp += n
			if d.op == opLiteral {
				// "%%" starts a literal run that begins with '%'.
				end := skipPlain(c.src, fp, limit)
				d.lit = "%" + c.src[fp:end]
				d.first = 1
				d.percent = true
				fp = end
			}
		default:
			d.op = opLiteral
			end := skipPlain(c.src, fp, limit)
			if end > fp {
				d.lit = c.src[fp:end]
				d.first = 1
				fp = end
				break
			}
			r, n, _ := flatxml.DecodeEntity([]byte(c.src[fp:limit]))
			d.lit = string(r)
			d.first = len(d.lit)
			d.escape = true
			fp += n
		}
		seg.dirs = append(seg.dirs, d)
	}

	setLookahead(seg.dirs)

	if err := c.check(&seg); err != nil {
		return seg, err
	}

	return seg, nil
}

var percentForms = []struct {
	text string
	d    directive
}{
	{"%n", directive{op: opPosition, bits: 32}},
	{"%ln", directive{op: opPosition, bits: 64}},
	{"%*n", directive{op: opPosition, discard: true}},
	{"%p", directive{op: opString}},
	{"%0p", directive{op: opString, terminate: true}},
	{"%d", directive{op: opInt, base: 10, bits: 32}},
	{"%ld", directive{op: opInt, base: 10, bits: 64}},
	{"%lld", directive{op: opInt, base: 10, bits: 64}},
	{"%x", directive{op: opInt, base: 16, bits: 32}},
	{"%lx", directive{op: opInt, base: 16, bits: 64}},
	{"%llx", directive{op: opInt, base: 16, bits: 64}},
	{"%i", directive{op: opInt, base: 0, bits: 32}},
	{"%li", directive{op: opInt, base: 0, bits: 64}},
	{"%lli", directive{op: opInt, base: 0, bits: 64}},
	{"%f", directive{op: opFloat, bits: 32}},
	{"%lf", directive{op: opFloat, bits: 64}},
	{"%%", directive{op: opLiteral}},
}

func parsePercent(s string, d *directive) (int, bool) {
	for _, form := range percentForms {
		if strings.HasPrefix(s, form.text) {
			pos := d.pos
			*d = form.d
			d.pos = pos
			return len(form.text), true
		}
	}

	return 0, false
}

// setLookahead decides, for each %p, which character should stop it. The
// lookahead skips one %n form and then looks at a single character: a
// literal stops the capture just before it, anything else stops it at
// whitespace.
func setLookahead(dirs []directive) {
	for i := range dirs {
		d := &dirs[i]
		if d.op != opString {
			continue
		}
		d.prematch = -1

		j := i + 1
		if j < len(dirs) && dirs[j].op == opPosition {
			j++
		}
		switch {
		case j >= len(dirs):
			d.limitc = 0
		case dirs[j].op == opLiteral:
			d.limitc = dirs[j].lit[0]
			d.prematch = j
		default:
			d.limitc = ' '
		}
	}
}

// check rejects directives that cannot work where they appear. Names and
// total values may only hold whole-string forms; partial forms such as
// numbers, whitespace and literals around %p belong in ordinary values.
func (c *compiler) check(seg *segment) error {
	simple := seg.which == segValue && !seg.total
	mustBeSimple := func(d *directive, what string) error {
		if simple {
			return nil
		}
		if seg.which == segValue {
			what = "pattern must be total after ?="
		}
		return c.fail(d.pos, what)
	}

	onlyPositionsBefore := func(i int) bool {
		for k := range i {
			if seg.dirs[k].op != opPosition {
				return false
			}
		}
		return true
	}

	for i := range seg.dirs {
		d := &seg.dirs[i]
		switch d.op {
		case opAll:
			if i != len(seg.dirs)-1 {
				return c.fail(d.pos, "* must be last")
			}
		case opSpaces:
			if err := mustBeSimple(d, "no spaces in names"); err != nil {
				return err
			}
		case opPosition:
			if i == 0 {
				if seg.which == segTag {
					return c.fail(d.pos, "initial %n cannot apply to tag; use %p or %p%n")
				}
				continue
			}
			if seg.total {
				return c.fail(d.pos, "no %n counts in total patterns")
			}
		case opString:
			if d.limitc != 0 || !onlyPositionsBefore(i) {
				if err := mustBeSimple(d, "no partial matches in names"); err != nil {
					return err
				}
			}
		case opInt, opFloat:
			if err := mustBeSimple(d, "no numerals in names"); err != nil {
				return err
			}
		case opLiteral:
			if seg.which != segValue {
				lead := d.lit[0]
				if d.percent {
					lead = '%'
				} else if d.escape {
					lead = '&'
				}
				if !flatxml.IsNameStart(lead) {
					return c.fail(d.pos, "no special characters in names")
				}
				continue
			}
			if seg.total {
				return c.fail(d.pos, "pattern must be total after ?=")
			}
		}
	}

	return nil
}

// literalName reports the fixed attribute name of a name segment: a
// single run of plain characters, optionally wrapped in %n forms.
func literalName(seg *segment) (string, bool) {
	name := ""
	found := false
	for i := range seg.dirs {
		d := &seg.dirs[i]
		switch {
		case d.op == opPosition:
			continue
		case d.op == opLiteral && !d.percent && !d.escape && !found:
			name = d.lit
			found = true
		default:
			return "", false
		}
	}

	return name, found
}

func countCaptures(seg *segment) int {
	n := 0
	for i := range seg.dirs {
		if seg.dirs[i].emits() {
			n++
		}
	}
	return n
}

// skipPlain returns the end of the run of literal characters at fp.
func skipPlain(src string, fp, limit int) int {
	for ; fp < limit; fp++ {
		switch src[fp] {
		case '*', ' ', '%':
			return fp
		case '&':
			if _, _, ok := flatxml.DecodeEntity([]byte(src[fp:limit])); ok {
				return fp
			}
		}
	}
	return fp
}

func indexFrom(s, sep string, from, end int) int {
	if i := strings.Index(s[from:end], sep); i >= 0 {
		return from + i
	}
	return end
}

func isNameLead(c byte) bool {
	return flatxml.IsNameStart(c) || c == '%' || c == '*'
}

func hasExclusion(name string) bool {
	return strings.ContainsAny(name, flatxml.NameExclusions)
}
