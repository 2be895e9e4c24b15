// Package flatxml classifies lines of XML-flavored text.
//
// Each physical line is either plain text or one whole element: an open
// tag "<tag a='v'>", a close tag "</tag>", or a self-closed element
// "<tag a='v'/>" (processing instructions "<?pi a='v'?>" count as
// self-closed). Markup never spans lines. A line that looks like markup
// but has attributes that cannot be decoded is treated as text, so
// line-oriented configuration can mix XML-flavored and plain lines.
//
// Text lines and attribute values are unescaped for &amp; &lt; &gt;
// &apos; &quot; and decimal character references; no other entities are
// known.
package flatxml

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/lineml/pkg/linebuf"
)

// Kind classifies a line.
type Kind int

const (
	// Text is any line that is not a complete, decodable element.
	Text Kind = iota
	// Open is a start tag, <tag ...>.
	Open
	// Close is an end tag, </tag>.
	Close
	// SelfClosed is an empty element <tag .../> or a processing
	// instruction <?tag ...?>.
	SelfClosed
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Open:
		return "open"
	case Close:
		return "close"
	case SelfClosed:
		return "self-closed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Attr is one decoded attribute.
type Attr struct {
	Name  string
	Value string
}

// Scanner reads lines from a linebuf.Reader and classifies the current
// one on demand. The classification is cached until the reader moves to
// another line or rewrites the current one.
type Scanner struct {
	in *linebuf.Reader

	cached bool
	lineno int
	gen    uint64

	kind  Kind
	text  []byte
	tag   string
	attrs []Attr

	// demoted is set when markup was reclassified as text.
	demoted bool
	// errOffset is where attribute decoding failed, within the line.
	errOffset int
}

// NewScanner returns a scanner over in.
func NewScanner(in *linebuf.Reader) *Scanner {
	return &Scanner{in: in}
}

// NewString returns a scanner over the lines of s.
func NewString(s string) *Scanner {
	return NewScanner(linebuf.NewString(s))
}

// Reader returns the underlying line reader.
func (s *Scanner) Reader() *linebuf.Reader { return s.in }

// Next moves to the next line and reports whether there is one.
func (s *Scanner) Next() bool { return s.in.Next() }

// Done reports whether there are no more lines.
func (s *Scanner) Done() bool { return s.in.Done() }

// Lineno reports the current line number.
func (s *Scanner) Lineno() int { return s.in.Lineno() }

// Close closes the underlying reader.
func (s *Scanner) Close() error { return s.in.Close() }

// RawLine returns the current line exactly as read.
func (s *Scanner) RawLine() []byte { return s.in.CurrentLine() }

// Kind classifies the current line.
func (s *Scanner) Kind() Kind {
	s.scan()
	return s.kind
}

// IsText reports whether the current line is text.
func (s *Scanner) IsText() bool { return s.Kind() == Text }

// IsMarkup reports whether the current line is an element.
func (s *Scanner) IsMarkup() bool { return s.Kind() != Text }

// DoesPush reports whether the current line opens an element.
func (s *Scanner) DoesPush() bool { return s.Kind() == Open }

// DoesPop reports whether the current line closes an element.
func (s *Scanner) DoesPop() bool { return s.Kind() == Close }

// HasAttrs reports whether the current line carries attributes.
func (s *Scanner) HasAttrs() bool { return s.AttrCount() != 0 }

// Demoted reports whether the current line looked like markup but was
// classified as text because its attributes could not be decoded.
func (s *Scanner) Demoted() bool {
	s.scan()
	return s.demoted
}

// ErrorOffset reports where attribute decoding stopped on a demoted line.
func (s *Scanner) ErrorOffset() int {
	s.scan()
	return s.errOffset
}

// Text returns the decoded contents of a text line, or nil for markup.
func (s *Scanner) Text() []byte {
	s.scan()
	if s.kind != Text {
		return nil
	}
	return s.text
}

// TextLength reports len(Text()).
func (s *Scanner) TextLength() int { return len(s.Text()) }

// Tag returns the element name of a markup line.
func (s *Scanner) Tag() (string, bool) {
	s.scan()
	if s.kind == Text {
		return "", false
	}
	return s.tag, true
}

// HasTag reports whether the current line is markup with the given tag.
func (s *Scanner) HasTag(name string) bool {
	tag, ok := s.Tag()
	return ok && tag == name
}

// AttrCount reports the number of attributes on the current line.
func (s *Scanner) AttrCount() int {
	s.scan()
	return len(s.attrs)
}

// Attrs returns a copy of the current line's attributes in line order.
func (s *Scanner) Attrs() []Attr {
	s.scan()
	if len(s.attrs) == 0 {
		return nil
	}
	out := make([]Attr, len(s.attrs))
	copy(out, s.attrs)
	return out
}

// AttrIndex returns the position of the named attribute, or -1.
func (s *Scanner) AttrIndex(name string) int {
	if name == "" {
		return -1
	}
	s.scan()
	for i, a := range s.attrs {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// HasAttr reports whether the named attribute is present.
func (s *Scanner) HasAttr(name string) bool {
	return s.AttrIndex(name) >= 0
}

// AttrName returns the name of attribute i.
func (s *Scanner) AttrName(i int) (string, bool) {
	s.scan()
	if i < 0 || i >= len(s.attrs) {
		return "", false
	}
	return s.attrs[i].Name, true
}

// AttrValue returns the decoded value of attribute i.
func (s *Scanner) AttrValue(i int) (string, bool) {
	s.scan()
	if i < 0 || i >= len(s.attrs) {
		return "", false
	}
	return s.attrs[i].Value, true
}

// AttrValueOf returns the decoded value of the named attribute.
func (s *Scanner) AttrValueOf(name string) (string, bool) {
	return s.AttrValue(s.AttrIndex(name))
}

// scan classifies the current line unless the cached result still holds.
func (s *Scanner) scan() {
	line := s.in.CurrentLine()
	if s.cached && s.lineno == s.in.Lineno() && s.gen == s.in.Generation() {
		return
	}

	s.cached = true
	s.lineno = s.in.Lineno()
	s.gen = s.in.Generation()
	s.kind = Text
	s.text = nil
	s.tag = ""
	s.attrs = s.attrs[:0]
	s.demoted = false
	s.errOffset = 0

	kind, tagOff, tagEnd, limit := splitMarkup(line)
	if kind == Text {
		s.text = Unescape(line)
		return
	}

	if tagEnd < limit {
		off, ok := s.parseAttrs(line[tagEnd+1 : limit])
		if !ok {
			s.attrs = s.attrs[:0]
			s.demoted = true
			s.errOffset = tagEnd + 1 + off
			s.text = Unescape(line)
			return
		}
	}

	s.kind = kind
	s.tag = string(line[tagOff:tagEnd])
}

// splitMarkup picks apart the edges of a markup line: the kind, where the
// tag starts and ends, and the end of the attribute region.
func splitMarkup(line []byte) (kind Kind, tagOff, tagEnd, limit int) {
	n := len(line)
	if n < 2 || line[0] != '<' || line[n-1] != '>' {
		return Text, 0, 0, 0
	}

	tagOff, limit = 1, n-1
	switch {
	case line[1] == '/':
		kind, tagOff = Close, 2
	case line[limit-1] == '/', line[limit-1] == '?':
		kind = SelfClosed
		limit--
	default:
		kind = Open
	}
	tagOff = min(tagOff, limit)

	tagEnd = limit
	if kind != Close {
		if sp := bytes.IndexFunc(line[tagOff:limit], isSpaceRune); sp >= 0 {
			tagEnd = tagOff + sp
		}
	}

	return kind, tagOff, tagEnd, limit
}

// parseAttrs decodes a run of name='value' pairs. On failure it returns
// the offset within body where decoding stopped.
func (s *Scanner) parseAttrs(body []byte) (int, bool) {
	pos := 0
	for pos < len(body) {
		if isSpace(body[pos]) {
			pos++
			continue
		}

		// at | in <tag... |name='value'...>
		if !IsNameStart(body[pos]) {
			return pos, false
		}
		eq := bytes.IndexByte(body[pos:], '=')
		if eq < 0 {
			return pos, false
		}
		name := body[pos : pos+eq]
		if i := bytes.IndexFunc(name, isIllegalNameRune); i >= 0 {
			return pos + i, false
		}
		pos += eq + 1

		// at | in <tag... name=|'value'...>
		quote := byte(' ') // unquoted values run to the next space
		if pos < len(body) && body[pos] == '\'' {
			quote = '\''
			pos++
		}
		start := pos
		var value []byte
		if end := bytes.IndexByte(body[start:], quote); end >= 0 {
			value = body[start : start+end]
			pos = start + end + 1
		} else if quote == ' ' {
			value = body[start:]
			pos = len(body)
		} else {
			return start, false
		}

		s.attrs = append(s.attrs, Attr{
			Name:  string(name),
			Value: string(Unescape(value)),
		})
	}

	return pos, true
}

func isSpaceRune(r rune) bool { return r < utf8.RuneSelf && isSpace(byte(r)) }

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// IsNameStart reports whether c may begin a tag or attribute name: an
// ASCII letter or '_'.
func IsNameStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

// NameExclusions are the characters that may not appear in a tag or
// attribute name.
const NameExclusions = SpecialSix + "=?/"

func isIllegalNameRune(r rune) bool {
	return r < utf8.RuneSelf && (isSpace(byte(r)) || strings.IndexByte(NameExclusions, byte(r)) >= 0)
}
