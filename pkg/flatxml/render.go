package flatxml

import (
	"fmt"
	"io"
	"strings"
)

// AppendRender appends the canonical form of the current line to dst.
//
// Text is re-escaped. Markup is rebuilt from the parsed tag and
// attributes: one space before each attribute, values in single quotes,
// and no space before "/>", so runs of blanks inside a tag collapse.
func (s *Scanner) AppendRender(dst []byte) []byte {
	s.scan()

	open, end := "<", ">"
	switch s.kind {
	case Text:
		return AppendEscaped(dst, s.text)
	case SelfClosed:
		end = "/>"
		if strings.HasPrefix(s.tag, "?") {
			end = "?>"
		}
	case Close:
		open = "</"
	}

	dst = append(dst, open...)
	dst = append(dst, s.tag...)
	for _, a := range s.attrs {
		dst = append(dst, ' ')
		dst = append(dst, a.Name...)
		dst = append(dst, "='"...)
		dst = AppendEscaped(dst, []byte(a.Value))
		dst = append(dst, '\'')
	}

	return append(dst, end...)
}

// Render returns the canonical form of the current line.
func (s *Scanner) Render() string {
	return string(s.AppendRender(nil))
}

// RenderTo writes the canonical form of the current line to w, without a
// line terminator.
func (s *Scanner) RenderTo(w io.Writer) (int, error) {
	n, err := w.Write(s.AppendRender(nil))
	if err != nil {
		return n, fmt.Errorf("render line %d: %w", s.Lineno(), err)
	}

	return n, nil
}
