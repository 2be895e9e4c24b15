package flatxml

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// SpecialSix are the characters Escape replaces with entities.
const SpecialSix = "&<>'\"\n"

// maxNumericDigits bounds a decimal character reference; 1114111 is the
// largest code point.
const maxNumericDigits = 7

var namedEntities = map[string]rune{
	"amp":  '&',
	"lt":   '<',
	"gt":   '>',
	"apos": '\'',
	"quot": '"',
}

// DecodeEntity decodes the entity at the start of b. It recognizes
// exactly &amp; &lt; &gt; &apos; &quot; and &#<decimal>; and reports the
// decoded rune and the number of bytes the entity spans.
func DecodeEntity(b []byte) (r rune, size int, ok bool) {
	if len(b) < 4 || b[0] != '&' {
		return 0, 0, false
	}

	semi := bytes.IndexByte(b[1:min(len(b), 3+maxNumericDigits)], ';')
	if semi < 1 {
		return 0, 0, false
	}
	body := b[1 : 1+semi]
	size = semi + 2

	if body[0] != '#' {
		r, ok = namedEntities[string(body)]
		return r, size, ok
	}

	digits := body[1:]
	if len(digits) == 0 || len(digits) > maxNumericDigits {
		return 0, 0, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, 0, false
		}
		r = r*10 + rune(c-'0')
	}
	if !utf8.ValidRune(r) {
		return 0, 0, false
	}

	return r, size, true
}

// Unescape returns a copy of b with recognized entities decoded. Anything
// else that looks like an entity passes through unchanged.
func Unescape(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for len(b) > 0 {
		amp := bytes.IndexByte(b, '&')
		if amp < 0 {
			return append(out, b...)
		}
		out = append(out, b[:amp]...)
		b = b[amp:]

		if r, n, ok := DecodeEntity(b); ok {
			out = utf8.AppendRune(out, r)
			b = b[n:]
			continue
		}
		out = append(out, '&')
		b = b[1:]
	}

	return out
}

// UnescapeString is Unescape for strings.
func UnescapeString(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return string(Unescape([]byte(s)))
}

// AppendEscaped appends src to dst with the special six characters
// replaced by entities.
func AppendEscaped(dst, src []byte) []byte {
	for _, c := range src {
		switch c {
		case '&':
			dst = append(dst, "&amp;"...)
		case '<':
			dst = append(dst, "&lt;"...)
		case '>':
			dst = append(dst, "&gt;"...)
		case '\'':
			dst = append(dst, "&apos;"...)
		case '"':
			dst = append(dst, "&quot;"...)
		case '\n':
			dst = append(dst, "&#10;"...)
		default:
			dst = append(dst, c)
		}
	}

	return dst
}

// EscapeString returns s with the special six characters escaped.
func EscapeString(s string) string {
	if !strings.ContainsAny(s, SpecialSix) {
		return s
	}
	return string(AppendEscaped(make([]byte, 0, len(s)+16), []byte(s)))
}
