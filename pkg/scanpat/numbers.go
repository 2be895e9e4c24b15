package scanpat

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// parseInt reads the longest integer prefix of s the way strtoll does:
// leading whitespace, an optional sign, and digits in base 10, 16 (with an
// optional 0x) or 0 (0x means hex, a leading 0 means octal). Values out of
// range clamp. It reports the number of bytes consumed.
func parseInt(s string, base int) (int64, int, bool) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	hasHexPrefix := i+2 < len(s) && s[i] == '0' && (s[i+1] == 'x' || s[i+1] == 'X') && digitVal(s[i+2]) < 16
	switch {
	case base == 16 && hasHexPrefix:
		i += 2
	case base == 0 && hasHexPrefix:
		base = 16
		i += 2
	case base == 0 && i < len(s) && s[i] == '0':
		base = 8
	case base == 0:
		base = 10
	}

	start := i
	var u uint64
	overflow := false
	for i < len(s) {
		d := digitVal(s[i])
		if d >= base {
			break
		}
		if !overflow {
			if u > (math.MaxUint64-uint64(d))/uint64(base) {
				overflow = true
			} else {
				u = u*uint64(base) + uint64(d)
			}
		}
		i++
	}
	if i == start {
		return 0, 0, false
	}

	switch {
	case neg && (overflow || u > 1<<63):
		return math.MinInt64, i, true
	case neg:
		return -int64(u), i, true
	case overflow || u > math.MaxInt64:
		return math.MaxInt64, i, true
	default:
		return int64(u), i, true
	}
}

func digitVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return 36
	}
}

// parseFloat reads the longest floating-point prefix of s the way strtod
// does: decimal and hexadecimal forms, inf, infinity and nan. Overflow
// yields an infinity rather than a failure.
func parseFloat(s string, bits int) (float64, int, bool) {
	n := floatPrefix(s)
	if n == 0 {
		return 0, 0, false
	}

	text := strings.TrimLeft(s[:n], " \t\n\v\f\r")
	lower := strings.ToLower(text)
	if strings.Contains(lower, "0x") && !strings.Contains(lower, "p") {
		text += "p0"
	}
	f, err := strconv.ParseFloat(text, bits)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, 0, false
	}

	return f, n, true
}

// floatPrefix returns the length of the float at the start of s, or 0.
func floatPrefix(s string) int {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	rest := strings.ToLower(s[i:])

	switch {
	case strings.HasPrefix(rest, "infinity"):
		return i + len("infinity")
	case strings.HasPrefix(rest, "inf"), strings.HasPrefix(rest, "nan"):
		return i + 3
	}

	base := 10
	expChar := byte('e')
	if len(rest) > 2 && rest[0] == '0' && rest[1] == 'x' &&
		(digitVal(rest[2]) < 16 || (rest[2] == '.' && len(rest) > 3 && digitVal(rest[3]) < 16)) {
		base = 16
		expChar = 'p'
		i += 2
	}

	digits := 0
	for i < len(s) && digitVal(s[i]) < base {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && digitVal(s[j]) < base {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}

	if i < len(s) && (s[i]|0x20) == expChar {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && s[j] >= '0' && s[j] <= '9' {
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			i = j
		}
	}

	return i
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
