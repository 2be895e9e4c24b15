package flatxml_test

import (
	"testing"

	"github.com/yaklabco/lineml/pkg/flatxml"
)

func TestDecodeEntity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   rune
		size   int
		wantOK bool
	}{
		{in: "&amp;", want: '&', size: 5, wantOK: true},
		{in: "&lt;x", want: '<', size: 4, wantOK: true},
		{in: "&gt;", want: '>', size: 4, wantOK: true},
		{in: "&apos;", want: '\'', size: 6, wantOK: true},
		{in: "&quot;", want: '"', size: 6, wantOK: true},
		{in: "&#10;", want: '\n', size: 5, wantOK: true},
		{in: "&#60;", want: '<', size: 5, wantOK: true},
		{in: "&#1114111;", want: 0x10FFFF, size: 10, wantOK: true},
		{in: "&#1114112;"},
		{in: "&#xA;"},
		{in: "&#;"},
		{in: "&nbsp;"},
		{in: "&GT;"},
		{in: "&newline;"},
		{in: "&amp"},
		{in: "amp;"},
		{in: "&"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, size, ok := flatxml.DecodeEntity([]byte(tt.in))
			if ok != tt.wantOK {
				t.Fatalf("DecodeEntity(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got != tt.want || size != tt.size {
				t.Errorf("DecodeEntity(%q) = %q, %d; want %q, %d", tt.in, got, size, tt.want, tt.size)
			}
		})
	}
}

func TestUnescape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "nothing to see", want: "nothing to see"},
		{name: "named", in: "have some kibbles &amp; bits", want: "have some kibbles & bits"},
		{name: "double escaped", in: "&amp;amp;", want: "&amp;"},
		{name: "numeric", in: "a&#10;b", want: "a\nb"},
		{name: "unknown kept", in: "&nbsp; &newline; &GT; &#60;", want: "&nbsp; &newline; &GT; <"},
		{name: "bare ampersand", in: "& &&amp;", want: "& &&"},
		{name: "trailing", in: "x&", want: "x&"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := flatxml.UnescapeString(tt.in); got != tt.want {
				t.Errorf("UnescapeString(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if got := string(flatxml.Unescape([]byte(tt.in))); got != tt.want {
				t.Errorf("Unescape(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscapeString(t *testing.T) {
	t.Parallel()

	got := flatxml.EscapeString("\"&<>'\n\" done")
	want := "&quot;&amp;&lt;&gt;&apos;&#10;&quot; done"
	if got != want {
		t.Errorf("EscapeString() = %q, want %q", got, want)
	}

	// Escaping then unescaping is the identity.
	for _, s := range []string{"", "plain", " \n\n  \n", "a & b < c", "'single' \"double\""} {
		if back := flatxml.UnescapeString(flatxml.EscapeString(s)); back != s {
			t.Errorf("round trip of %q gave %q", s, back)
		}
	}
}
