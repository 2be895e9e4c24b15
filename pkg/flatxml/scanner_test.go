package flatxml_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/lineml/pkg/flatxml"
	"github.com/yaklabco/lineml/pkg/linebuf"
)

const sampleLines = "<?xml version='1.0' encoding='UTF-8'?>\n" +
	"\n" +
	" plain text \n" +
	"<zeroattrs>\n" +
	"<zeroattrs/>\n" +
	"<one attr=''/>\n" +
	"<two attr1='' attr2=''/>\n" +
	"<three attr1='' attr2='' attr3=''/>\n" +
	"<our attr1='' attr2='' attr3='' attr4=''/>\n" +
	"have some kibbles &amp; bits\n" +
	"special escapes for &quot;&amp;&lt;&gt;&apos;\\n&quot;" +
	" are &quot;&amp;amp;&amp;lt;&amp;gt;&amp;apos;&amp;#10;&quot;\n" +
	"<task level='high &amp; mighty' name='&lt;init&gt;'>\n" +
	"<type id='1207' name='void'/>\n" +
	"<klass id='1384' name='[Ljava.util.concurrent.ConcurrentHashMap$Node;' flags='1040'/>\n" +
	"<squeeze_these_spaces     />\n" +
	"<squeeze_these_spaces   a=''    b=''  >\n" +
	"\n" +
	"<has_newlines attr=' &#10;&#10;  &#10;'/>\n" +
	"<method id='1385' holder='1314' name='setTabAt' return='1207' arguments='1384 1205 1383' flags='24' bytes='20' code_compile_id='422' code_compiler='c1' code_compile_level='3' iicount='6816'/>\n" +
	"</task>\n" +
	"not markup \"here\"\n" +
	"not markup >here>\n" +
	"<not markup> here\n" +
	"&not markup here\n" +
	"not markup in any of these: &nbsp; &newline; &GT; &#60;\n" +
	"this partial line ends with dollar sign $"

func TestScannerSampleLines(t *testing.T) {
	t.Parallel()

	in := flatxml.NewString(sampleLines)
	lines := 0
	for ; !in.Done(); in.Next() {
		lines++
		saved := string(in.RawLine())
		rendered := in.Render()

		wantMarkup := strings.HasPrefix(saved, "<") && strings.HasSuffix(saved, ">") &&
			!strings.Contains(saved, "not markup")
		assert.Equal(t, wantMarkup, in.IsMarkup(), saved)
		assert.Equal(t, in.IsMarkup() && strings.Contains(saved, "='"), in.HasAttrs(), saved)

		switch {
		case strings.Contains(saved, "not markup"):
			assert.True(t, in.IsText(), saved)
			assert.NotEqual(t, saved, rendered, "escapes get added")
		case strings.Contains(saved, "squeeze_these_spaces"):
			assert.NotEqual(t, saved, rendered)
			assert.NotContains(t, rendered, "  ")
		default:
			assert.Equal(t, saved, rendered)
		}
		assert.NotContains(t, rendered, " />")

		if strings.Contains(saved, "kibbles") {
			assert.True(t, in.IsText())
			assert.Equal(t, "have some kibbles & bits", string(in.Text()))
		}
		if strings.Contains(saved, "escapes") {
			assert.Contains(t, string(in.Text()), `"&<>'\n"`)
			assert.Contains(t, string(in.Text()), `"&amp;&lt;&gt;&apos;&#10;"`)
		}
		if strings.Contains(saved, "dollar sign") {
			text := in.Text()
			require.Equal(t, in.TextLength(), len(text))
			assert.Equal(t, byte('$'), text[len(text)-1])
		}

		hasTask := strings.Contains(saved, "<task") || strings.Contains(saved, "</task")
		assert.Equal(t, hasTask, in.HasTag("task"), saved)
	}
	assert.Equal(t, 26, lines)
}

func TestScannerKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line  string
		kind  flatxml.Kind
		tag   string
		attrs []flatxml.Attr
	}{
		{line: "<zeroattrs>", kind: flatxml.Open, tag: "zeroattrs"},
		{line: "<zeroattrs/>", kind: flatxml.SelfClosed, tag: "zeroattrs"},
		{line: "</task>", kind: flatxml.Close, tag: "task"},
		{line: "<?xml version='1.0'?>", kind: flatxml.SelfClosed, tag: "?xml",
			attrs: []flatxml.Attr{{Name: "version", Value: "1.0"}}},
		{line: "<two attr1='' attr2=''/>", kind: flatxml.SelfClosed, tag: "two",
			attrs: []flatxml.Attr{{Name: "attr1"}, {Name: "attr2"}}},
		{line: "<e bare=value other='x'>", kind: flatxml.Open, tag: "e",
			attrs: []flatxml.Attr{{Name: "bare", Value: "value"}, {Name: "other", Value: "x"}}},
		{line: "<>", kind: flatxml.Open, tag: ""},
		{line: "<", kind: flatxml.Text},
		{line: "<e 9lives='x'>", kind: flatxml.Text},
		{line: "<e a='unterminated>", kind: flatxml.Text},
		{line: "<e a?b='x'>", kind: flatxml.Text},
		{line: "<e novalue>", kind: flatxml.Text},
		{line: "plain", kind: flatxml.Text},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()

			in := flatxml.NewString(tt.line)
			assert.Equal(t, tt.kind, in.Kind())
			tag, ok := in.Tag()
			assert.Equal(t, tt.kind != flatxml.Text, ok)
			assert.Equal(t, tt.tag, tag)
			assert.Equal(t, tt.attrs, in.Attrs())
			assert.Equal(t, tt.kind == flatxml.Open, in.DoesPush())
			assert.Equal(t, tt.kind == flatxml.Close, in.DoesPop())
		})
	}
}

func TestScannerClassification(t *testing.T) {
	t.Parallel()

	t.Run("self-closed with two attributes", func(t *testing.T) {
		t.Parallel()

		in := flatxml.NewString("<two attr1='' attr2=''/>")
		assert.Equal(t, flatxml.SelfClosed, in.Kind())
		assert.Equal(t, 2, in.AttrCount())
		assert.True(t, in.HasAttr("attr1"))
		assert.False(t, in.HasAttr("attr3"))
	})

	t.Run("open with escaped values", func(t *testing.T) {
		t.Parallel()

		in := flatxml.NewString("<task level='high &amp; mighty' name='&lt;init&gt;'>")
		assert.Equal(t, flatxml.Open, in.Kind())

		name, ok := in.AttrValueOf("name")
		require.True(t, ok)
		assert.Equal(t, "<init>", name)

		level, ok := in.AttrValueOf("level")
		require.True(t, ok)
		assert.Equal(t, "high & mighty", level)

		assert.Equal(t, 1, in.AttrIndex("name"))
		attrName, ok := in.AttrName(1)
		require.True(t, ok)
		assert.Equal(t, "name", attrName)

		_, ok = in.AttrName(2)
		assert.False(t, ok)
		_, ok = in.AttrValue(-1)
		assert.False(t, ok)
		assert.Equal(t, -1, in.AttrIndex(""))
		assert.Nil(t, in.Text())
	})

	t.Run("unknown entities fall back to text", func(t *testing.T) {
		t.Parallel()

		raw := "not markup in any of these: &nbsp; &newline; &GT; &#60;"
		in := flatxml.NewString(raw)
		assert.True(t, in.IsText())
		assert.False(t, in.Demoted())
		assert.Equal(t, strings.Replace(raw, "&#60;", "<", 1), string(in.Text()))
	})

	t.Run("undecodable attributes demote to text", func(t *testing.T) {
		t.Parallel()

		in := flatxml.NewString("<e good='1' 9bad='2'>")
		assert.True(t, in.IsText())
		assert.True(t, in.Demoted())
		assert.Equal(t, strings.Index("<e good='1' 9bad='2'>", "9bad"), in.ErrorOffset())
		assert.Zero(t, in.AttrCount())
		assert.Equal(t, "<e good='1' 9bad='2'>", string(in.Text()))
	})

	t.Run("any whitespace ends the tag", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"<a\tx='1'>", "<a\vx='1'>", "<a \t x='1'>", "<a\fx='1'/>"} {
			in := flatxml.NewString(raw)
			assert.True(t, in.IsMarkup(), raw)
			tag, ok := in.Tag()
			require.True(t, ok, raw)
			assert.Equal(t, "a", tag, raw)
			value, ok := in.AttrValueOf("x")
			require.True(t, ok, raw)
			assert.Equal(t, "1", value, raw)
		}
	})

	t.Run("crlf lines", func(t *testing.T) {
		t.Parallel()

		in := flatxml.NewString("<a x='1'>\r\ntext\r\n</a>\r\n")
		assert.Equal(t, flatxml.Open, in.Kind())
		assert.Equal(t, "\r\n", in.Reader().CurrentLineEnding())
		in.Next()
		assert.Equal(t, "text", string(in.Text()))
		in.Next()
		assert.True(t, in.DoesPop())
		in.Next()
		assert.True(t, in.Done())
		assert.True(t, in.IsText())
		assert.Empty(t, in.Text())
	})
}

func TestScannerCache(t *testing.T) {
	t.Parallel()

	in := flatxml.NewString("<a x='1'>\nplain\n")
	first := in.Attrs()
	assert.Equal(t, first, in.Attrs())
	assert.Equal(t, in.Kind(), in.Kind())

	// Rewriting the current line through the reader invalidates the
	// cached classification even though the line number is the same.
	lineno := in.Lineno()
	in.Reader().Pushback([]byte("<b y='2'/>\n"), true)
	in.Reader().SetLineno(lineno)
	assert.Equal(t, lineno, in.Lineno())
	assert.Equal(t, flatxml.SelfClosed, in.Kind())
	assert.True(t, in.HasTag("b"))

	in.Next()
	assert.True(t, in.IsText())
	assert.Equal(t, "plain", string(in.Text()))
}

func TestRender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want string
	}{
		{line: "<a   x='1'   y=''  >", want: "<a x='1' y=''>"},
		{line: "<a x=bare/>", want: "<a x='bare'/>"},
		{line: "<a />", want: "<a/>"},
		{line: "</a>", want: "</a>"},
		{line: "<?pi a='b'?>", want: "<?pi a='b'?>"},
		{line: "<n v='&#10;&apos;'/>", want: "<n v='&#10;&apos;'/>"},
		{line: "1 < 2 & \"q\"", want: "1 &lt; 2 &amp; &quot;q&quot;"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()

			in := flatxml.NewString(tt.line)
			assert.Equal(t, tt.want, in.Render())

			var sb strings.Builder
			n, err := in.RenderTo(&sb)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), n)
			assert.Equal(t, tt.want, sb.String())
		})
	}
}

func TestScannerOverReader(t *testing.T) {
	t.Parallel()

	r := linebuf.NewString("<a>\n</a>")
	in := flatxml.NewScanner(r)
	assert.Same(t, r, in.Reader())
	assert.True(t, in.DoesPush())
	assert.True(t, in.Next())
	assert.True(t, in.DoesPop())
	assert.False(t, in.Next())
	require.NoError(t, in.Close())
}

func FuzzRender(f *testing.F) {
	for _, line := range strings.Split(sampleLines, "\n") {
		f.Add(line)
	}
	f.Add("<a b='1' b='2'/>")
	f.Add("<a\tb='&#1114112;'>")

	f.Fuzz(func(t *testing.T, content string) {
		in := flatxml.NewScanner(linebuf.New(linebuf.NewMemorySpan([]byte(content))))
		for ; !in.Done(); in.Next() {
			rendered := in.Render()
			if strings.Contains(rendered, "\n") {
				t.Fatalf("line %d rendered across lines: %q", in.Lineno(), rendered)
			}
			if in.Demoted() && in.IsMarkup() {
				t.Fatalf("line %d is demoted but still markup", in.Lineno())
			}
			if in.IsText() && strings.ContainsAny(rendered, "<>") {
				t.Fatalf("line %d text rendered with raw markup: %q", in.Lineno(), rendered)
			}
		}
	})
}
