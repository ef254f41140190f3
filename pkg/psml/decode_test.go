package psml_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fivetwenty-io/psclient/pkg/psml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `<?xml version="1.0" encoding="UTF-8"?>
<!-- exported -->
<document type="references" level="portable">
  <documentinfo>
    <uri id="1234" docid="guide-01" title="Installation guide" documenttype="references">
      <displaytitle>Installing the product</displaytitle>
      <labels>draft,internal</labels>
    </uri>
  </documentinfo>
  <section id="title">
    <fragment id="1">
      <heading level="1">Install &amp; configure</heading>
      <para indent="1" prefix="">Run <monospace>make</monospace> then <xref uriid="99" frag="2">see this</xref>.</para>
      <para><![CDATA[a < b]]> and more</para>
    </fragment>
  </section>
  <section id="details">
    <properties-fragment id="2">
      <property name="author" title="Author" value="Jo"/>
      <property name="tags" multiple="true"><value>a</value><value>b</value></property>
    </properties-fragment>
    <fragment id="3"><ext:widget xmlns:ext="urn:x" ext:size="2" data=""><ext:part/>tail</ext:widget></fragment>
  </section>
</document>
`

func TestDecode_Structure(t *testing.T) {
	t.Parallel()

	doc, err := psml.Unmarshal([]byte(sampleDocument))
	require.NoError(t, err)

	require.NotNil(t, doc.Element())
	assert.Equal(t, "references", doc.Element().Type())
	assert.Equal(t, psml.LevelPortable, doc.Element().Level())
	assert.Equal(t, "Installing the product", doc.Title())
	assert.Equal(t, "1234", doc.URIID())
	assert.Equal(t, "guide-01", doc.DocID())
	assert.Equal(t, []string{"draft", "internal"}, doc.URI().Labels())

	require.Len(t, doc.Prolog, 2)
	pi, ok := doc.Prolog[0].(*psml.ProcInst)
	require.True(t, ok)
	assert.Equal(t, "xml", pi.Target)

	sections := doc.Sections()
	require.Len(t, sections, 2)
	assert.Equal(t, "title", sections[0].ID())

	frag := doc.Fragment("1")
	require.NotNil(t, frag)
	assert.Equal(t, psml.KindFragment, frag.Kind())

	headings := psml.FindAll[*psml.Heading](doc.Root)
	require.Len(t, headings, 1)
	assert.Equal(t, 1, headings[0].Level())
	assert.Equal(t, "Install & configure", psml.TextContent(headings[0]))

	xrefs := psml.FindAll[*psml.XRef](doc.Root)
	require.Len(t, xrefs, 1)
	assert.Equal(t, "99", xrefs[0].URIID())
	assert.Equal(t, "2", xrefs[0].Frag())
	assert.Equal(t, psml.DisplayDocument, xrefs[0].Display())
	assert.True(t, xrefs[0].ReverseLink())

	props := doc.Properties()
	require.Len(t, props, 2)
	assert.Equal(t, []string{"Jo"}, props[0].Values())
	assert.Equal(t, []string{"a", "b"}, props[1].Values())
	assert.True(t, props[1].Multiple())
}

func TestDecode_EmptyAndAbsentAttributesStayDistinct(t *testing.T) {
	t.Parallel()

	doc, err := psml.Unmarshal([]byte(sampleDocument))
	require.NoError(t, err)

	paras := psml.FindAll[*psml.Para](doc.Root)
	require.Len(t, paras, 2)

	prefix, ok := paras[0].Attrs().Get("prefix")
	assert.True(t, ok)
	assert.Empty(t, prefix)

	_, ok = paras[1].Attrs().Get("prefix")
	assert.False(t, ok)

	out, err := psml.Marshal(doc)
	require.NoError(t, err)

	again, err := psml.Unmarshal(out)
	require.NoError(t, err)

	paras = psml.FindAll[*psml.Para](again.Root)
	assert.True(t, paras[0].Attrs().Has("prefix"))
	assert.False(t, paras[1].Attrs().Has("prefix"))
}

func TestDecode_MergesAdjacentText(t *testing.T) {
	t.Parallel()

	el, err := psml.UnmarshalElement([]byte(`<para>x <![CDATA[<y>]]> &amp; z</para>`))
	require.NoError(t, err)

	require.Len(t, el.Children(), 1)
	text, ok := el.Children()[0].(*psml.Text)
	require.True(t, ok)
	assert.Equal(t, "x <y> & z", text.Data)
}

func TestDecode_UnknownTagsArePreserved(t *testing.T) {
	t.Parallel()

	doc, err := psml.Unmarshal([]byte(sampleDocument))
	require.NoError(t, err)

	var unknown []*psml.Unknown

	psml.Walk(doc.Root, func(n psml.Node) bool {
		if u, ok := n.(*psml.Unknown); ok {
			unknown = append(unknown, u)
		}

		return true
	})

	require.Len(t, unknown, 2)
	assert.Equal(t, "ext:widget", unknown[0].Tag())
	assert.Equal(t, psml.KindUnknown, unknown[0].Kind())
	assert.Equal(t, []psml.Attr{
		{Name: "xmlns:ext", Value: "urn:x"},
		{Name: "ext:size", Value: "2"},
		{Name: "data", Value: ""},
	}, unknown[0].Attrs().All())
	assert.Equal(t, "ext:part", unknown[1].Tag())

	out, err := psml.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<ext:widget xmlns:ext="urn:x" ext:size="2" data=""><ext:part/>tail</ext:widget>`)
}

func TestDecode_ParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		target  error
		line    int
		minOffs int64
	}{
		{
			name:    "mismatched end tag",
			input:   "<document>\n  <section id=\"a\">\n  </fragment>\n</document>",
			target:  psml.ErrMismatchedTag,
			line:    3,
			minOffs: 30,
		},
		{
			name:   "unclosed element",
			input:  "<document><section id=\"a\">",
			target: psml.ErrUnclosedElement,
			line:   1,
		},
		{
			name:   "second root",
			input:  "<document/>\n<document/>",
			target: psml.ErrMultipleRoots,
			line:   2,
		},
		{
			name:   "text outside root",
			input:  "<document/>trailing",
			target: psml.ErrTextOutsideRoot,
			line:   1,
		},
		{
			name:   "duplicate attribute",
			input:  "<document>\n<para a=\"1\" a=\"2\"/></document>",
			target: psml.ErrDuplicateAttr,
			line:   2,
		},
		{
			name:   "empty input",
			input:  "   ",
			target: psml.ErrNoRootElement,
			line:   1,
		},
		{
			name:  "invalid UTF-8",
			input: "<document>\n<para>\xff\xfe</para></document>",
			line:  2,
		},
		{
			name:  "undefined entity",
			input: "<document><para>&nbsp;</para></document>",
			line:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := psml.Decode(strings.NewReader(tt.input))
			require.Error(t, err)

			var perr *psml.ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.line, perr.Line)
			assert.Positive(t, perr.Column)
			assert.GreaterOrEqual(t, perr.Offset, tt.minOffs)

			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestDecode_UnsupportedEncodingIsParseError(t *testing.T) {
	t.Parallel()

	_, err := psml.Unmarshal([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><document/>`))

	var perr *psml.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestDecodeElement_ReturnsRoot(t *testing.T) {
	t.Parallel()

	el, err := psml.DecodeElement(bytes.NewReader([]byte(`<fragment id="7"><para>x</para></fragment>`)))
	require.NoError(t, err)

	frag, ok := el.(*psml.Fragment)
	require.True(t, ok)
	assert.Equal(t, "7", frag.ID())
}

func TestParseError_Unwraps(t *testing.T) {
	t.Parallel()

	_, err := psml.Unmarshal([]byte(`<a></b>`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, psml.ErrMismatchedTag))
	assert.Contains(t, err.Error(), "line 1")
}
