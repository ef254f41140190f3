package psml_test

import (
	"testing"

	"github.com/fivetwenty-io/psclient/pkg/psml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidDocument(t *testing.T) {
	t.Parallel()

	doc, err := psml.Unmarshal([]byte(sampleDocument))
	require.NoError(t, err)

	vs := psml.ValidateDocument(doc)
	assert.Empty(t, vs)
	assert.NoError(t, vs.Err())
}

func TestValidate_ReportsViolations(t *testing.T) {
	t.Parallel()

	doc, err := psml.Unmarshal([]byte(`<document level="draft">
<section id="">
<fragment id="f"><heading level="9">x</heading><xref frag="1"/><image/></fragment>
<properties-fragment id="p"><property name="-bad" datatype="number" value="1"/>
<property name="many"><value>1</value><value>2</value></property></properties-fragment>
</section>
</document>`))
	require.NoError(t, err, "semantic problems never fail decoding")

	vs := psml.ValidateDocument(doc)

	got := make(map[string]bool, len(vs))
	for _, v := range vs {
		got[v.String()] = true
	}

	for _, want := range []string{
		"/document[1]/@level: must be metadata, portable or processed",
		"/document[1]/section[1]/@id: cannot be blank",
		"/document[1]/section[1]/fragment[1]/heading[1]/@level: must be between 1 and 6",
		"/document[1]/section[1]/fragment[1]/xref[1]: one of uriid, docid or href is required",
		"/document[1]/section[1]/fragment[1]/image[1]/@src: cannot be blank",
		"/document[1]/section[1]/properties-fragment[1]/property[1]/@name: must be a valid property name",
		"/document[1]/section[1]/properties-fragment[1]/property[1]/@datatype: must be a valid datatype",
		"/document[1]/section[1]/properties-fragment[1]/property[2]: multiple values require multiple=\"true\"",
	} {
		assert.True(t, got[want], "missing violation %q in %v", want, vs)
	}

	assert.Len(t, vs, 8)
	require.Error(t, vs.Err())
	assert.Contains(t, vs.Err().Error(), "8 errors occurred")
}

func TestValidate_OptionalAttributesMayBeAbsent(t *testing.T) {
	t.Parallel()

	assert.Empty(t, psml.Validate(psml.NewHeading(3, "x")))
	assert.Empty(t, psml.Validate(psml.NewPara(psml.NewText("plain"))))
	assert.NotEmpty(t, psml.Validate(psml.New("link", nil)))
}

func TestValidateDocument_NilRoot(t *testing.T) {
	t.Parallel()

	vs := psml.ValidateDocument(&psml.Document{})
	require.Len(t, vs, 1)
	assert.Equal(t, "/", vs[0].Path)
}
