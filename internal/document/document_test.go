package document

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/objsearch/internal/object"
)

const sample = `
trailer:
  Size: 4
  Root: !ref 1 0
  Info: !ref 3 0
objects:
  1 0:
    Type: !name Catalog
    Pages: !ref 2 0
  2 0:
    Type: !name Pages
    Count: 1
    Kids: [!ref 4 0]
    MediaBox: [0, 0, 612.5, 792]
  3 0:
    Title: "Quarterly report"
    Trapped: false
    Producer: null
  4 0 R: !stream
    info:
      Length: 5
      Filter: !name FlateDecode
    data: aGVsbG8=
`

func mustParse(t *testing.T, input string) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	return doc
}

func TestParse(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, sample)

	assert.Equal(t, []string{"Size", "Root", "Info"}, doc.Trailer().Keys())
	assert.Equal(t, 4, doc.Len())
	assert.Equal(t, []object.Reference{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}, doc.Objects())

	root, ok := doc.Trailer().Get("Root")
	require.True(t, ok)
	assert.Equal(t, object.Reference{ID: 1}, root)

	catalog, err := doc.Resolve(object.Reference{ID: 1})
	require.NoError(t, err)
	typ, _ := catalog.(*object.Dictionary).Get("Type")
	assert.Equal(t, object.Name("Catalog"), typ)

	pages, err := doc.Resolve(object.Reference{ID: 2})
	require.NoError(t, err)
	pagesDict := pages.(*object.Dictionary)
	assert.Equal(t, []string{"Type", "Count", "Kids", "MediaBox"}, pagesDict.Keys())
	kids, _ := pagesDict.Get("Kids")
	assert.Equal(t, object.Array{object.Reference{ID: 4}}, kids)
	box, _ := pagesDict.Get("MediaBox")
	assert.Equal(t, object.Array{object.Integer(0), object.Integer(0), object.Real(612.5), object.Integer(792)}, box)

	info, err := doc.Resolve(object.Reference{ID: 3})
	require.NoError(t, err)
	infoDict := info.(*object.Dictionary)
	title, _ := infoDict.Get("Title")
	assert.Equal(t, object.String("Quarterly report"), title)
	trapped, _ := infoDict.Get("Trapped")
	assert.Equal(t, object.Boolean(false), trapped)
	producer, _ := infoDict.Get("Producer")
	assert.Equal(t, object.Null{}, producer)

	content, err := doc.Resolve(object.Reference{ID: 4})
	require.NoError(t, err)
	stream, ok := content.(*object.Stream)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), stream.Data)
	assert.Equal(t, []string{"Length", "Filter"}, stream.Info.Keys())

	_, err = doc.Resolve(object.Reference{ID: 5})
	assert.True(t, errors.Is(err, object.ErrNotFound))
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `{"trailer": {"b": 1, "a": {"c": [true, "x"]}}}`)

	assert.Equal(t, []string{"b", "a"}, doc.Trailer().Keys())
	assert.Equal(t, 0, doc.Len())
	a, _ := doc.Trailer().Get("a")
	c, _ := a.(*object.Dictionary).Get("c")
	assert.Equal(t, object.Array{object.Boolean(true), object.String("x")}, c)
}

func TestParseScalarsAndTags(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `
trailer:
  Bin: !bytes /wA=
  Quoted: !!str 12
  Version: !name 1.7
  Inf: .inf
  Big: 9007199254740993
  Note: |
    two
    lines
  Inline: !stream {text: "BT /F1 12 Tf ET"}
  Anchor: &shared {k: 1}
  Alias: *shared
`)

	get := func(key string) object.Value {
		v, ok := doc.Trailer().Get(key)
		require.True(t, ok, key)
		return v
	}

	assert.Equal(t, object.String([]byte{0xff, 0x00}), get("Bin"))
	assert.Equal(t, object.String("12"), get("Quoted"))
	assert.Equal(t, object.Name("1.7"), get("Version"))
	assert.Equal(t, object.Real(math.Inf(1)), get("Inf"))
	assert.Equal(t, object.Integer(9007199254740993), get("Big"))
	assert.Equal(t, object.String("two\nlines\n"), get("Note"))

	inline, ok := get("Inline").(*object.Stream)
	require.True(t, ok)
	assert.Equal(t, []byte("BT /F1 12 Tf ET"), inline.Data)
	assert.Equal(t, 0, inline.Info.Len())

	assert.Same(t, get("Anchor"), get("Alias"))
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		message string
	}{
		{name: "empty", input: "", message: "empty document"},
		{name: "not a mapping", input: "- 1\n- 2\n", message: "document must be a mapping"},
		{name: "missing trailer", input: "objects: {}\n", message: "missing trailer"},
		{name: "trailer scalar", input: "trailer: 3\n", message: "trailer must be a mapping"},
		{name: "unknown field", input: "trailer: {}\nxref: []\n", message: `unknown field "xref"`},
		{name: "bad object key", input: "trailer: {}\nobjects:\n  one: 1\n", message: `invalid reference id "one"`},
		{name: "duplicate object", input: "trailer: {}\nobjects:\n  1 0: 1\n  1 0 R: 2\n", message: "duplicate object 1 0 R"},
		{name: "bad reference", input: "trailer:\n  Root: !ref 1 0 0\n", message: "invalid reference"},
		{name: "reference generation overflow", input: "trailer:\n  Root: !ref 1 70000\n", message: "invalid reference generation"},
		{name: "unknown tag", input: "trailer:\n  X: !dict {}\n", message: "unknown tag !dict"},
		{name: "bad base64", input: "trailer:\n  X: !bytes '%%%'\n", message: "invalid base64"},
		{name: "stream field", input: "trailer:\n  S: !stream {length: 1}\n", message: `unknown stream field "length"`},
		{name: "stream scalar", input: "trailer:\n  S: !stream 12\n", message: "stream must be a mapping"},
		{name: "name of mapping", input: "trailer:\n  N: !name {a: 1}\n", message: "expected a scalar"},
		{name: "syntax", input: "trailer: [\n", message: "document error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDocument), "error %v does not wrap ErrDocument", err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParseErrorHasPosition(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader("trailer:\n  a: 1\n  b: !weird 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, doc.Len())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, ErrDocument))
}

func TestParseReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    object.Reference
		wantErr bool
	}{
		{input: "1 0", want: object.Reference{ID: 1}},
		{input: "12 3 R", want: object.Reference{ID: 12, Gen: 3}},
		{input: "7", want: object.Reference{ID: 7}},
		{input: "  5   65535 ", want: object.Reference{ID: 5, Gen: 65535}},
		{input: "", wantErr: true},
		{input: "R", wantErr: true},
		{input: "-1 0", wantErr: true},
		{input: "1 2 3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseReference(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	doc := New(nil, nil)
	assert.Equal(t, 0, doc.Trailer().Len())
	assert.Empty(t, doc.Objects())
}
