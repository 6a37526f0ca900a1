package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/objsearch/internal/object"
)

func treeLines(t *testing.T, root *object.Dictionary, resolver object.Resolver, opts TreeOptions) []string {
	t.Helper()

	var out bytes.Buffer
	require.NoError(t, WriteTree(&out, root, resolver, opts))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeft(line, "│├└─  ")
	}
	return lines
}

func TestWriteTree(t *testing.T) {
	t.Parallel()

	catalog := object.Reference{ID: 1}
	objects := object.Objects{
		catalog: object.NewDictionary(
			object.Entry{Key: "Type", Value: object.Name("Catalog")},
			object.Entry{Key: "Box", Value: object.Array{object.Integer(0), object.Real(612.5)}},
			object.Entry{Key: "Self", Value: catalog},
		),
	}
	root := object.NewDictionary(
		object.Entry{Key: "Size", Value: object.Integer(2)},
		object.Entry{Key: "Root", Value: catalog},
		object.Entry{Key: "Info", Value: object.Reference{ID: 9}},
		object.Entry{Key: "Title", Value: object.String("Report")},
		object.Entry{Key: "ID", Value: object.String([]byte{0xff, 0xfe})},
	)

	got := treeLines(t, root, objects, TreeOptions{})

	assert.Equal(t, []string{
		"Trailer",
		"Size Integer: 2",
		"Root Reference",
		"Ref[1, 0] Dictionary",
		"Type Name: /Catalog",
		"Box Array",
		"[0] Integer: 0",
		"[1] Number: 612.5",
		"Self Reference",
		"(cycle 1 0 R)",
		"Info Reference",
		"(unresolved 9 0 R: object: unresolved reference: object not found: 9 0 R)",
		`Title String: "Report"`,
		"ID String: <indiscernible string>",
	}, got)
}

func TestWriteTreeStream(t *testing.T) {
	t.Parallel()

	root := object.NewDictionary(object.Entry{
		Key: "Contents",
		Value: object.NewStream(object.NewDictionary(
			object.Entry{Key: "Length", Value: object.Integer(3)},
		), []byte("q Q")),
	})

	got := treeLines(t, root, nil, TreeOptions{Title: "doc"})

	assert.Equal(t, []string{"doc", "Contents Stream (3 bytes)", "Length Integer: 3"}, got)

	root = object.NewDictionary(object.Entry{Key: "Contents", Value: (*object.Stream)(nil)})
	got = treeLines(t, root, nil, TreeOptions{Title: "doc"})
	assert.Equal(t, []string{"doc", "Contents Stream (0 bytes)"}, got)
}

func TestWriteTreeMaxDepth(t *testing.T) {
	t.Parallel()

	root := object.NewDictionary(
		object.Entry{Key: "A", Value: object.NewDictionary(
			object.Entry{Key: "B", Value: object.NewDictionary(
				object.Entry{Key: "C", Value: object.Integer(1)},
			)},
			object.Entry{Key: "N", Value: object.Null{}},
		)},
	)

	got := treeLines(t, root, nil, TreeOptions{MaxDepth: 2})

	assert.Equal(t, []string{"Trailer", "A Dictionary", "B Dictionary <<1 entries>>", "N Null: null"}, got)
}

func TestWriteTreeMaxDepthIgnoresReferences(t *testing.T) {
	t.Parallel()

	root := object.NewDictionary(object.Entry{Key: "R", Value: object.Reference{ID: 1}})
	objects := object.Objects{{ID: 1}: object.NewDictionary(
		object.Entry{Key: "D", Value: object.NewDictionary(
			object.Entry{Key: "C", Value: object.Integer(1)},
		)},
	)}

	got := treeLines(t, root, objects, TreeOptions{MaxDepth: 2})

	assert.Equal(t, []string{"Trailer", "R Reference", "Ref[1, 0] Dictionary", "D Dictionary <<1 entries>>"}, got)
}

func TestWriteTreeWithoutResolver(t *testing.T) {
	t.Parallel()

	root := object.NewDictionary(object.Entry{Key: "Root", Value: object.Reference{ID: 1}})

	got := treeLines(t, root, nil, TreeOptions{})

	assert.Equal(t, []string{"Trailer", "Root Reference", "(unresolved 1 0 R: object: unresolved reference)"}, got)
}
