// Package document loads object graphs described in YAML.
//
// A document has a trailer dictionary, the search root, and a table of
// numbered objects that references point at:
//
//	trailer:
//	  Root: !ref 1 0
//	objects:
//	  1 0:
//	    Type: !name Catalog
//	    Pages: !ref 2 0
//	  2 0: !stream
//	    info: {Length: 5}
//	    data: aGVsbG8=
//
// Mapping order is preserved. JSON input is accepted as YAML.
package document

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/jacoelho/objsearch/internal/object"
)

// ErrDocument is the sentinel for all loading failures.
var ErrDocument = errors.New("document error")

// Document is a loaded object graph. It resolves references against its own
// object table and is safe for concurrent reads.
type Document struct {
	trailer *object.Dictionary
	objects object.Objects
}

// New assembles a document from a trailer and an object table.
func New(trailer *object.Dictionary, objects object.Objects) *Document {
	if trailer == nil {
		trailer = object.NewDictionary()
	}
	if objects == nil {
		objects = object.Objects{}
	}
	return &Document{trailer: trailer, objects: objects}
}

// Trailer returns the root dictionary.
func (d *Document) Trailer() *object.Dictionary {
	return d.trailer
}

// Resolve returns the object ref points at, or an error wrapping
// object.ErrNotFound.
func (d *Document) Resolve(ref object.Reference) (object.Value, error) {
	return d.objects.Resolve(ref)
}

// Len returns the number of numbered objects.
func (d *Document) Len() int {
	return len(d.objects)
}

// Objects returns the references of all numbered objects ordered by id and
// generation.
func (d *Document) Objects() []object.Reference {
	refs := make([]object.Reference, 0, len(d.objects))
	for ref := range d.objects {
		refs = append(refs, ref)
	}
	slices.SortFunc(refs, func(a, b object.Reference) int {
		return cmp.Or(cmp.Compare(a.ID, b.ID), cmp.Compare(a.Gen, b.Gen))
	})
	return refs
}

// Parse reads a YAML document.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrDocument, err)
	}
	return decode(data)
}

// Load reads the YAML document at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocument, err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
