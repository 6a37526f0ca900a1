package output

import (
	"fmt"
	"io"

	"github.com/ddddddO/gtree"

	"github.com/jacoelho/objsearch/internal/object"
)

// TreeOptions tunes the inspector tree.
type TreeOptions struct {
	// Title labels the root node. Defaults to "Trailer".
	Title string

	// MaxDepth collapses containers nested this many levels below the root
	// into a one-line summary, counting the same way as search.WithMaxDepth:
	// a reference target sits at its reference's depth. Zero or negative
	// means no limit.
	MaxDepth int
}

// WriteTree renders root as an inspector tree, expanding references inline.
//
// Entries are labelled "<key> <Kind>", array elements "[i] <Kind>", and
// scalars append ": value". A resolved reference gets a "Ref[id, gen]" child
// holding its target; a reference already expanded on the current chain
// shows as "(cycle id gen R)" and a failed one as "(unresolved id gen R: err)".
func WriteTree(w io.Writer, root *object.Dictionary, resolver object.Resolver, opts TreeOptions) error {
	title := opts.Title
	if title == "" {
		title = "Trailer"
	}

	b := &treeBuilder{
		resolver:  resolver,
		maxDepth:  opts.MaxDepth,
		expanding: make(map[object.Reference]struct{}),
	}
	node := gtree.NewRoot(title)
	b.children(node, root, 0)

	return gtree.OutputFromRoot(w, node)
}

type treeBuilder struct {
	resolver  object.Resolver
	maxDepth  int
	expanding map[object.Reference]struct{}
}

func (b *treeBuilder) add(parent *gtree.Node, name string, v object.Value, depth int) {
	if v == nil {
		v = object.Null{}
	}
	label := name + " " + v.Kind().String()

	switch v := v.(type) {
	case object.Reference:
		b.reference(parent.Add(label), v, depth)
		return
	case *object.Stream:
		label = fmt.Sprintf("%s (%d bytes)", label, v.Size())
	}

	if object.IsScalar(v) {
		parent.Add(label + ": " + object.Format(v))
		return
	}
	if b.maxDepth > 0 && depth >= b.maxDepth {
		parent.Add(label + " " + object.Format(v))
		return
	}
	b.children(parent.Add(label), v, depth)
}

func (b *treeBuilder) children(node *gtree.Node, v object.Value, depth int) {
	switch v := v.(type) {
	case *object.Dictionary:
		for key, item := range v.All() {
			b.add(node, key, item, depth+1)
		}
	case object.Array:
		for i, item := range v {
			b.add(node, fmt.Sprintf("[%d]", i), item, depth+1)
		}
	case *object.Stream:
		b.children(node, v.Dictionary(), depth)
	}
}

func (b *treeBuilder) reference(parent *gtree.Node, ref object.Reference, depth int) {
	if _, seen := b.expanding[ref]; seen {
		parent.Add(fmt.Sprintf("(cycle %s)", ref))
		return
	}

	target, err := b.resolve(ref)
	if err != nil {
		parent.Add(fmt.Sprintf("(unresolved %s: %v)", ref, err))
		return
	}

	b.expanding[ref] = struct{}{}
	defer delete(b.expanding, ref)
	b.add(parent, fmt.Sprintf("Ref[%d, %d]", ref.ID, ref.Gen), target, depth)
}

func (b *treeBuilder) resolve(ref object.Reference) (object.Value, error) {
	if b.resolver == nil {
		return nil, object.ErrUnresolved
	}
	return b.resolver.Resolve(ref)
}
