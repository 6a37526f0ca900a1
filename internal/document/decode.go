package document

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"github.com/jacoelho/objsearch/internal/object"
)

const (
	tagRef    = "!ref"
	tagName   = "!name"
	tagStream = "!stream"
	tagBytes  = "!bytes"
)

type decoder struct {
	anchors map[string]object.Value
}

func decode(data []byte) (*Document, error) {
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocument, err)
	}
	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return nil, fmt.Errorf("%w: empty document", ErrDocument)
	}
	if len(file.Docs) > 1 {
		return nil, fmt.Errorf("%w: expected one YAML document, got %d", ErrDocument, len(file.Docs))
	}

	d := &decoder{anchors: make(map[string]object.Value)}
	return d.document(file.Docs[0].Body)
}

func (d *decoder) document(body ast.Node) (*Document, error) {
	pairs, ok := mappingPairs(body)
	if !ok {
		return nil, errorAt(body, "document must be a mapping with trailer and objects")
	}

	var (
		trailer *object.Dictionary
		objects object.Objects
	)
	for _, pair := range pairs {
		switch field := keyString(pair.Key); field {
		case "trailer":
			v, err := d.value(pair.Value)
			if err != nil {
				return nil, err
			}
			dict, ok := v.(*object.Dictionary)
			if !ok {
				return nil, errorAt(pair.Value, "trailer must be a mapping, got %s", v.Kind())
			}
			trailer = dict
		case "objects":
			table, err := d.objects(pair.Value)
			if err != nil {
				return nil, err
			}
			objects = table
		default:
			return nil, errorAt(pair.Key, "unknown field %q", field)
		}
	}

	if trailer == nil {
		return nil, errorAt(body, "missing trailer")
	}

	return New(trailer, objects), nil
}

func (d *decoder) objects(node ast.Node) (object.Objects, error) {
	if _, ok := node.(*ast.NullNode); ok {
		return object.Objects{}, nil
	}
	pairs, ok := mappingPairs(node)
	if !ok {
		return nil, errorAt(node, "objects must be a mapping of \"id gen\" to value")
	}

	objects := make(object.Objects, len(pairs))
	for _, pair := range pairs {
		ref, err := ParseReference(keyString(pair.Key))
		if err != nil {
			return nil, errorAt(pair.Key, "%v", err)
		}
		if _, dup := objects[ref]; dup {
			return nil, errorAt(pair.Key, "duplicate object %s", ref)
		}
		v, err := d.value(pair.Value)
		if err != nil {
			return nil, err
		}
		objects[ref] = v
	}
	return objects, nil
}

func (d *decoder) value(node ast.Node) (object.Value, error) {
	switch n := node.(type) {
	case nil, *ast.NullNode:
		return object.Null{}, nil
	case *ast.BoolNode:
		return object.Boolean(n.Value), nil
	case *ast.IntegerNode:
		switch v := n.Value.(type) {
		case int64:
			return object.Integer(v), nil
		case uint64:
			if v > math.MaxInt64 {
				return nil, errorAt(n, "integer %d overflows int64", v)
			}
			return object.Integer(int64(v)), nil
		default:
			return nil, errorAt(n, "unexpected integer value type %T", n.Value)
		}
	case *ast.FloatNode:
		return object.Real(n.Value), nil
	case *ast.InfinityNode:
		return object.Real(n.Value), nil
	case *ast.NanNode:
		return object.Real(math.NaN()), nil
	case *ast.StringNode:
		return object.String(n.Value), nil
	case *ast.LiteralNode:
		return object.String(n.Value.Value), nil
	case *ast.SequenceNode:
		arr := make(object.Array, 0, len(n.Values))
		for _, item := range n.Values {
			v, err := d.value(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case *ast.MappingNode, *ast.MappingValueNode:
		return d.dict(n)
	case *ast.TagNode:
		return d.tagged(n)
	case *ast.AnchorNode:
		v, err := d.value(n.Value)
		if err != nil {
			return nil, err
		}
		d.anchors[tokenText(n.Name)] = v
		return v, nil
	case *ast.AliasNode:
		name := tokenText(n.Value)
		v, ok := d.anchors[name]
		if !ok {
			return nil, errorAt(n, "unknown alias %q", name)
		}
		return v, nil
	default:
		return nil, errorAt(node, "unsupported YAML node %s", node.Type())
	}
}

func (d *decoder) dict(node ast.Node) (*object.Dictionary, error) {
	pairs, _ := mappingPairs(node)
	dict := object.NewDictionary()
	for _, pair := range pairs {
		key := keyString(pair.Key)
		if dict.Has(key) {
			return nil, errorAt(pair.Key, "duplicate key %q", key)
		}
		v, err := d.value(pair.Value)
		if err != nil {
			return nil, err
		}
		dict.Set(key, v)
	}
	return dict, nil
}

func (d *decoder) tagged(n *ast.TagNode) (object.Value, error) {
	tag := n.Start.Value
	switch tag {
	case tagRef:
		text, err := scalarText(n)
		if err != nil {
			return nil, err
		}
		ref, err := ParseReference(text)
		if err != nil {
			return nil, errorAt(n, "%v", err)
		}
		return ref, nil
	case tagName:
		text, err := scalarText(n)
		if err != nil {
			return nil, err
		}
		return object.Name(text), nil
	case tagBytes:
		text, err := scalarText(n)
		if err != nil {
			return nil, err
		}
		raw, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, errorAt(n, "invalid base64: %v", err)
		}
		return object.String(raw), nil
	case tagStream:
		return d.stream(n)
	case "!!str":
		text, err := scalarText(n)
		if err != nil {
			return nil, err
		}
		return object.String(text), nil
	case "!!null", "!!bool", "!!int", "!!float", "!!map", "!!seq":
		return d.value(n.Value)
	default:
		return nil, errorAt(n, "unknown tag %s", tag)
	}
}

func (d *decoder) stream(n *ast.TagNode) (object.Value, error) {
	pairs, ok := mappingPairs(n.Value)
	if !ok {
		return nil, errorAt(n, "stream must be a mapping with info and data")
	}

	var (
		info *object.Dictionary
		data []byte
	)
	for _, pair := range pairs {
		switch field := keyString(pair.Key); field {
		case "info":
			if _, isMap := mappingPairs(pair.Value); !isMap {
				return nil, errorAt(pair.Value, "stream info must be a mapping")
			}
			dict, err := d.dict(pair.Value)
			if err != nil {
				return nil, err
			}
			info = dict
		case "data":
			text, err := scalarText(pair.Value)
			if err != nil {
				return nil, err
			}
			raw, err := base64.StdEncoding.DecodeString(text)
			if err != nil {
				return nil, errorAt(pair.Value, "invalid base64 stream data: %v", err)
			}
			data = raw
		case "text":
			text, err := scalarText(pair.Value)
			if err != nil {
				return nil, err
			}
			data = []byte(text)
		default:
			return nil, errorAt(pair.Key, "unknown stream field %q", field)
		}
	}

	return object.NewStream(info, data), nil
}

// ParseReference parses "ID GEN", "ID GEN R" or a bare "ID" with generation 0.
func ParseReference(text string) (object.Reference, error) {
	fields := strings.Fields(text)
	if n := len(fields); n > 1 && fields[n-1] == "R" {
		fields = fields[:n-1]
	}
	if len(fields) == 0 || len(fields) > 2 {
		return object.Reference{}, fmt.Errorf("invalid reference %q: want \"id gen\"", text)
	}

	id, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return object.Reference{}, fmt.Errorf("invalid reference id %q", fields[0])
	}
	var gen uint64
	if len(fields) == 2 {
		gen, err = strconv.ParseUint(fields[1], 10, 16)
		if err != nil {
			return object.Reference{}, fmt.Errorf("invalid reference generation %q", fields[1])
		}
	}

	return object.Reference{ID: id, Gen: uint16(gen)}, nil
}

func mappingPairs(node ast.Node) ([]*ast.MappingValueNode, bool) {
	switch n := node.(type) {
	case *ast.MappingNode:
		return n.Values, true
	case *ast.MappingValueNode:
		return []*ast.MappingValueNode{n}, true
	default:
		return nil, false
	}
}

func keyString(node ast.Node) string {
	if s, ok := node.(*ast.StringNode); ok {
		return s.Value
	}
	return tokenText(node)
}

// scalarText returns the source text of a scalar, or of the scalar wrapped by
// a tag.
func scalarText(node ast.Node) (string, error) {
	if tag, ok := node.(*ast.TagNode); ok {
		if tag.Value == nil {
			return "", errorAt(tag, "%s needs a value", tag.Start.Value)
		}
		node = tag.Value
	}
	switch n := node.(type) {
	case *ast.StringNode:
		return n.Value, nil
	case *ast.LiteralNode:
		return n.Value.Value, nil
	case *ast.MappingNode, *ast.MappingValueNode, *ast.SequenceNode, *ast.TagNode:
		return "", errorAt(node, "expected a scalar, got %s", node.Type())
	default:
		return tokenText(node), nil
	}
}

func tokenText(node ast.Node) string {
	if node == nil {
		return ""
	}
	if tok := node.GetToken(); tok != nil {
		return tok.Value
	}
	return node.String()
}

func errorAt(node ast.Node, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if node != nil {
		if tok := node.GetToken(); tok != nil && tok.Position != nil {
			return fmt.Errorf("%w: line %d, column %d: %s", ErrDocument, tok.Position.Line, tok.Position.Column, msg)
		}
	}
	return fmt.Errorf("%w: %s", ErrDocument, msg)
}
