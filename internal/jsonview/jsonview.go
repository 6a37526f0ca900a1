// Package jsonview converts object graphs into plain JSON-shaped values so
// they can be queried with JSONPath or printed as JSON.
package jsonview

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/theory/jsonpath"

	"github.com/jacoelho/objsearch/internal/object"
)

var (
	// ErrInvalidInput indicates an empty or malformed JSONPath expression.
	ErrInvalidInput = errors.New("jsonview: invalid input")

	// ErrNotFound indicates the expression selected nothing.
	ErrNotFound = errors.New("jsonview: no value selected")
)

const (
	refKey       = "$ref"
	errorKey     = "$error"
	truncatedKey = "$truncated"

	indiscernible = "<indiscernible string>"
)

// Materialize converts the graph under root into map[string]any, []any and
// scalar values, inlining references.
//
// A reference already being expanded on the current chain becomes
// {"$ref": "ID GEN R"}; one that fails to resolve also carries "$error".
// Names render as "/Name", streams as their info dictionary and strings that
// are not UTF-8 as "<indiscernible string>". Infinite and NaN reals become
// the strings "+Inf", "-Inf" and "NaN", since JSON has no literal for them.
// Containers nested maxDepth deep collapse to {"$truncated": summary};
// maxDepth <= 0 means no limit.
func Materialize(root object.Value, resolver object.Resolver, maxDepth int) any {
	m := &materializer{
		resolver:  resolver,
		maxDepth:  maxDepth,
		expanding: make(map[object.Reference]struct{}),
	}
	return m.value(root, 0)
}

type materializer struct {
	resolver  object.Resolver
	maxDepth  int
	expanding map[object.Reference]struct{}
}

func (m *materializer) value(v object.Value, depth int) any {
	switch v := v.(type) {
	case nil, object.Null:
		return nil
	case object.Integer:
		return int64(v)
	case object.Real:
		r := float64(v)
		if math.IsInf(r, 0) || math.IsNaN(r) {
			return strconv.FormatFloat(r, 'g', -1, 64)
		}
		return r
	case object.Boolean:
		return bool(v)
	case object.String:
		if text, ok := v.Text(); ok {
			return text
		}
		return indiscernible
	case object.Name:
		return v.String()
	case object.Array:
		if m.tooDeep(depth) {
			return truncated(v)
		}
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = m.value(item, depth+1)
		}
		return items
	case *object.Dictionary:
		if m.tooDeep(depth) {
			return truncated(v)
		}
		out := make(map[string]any, v.Len())
		for key, item := range v.All() {
			out[key] = m.value(item, depth+1)
		}
		return out
	case *object.Stream:
		return m.value(v.Dictionary(), depth)
	case object.Reference:
		return m.reference(v, depth)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (m *materializer) reference(ref object.Reference, depth int) any {
	if _, seen := m.expanding[ref]; seen || m.tooDeep(depth) {
		return map[string]any{refKey: ref.String()}
	}
	if m.resolver == nil {
		return map[string]any{refKey: ref.String(), errorKey: object.ErrUnresolved.Error()}
	}

	target, err := m.resolver.Resolve(ref)
	if err != nil {
		return map[string]any{refKey: ref.String(), errorKey: err.Error()}
	}

	m.expanding[ref] = struct{}{}
	defer delete(m.expanding, ref)
	return m.value(target, depth)
}

func (m *materializer) tooDeep(depth int) bool {
	return m.maxDepth > 0 && depth >= m.maxDepth
}

func truncated(v object.Value) map[string]any {
	return map[string]any{truncatedKey: object.Format(v)}
}

// Select returns every value expr selects from data, in document order.
func Select(data any, expr string) ([]any, error) {
	if expr == "" {
		return nil, fmt.Errorf("%w: JSONPath expression is empty", ErrInvalidInput)
	}

	path, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSONPath %s: %v", ErrInvalidInput, expr, err)
	}

	results := path.Select(data)
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, expr)
	}
	return results, nil
}

// SelectFirst returns the first value expr selects from data.
func SelectFirst(data any, expr string) (any, error) {
	results, err := Select(data, expr)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}
