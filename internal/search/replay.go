package search

import (
	"fmt"

	"github.com/jacoelho/objsearch/internal/object"
)

// Replay performs the descents of path from root and returns the dictionary
// holding the entry named by the last step. References met along the way are
// resolved with resolver.
func Replay(root *object.Dictionary, resolver object.Resolver, path Path) (*object.Dictionary, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrReplay)
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrReplay)
	}
	last := path[len(path)-1]
	if last.Kind != StepDict {
		return nil, fmt.Errorf("%w: path %s does not end at a dictionary entry", ErrReplay, path)
	}

	var current object.Value = root
	for i, step := range path[:len(path)-1] {
		resolved, err := deref(current, resolver)
		if err != nil {
			return nil, fmt.Errorf("%w: at %s: %v", ErrReplay, path[:i], err)
		}
		child, err := descend(resolved, step)
		if err != nil {
			return nil, fmt.Errorf("%w: at %s: %v", ErrReplay, path[:i], err)
		}
		current = child
	}

	resolved, err := deref(current, resolver)
	if err != nil {
		return nil, fmt.Errorf("%w: at %s: %v", ErrReplay, path[:len(path)-1], err)
	}
	dict, ok := asDictionary(resolved)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s, not a dictionary", ErrReplay, path[:len(path)-1], kindOf(resolved))
	}
	if !dict.Has(last.Key) {
		return nil, fmt.Errorf("%w: key %q missing at %s", ErrReplay, last.Key, path[:len(path)-1])
	}

	return dict, nil
}

// deref resolves chains of references until a direct value is reached.
func deref(v object.Value, resolver object.Resolver) (object.Value, error) {
	var seen map[object.Reference]struct{}
	for {
		ref, ok := v.(object.Reference)
		if !ok {
			return v, nil
		}
		if _, loop := seen[ref]; loop {
			return nil, fmt.Errorf("reference %s resolves to itself", ref)
		}
		if seen == nil {
			seen = make(map[object.Reference]struct{})
		}
		seen[ref] = struct{}{}

		if resolver == nil {
			return nil, fmt.Errorf("%w: no resolver configured", object.ErrUnresolved)
		}
		next, err := resolver.Resolve(ref)
		if err != nil {
			return nil, err
		}
		v = next
	}
}

func descend(v object.Value, step Step) (object.Value, error) {
	switch step.Kind {
	case StepDict:
		dict, ok := asDictionary(v)
		if !ok {
			return nil, fmt.Errorf("cannot take key %q of a %s", step.Key, kindOf(v))
		}
		child, ok := dict.Get(step.Key)
		if !ok {
			return nil, fmt.Errorf("key %q not found", step.Key)
		}
		return child, nil
	case StepArray:
		arr, ok := v.(object.Array)
		if !ok {
			return nil, fmt.Errorf("cannot take index %d of a %s", step.Index, kindOf(v))
		}
		if step.Index < 0 || step.Index >= len(arr) {
			return nil, fmt.Errorf("index %d out of range (length %d)", step.Index, len(arr))
		}
		return arr[step.Index], nil
	default:
		return nil, errInvalidStep
	}
}

func asDictionary(v object.Value) (*object.Dictionary, bool) {
	switch v := v.(type) {
	case *object.Dictionary:
		return v, v != nil
	case *object.Stream:
		if v == nil {
			return nil, false
		}
		return v.Info, true
	default:
		return nil, false
	}
}

func kindOf(v object.Value) string {
	if v == nil {
		return "Null"
	}
	return v.Kind().String()
}
