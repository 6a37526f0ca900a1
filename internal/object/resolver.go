package object

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolved indicates a reference could not be turned into a value.
	ErrUnresolved = errors.New("object: unresolved reference")

	// ErrNotFound indicates the referenced object does not exist.
	ErrNotFound = fmt.Errorf("%w: object not found", ErrUnresolved)
)

// Resolver maps a reference to the value it points at. Implementations must
// be deterministic for a fixed document state.
type Resolver interface {
	Resolve(ref Reference) (Value, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ref Reference) (Value, error)

func (f ResolverFunc) Resolve(ref Reference) (Value, error) {
	return f(ref)
}

// Objects is an in-memory resolver keyed by reference.
type Objects map[Reference]Value

func (o Objects) Resolve(ref Reference) (Value, error) {
	v, ok := o[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return v, nil
}
