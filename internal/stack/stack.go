// Package stack provides the LIFO used to track descent trails during graph
// walks.
package stack

// Stack is a LIFO of T. The zero value is empty and ready to use.
type Stack[T any] struct {
	items []T
}

// New returns a stack with room for capacity items before growing.
func New[T any](capacity int) *Stack[T] {
	return &Stack[T]{items: make([]T, 0, capacity)}
}

func (s *Stack[T]) Push(item T) {
	s.items = append(s.items, item)
}

// Pop removes the top item, reporting false when the stack is empty.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	n := len(s.items)
	if n == 0 {
		return zero, false
	}
	top := s.items[n-1]
	s.items[n-1] = zero
	s.items = s.items[:n-1]
	return top, true
}

func (s *Stack[T]) Len() int {
	return len(s.items)
}

// Snapshot copies the items bottom to top, leaving extra free slots at the
// end so the caller can append without reallocating.
func (s *Stack[T]) Snapshot(extra int) []T {
	out := make([]T, len(s.items), len(s.items)+max(extra, 0))
	copy(out, s.items)
	return out
}

