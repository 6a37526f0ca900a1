package search

import "errors"

var (
	// ErrReplay indicates a path could not be replayed against a document.
	ErrReplay = errors.New("search: path does not replay")

	errInvalidStep = errors.New("search: step must have exactly one of key or index")
)
