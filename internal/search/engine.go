// Package search finds every path from a root dictionary to the dictionary
// entries whose key equals a target, following indirect references through a
// caller-supplied resolver.
//
// The walk is a pre-order depth-first traversal that visits dictionary
// entries in insertion order, so results are reproducible for a given
// document and resolver. References do not add steps to a path. A reference
// that is already on the current descent chain is a dead end, which bounds
// the walk on cyclic graphs while still letting one object be reported
// through several independent chains.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jacoelho/objsearch/internal/clock"
	"github.com/jacoelho/objsearch/internal/object"
	"github.com/jacoelho/objsearch/internal/stack"
)

// Scope controls how long a followed reference stays in the visited set.
type Scope uint8

const (
	// ScopeBranch forgets a reference once the walk backtracks out of it.
	ScopeBranch Scope = iota
	// ScopeSearch follows each reference at most once per search.
	ScopeSearch
)

func (s Scope) String() string {
	if s == ScopeSearch {
		return "search"
	}
	return "branch"
}

// ParseScope accepts "branch" or "search".
func ParseScope(input string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "branch":
		return ScopeBranch, nil
	case "search":
		return ScopeSearch, nil
	default:
		return ScopeBranch, fmt.Errorf("unknown scope %q", input)
	}
}

// Failure records a reference that could not be resolved. Path is the
// location of the reference in the document.
type Failure struct {
	Path Path
	Ref  object.Reference
	Err  error
}

// Result holds everything one search produced.
type Result struct {
	ID        string
	Key       string
	Paths     []Path
	Failures  []Failure
	Followed  int
	Truncated bool
	Canceled  bool
	Elapsed   time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger that receives resolution failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxDepth caps how many containers deep the walk goes. The root is at
// depth 0 and a reference target takes its reference's depth, so a limit of
// 1 searches only the root's own entries. Zero disables the cap.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		e.maxDepth = max(depth, 0)
	}
}

// WithMaxFollows caps how many references one search resolves. Zero disables the cap.
func WithMaxFollows(follows int) Option {
	return func(e *Engine) {
		e.maxFollows = max(follows, 0)
	}
}

// WithScope selects the visited-set scope.
func WithScope(scope Scope) Option {
	return func(e *Engine) {
		e.scope = scope
	}
}

// Engine runs searches against one resolver. It holds no per-search state and
// may be shared between goroutines when the resolver allows concurrent reads.
type Engine struct {
	resolver   object.Resolver
	logger     *slog.Logger
	maxDepth   int
	maxFollows int
	scope      Scope
}

// New creates an Engine that resolves references with resolver.
func New(resolver object.Resolver, opts ...Option) *Engine {
	e := &Engine{
		resolver: resolver,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns every path under root that ends at an entry named key.
// It never fails: unresolvable references are logged and skipped, and a nil
// root or empty key yields no paths.
func Search(root *object.Dictionary, resolver object.Resolver, key string) []Path {
	return New(resolver).Search(context.Background(), root, key).Paths
}

// Search walks root looking for entries named key. Cancelling ctx stops the
// walk and returns the paths found so far with Canceled set.
func (e *Engine) Search(ctx context.Context, root *object.Dictionary, key string) *Result {
	result := &Result{
		ID:  uuid.NewString(),
		Key: key,
	}
	if root == nil || key == "" {
		return result
	}

	start := clock.Now()
	w := &walker{
		ctx:     ctx,
		engine:  e,
		logger:  e.logger.With(slog.String("search", result.ID), slog.String("key", key)),
		key:     key,
		result:  result,
		trail:   stack.New[Step](16),
		visited: make(map[object.Reference]struct{}),
	}
	w.dict(root, 0)
	result.Elapsed = clock.Since(start)

	w.logger.Debug("search finished",
		slog.Int("matches", len(result.Paths)),
		slog.Int("failures", len(result.Failures)),
		slog.Int("followed", result.Followed),
		slog.Bool("truncated", result.Truncated),
		slog.Bool("canceled", result.Canceled),
		slog.Duration("elapsed", result.Elapsed),
	)

	return result
}

// walker carries the bookkeeping of a single search.
type walker struct {
	ctx     context.Context
	engine  *Engine
	logger  *slog.Logger
	key     string
	result  *Result
	trail   *stack.Stack[Step]
	visited map[object.Reference]struct{}
	stopped bool
}

func (w *walker) visit(v object.Value, depth int) {
	switch v := v.(type) {
	case *object.Dictionary:
		w.dict(v, depth)
	case *object.Stream:
		if v != nil {
			w.dict(v.Info, depth)
		}
	case object.Array:
		w.array(v, depth)
	case object.Reference:
		w.follow(v, depth)
	case object.Null, object.Integer, object.Real, object.Boolean, object.String, object.Name:
		// leaves
	}
}

func (w *walker) dict(d *object.Dictionary, depth int) {
	if d.Len() == 0 || !w.enter(depth) {
		return
	}

	for key, value := range d.All() {
		if !w.live() {
			return
		}
		if key == w.key {
			w.match(key)
		}
		w.trail.Push(DictStep(key))
		w.visit(value, depth+1)
		w.trail.Pop()
	}
}

func (w *walker) array(arr object.Array, depth int) {
	if len(arr) == 0 || !w.enter(depth) {
		return
	}

	for i, value := range arr {
		if !w.live() {
			return
		}
		w.trail.Push(ArrayStep(i))
		w.visit(value, depth+1)
		w.trail.Pop()
	}
}

func (w *walker) follow(ref object.Reference, depth int) {
	if _, ok := w.visited[ref]; ok {
		if w.logger.Enabled(w.ctx, slog.LevelDebug) {
			w.logger.Debug("reference already visited",
				slog.String("ref", ref.String()),
				slog.String("path", w.path().String()),
			)
		}
		return
	}
	if limit := w.engine.maxFollows; limit > 0 && w.result.Followed >= limit {
		w.result.Truncated = true
		return
	}

	w.visited[ref] = struct{}{}
	if w.engine.scope == ScopeBranch {
		defer delete(w.visited, ref)
	}

	w.result.Followed++
	target, err := w.resolve(ref)
	if err != nil {
		w.fail(ref, err)
		return
	}

	w.visit(target, depth)
}

func (w *walker) resolve(ref object.Reference) (object.Value, error) {
	if w.engine.resolver == nil {
		return nil, fmt.Errorf("%w: no resolver configured", object.ErrUnresolved)
	}
	return w.engine.resolver.Resolve(ref)
}

// path copies the current trail.
func (w *walker) path() Path {
	return w.trail.Snapshot(0)
}

func (w *walker) match(key string) {
	path := Path(w.trail.Snapshot(1))
	w.result.Paths = append(w.result.Paths, append(path, DictStep(key)))
}

func (w *walker) fail(ref object.Reference, err error) {
	path := w.path()
	w.result.Failures = append(w.result.Failures, Failure{Path: path, Ref: ref, Err: err})

	w.logger.Warn("failed to resolve reference",
		slog.String("ref", ref.String()),
		slog.String("path", path.String()),
		slog.String("error", err.Error()),
	)
}

// enter reports whether a container at depth may be walked.
func (w *walker) enter(depth int) bool {
	if !w.live() {
		return false
	}
	if limit := w.engine.maxDepth; limit > 0 && depth >= limit {
		w.result.Truncated = true
		return false
	}
	return true
}

func (w *walker) live() bool {
	if w.stopped {
		return false
	}
	if w.ctx.Err() != nil {
		w.stopped = true
		w.result.Canceled = true
		return false
	}
	return true
}
