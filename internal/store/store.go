// Package store persists document objects in BadgerDB and resolves
// references against them.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/jacoelho/objsearch/internal/object"
)

var (
	// ErrNoTrailer indicates the store holds no trailer dictionary.
	ErrNoTrailer = errors.New("store: no trailer")

	// ErrNotFound indicates a read-only open of a directory that does not exist.
	ErrNotFound = errors.New("store: not found")

	errNoPath           = errors.New("store: path is required for persistent database")
	errReadOnlyInMemory = errors.New("store: in-memory database cannot be read-only")
)

var (
	objectPrefix = []byte("obj/")
	trailerKey   = []byte("trailer")
)

// Config configures the BadgerDB backing a Store.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	InMemory bool

	// ReadOnly opens an existing database without creating it or taking the
	// exclusive lock, so several readers can share a directory.
	ReadOnly bool

	SyncWrites bool

	// Logger receives BadgerDB's internal logging. Nil silences it.
	Logger *slog.Logger
}

// DefaultConfig returns a persistent configuration for path.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		SyncWrites: true,
	}
}

// ReadOnlyConfig returns a configuration for reading the database at path.
func ReadOnlyConfig(path string) Config {
	return Config{
		Path:     path,
		ReadOnly: true,
	}
}

// InMemoryConfig returns a configuration for a throwaway store.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store is a resolver over objects persisted in BadgerDB. It is safe for
// concurrent use.
type Store struct {
	db *badger.DB
}

// Open opens the store described by cfg, creating it unless cfg.ReadOnly is
// set.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errNoPath
	}
	if cfg.InMemory && cfg.ReadOnly {
		return nil, errReadOnlyInMemory
	}

	var opts badger.Options
	switch {
	case cfg.InMemory:
		opts = badger.DefaultOptions("").WithInMemory(true)
	case cfg.ReadOnly:
		info, err := os.Stat(cfg.Path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, cfg.Path)
		}
		if err != nil {
			return nil, fmt.Errorf("open database directory %s: %w", cfg.Path, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", ErrNotFound, cfg.Path)
		}
		opts = badger.DefaultOptions(cfg.Path).WithReadOnly(true)
	default:
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores v as the object ref points at, replacing any previous value.
func (s *Store) Put(ref object.Reference, v object.Value) error {
	payload, err := object.Marshal(v)
	if err != nil {
		return fmt.Errorf("store object %s: %w", ref, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(objectKey(ref), payload)
	})
}

// SetTrailer stores the root dictionary.
func (s *Store) SetTrailer(trailer *object.Dictionary) error {
	payload, err := object.Marshal(trailer)
	if err != nil {
		return fmt.Errorf("store trailer: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(trailerKey, payload)
	})
}

// Trailer loads the root dictionary.
func (s *Store) Trailer() (*object.Dictionary, error) {
	payload, err := s.get(trailerKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNoTrailer
	}
	if err != nil {
		return nil, fmt.Errorf("load trailer: %w", err)
	}

	v, err := object.Unmarshal(payload)
	if err != nil {
		return nil, fmt.Errorf("load trailer: %w", err)
	}
	trailer, ok := v.(*object.Dictionary)
	if !ok {
		return nil, fmt.Errorf("load trailer: stored %s, want Dictionary", v.Kind())
	}
	return trailer, nil
}

// Resolve implements object.Resolver. Missing objects wrap
// object.ErrNotFound; storage and decoding failures wrap object.ErrUnresolved.
func (s *Store) Resolve(ref object.Reference) (object.Value, error) {
	payload, err := s.get(objectKey(ref))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", object.ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", object.ErrUnresolved, ref, err)
	}

	v, err := object.Unmarshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", object.ErrUnresolved, ref, err)
	}
	return v, nil
}

// Source is a document that can be copied into a store.
type Source interface {
	object.Resolver
	Trailer() *object.Dictionary
	Objects() []object.Reference
}

// Import copies every object of src and its trailer in a single batch and
// returns the number of objects written.
func (s *Store) Import(src Source) (int, error) {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	refs := src.Objects()
	for _, ref := range refs {
		v, err := src.Resolve(ref)
		if err != nil {
			return 0, fmt.Errorf("import object %s: %w", ref, err)
		}
		payload, err := object.Marshal(v)
		if err != nil {
			return 0, fmt.Errorf("import object %s: %w", ref, err)
		}
		if err := wb.Set(objectKey(ref), payload); err != nil {
			return 0, fmt.Errorf("import object %s: %w", ref, err)
		}
	}

	payload, err := object.Marshal(src.Trailer())
	if err != nil {
		return 0, fmt.Errorf("import trailer: %w", err)
	}
	if err := wb.Set(trailerKey, payload); err != nil {
		return 0, fmt.Errorf("import trailer: %w", err)
	}

	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush import: %w", err)
	}
	return len(refs), nil
}

// Objects lists the stored references in id, generation order.
func (s *Store) Objects() ([]object.Reference, error) {
	var refs []object.Reference
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = objectPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(objectPrefix); it.ValidForPrefix(objectPrefix); it.Next() {
			ref, ok := parseObjectKey(it.Item().Key())
			if !ok {
				continue
			}
			refs = append(refs, ref)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	return refs, nil
}

func (s *Store) get(key []byte) ([]byte, error) {
	var payload []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	return payload, err
}

// objectKey sorts by id then generation: big-endian id followed by
// big-endian generation.
func objectKey(ref object.Reference) []byte {
	key := make([]byte, len(objectPrefix)+10)
	n := copy(key, objectPrefix)
	binary.BigEndian.PutUint64(key[n:], ref.ID)
	binary.BigEndian.PutUint16(key[n+8:], ref.Gen)
	return key
}

func parseObjectKey(key []byte) (object.Reference, bool) {
	if len(key) != len(objectPrefix)+10 {
		return object.Reference{}, false
	}
	n := len(objectPrefix)
	return object.Reference{
		ID:  binary.BigEndian.Uint64(key[n:]),
		Gen: binary.BigEndian.Uint16(key[n+8:]),
	}, true
}
