// Package store persists the large lexical resources (coreference
// dictionary counts, named-entity signatures and word vectors) in BadgerDB
// so that they are imported once and then served from disk through an
// in-memory LRU.
//
// Example:
//
//	s, err := store.Open(store.Options{DataDir: "./data/lexicon"})
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	if _, err := s.ImportDir(ctx, "./resources"); err != nil {
//		return err
//	}
//	dicts := dict.English()
//	s.Attach(dicts)
//
// A Store is safe for concurrent use.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/orneryd/corefsieve/pkg/cache"
	"github.com/orneryd/corefsieve/pkg/dict"
)

// Key prefixes. Each record kind lives in its own key range.
const (
	prefixPair   = byte(0x01) // + column + a + 0x00 + b -> msgpack float64
	prefixPMI    = byte(0x02) // + a + 0x00 + b -> msgpack float64
	prefixSig    = byte(0x03) // + head -> msgpack map[string]int
	prefixVector = byte(0x04) // + word -> msgpack []float32
	prefixSource = byte(0x05) // + file name -> blake2b-256 digest
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// Options configures Open.
type Options struct {
	// DataDir is the BadgerDB directory. Ignored when InMemory is set.
	DataDir string
	// InMemory keeps everything in RAM, for tests.
	InMemory bool
	// SyncWrites forces an fsync after every write.
	SyncWrites bool
	// CacheSize bounds each front cache (default 10000 entries).
	CacheSize int
	// BlockCacheSize is the BadgerDB block cache in bytes (default 32MB).
	BlockCacheSize int64
}

type pmiEntry struct {
	value float64
	ok    bool
}

// Store is a BadgerDB-backed dict.PairCounts, dict.Signatures and
// dict.Vectors.
type Store struct {
	db *badger.DB

	pairs *cache.LRU[string, float64]
	pmis  *cache.LRU[string, pmiEntry]
	sigs  *cache.LRU[string, map[string]int]
	vecs  *cache.LRU[string, []float32]
}

// Open opens or creates a lexicon store.
func Open(opts Options) (*Store, error) {
	bopts := badger.DefaultOptions(opts.DataDir)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	if opts.SyncWrites {
		bopts = bopts.WithSyncWrites(true)
	}
	blockCache := opts.BlockCacheSize
	if blockCache <= 0 {
		blockCache = 32 << 20
	}
	bopts = bopts.
		WithLogger(nil).
		WithMemTableSize(16 << 20).
		WithValueLogFileSize(64 << 20).
		WithNumMemtables(2).
		WithBlockCacheSize(blockCache).
		WithIndexCacheSize(16 << 20)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("opening lexicon store: %w", err)
	}
	size := opts.CacheSize
	if size <= 0 {
		size = 10000
	}
	return &Store{
		db:    db,
		pairs: cache.New[string, float64](size),
		pmis:  cache.New[string, pmiEntry](size),
		sigs:  cache.New[string, map[string]int](size),
		vecs:  cache.New[string, []float32](size),
	}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return ErrClosed
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Attach makes d read its pair counts, signatures and vectors from s.
func (s *Store) Attach(d *dict.Dictionaries) {
	d.CorefDict = s
	d.Signatures = s
	d.Vectors = s
}

// CacheStats reports the front cache statistics by resource kind.
func (s *Store) CacheStats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"pairs":      s.pairs.Stats(),
		"pmi":        s.pmis.Stats(),
		"signatures": s.sigs.Stats(),
		"vectors":    s.vecs.Stats(),
	}
}

func (s *Store) clearCaches() {
	s.pairs.Clear()
	s.pmis.Clear()
	s.sigs.Clear()
	s.vecs.Clear()
}

// ============================================================================
// Key encoding helpers
// ============================================================================

func pairKey(column int, a, b string) []byte {
	key := make([]byte, 0, 2+len(a)+1+len(b))
	key = append(key, prefixPair, byte(column))
	key = append(key, a...)
	key = append(key, 0x00)
	return append(key, b...)
}

func pmiKey(a, b string) []byte {
	key := make([]byte, 0, 1+len(a)+1+len(b))
	key = append(key, prefixPMI)
	key = append(key, a...)
	key = append(key, 0x00)
	return append(key, b...)
}

func sigKey(head string) []byte    { return append([]byte{prefixSig}, head...) }
func vectorKey(word string) []byte { return append([]byte{prefixVector}, word...) }
func sourceKey(name string) []byte { return append([]byte{prefixSource}, name...) }

// get decodes the value at key into out. It reports false when the key is
// absent or the store is closed.
func (s *Store) get(key []byte, out any) (bool, error) {
	if s.db == nil {
		return false, ErrClosed
	}
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, out)
		})
	})
	return found, err
}

// Count implements dict.PairCounts. Lookup failures count as zero.
func (s *Store) Count(column int, a, b string) float64 {
	k := string(pairKey(column, a, b))
	if v, ok := s.pairs.Get(k); ok {
		return v
	}
	var v float64
	if _, err := s.get([]byte(k), &v); err != nil {
		return 0
	}
	s.pairs.Put(k, v)
	return v
}

// PMI implements dict.PairCounts.
func (s *Store) PMI(a, b string) (float64, bool) {
	k := string(pmiKey(a, b))
	if e, ok := s.pmis.Get(k); ok {
		return e.value, e.ok
	}
	var v float64
	found, err := s.get([]byte(k), &v)
	if err != nil {
		return 0, false
	}
	s.pmis.Put(k, pmiEntry{value: v, ok: found})
	return v, found
}

func (s *Store) signature(head string) map[string]int {
	if r, ok := s.sigs.Get(head); ok {
		return r
	}
	var ranks map[string]int
	if _, err := s.get(sigKey(head), &ranks); err != nil {
		return nil
	}
	s.sigs.Put(head, ranks)
	return ranks
}

// Rank implements dict.Signatures.
func (s *Store) Rank(head, word string) (int, bool) {
	r, ok := s.signature(head)[word]
	return r, ok
}

// HasSignature implements dict.Signatures.
func (s *Store) HasSignature(head string) bool { return s.signature(head) != nil }

// Vector implements dict.Vectors.
func (s *Store) Vector(word string) ([]float32, bool) {
	word = strings.ToLower(word)
	if v, ok := s.vecs.Get(word); ok {
		return v, v != nil
	}
	var vec []float32
	if _, err := s.get(vectorKey(word), &vec); err != nil {
		return nil, false
	}
	s.vecs.Put(word, vec)
	return vec, vec != nil
}
