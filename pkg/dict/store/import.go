package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/blake2b"

	"github.com/orneryd/corefsieve/pkg/dict"
)

// ErrUnknownResource is returned by ImportFile for unrecognized file names.
var ErrUnknownResource = errors.New("store: unknown resource file")

// ImportStats describes one imported file.
type ImportStats struct {
	File    string
	Records int
	// Removed counts records of the previous version dropped before a
	// changed file was imported again.
	Removed int
	// Skipped is set when the file's digest matched the last import.
	Skipped bool
}

// ImportDir imports every recognized resource file of dir. Missing files
// are ignored.
func (s *Store) ImportDir(ctx context.Context, dir string) ([]ImportStats, error) {
	names := []string{dict.PMIFile, dict.SignaturesFile, dict.VectorsFile}
	for col := 1; col <= 4; col++ {
		names = append(names, dict.CorefDictFile(col))
	}
	var out []ImportStats
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		st, err := s.ImportFile(ctx, path)
		if err != nil {
			return out, err
		}
		out = append(out, st)
	}
	return out, nil
}

// ImportFile loads one resource file, recognized by its base name. A file
// whose blake2b digest equals the one recorded at its previous import is
// skipped.
func (s *Store) ImportFile(ctx context.Context, path string) (ImportStats, error) {
	name := filepath.Base(path)
	st := ImportStats{File: name}
	if s.db == nil {
		return st, ErrClosed
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return st, fmt.Errorf("reading %s: %w", name, err)
	}
	digest := blake2b.Sum256(data)

	var prev []byte
	if _, err := s.get(sourceKey(name), &prev); err != nil {
		return st, err
	}
	if bytes.Equal(prev, digest[:]) {
		st.Skipped = true
		return st, nil
	}
	prefix, ok := resourcePrefix(name)
	if !ok {
		return st, fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}
	if len(prev) > 0 {
		removed, err := s.deletePrefix(prefix)
		if err != nil {
			return st, fmt.Errorf("removing previous %s: %w", name, err)
		}
		st.Removed = removed
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	var setErr error
	put := func(key []byte, v any) {
		if setErr != nil {
			return
		}
		if st.Records%1000 == 0 {
			if setErr = ctx.Err(); setErr != nil {
				return
			}
		}
		val, err := msgpack.Marshal(v)
		if err != nil {
			setErr = err
			return
		}
		setErr = wb.Set(key, val)
		st.Records++
	}

	r := bytes.NewReader(data)
	switch {
	case name == dict.PMIFile:
		err = dict.ReadPairs(r, func(a, b string, v float64) { put(pmiKey(a, b), v) })
	case name == dict.SignaturesFile:
		err = dict.ReadSignatures(r, func(head string, counts map[string]float64) {
			put(sigKey(head), dict.RankCounts(counts))
		})
	case name == dict.VectorsFile:
		err = dict.ReadVectors(r, func(word string, vec []float32) {
			put(vectorKey(strings.ToLower(word)), vec)
		})
	default:
		col := corefDictColumn(name)
		err = dict.ReadPairs(r, func(a, b string, v float64) { put(pairKey(col, a, b), v) })
	}
	if err != nil {
		return st, fmt.Errorf("parsing %s: %w", name, err)
	}
	if setErr != nil {
		return st, fmt.Errorf("importing %s: %w", name, setErr)
	}
	if err := wb.Flush(); err != nil {
		return st, fmt.Errorf("flushing %s: %w", name, err)
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		val, err := msgpack.Marshal(digest[:])
		if err != nil {
			return err
		}
		return txn.Set(sourceKey(name), val)
	}); err != nil {
		return st, fmt.Errorf("recording digest of %s: %w", name, err)
	}
	s.clearCaches()
	return st, nil
}

// resourcePrefix returns the key range a resource file owns.
func resourcePrefix(name string) ([]byte, bool) {
	switch name {
	case dict.PMIFile:
		return []byte{prefixPMI}, true
	case dict.SignaturesFile:
		return []byte{prefixSig}, true
	case dict.VectorsFile:
		return []byte{prefixVector}, true
	}
	if col := corefDictColumn(name); col != 0 {
		return []byte{prefixPair, byte(col)}, true
	}
	return nil, false
}

// deletePrefix removes every key under prefix and returns how many there
// were.
func (s *Store) deletePrefix(prefix []byte) (int, error) {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil || len(keys) == 0 {
		return 0, err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func corefDictColumn(name string) int {
	for col := 1; col <= 4; col++ {
		if name == dict.CorefDictFile(col) {
			return col
		}
	}
	return 0
}
