package pipeline

import (
	"fmt"
	"io"

	"github.com/orneryd/corefsieve/pkg/config"
	"github.com/orneryd/corefsieve/pkg/dict"
	"github.com/orneryd/corefsieve/pkg/dict/store"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenDictionaries loads the lexical resources cfg names. Plain-text files
// in ResourceDir are loaded first; a StoreDir then replaces the coreference
// dictionary, signatures and vectors with the on-disk lexicon. The returned
// closer releases the store and must be closed after the last Resolve.
func OpenDictionaries(cfg config.DictionaryConfig) (*dict.Dictionaries, io.Closer, error) {
	d := dict.English()
	if cfg.ResourceDir != "" {
		loaded, err := dict.LoadDir(cfg.ResourceDir)
		if err != nil {
			return nil, nil, fmt.Errorf("loading dictionaries from %s: %w", cfg.ResourceDir, err)
		}
		d = loaded
	}
	if cfg.StoreDir == "" {
		return d, nopCloser{}, nil
	}
	s, err := store.Open(store.Options{
		DataDir:        cfg.StoreDir,
		CacheSize:      cfg.CacheSize,
		BlockCacheSize: cfg.BlockCacheBytes(),
	})
	if err != nil {
		return nil, nil, err
	}
	s.Attach(d)
	return d, s, nil
}
