package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/corefsieve/pkg/dict"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{InMemory: true, CacheSize: 16})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func writeResources(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		dict.CorefDictFile(1): "company\tfirm\t80\nbank\tlender\t4\n",
		dict.CorefDictFile(3): "oil company\toil firm\t17\n",
		dict.PMIFile:          "company\tfirm\t0.4\n",
		dict.SignaturesFile:   "obama\tpresident:40 senator:12 hawaii:3\n",
		dict.VectorsFile:      "2 2\nDog 1 0\ncat 0 1\n",
		"unrelated-notes.txt": "ignored\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestImportAndLookup(t *testing.T) {
	s := openTestStore(t)
	dir := writeResources(t)

	stats, err := s.ImportDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, stats, 5)
	for _, st := range stats {
		assert.False(t, st.Skipped)
		assert.Positive(t, st.Records, st.File)
	}

	t.Run("pair_counts", func(t *testing.T) {
		assert.Equal(t, 80.0, s.Count(1, "company", "firm"))
		assert.Equal(t, 17.0, s.Count(3, "oil company", "oil firm"))
		assert.Zero(t, s.Count(2, "company", "firm"))
		assert.Zero(t, s.Count(1, "firm", "company"))
	})

	t.Run("pmi", func(t *testing.T) {
		v, ok := s.PMI("company", "firm")
		require.True(t, ok)
		assert.Equal(t, 0.4, v)
		_, ok = s.PMI("bank", "lender")
		assert.False(t, ok)
	})

	t.Run("signatures", func(t *testing.T) {
		assert.True(t, s.HasSignature("obama"))
		assert.False(t, s.HasSignature("clinton"))
		r, ok := s.Rank("obama", "hawaii")
		require.True(t, ok)
		assert.Equal(t, 2, r)
	})

	t.Run("vectors", func(t *testing.T) {
		v, ok := s.Vector("DOG")
		require.True(t, ok)
		assert.Equal(t, []float32{1, 0}, v)
		_, ok = s.Vector("horse")
		assert.False(t, ok)
	})

	t.Run("cache_serves_repeats", func(t *testing.T) {
		s.Count(1, "bank", "lender")
		s.Count(1, "bank", "lender")
		assert.Positive(t, s.CacheStats()["pairs"].Hits)
	})
}

func TestImportSkipsUnchangedFiles(t *testing.T) {
	s := openTestStore(t)
	dir := writeResources(t)
	path := filepath.Join(dir, dict.PMIFile)

	first, err := s.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, first.Skipped)

	again, err := s.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, again.Skipped)

	require.NoError(t, os.WriteFile(path, []byte("company\tfirm\t0.9\n"), 0o644))
	changed, err := s.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, changed.Skipped)
	v, _ := s.PMI("company", "firm")
	assert.Equal(t, 0.9, v)
}

func TestReimportDropsStaleRecords(t *testing.T) {
	s := openTestStore(t)
	dir := writeResources(t)
	_, err := s.ImportDir(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 4.0, s.Count(1, "bank", "lender"))

	path := filepath.Join(dir, dict.CorefDictFile(1))
	require.NoError(t, os.WriteFile(path, []byte("company\tfirm\t90\n"), 0o644))
	st, err := s.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Removed)
	assert.Equal(t, 1, st.Records)

	assert.Zero(t, s.Count(1, "bank", "lender"), "dropped from the new version")
	assert.Equal(t, 90.0, s.Count(1, "company", "firm"))
	assert.Equal(t, 17.0, s.Count(3, "oil company", "oil firm"), "other columns untouched")
	_, ok := s.PMI("company", "firm")
	assert.True(t, ok, "other files untouched")
}

func TestImportErrors(t *testing.T) {
	s := openTestStore(t)

	t.Run("unknown_file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gazetteer.txt")
		require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))
		_, err := s.ImportFile(context.Background(), path)
		assert.ErrorIs(t, err, ErrUnknownResource)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := s.ImportDir(ctx, writeResources(t))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestAttach(t *testing.T) {
	s := openTestStore(t)
	_, err := s.ImportDir(context.Background(), writeResources(t))
	require.NoError(t, err)

	d := dict.English()
	s.Attach(d)
	assert.Equal(t, 80.0, d.PairCount(1, "company", "firm"))
	assert.True(t, d.HasSignature("obama"))
}

func TestClosedStore(t *testing.T) {
	s, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Close(), ErrClosed)
	assert.Zero(t, s.Count(1, "a", "b"))
}
