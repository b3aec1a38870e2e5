package dict

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Resource file names recognized by LoadDir. Every file is optional.
const (
	DemonymsFile   = "demonyms.txt"
	StatesFile     = "states.txt"
	PMIFile        = "coref.dict.pmi.txt"
	SignaturesFile = "ne.signatures.txt"
	VectorsFile    = "vectors.txt"
)

// CorefDictFile returns the file name of a 1-based coref-dict column.
func CorefDictFile(column int) string { return fmt.Sprintf("coref.dict%d.txt", column) }

// LoadDir returns English() overlaid with the resource files found in dir.
//
// Formats, one record per line, '#' starts a comment:
//
//	demonyms.txt        place<TAB>demonym[<TAB>demonym...]
//	states.txt          abbreviation<TAB>full name
//	coref.dictN.txt     pattern<TAB>pattern<TAB>count
//	coref.dict.pmi.txt  head<TAB>head<TAB>pmi
//	ne.signatures.txt   head<TAB>word:count word:count ...
//	vectors.txt         word v1 v2 ... vn
func LoadDir(dir string) (*Dictionaries, error) {
	d := English()
	pairs := d.CorefDict.(*MemoryPairCounts)
	sigs := d.Signatures.(*MemorySignatures)
	vecs := d.Vectors.(*MemoryVectors)

	load := func(name string, read func(io.Reader) error) error {
		f, err := os.Open(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("open %s: %w", name, err)
		}
		defer f.Close()
		if err := read(f); err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		return nil
	}

	if err := load(DemonymsFile, func(r io.Reader) error {
		return ReadDemonyms(r, func(place string, dems []string) { d.AddDemonym(place, dems...) })
	}); err != nil {
		return nil, err
	}
	if err := load(StatesFile, func(r io.Reader) error {
		return eachRecord(r, func(f []string) error {
			if len(f) < 2 {
				return nil
			}
			d.StatesAbbreviation[f[0]] = f[1]
			return nil
		})
	}); err != nil {
		return nil, err
	}
	for col := 1; col <= 4; col++ {
		col := col
		if err := load(CorefDictFile(col), func(r io.Reader) error {
			return ReadPairs(r, func(a, b string, v float64) { pairs.Set(col, a, b, v) })
		}); err != nil {
			return nil, err
		}
	}
	if err := load(PMIFile, func(r io.Reader) error {
		return ReadPairs(r, pairs.SetPMI)
	}); err != nil {
		return nil, err
	}
	if err := load(SignaturesFile, func(r io.Reader) error {
		return ReadSignatures(r, sigs.SetCounts)
	}); err != nil {
		return nil, err
	}
	if err := load(VectorsFile, func(r io.Reader) error {
		return ReadVectors(r, vecs.Set)
	}); err != nil {
		return nil, err
	}
	return d, nil
}

// eachRecord calls fn with the tab-separated fields of every non-empty,
// non-comment line.
func eachRecord(r io.Reader, fn func([]string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := fn(strings.Split(text, "\t")); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return sc.Err()
}

// ReadDemonyms parses "place<TAB>demonym..." records.
func ReadDemonyms(r io.Reader, fn func(place string, demonyms []string)) error {
	return eachRecord(r, func(f []string) error {
		if len(f) < 2 {
			return nil
		}
		dems := make([]string, 0, len(f)-1)
		for _, dn := range f[1:] {
			dems = append(dems, strings.ToLower(strings.TrimSpace(dn)))
		}
		fn(strings.ToLower(f[0]), dems)
		return nil
	})
}

// ReadPairs parses "a<TAB>b<TAB>value" records.
func ReadPairs(r io.Reader, fn func(a, b string, v float64)) error {
	return eachRecord(r, func(f []string) error {
		if len(f) != 3 {
			return fmt.Errorf("want 3 fields, got %d", len(f))
		}
		v, err := strconv.ParseFloat(f[2], 64)
		if err != nil {
			return err
		}
		fn(strings.ToLower(f[0]), strings.ToLower(f[1]), v)
		return nil
	})
}

// ReadSignatures parses "head<TAB>word:count ..." records.
func ReadSignatures(r io.Reader, fn func(head string, counts map[string]float64)) error {
	return eachRecord(r, func(f []string) error {
		if len(f) != 2 {
			return fmt.Errorf("want 2 fields, got %d", len(f))
		}
		counts := make(map[string]float64)
		for _, kv := range strings.Fields(f[1]) {
			i := strings.LastIndexByte(kv, ':')
			if i <= 0 {
				return fmt.Errorf("bad signature entry %q", kv)
			}
			v, err := strconv.ParseFloat(kv[i+1:], 64)
			if err != nil {
				return err
			}
			counts[strings.ToLower(kv[:i])] = v
		}
		fn(strings.ToLower(f[0]), counts)
		return nil
	})
}

// ReadVectors parses word2vec text format. A "count dim" header line is
// skipped.
func ReadVectors(r io.Reader, fn func(word string, vec []float32)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		if line == 1 && len(fields) == 2 {
			if _, err := strconv.Atoi(fields[0]); err == nil {
				continue
			}
		}
		vec := make([]float32, len(fields)-1)
		for i, s := range fields[1:] {
			v, err := strconv.ParseFloat(s, 32)
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			vec[i] = float32(v)
		}
		fn(fields[0], vec)
	}
	return sc.Err()
}
