package eval

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/corefsieve/pkg/config"
	"github.com/orneryd/corefsieve/pkg/coref"
	ct "github.com/orneryd/corefsieve/pkg/coref/coreftest"
	"github.com/orneryd/corefsieve/pkg/dict"
	"github.com/orneryd/corefsieve/pkg/docjson"
	"github.com/orneryd/corefsieve/pkg/pipeline"
	"github.com/orneryd/corefsieve/pkg/sieve"
)

// key: {1..5} {6,7} {8..12}; response: {1..5} {6..12}.
func splitMerge() (key, response Partition) {
	key, response = Partition{}, Partition{}
	for m := 1; m <= 12; m++ {
		switch {
		case m <= 5:
			key[m], response[m] = 1, 1
		case m <= 7:
			key[m], response[m] = 2, 2
		default:
			key[m], response[m] = 3, 2
		}
	}
	return key, response
}

// =============================================================================
// Metric Calculation Tests
// =============================================================================

func TestMUC(t *testing.T) {
	t.Run("over_merge", func(t *testing.T) {
		key, response := splitMerge()
		s := muc(key, response)
		assert.Equal(t, 1.0, s.Recall)
		assert.InDelta(t, 0.9, s.Precision, 1e-9) // (4+5)/(4+6)
		assert.InDelta(t, 2*0.9/1.9, s.F1, 1e-9)
	})

	t.Run("identical", func(t *testing.T) {
		key, _ := splitMerge()
		s := muc(key, key)
		assert.Equal(t, 1.0, s.Precision)
		assert.Equal(t, 1.0, s.Recall)
	})

	t.Run("all_singletons", func(t *testing.T) {
		key, _ := splitMerge()
		single := Partition{}
		for m := range key {
			single[m] = m
		}
		s := muc(key, single)
		assert.Zero(t, s.Recall)
		assert.Zero(t, s.Precision) // no response links
		assert.Zero(t, s.PDen)
		assert.Zero(t, s.F1)
	})
}

func TestBCubed(t *testing.T) {
	key, response := splitMerge()
	s := bcubed(key, response)
	assert.Equal(t, 1.0, s.Recall)
	// 5*(5/5) + 2*(2/7) + 5*(5/7) over 12 mentions
	assert.InDelta(t, (5+4.0/7+25.0/7)/12, s.Precision, 1e-9)
	assert.Equal(t, 12.0, s.PDen)
}

func TestPairwise(t *testing.T) {
	key, response := splitMerge()
	s := pairwise(key, response)
	assert.Equal(t, 21.0, s.RDen) // 10 + 1 + 10
	assert.Equal(t, 31.0, s.PDen) // 10 + 21
	assert.Equal(t, 1.0, s.Recall)
	assert.InDelta(t, 21.0/31, s.Precision, 1e-9)
}

func TestScoreAdd(t *testing.T) {
	a := newScore(1, 2, 1, 1)
	b := newScore(3, 4, 0, 3)
	sum := a.Add(b)
	assert.Equal(t, 4.0/6, sum.Precision)
	assert.Equal(t, 1.0/4, sum.Recall)
}

func TestGoldPartition(t *testing.T) {
	sents := []*coref.Sentence{ct.Sentence("John/NNP met/VBD Mary/NNP")}
	doc := ct.Document("g", sents,
		ct.Mention(0, 0, 1, 0, coref.Proper, ct.Gold(4)),
		ct.Mention(0, 2, 3, 2, coref.Proper),
	)
	g := Gold(doc)
	assert.Equal(t, 4, g[0])
	assert.Less(t, g[1], 0)

	p := Predicted(doc)
	assert.NotEqual(t, p[0], p[1])
}

// =============================================================================
// Harness Integration Tests
// =============================================================================

func obamaPipeline(t *testing.T, withMatcher bool) *pipeline.Pipeline {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Sieves = []config.SieveConfig{
		{Name: "ExactStringMatch"},
		{Name: "RelaxedExactStringMatch"},
		{Name: "NameMatch"},
		{Name: "PronounMatch"},
	}
	var opts []pipeline.Option
	if withMatcher {
		opts = append(opts, pipeline.WithNameMatcher(sieve.PersonNameMatcher{Titles: dict.English().PersonTitles}))
	}
	p, err := pipeline.New(cfg, dict.English(), opts...)
	require.NoError(t, err)
	return p
}

func TestHarnessBasic(t *testing.T) {
	harness := NewHarness(obamaPipeline(t, true))
	harness.AddDocuments(ct.Obama())

	result, err := harness.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalTests)
	assert.Equal(t, 1, result.PassedTests)
	assert.Equal(t, []string{"ExactStringMatch", "RelaxedExactStringMatch", "NameMatch", "PronounMatch"}, result.Sieves)
	require.Len(t, result.Results, 1)
	r := result.Results[0]
	assert.Equal(t, "obama", r.DocID)
	assert.Equal(t, 3, r.Mentions)
	assert.Equal(t, 2, r.Merges)
	assert.Equal(t, 1.0, r.Metrics.MUC.F1)
	assert.Equal(t, 1.0, r.Metrics.BCubed.F1)
	assert.Equal(t, 1.0, r.Metrics.Pairwise.F1)
}

func TestHarnessPartialRecall(t *testing.T) {
	harness := NewHarness(obamaPipeline(t, false))
	harness.AddDocuments(ct.Obama())

	result, err := harness.Run(context.Background())
	require.NoError(t, err)
	m := result.Aggregate
	assert.Equal(t, 1.0, m.MUC.Precision)
	assert.Equal(t, 0.5, m.MUC.Recall)
	assert.InDelta(t, 5.0/9, m.BCubed.Recall, 1e-9)
	assert.Equal(t, 1.0, m.BCubed.Precision)
	assert.InDelta(t, 1.0/3, m.Pairwise.Recall, 1e-9)
}

type failingResolver struct{}

func (failingResolver) Resolve(ctx context.Context, doc *coref.Document) (*pipeline.Result, error) {
	return nil, errors.New("resolver down")
}

func TestHarnessErrors(t *testing.T) {
	t.Run("no_documents", func(t *testing.T) {
		_, err := NewHarness(failingResolver{}).Run(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no documents")
	})

	t.Run("failed_document_counted", func(t *testing.T) {
		harness := NewHarness(failingResolver{})
		harness.AddDocuments(ct.Obama(), ct.Obama())
		result, err := harness.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, result.FailedTests)
		assert.Equal(t, "resolver down", result.Results[0].Error)
		assert.Zero(t, result.Aggregate.MUC.F1)
		assert.Empty(t, result.Sieves)
	})

	t.Run("canceled", func(t *testing.T) {
		harness := NewHarness(failingResolver{})
		harness.AddDocuments(ct.Obama())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := harness.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLoadSuite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, docjson.Encode(&buf, ct.Obama()))
	path := filepath.Join(t.TempDir(), "suite.jsonl")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	harness := NewHarness(obamaPipeline(t, true))
	harness.SetName("obama-suite")
	require.NoError(t, harness.LoadSuite(path))
	result, err := harness.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "obama-suite", result.SuiteName)
	assert.Equal(t, 1.0, result.Aggregate.MUC.F1)

	assert.Error(t, harness.LoadSuite(filepath.Join(t.TempDir(), "missing.jsonl")))
}

func TestThresholds(t *testing.T) {
	defaults := DefaultThresholds()

	assert.Equal(t, 0.5, defaults.MUC)
	assert.Equal(t, 0.5, defaults.BCubed)
	assert.Equal(t, 0.3, defaults.Pairwise)

	harness := NewHarness(obamaPipeline(t, false))
	harness.SetThresholds(Thresholds{MUC: 0.9})
	harness.AddDocuments(ct.Obama())
	result, err := harness.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.FailedTests)
}

// =============================================================================
// Reporter Tests
// =============================================================================

func TestReporterPrintCompact(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(&buf)

	result := &EvalResult{
		TotalTests:  10,
		PassedTests: 8,
		FailedTests: 2,
		Aggregate: Metrics{
			MUC:      newScore(3, 4, 3, 4),
			BCubed:   newScore(1, 4, 1, 4),
			Pairwise: newScore(1, 4, 1, 4),
		},
	}

	reporter.PrintCompact(result)

	output := buf.String()
	assert.Contains(t, output, "FAIL")
	assert.Contains(t, output, "8/10")
	assert.Contains(t, output, "MUC=0.75")
	assert.Contains(t, output, "Avg=0.50")
}

func TestReporterPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(&buf)

	result := &EvalResult{
		SuiteName:   "test-suite",
		TotalTests:  5,
		PassedTests: 5,
		Sieves:      []string{"ExactStringMatch", "PronounMatch"},
		Aggregate:   Metrics{MUC: newScore(1, 1, 1, 1)},
		Thresholds:  DefaultThresholds(),
	}

	reporter.PrintSummary(result)

	output := buf.String()
	assert.Contains(t, output, "test-suite")
	assert.Contains(t, output, "5/5")
	assert.Contains(t, output, "MUC F1")
	assert.Contains(t, output, "ExactStringMatch → PronounMatch")
}

func TestReporterDetailsAndJSON(t *testing.T) {
	result := &EvalResult{
		TotalTests: 2,
		Results: []TestResult{
			{DocID: "ok", Mentions: 3, Merges: 2, Metrics: Metrics{MUC: newScore(1, 1, 1, 1)}},
			{DocID: "broken", Error: "malformed"},
		},
		Thresholds: DefaultThresholds(),
	}

	var buf bytes.Buffer
	NewReporter(&buf).PrintDetails(result)
	assert.Contains(t, buf.String(), "Document 1: ok")
	assert.Contains(t, buf.String(), "Error: malformed")

	buf.Reset()
	require.NoError(t, NewReporter(&buf).PrintJSON(result))
	assert.Contains(t, buf.String(), `"doc_id": "broken"`)

	path := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, NewReporter(nil).SaveJSON(result, path))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
