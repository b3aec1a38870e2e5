// Package pipeline runs the configured sieves over documents.
//
// A Pipeline is built once from a validated configuration and is immutable
// afterwards, so one Pipeline may resolve many documents concurrently as
// long as each document is resolved by a single goroutine:
//
//	p, err := pipeline.New(cfg, dict.English(), pipeline.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	res, err := p.Resolve(ctx, doc)
//	if err != nil {
//		return err
//	}
//	for id, chain := range res.Chains {
//		fmt.Println(id, chain.Representative)
//	}
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/orneryd/corefsieve/pkg/config"
	"github.com/orneryd/corefsieve/pkg/coref"
	"github.com/orneryd/corefsieve/pkg/dict"
	"github.com/orneryd/corefsieve/pkg/logging"
	"github.com/orneryd/corefsieve/pkg/sieve"
)

var (
	// ErrUnknownSieve is returned by New for sieve names outside the
	// closed set.
	ErrUnknownSieve = sieve.ErrUnknownSieve

	// ErrUnsupportedLanguage is returned by New for languages other than
	// English and Chinese.
	ErrUnsupportedLanguage = errors.New("pipeline: unsupported language")

	// ErrUnsupportedClassifier is returned by New when a statistical sieve
	// names a classifier that is neither built in nor registered.
	ErrUnsupportedClassifier = errors.New("pipeline: unsupported classifier")

	// ErrCanceled is returned when the context ends during resolution.
	ErrCanceled = errors.New("pipeline: canceled")

	// ErrNoDictionaries is returned by New without dictionaries.
	ErrNoDictionaries = errors.New("pipeline: no dictionaries")
)

// DocumentError reports a failure while resolving one document. No partial
// result accompanies it.
type DocumentError struct {
	DocID string
	Part  int
	// Sieve is empty when the failure happened outside a sieve.
	Sieve string
	Err   error
}

func (e *DocumentError) Error() string {
	if e.Sieve == "" {
		return fmt.Sprintf("document %s part %d: %v", e.DocID, e.Part, e.Err)
	}
	return fmt.Sprintf("document %s part %d: sieve %s: %v", e.DocID, e.Part, e.Sieve, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// canceledError matches both ErrCanceled and the context's own error.
type canceledError struct{ cause error }

func (e canceledError) Error() string   { return fmt.Sprintf("%v: %v", ErrCanceled, e.cause) }
func (e canceledError) Unwrap() []error { return []error{ErrCanceled, e.cause} }

// Option customizes a Pipeline.
type Option func(*options)

type options struct {
	logger          *log.Logger
	nameMatcher     sieve.NameMatcher
	classifiers     map[string]sieve.Classifier
	filter          *sieve.HeuristicFilter
	partitionChecks bool
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option { return func(o *options) { o.logger = l } }

// WithNameMatcher enables the name-match rule with nm.
func WithNameMatcher(nm sieve.NameMatcher) Option {
	return func(o *options) { o.nameMatcher = nm }
}

// WithClassifier registers a classifier for statistical sieves whose
// configuration names it.
func WithClassifier(name string, c sieve.Classifier) Option {
	return func(o *options) { o.classifiers[name] = c }
}

// WithHeuristicFilter computes the candidate filter for every document.
// It overrides the configured filter.
func WithHeuristicFilter(h sieve.HeuristicFilter) Option {
	return func(o *options) { o.filter = &h }
}

// WithPartitionChecks verifies the cluster partition after every sieve.
func WithPartitionChecks() Option { return func(o *options) { o.partitionChecks = true } }

// Pipeline is an ordered list of sieves with the shared environment they
// run in.
type Pipeline struct {
	sieves           []sieve.Sieve
	dicts            *dict.Dictionaries
	language         sieve.Language
	exemptGenres     []string
	nameMatcher      sieve.NameMatcher
	filter           *sieve.HeuristicFilter
	removeSingletons bool
	partitionChecks  bool
	logger           *log.Logger
}

// Result is the outcome of resolving one document.
type Result struct {
	RunID    string
	DocID    string
	Part     int
	Chains   map[int]*coref.Chain
	Stats    []sieve.Stats
	Duration time.Duration
}

// Merges sums merges over all sieves.
func (r *Result) Merges() int {
	n := 0
	for _, s := range r.Stats {
		n += s.Merges
	}
	return n
}

// New builds the sieves cfg names. Language, sieve and classifier errors
// surface here, before any document is touched; the remaining fields are
// checked by Config.Validate.
func New(cfg *config.Config, dicts *dict.Dictionaries, opts ...Option) (*Pipeline, error) {
	if dicts == nil {
		return nil, ErrNoDictionaries
	}
	o := options{classifiers: make(map[string]sieve.Classifier)}
	for _, opt := range opts {
		opt(&o)
	}
	lang, ok := sieve.ParseLanguage(cfg.Language)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, cfg.Language)
	}

	p := &Pipeline{
		dicts:            dicts,
		language:         lang,
		exemptGenres:     cfg.ExemptNestingGenres,
		nameMatcher:      o.nameMatcher,
		removeSingletons: cfg.RemoveSingletons,
		partitionChecks:  o.partitionChecks || cfg.CheckPartition,
		logger:           o.logger,
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	if h, enabled := cfg.HeuristicFilter(); enabled {
		p.filter = &h
	}
	if o.filter != nil {
		p.filter = o.filter
	}

	for i, sc := range cfg.Sieves {
		s, err := buildSieve(sc, o.classifiers)
		if err != nil {
			return nil, fmt.Errorf("sieve %d (%s): %w", i, sc.Name, err)
		}
		p.sieves = append(p.sieves, s)
	}
	return p, nil
}

func buildSieve(sc config.SieveConfig, classifiers map[string]sieve.Classifier) (sieve.Sieve, error) {
	kind, err := sieve.ParseKind(sc.Name)
	if err != nil {
		return nil, err
	}
	settings, err := sc.Settings()
	if err != nil {
		return nil, err
	}
	switch kind {
	case sieve.KindMarkRole:
		return sieve.NewMarkRole(settings), nil
	case sieve.KindCustom:
		rs, err := sieve.ParseRuleSet(sc.Rules)
		if err != nil {
			return nil, err
		}
		return sieve.NewCustom(sc.Label, rs, settings), nil
	case sieve.KindStatistical:
		c, err := classifier(sc, classifiers)
		if err != nil {
			return nil, err
		}
		st, err := sieve.NewStatistical(sc.Label, c, sc.Threshold, settings)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	rs, err := sieve.NewRuleSieve(kind, settings)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

func classifier(sc config.SieveConfig, registered map[string]sieve.Classifier) (sieve.Classifier, error) {
	if c, ok := registered[sc.Classifier]; ok {
		return c, nil
	}
	switch sc.Classifier {
	case "", "logistic":
		if sc.Model == "" {
			return nil, fmt.Errorf("%w: logistic classifier without model", ErrUnsupportedClassifier)
		}
		l, err := sieve.LoadLogistic(sc.Model)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedClassifier, sc.Classifier)
}

// Sieves returns the names of the sieves in run order.
func (p *Pipeline) Sieves() []string {
	names := make([]string, len(p.sieves))
	for i, s := range p.sieves {
		names[i] = s.Name()
	}
	return names
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return canceledError{cause: err}
	}
	return nil
}

// Resolve finalizes doc and runs every sieve over it in order. The
// document's clusters are modified in place. Cancellation is checked
// between phases; a sieve already running completes first.
func (p *Pipeline) Resolve(ctx context.Context, doc *coref.Document) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	fail := func(sieveName string, err error) (*Result, error) {
		p.logger.Warn("document failed", "run", runID, "doc", doc.ID, "part", doc.Part, "sieve", sieveName, "err", err)
		return nil, &DocumentError{DocID: doc.ID, Part: doc.Part, Sieve: sieveName, Err: err}
	}

	if err := checkContext(ctx); err != nil {
		return fail("", err)
	}
	if err := doc.Finalize(); err != nil {
		return fail("", err)
	}

	env := &sieve.Env{
		Dicts:               p.dicts,
		Language:            p.language,
		ExemptNestingGenres: p.exemptGenres,
		NameMatcher:         p.nameMatcher,
		Logger:              p.logger.With("run", runID, "doc", doc.ID),
	}
	if p.filter != nil {
		env.Filter = p.filter.Candidates(doc)
	}

	stats := make([]sieve.Stats, 0, len(p.sieves))
	for _, s := range p.sieves {
		if err := checkContext(ctx); err != nil {
			return fail(s.Name(), err)
		}
		st, err := s.Resolve(doc, env)
		if err != nil {
			return fail(s.Name(), err)
		}
		if p.partitionChecks {
			if err := doc.CheckPartition(); err != nil {
				return fail(s.Name(), err)
			}
		}
		p.logger.Debug("sieve done", "run", runID, "doc", doc.ID, "sieve", s.Name(),
			"pairs", st.Pairs, "merges", st.Merges)
		stats = append(stats, st)
	}
	if err := checkContext(ctx); err != nil {
		return fail("", err)
	}

	res := &Result{
		RunID:    runID,
		DocID:    doc.ID,
		Part:     doc.Part,
		Chains:   doc.Chains(p.removeSingletons),
		Stats:    stats,
		Duration: time.Since(start),
	}
	p.logger.Info("document resolved", "run", runID, "doc", doc.ID, "part", doc.Part,
		"mentions", doc.MentionCount(), "chains", len(res.Chains), "merges", res.Merges(),
		"elapsed", res.Duration)
	return res, nil
}
