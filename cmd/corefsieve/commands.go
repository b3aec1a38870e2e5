package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/orneryd/corefsieve/pkg/config"
	"github.com/orneryd/corefsieve/pkg/conll"
	"github.com/orneryd/corefsieve/pkg/coref"
	"github.com/orneryd/corefsieve/pkg/dict/store"
	"github.com/orneryd/corefsieve/pkg/docjson"
	"github.com/orneryd/corefsieve/pkg/eval"
	"github.com/orneryd/corefsieve/pkg/logging"
	"github.com/orneryd/corefsieve/pkg/pipeline"
	"github.com/orneryd/corefsieve/pkg/sieve"
)

// loadConfig reads --config (or the language defaults), then COREF_*
// variables, then command-line overrides, and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	language, _ := cmd.Flags().GetString("language")

	var cfg *config.Config
	switch {
	case path != "":
		c, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = c
	case language == string(sieve.Chinese):
		cfg = config.DefaultChineseConfig()
	default:
		cfg = config.DefaultConfig()
	}
	config.ApplyEnv(cfg)

	if language != "" && language != cfg.Language {
		if path == "" && os.Getenv("COREF_SIEVES") == "" {
			lang, _ := sieve.ParseLanguage(language)
			cfg.Sieves = config.DefaultSieves(lang)
		}
		cfg.Language = language
	}
	if v, _ := cmd.Flags().GetString("dict-dir"); v != "" {
		cfg.Dictionaries.ResourceDir = v
	}
	if v, _ := cmd.Flags().GetString("store-dir"); v != "" {
		cfg.Dictionaries.StoreDir = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		cfg.Workers = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.Runtime.ApplyRuntimeMemory()
	return cfg, nil
}

// session bundles what every resolving command needs.
type session struct {
	cfg      *config.Config
	logger   *log.Logger
	pipeline *pipeline.Pipeline
	closers  []io.Closer
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i].Close()
	}
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	dicts, dictCloser, err := pipeline.OpenDictionaries(cfg.Dictionaries)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.closers = append(s.closers, dictCloser)

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithNameMatcher(sieve.PersonNameMatcher{Titles: dicts.PersonTitles}),
	}
	p, err := pipeline.New(cfg, dicts, opts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.pipeline = p
	logger.Debug("configuration loaded", "config", cfg.String())
	return s, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func readDocuments(cmd *cobra.Command, args []string) ([]*coref.Document, error) {
	if len(args) == 0 {
		return docjson.Decode(bufio.NewReader(cmd.InOrStdin()))
	}
	var docs []*coref.Document
	for _, path := range args {
		d, err := docjson.ReadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d...)
	}
	return docs, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("output")
	keepSingletons, _ := cmd.Flags().GetBool("keep-singletons")
	if format != "json" && format != "conll" {
		return fmt.Errorf("unknown output format %q", format)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	docs, err := readDocuments(cmd, args)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}
	bw := bufio.NewWriter(out)
	defer bw.Flush()

	ctx, cancel := signalContext()
	defer cancel()

	failed := 0
	for i, o := range s.pipeline.ResolveAll(ctx, docs, s.cfg.Workers) {
		if o.Err != nil {
			failed++
			s.logger.Error("resolution failed", "doc", docs[i].ID, "err", o.Err)
			continue
		}
		chains := o.Result.Chains
		if keepSingletons {
			chains = docs[i].Chains(false)
		}
		if format == "conll" {
			err = conll.Write(bw, docs[i], chains)
		} else {
			err = docjson.WriteResult(bw, o.Result.RunID, docs[i], chains)
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", docs[i].ID, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(docs))
	}
	return nil
}

func runEval(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	savePath, _ := cmd.Flags().GetString("save")
	thresholdStr, _ := cmd.Flags().GetString("threshold")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	harness := eval.NewHarness(s.pipeline)
	harness.SetName(strings.Join(args, ","))
	if thresholdStr != "" {
		t, err := parseThresholds(thresholdStr, eval.DefaultThresholds())
		if err != nil {
			return err
		}
		harness.SetThresholds(t)
	}
	for _, path := range args {
		if err := harness.LoadSuite(path); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()
	result, err := harness.Run(ctx)
	if err != nil {
		return err
	}

	reporter := eval.NewReporter(cmd.OutOrStdout())
	switch output {
	case "json":
		if err := reporter.PrintJSON(result); err != nil {
			return err
		}
	case "compact":
		reporter.PrintCompact(result)
	case "detailed":
		reporter.PrintSummary(result)
		reporter.PrintDetails(result)
	default:
		reporter.PrintSummary(result)
	}
	if savePath != "" {
		if err := reporter.SaveJSON(result, savePath); err != nil {
			return err
		}
		s.logger.Info("results saved", "path", savePath)
	}
	if result.FailedTests > 0 {
		return fmt.Errorf("%d of %d documents below threshold", result.FailedTests, result.TotalTests)
	}
	return nil
}

// parseThresholds reads "muc=0.5,b3=0.5,pairwise=0.3" over base.
func parseThresholds(s string, base eval.Thresholds) (eval.Thresholds, error) {
	t := base
	for _, part := range strings.Split(s, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			return t, fmt.Errorf("invalid threshold %q", part)
		}
		val, err := strconv.ParseFloat(kv[1], 64)
		if err != nil {
			return t, fmt.Errorf("invalid threshold value %q: %w", kv[1], err)
		}
		switch strings.ToLower(kv[0]) {
		case "muc":
			t.MUC = val
		case "b3", "bcubed":
			t.BCubed = val
		case "pairwise", "pair":
			t.Pairwise = val
		default:
			return t, fmt.Errorf("unknown threshold %q", kv[0])
		}
	}
	return t, nil
}

func runDictImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Dictionaries.StoreDir == "" {
		return fmt.Errorf("no store directory: set --store-dir or dictionaries.store_dir")
	}
	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer closer.Close()

	st, err := store.Open(store.Options{
		DataDir:        cfg.Dictionaries.StoreDir,
		CacheSize:      cfg.Dictionaries.CacheSize,
		BlockCacheSize: cfg.Dictionaries.BlockCacheBytes(),
		SyncWrites:     true,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := signalContext()
	defer cancel()
	stats, err := st.ImportDir(ctx, args[0])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, s := range stats {
		if s.Skipped {
			fmt.Fprintf(w, "   ⏭️  %-22s unchanged\n", s.File)
			continue
		}
		if s.Removed > 0 {
			fmt.Fprintf(w, "   ✅ %-22s %d records (%d replaced)\n", s.File, s.Records, s.Removed)
			continue
		}
		fmt.Fprintf(w, "   ✅ %-22s %d records\n", s.File, s.Records)
	}
	logger.Info("lexicon imported", "dir", args[0], "store", cfg.Dictionaries.StoreDir, "files", len(stats))
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
