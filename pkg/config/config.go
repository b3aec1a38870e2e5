// Package config handles corefsieve configuration from YAML files and
// environment variables.
//
// A configuration names the language, the ordered list of sieves to run,
// the lexical resources and logging. DefaultConfig returns the standard
// English cascade; LoadFile overlays a YAML file on the defaults and
// ApplyEnv overlays COREF_* environment variables on top of that.
//
// Example Usage:
//
//	cfg, err := config.LoadFile("corefsieve.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	config.ApplyEnv(cfg)
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid config: %v", err)
//	}
//
// Environment Variables:
//   - COREF_LANGUAGE="en" or "zh"
//   - COREF_SIEVES="ExactStringMatch,PronounMatch" (replaces the sieve list)
//   - COREF_MAX_SENTENCE_DISTANCE=-1 (applied to every sieve)
//   - COREF_REMOVE_SINGLETONS=true
//   - COREF_CHECK_PARTITION=false
//   - COREF_EXEMPT_NESTING_GENRES="nw,bc"
//   - COREF_FILTER_ENABLED=false
//   - COREF_DICT_DIR="./resources"
//   - COREF_STORE_DIR="./data/lexicon"
//   - COREF_STORE_CACHE_SIZE=10000
//   - COREF_STORE_BLOCK_CACHE="32MB"
//   - COREF_LOG_LEVEL, COREF_LOG_FORMAT, COREF_LOG_FILE
//   - COREF_WORKERS=4
//   - COREF_MEMORY_LIMIT="2GB", COREF_GC_PERCENT=100
package config

import (
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/orneryd/corefsieve/pkg/coref"
	"github.com/orneryd/corefsieve/pkg/logging"
	"github.com/orneryd/corefsieve/pkg/sieve"
)

// Config holds all corefsieve configuration.
//
// Configuration is organized into logical sections:
//   - Sieves: the ordered resolution passes
//   - Filter: the document-wide candidate filter
//   - Dictionaries: lexical resources and their on-disk store
//   - Logging: logging configuration
//   - Runtime: Go runtime memory tuning for batch runs
type Config struct {
	// Language is "en" or "zh".
	Language string `yaml:"language"`

	// Sieves run in order.
	Sieves []SieveConfig `yaml:"sieves"`

	// RemoveSingletons drops one-mention chains from the output.
	RemoveSingletons bool `yaml:"remove_singletons"`

	// CheckPartition verifies after each sieve that every mention belongs
	// to exactly one cluster.
	CheckPartition bool `yaml:"check_partition"`

	// ExemptNestingGenres lists genres where nested mentions may corefer.
	ExemptNestingGenres []string `yaml:"exempt_nesting_genres"`

	Filter       FilterConfig     `yaml:"filter"`
	Dictionaries DictionaryConfig `yaml:"dictionaries"`
	Logging      logging.Config   `yaml:"logging"`
	Runtime      RuntimeConfig    `yaml:"runtime"`

	// Workers bounds how many documents a batch resolves concurrently.
	Workers int `yaml:"workers"`
}

// SieveConfig configures one pass.
type SieveConfig struct {
	// Name is the sieve kind, e.g. "ExactStringMatch", "Custom" or
	// "Statistical".
	Name string `yaml:"name"`
	// Label names a Custom or Statistical sieve in logs and stats.
	Label string `yaml:"label,omitempty"`
	// MaxSentenceDistance bounds the antecedent search; nil or negative is
	// unbounded.
	MaxSentenceDistance *int `yaml:"max_sentence_distance,omitempty"`
	// MentionTypes and AntecedentTypes restrict the pairs considered.
	MentionTypes    []string `yaml:"mention_types,omitempty"`
	AntecedentTypes []string `yaml:"antecedent_types,omitempty"`
	// HonorFilter makes the sieve respect the candidate filter.
	HonorFilter bool `yaml:"honor_filter,omitempty"`
	// Rules enables rules of a Custom sieve by name.
	Rules []string `yaml:"rules,omitempty"`
	// Classifier names the model of a Statistical sieve: "logistic" (the
	// default) loads Model, anything else must be registered with the
	// pipeline.
	Classifier string `yaml:"classifier,omitempty"`
	// Model is the logistic model file of a Statistical sieve.
	Model string `yaml:"model,omitempty"`
	// Threshold is the merge probability of a Statistical sieve.
	Threshold float64 `yaml:"threshold,omitempty"`
}

// FilterConfig holds the heuristic candidate filter settings.
type FilterConfig struct {
	Enabled                           bool `yaml:"enabled"`
	MaxMentionDistance                int  `yaml:"max_mention_distance"`
	MaxMentionDistanceWithStringMatch int  `yaml:"max_mention_distance_with_string_match"`
}

// DictionaryConfig locates the lexical resources.
type DictionaryConfig struct {
	// ResourceDir holds plain-text resources loaded into memory.
	ResourceDir string `yaml:"resource_dir"`
	// StoreDir is a BadgerDB lexicon built by "corefsieve dict import".
	// When set it serves the coreference dictionary, signatures and
	// vectors instead of ResourceDir.
	StoreDir string `yaml:"store_dir"`
	// CacheSize bounds each in-memory front cache of the store.
	CacheSize int `yaml:"cache_size"`
	// BlockCache is the BadgerDB block cache size, e.g. "32MB".
	BlockCache string `yaml:"block_cache"`
}

// BlockCacheBytes parses BlockCache; zero means the store default.
func (d DictionaryConfig) BlockCacheBytes() int64 { return parseMemorySize(d.BlockCache) }

// RuntimeConfig tunes the Go runtime for large batches.
type RuntimeConfig struct {
	// MemoryLimit is the soft memory limit (GOMEMLIMIT), e.g. "2GB".
	// Empty or "0" is unlimited.
	MemoryLimit string `yaml:"memory_limit"`
	// GCPercent controls GC aggressiveness (GOGC); 100 is the Go default.
	GCPercent int `yaml:"gc_percent"`
}

// MaxSentences returns a *int for SieveConfig.MaxSentenceDistance.
func MaxSentences(n int) *int { return &n }

// DefaultSieves returns the standard cascade for a language.
func DefaultSieves(lang sieve.Language) []SieveConfig {
	var kinds []sieve.Kind
	if lang == sieve.Chinese {
		kinds = []sieve.Kind{
			sieve.KindChineseHeadMatch, sieve.KindExactStringMatch, sieve.KindPreciseConstructs,
			sieve.KindStrictHeadMatch1, sieve.KindStrictHeadMatch2, sieve.KindStrictHeadMatch3,
			sieve.KindStrictHeadMatch4, sieve.KindPronounMatch,
		}
	} else {
		kinds = []sieve.Kind{
			sieve.KindMarkRole, sieve.KindDiscourseMatch, sieve.KindExactStringMatch,
			sieve.KindRelaxedExactStringMatch, sieve.KindPreciseConstructs,
			sieve.KindStrictHeadMatch1, sieve.KindStrictHeadMatch2, sieve.KindStrictHeadMatch3,
			sieve.KindStrictHeadMatch4, sieve.KindRelaxedHeadMatch, sieve.KindPronounMatch,
		}
	}
	out := make([]SieveConfig, len(kinds))
	for i, k := range kinds {
		out[i] = SieveConfig{Name: k.String(), MaxSentenceDistance: MaxSentences(-1)}
	}
	return out
}

// DefaultConfig returns the English configuration.
func DefaultConfig() *Config {
	h := sieve.DefaultHeuristicFilter()
	return &Config{
		Language:         string(sieve.English),
		Sieves:           DefaultSieves(sieve.English),
		RemoveSingletons: true,
		Filter: FilterConfig{
			MaxMentionDistance:                h.MaxMentionDistance,
			MaxMentionDistanceWithStringMatch: h.MaxMentionDistanceWithStringMatch,
		},
		Dictionaries: DictionaryConfig{CacheSize: 10000},
		Logging:      logging.DefaultConfig(),
		Runtime:      RuntimeConfig{GCPercent: 100},
		Workers:      1,
	}
}

// DefaultChineseConfig returns the Chinese configuration, which lets
// nested mentions corefer in newswire.
func DefaultChineseConfig() *Config {
	c := DefaultConfig()
	c.Language = string(sieve.Chinese)
	c.Sieves = DefaultSieves(sieve.Chinese)
	c.ExemptNestingGenres = []string{"nw"}
	return c
}

// Parse decodes YAML over the defaults of the language it names.
func Parse(data []byte) (*Config, error) {
	var probe struct {
		Language string `yaml:"language"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	c := DefaultConfig()
	if lang, ok := sieve.ParseLanguage(probe.Language); ok && lang == sieve.Chinese {
		c = DefaultChineseConfig()
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return c, nil
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// LoadFromEnv returns DefaultConfig with the environment applied.
func LoadFromEnv() *Config {
	c := DefaultConfig()
	if lang, ok := sieve.ParseLanguage(os.Getenv("COREF_LANGUAGE")); ok && lang == sieve.Chinese {
		c = DefaultChineseConfig()
	}
	ApplyEnv(c)
	return c
}

// ApplyEnv overlays COREF_* variables onto c. Unset variables leave c
// unchanged.
func ApplyEnv(c *Config) {
	c.Language = getEnv("COREF_LANGUAGE", c.Language)
	if names := getEnvStringSlice("COREF_SIEVES", nil); names != nil {
		c.Sieves = make([]SieveConfig, len(names))
		for i, n := range names {
			c.Sieves[i] = SieveConfig{Name: n, MaxSentenceDistance: MaxSentences(-1)}
		}
	}
	if v := os.Getenv("COREF_MAX_SENTENCE_DISTANCE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			for i := range c.Sieves {
				c.Sieves[i].MaxSentenceDistance = MaxSentences(n)
			}
		}
	}
	c.RemoveSingletons = getEnvBool("COREF_REMOVE_SINGLETONS", c.RemoveSingletons)
	c.CheckPartition = getEnvBool("COREF_CHECK_PARTITION", c.CheckPartition)
	c.ExemptNestingGenres = getEnvStringSlice("COREF_EXEMPT_NESTING_GENRES", c.ExemptNestingGenres)

	c.Filter.Enabled = getEnvBool("COREF_FILTER_ENABLED", c.Filter.Enabled)

	c.Dictionaries.ResourceDir = getEnv("COREF_DICT_DIR", c.Dictionaries.ResourceDir)
	c.Dictionaries.StoreDir = getEnv("COREF_STORE_DIR", c.Dictionaries.StoreDir)
	c.Dictionaries.CacheSize = getEnvInt("COREF_STORE_CACHE_SIZE", c.Dictionaries.CacheSize)
	c.Dictionaries.BlockCache = getEnv("COREF_STORE_BLOCK_CACHE", c.Dictionaries.BlockCache)

	c.Logging.Level = getEnv("COREF_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("COREF_LOG_FORMAT", c.Logging.Format)
	c.Logging.File = getEnv("COREF_LOG_FILE", c.Logging.File)

	c.Workers = getEnvInt("COREF_WORKERS", c.Workers)
	c.Runtime.MemoryLimit = getEnv("COREF_MEMORY_LIMIT", c.Runtime.MemoryLimit)
	c.Runtime.GCPercent = getEnvInt("COREF_GC_PERCENT", c.Runtime.GCPercent)
}

// Lang returns the parsed language; Validate rejects unknown values.
func (c *Config) Lang() sieve.Language {
	lang, _ := sieve.ParseLanguage(c.Language)
	return lang
}

// HeuristicFilter returns the configured filter, or false when disabled.
func (c *Config) HeuristicFilter() (sieve.HeuristicFilter, bool) {
	return sieve.HeuristicFilter{
		MaxMentionDistance:                c.Filter.MaxMentionDistance,
		MaxMentionDistanceWithStringMatch: c.Filter.MaxMentionDistanceWithStringMatch,
	}, c.Filter.Enabled
}

// Settings converts the search parameters of s.
func (s SieveConfig) Settings() (sieve.Settings, error) {
	out := sieve.Settings{MaxSentenceDistance: -1, HonorFilter: s.HonorFilter}
	if s.MaxSentenceDistance != nil {
		out.MaxSentenceDistance = *s.MaxSentenceDistance
	}
	var err error
	if out.MentionTypes, err = parseTypes(s.MentionTypes); err != nil {
		return out, fmt.Errorf("sieve %s: mention_types: %w", s.Name, err)
	}
	if out.AntecedentTypes, err = parseTypes(s.AntecedentTypes); err != nil {
		return out, fmt.Errorf("sieve %s: antecedent_types: %w", s.Name, err)
	}
	return out, nil
}

func parseTypes(names []string) ([]coref.MentionType, error) {
	var out []coref.MentionType
	for _, n := range names {
		t, err := coref.ParseMentionType(n)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Validate checks the configuration for logical errors and invalid values.
//
// This method checks:
//   - the language is known
//   - every sieve name is a known kind, with its kind-specific fields
//   - mention type names parse
//   - filter bounds are positive when the filter is enabled
//   - logging level and format are valid
//
// Returns nil if configuration is valid, or an error describing the problem.
func (c *Config) Validate() error {
	if _, ok := sieve.ParseLanguage(c.Language); !ok {
		return fmt.Errorf("invalid language: %q", c.Language)
	}
	if len(c.Sieves) == 0 {
		return fmt.Errorf("no sieves configured")
	}
	for i, s := range c.Sieves {
		kind, err := sieve.ParseKind(s.Name)
		if err != nil {
			return fmt.Errorf("sieve %d: %w", i, err)
		}
		if _, err := s.Settings(); err != nil {
			return err
		}
		switch kind {
		case sieve.KindCustom:
			rs, err := sieve.ParseRuleSet(s.Rules)
			if err != nil {
				return fmt.Errorf("sieve %d: %w", i, err)
			}
			if rs == 0 {
				return fmt.Errorf("sieve %d: custom sieve without rules", i)
			}
		case sieve.KindStatistical:
			if s.Threshold < 0 || s.Threshold > 1 {
				return fmt.Errorf("sieve %d: threshold %.2f outside [0,1]", i, s.Threshold)
			}
			if s.Model == "" && (s.Classifier == "" || s.Classifier == "logistic") {
				return fmt.Errorf("sieve %d: logistic classifier without model", i)
			}
		}
	}
	if c.Filter.Enabled && (c.Filter.MaxMentionDistance <= 0 || c.Filter.MaxMentionDistanceWithStringMatch <= 0) {
		return fmt.Errorf("invalid filter distances: %d/%d",
			c.Filter.MaxMentionDistance, c.Filter.MaxMentionDistanceWithStringMatch)
	}
	if c.Workers < 1 {
		return fmt.Errorf("invalid workers: %d", c.Workers)
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return nil
}

// SieveNames lists the configured sieve names in order.
func (c *Config) SieveNames() []string {
	names := make([]string, len(c.Sieves))
	for i, s := range c.Sieves {
		names[i] = s.Name
		if s.Label != "" {
			names[i] = s.Label
		}
	}
	return names
}

// String returns a compact representation for logging.
func (c *Config) String() string {
	dicts := "builtin"
	switch {
	case c.Dictionaries.StoreDir != "":
		dicts = "store:" + c.Dictionaries.StoreDir
	case c.Dictionaries.ResourceDir != "":
		dicts = "dir:" + c.Dictionaries.ResourceDir
	}
	return fmt.Sprintf("Config{Language: %s, Sieves: [%s], Filter: %v, Dictionaries: %s, Workers: %d}",
		c.Language, strings.Join(c.SieveNames(), " "), c.Filter.Enabled, dicts, c.Workers)
}

// Marshal encodes c as YAML.
func (c *Config) Marshal() ([]byte, error) { return yaml.Marshal(c) }

// Helper functions for environment variable parsing

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(val)
		return val == "true" || val == "1" || val == "yes" || val == "on"
	}
	return defaultVal
}

func getEnvStringSlice(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		// Split by comma, trim whitespace
		parts := strings.Split(val, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultVal
}

// parseMemorySize parses a human-readable memory size string.
// Supports: "1024", "1KB", "1MB", "1GB", "1TB", "0", "unlimited"
func parseMemorySize(s string) int64 {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" || s == "0" || s == "UNLIMITED" {
		return 0
	}

	s = strings.TrimSuffix(s, "B")

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "K"):
		multiplier = 1024
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "G"):
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "G")
	case strings.HasSuffix(s, "T"):
		multiplier = 1024 * 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "T")
	}

	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return val * multiplier
}

// FormatMemorySize formats bytes as human-readable string.
func FormatMemorySize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.2f TB", float64(bytes)/float64(TB))
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// ApplyRuntimeMemory applies the runtime memory settings to the Go runtime.
// Should be called early in main() before heavy allocations.
func (r RuntimeConfig) ApplyRuntimeMemory() {
	if limit := parseMemorySize(r.MemoryLimit); limit > 0 {
		debug.SetMemoryLimit(limit)
	}
	if r.GCPercent > 0 && r.GCPercent != 100 {
		debug.SetGCPercent(r.GCPercent)
	}
}
