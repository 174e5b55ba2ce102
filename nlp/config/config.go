// Package config loads oracle construction settings from YAML, JSON or BCL files and the
// environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/oarkflow/bcl"
	"gopkg.in/yaml.v3"

	"github.com/oarkflow/oracle/nlp/oracle"
	"github.com/oarkflow/oracle/nlp/rouge"
	"github.com/oarkflow/oracle/nlp/telemetry"
	"github.com/oarkflow/oracle/nlp/tfidf"
)

var ErrInvalid = errors.New("config: invalid")

type Scorer struct {
	// Variant is rouge-1, rouge-2, ..., rouge-l or tfidf. Metric (f, p or r) applies to
	// the rouge variants.
	Variant string `yaml:"variant" json:"variant" bcl:"variant"`
	Metric  string `yaml:"metric" json:"metric" bcl:"metric"`
}

type Oracle struct {
	// Method is "greedy", "beam", or "stored" to reuse the oracles carried by the corpus.
	Method         string `yaml:"method" json:"method" bcl:"method"`
	BeamWidth      int    `yaml:"beam_width" json:"beam_width" bcl:"beam_width"`
	MaxRefineSize  int    `yaml:"max_refine_size" json:"max_refine_size" bcl:"max_refine_size"`
	MaxEvaluations int    `yaml:"max_evaluations" json:"max_evaluations" bcl:"max_evaluations"`
	// Eligibility is "skip_leading" or "all".
	Eligibility string `yaml:"eligibility" json:"eligibility" bcl:"eligibility"`
	Refine      bool   `yaml:"refine" json:"refine" bcl:"refine"`
	// Assignment is "current", or "fixed" to write every refined oracle to AssignSlot.
	Assignment string `yaml:"assignment" json:"assignment" bcl:"assignment"`
	AssignSlot int    `yaml:"assign_slot" json:"assign_slot" bcl:"assign_slot"`
}

type Text struct {
	Lemmas        string `yaml:"lemmas" json:"lemmas" bcl:"lemmas"`
	Stopwords     string `yaml:"stopwords" json:"stopwords" bcl:"stopwords"`
	DropStopwords bool   `yaml:"drop_stopwords" json:"drop_stopwords" bcl:"drop_stopwords"`
	Stem          bool   `yaml:"stem" json:"stem" bcl:"stem"`
	Abbreviations bool   `yaml:"abbreviations" json:"abbreviations" bcl:"abbreviations"`
	// Clean drops opinion boilerplate from documents before scoring.
	Clean bool `yaml:"clean" json:"clean" bcl:"clean"`
}

type Sample struct {
	Field int   `yaml:"field" json:"field" bcl:"field"`
	Num   int   `yaml:"num" json:"num" bcl:"num"`
	Seed  int64 `yaml:"seed" json:"seed" bcl:"seed"`
}

type Server struct {
	Addr      string  `yaml:"addr" json:"addr" bcl:"addr"`
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit" bcl:"rate_limit"`
	Burst     int     `yaml:"burst" json:"burst" bcl:"burst"`
}

type Store struct {
	DSN string `yaml:"dsn" json:"dsn" bcl:"dsn"`
}

type Config struct {
	Scorer  Scorer              `yaml:"scorer" json:"scorer" bcl:"scorer"`
	Oracle  Oracle              `yaml:"oracle" json:"oracle" bcl:"oracle"`
	Text    Text                `yaml:"text" json:"text" bcl:"text"`
	Sample  Sample              `yaml:"sample" json:"sample" bcl:"sample"`
	Workers int                 `yaml:"workers" json:"workers" bcl:"workers"`
	Server  Server              `yaml:"server" json:"server" bcl:"server"`
	Store   Store               `yaml:"store" json:"store" bcl:"store"`
	Log     telemetry.LogConfig `yaml:"log" json:"log" bcl:"log"`
}

func Defaults() Config {
	return Config{
		Scorer: Scorer{Variant: "rouge-1", Metric: "f"},
		Oracle: Oracle{
			Method:        "beam",
			BeamWidth:     oracle.DefaultBeamWidth,
			MaxRefineSize: oracle.DefaultMaxRefineSize,
			Eligibility:   "skip_leading",
			Assignment:    "current",
		},
		Text:    Text{Abbreviations: true},
		Sample:  Sample{Field: 0, Num: 4, Seed: 42},
		Workers: 4,
		Server:  Server{Addr: ":8080", RateLimit: 50, Burst: 100},
		Log:     telemetry.LogConfig{Level: "info"},
	}
}

// Load reads path over Defaults. The decoder is chosen by extension: .yaml/.yml, .json or
// .bcl.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	case ".bcl":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if _, err := bcl.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported format %q", ext)
	}
	return &cfg, nil
}

// LoadJSON decodes a JSON file into a new T.
func LoadJSON[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Scorer.Variant != "tfidf" {
		if _, err := rouge.New(c.Scorer.Variant, c.Scorer.Metric); err != nil {
			errs = append(errs, err)
		}
	}
	switch c.Oracle.Method {
	case "greedy", "beam", "stored":
	default:
		errs = append(errs, fmt.Errorf("oracle.method %q is not greedy, beam or stored", c.Oracle.Method))
	}
	if c.Oracle.BeamWidth < 1 {
		errs = append(errs, fmt.Errorf("oracle.beam_width %d must be positive", c.Oracle.BeamWidth))
	}
	if c.Oracle.MaxRefineSize < 1 || c.Oracle.MaxRefineSize > oracle.DefaultMaxRefineSize {
		errs = append(errs, fmt.Errorf("oracle.max_refine_size %d outside 1..%d",
			c.Oracle.MaxRefineSize, oracle.DefaultMaxRefineSize))
	}
	if c.Oracle.MaxEvaluations < 0 {
		errs = append(errs, fmt.Errorf("oracle.max_evaluations %d is negative", c.Oracle.MaxEvaluations))
	}
	if _, err := c.eligibility(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Assignment(); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d is negative", c.Workers))
	}
	if c.Sample.Num < 1 {
		errs = append(errs, fmt.Errorf("sample.num %d must be positive", c.Sample.Num))
	}
	if c.Sample.Field < 0 {
		errs = append(errs, fmt.Errorf("sample.field %d is negative", c.Sample.Field))
	}
	if c.Server.RateLimit < 0 || c.Server.Burst < 0 {
		errs = append(errs, fmt.Errorf("server rate limit %g/%d is negative", c.Server.RateLimit, c.Server.Burst))
	}
	if _, err := telemetry.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func (c *Config) eligibility() (oracle.EligibilityPolicy, error) {
	switch c.Oracle.Eligibility {
	case "", "skip_leading":
		return oracle.SkipLeading, nil
	case "all":
		return oracle.AllSentences, nil
	}
	return 0, fmt.Errorf("oracle.eligibility %q is not skip_leading or all", c.Oracle.Eligibility)
}

// OracleOptions converts the oracle section to engine options.
func (c *Config) OracleOptions() oracle.Options {
	policy, _ := c.eligibility()
	return oracle.Options{
		BeamWidth:      c.Oracle.BeamWidth,
		MaxRefineSize:  c.Oracle.MaxRefineSize,
		MaxEvaluations: c.Oracle.MaxEvaluations,
		Eligibility:    policy,
	}
}

func (c *Config) Assignment() (oracle.Assignment, error) {
	switch c.Oracle.Assignment {
	case "", "current":
		return oracle.AssignCurrent(), nil
	case "fixed":
		return oracle.AssignFixed(c.Oracle.AssignSlot), nil
	}
	return oracle.Assignment{}, fmt.Errorf("oracle.assignment %q is not current or fixed", c.Oracle.Assignment)
}

// NewScorer builds the configured similarity scorer. The tfidf variant fits its inverse
// document frequencies on the sentences in fit; the rouge variants ignore it.
func (c *Config) NewScorer(fit [][]string) (oracle.Scorer, error) {
	if c.Scorer.Variant == "tfidf" {
		return tfidf.Fit(fit), nil
	}
	s, err := rouge.New(c.Scorer.Variant, c.Scorer.Metric)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyEnv loads envFile, if it exists, into the process environment and then overrides
// fields from ORACLE_* variables.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config: %s: %w", envFile, err)
		}
	}
	strs := map[string]*string{
		"ORACLE_METHOD":         &c.Oracle.Method,
		"ORACLE_SCORER_VARIANT": &c.Scorer.Variant,
		"ORACLE_SCORER_METRIC":  &c.Scorer.Metric,
		"ORACLE_ELIGIBILITY":    &c.Oracle.Eligibility,
		"ORACLE_ASSIGNMENT":     &c.Oracle.Assignment,
		"ORACLE_SERVER_ADDR":    &c.Server.Addr,
		"ORACLE_STORE_DSN":      &c.Store.DSN,
		"ORACLE_LOG_FILE":       &c.Log.File,
		"ORACLE_LOG_LEVEL":      &c.Log.Level,
		"ORACLE_LEMMAS":         &c.Text.Lemmas,
		"ORACLE_STOPWORDS":      &c.Text.Stopwords,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	ints := map[string]*int{
		"ORACLE_BEAM_WIDTH":      &c.Oracle.BeamWidth,
		"ORACLE_MAX_REFINE_SIZE": &c.Oracle.MaxRefineSize,
		"ORACLE_MAX_EVALUATIONS": &c.Oracle.MaxEvaluations,
		"ORACLE_WORKERS":         &c.Workers,
		"ORACLE_SAMPLE_FIELD":    &c.Sample.Field,
		"ORACLE_SAMPLE_NUM":      &c.Sample.Num,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = n
	}
	bools := map[string]*bool{
		"ORACLE_REFINE": &c.Oracle.Refine,
		"ORACLE_CLEAN":  &c.Text.Clean,
	}
	for key, dst := range bools {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = b
	}
	return nil
}
