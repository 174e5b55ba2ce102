package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/oarkflow/oracle/nlp/config"
	"github.com/oarkflow/oracle/nlp/corpus"
	"github.com/oarkflow/oracle/nlp/dataset"
	"github.com/oarkflow/oracle/nlp/export"
	"github.com/oarkflow/oracle/nlp/oracle"
	"github.com/oarkflow/oracle/nlp/pipeline"
	"github.com/oarkflow/oracle/nlp/store"
	"github.com/oarkflow/oracle/nlp/telemetry"
)

func main() {
	cfgPath := flag.String("config", "oracle.yaml", "configuration file (.yaml, .json or .bcl)")
	envPath := flag.String("env", ".env", "environment file")
	corpusPath := flag.String("corpus", "", "corpus file (.jsonl or .msgpack)")
	outPath := flag.String("out", "oracles.jsonl", "oracle records output (.jsonl or .msgpack)")
	method := flag.String("method", "", "greedy, beam or stored (reuse corpus oracles), overrides the configuration")
	refine := flag.Bool("refine", false, "refine oracles by permutation search")
	samplesPath := flag.String("samples", "", "write negative samples as JSON lines to this file")
	splitPath := flag.String("split", "", "write the train/val/test split of the sampled field to this file")
	flag.Parse()

	if *corpusPath == "" {
		log.Fatal("-corpus is required")
	}
	cfg := config.MustLoad(*cfgPath, *envPath)
	if *method != "" {
		cfg.Oracle.Method = *method
	}
	if *refine {
		cfg.Oracle.Refine = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	closer, err := telemetry.SetupLogging(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer closer.Close()

	if err := run(cfg, *corpusPath, *outPath, *samplesPath, *splitPath); err != nil {
		slog.Error("Oracle run failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, corpusPath, outPath, samplesPath, splitPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, err := corpus.Load(corpusPath)
	if err != nil {
		return err
	}
	documents, _, _ := c.Columns()
	engine, err := cfg.NewEngine(slog.Default(), documents...)
	if err != nil {
		return err
	}
	m, err := pipeline.ParseMethod(cfg.Oracle.Method)
	if err != nil {
		return err
	}
	assign, err := cfg.Assignment()
	if err != nil {
		return err
	}
	var sinks []pipeline.Sink
	if cfg.Store.DSN != "" {
		st, err := store.Open(cfg.Store.DSN)
		if err != nil {
			return err
		}
		defer st.Close()
		sinks = append(sinks, st)
	}

	p := pipeline.New(engine, pipeline.Options{
		Method:  m,
		Refine:  cfg.Oracle.Refine,
		Assign:  assign,
		Workers: cfg.Workers,
	}, sinks...)
	report, err := p.Run(ctx, c)
	if err != nil {
		return err
	}
	if err := writeRecords(outPath, report.Records()); err != nil {
		return err
	}
	slog.Info("Oracles written", slog.String("file", outPath),
		slog.Int("documents", len(report.Outcomes)), slog.Int("failed", report.Failed()))

	if samplesPath != "" {
		if err := writeSamples(samplesPath, cfg, c, report); err != nil {
			return err
		}
	}
	if splitPath != "" {
		if err := writeSplit(splitPath, cfg, c, report); err != nil {
			return err
		}
	}
	return nil
}

func writeRecords(path string, records []export.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		err = export.WriteMsgpack(f, records)
	default:
		err = export.WriteJSONL(f, records)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

type sampleLine struct {
	DocID   string `json:"doc_id"`
	Indices []int  `json:"indices"`
}

func writeSamples(path string, cfg *config.Config, c *corpus.Corpus, report *pipeline.Report) error {
	counts := make([]int, len(report.Documents))
	for i, doc := range report.Documents {
		counts[i] = len(doc)
	}
	sampler := oracle.NewSampler(rand.New(rand.NewSource(cfg.Sample.Seed)))
	samples, available, err := sampler.SampleAll(counts, report.Oracles(), cfg.Sample.Field, cfg.Sample.Num)
	if err != nil {
		slog.Warn("Some documents could not be sampled", slog.String("err", err.Error()))
	}
	telemetry.SamplerExclusions.Add(float64(len(counts) - len(available)))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	for k, i := range available {
		if err = enc.Encode(sampleLine{DocID: c.Entries[i].ID, Indices: samples[k]}); err != nil {
			break
		}
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	slog.Info("Negative samples written", slog.String("file", path),
		slog.Int("documents", len(available)), slog.Int("excluded", len(counts)-len(available)))
	return nil
}

type splitFile struct {
	Field  int            `json:"field"`
	Labels map[string]int `json:"labels"`
	Train  []string       `json:"train"`
	Val    []string       `json:"val"`
	Test   []string       `json:"test"`
}

func writeSplit(path string, cfg *config.Config, c *corpus.Corpus, report *pipeline.Report) error {
	labels, available := dataset.Labels(report.Oracles(), cfg.Sample.Field)
	split, err := dataset.NewSplit(available, dataset.DefaultTestFraction, dataset.DefaultValFraction,
		rand.New(rand.NewSource(cfg.Sample.Seed)))
	if err != nil {
		return err
	}
	ids := func(positions []int) []string {
		out := make([]string, len(positions))
		for k, i := range positions {
			out[k] = c.Entries[i].ID
		}
		return out
	}
	out := splitFile{
		Field:  cfg.Sample.Field,
		Labels: make(map[string]int, len(labels)),
		Train:  ids(split.Train),
		Val:    ids(split.Val),
		Test:   ids(split.Test),
	}
	for k, i := range available {
		out.Labels[c.Entries[i].ID] = labels[k]
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write split: %w", err)
	}
	return nil
}
