// Package pipeline labels a corpus with oracles using a bounded pool of workers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/oarkflow/xid"
	"golang.org/x/sync/errgroup"

	"github.com/oarkflow/oracle/nlp/corpus"
	"github.com/oarkflow/oracle/nlp/export"
	"github.com/oarkflow/oracle/nlp/oracle"
	"github.com/oarkflow/oracle/nlp/telemetry"
)

type Method string

const (
	Greedy Method = "greedy"
	Beam   Method = "beam"
	// Stored takes each entry's oracle from the corpus instead of searching for one.
	Stored Method = "stored"
)

var ErrNoStoredOracle = errors.New("pipeline: entry has no stored oracle")

func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case Greedy, Beam, Stored:
		return m, nil
	}
	return "", fmt.Errorf("pipeline: unknown method %q", s)
}

type Options struct {
	Method  Method
	Refine  bool
	Assign  oracle.Assignment
	Workers int
	// RunID tags every record. Empty generates one.
	RunID string
}

// Sink receives the record of every processed document.
type Sink interface {
	Save(export.Record) error
}

// Outcome is the result of one document. Err is set when no oracle could be built; the
// rest of the corpus is unaffected.
type Outcome struct {
	Index       int
	DocID       string
	Indices     oracle.Indices
	Score       float64
	Evaluations int
	Refined     bool
	Err         error
	Elapsed     time.Duration
}

func (o Outcome) Record(method Method, runID string) export.Record {
	rec := export.Record{
		DocID:   o.DocID,
		Method:  string(method),
		Indices: []int(o.Indices),
		Score:   o.Score,
		RunID:   runID,
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}
	return rec
}

type Report struct {
	RunID     string
	Method    Method
	Outcomes  []Outcome
	Documents []oracle.Document
	Summaries []oracle.Summary
}

func (r *Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// Oracles returns the oracle of every document, nil where it failed.
func (r *Report) Oracles() []oracle.Indices {
	out := make([]oracle.Indices, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = o.Indices
	}
	return out
}

func (r *Report) Records() []export.Record {
	out := make([]export.Record, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = o.Record(r.Method, r.RunID)
	}
	return out
}

type Pipeline struct {
	engine *oracle.Engine
	opts   Options
	sinks  []Sink
	logger *slog.Logger
}

func New(engine *oracle.Engine, opts Options, sinks ...Sink) *Pipeline {
	if opts.Method == "" {
		opts.Method = Beam
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Pipeline{engine: engine, opts: opts, sinks: sinks, logger: slog.Default()}
}

func (p *Pipeline) WithLogger(logger *slog.Logger) *Pipeline {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// Run labels every entry of c. Document failures are reported in their outcomes. Run
// itself fails only when ctx is cancelled or a sink rejects a record.
func (p *Pipeline) Run(ctx context.Context, c *corpus.Corpus) (*Report, error) {
	runID := p.opts.RunID
	if runID == "" {
		runID = xid.New().String()
	}
	docs, sums := c.Segment(p.engine)
	report := &Report{
		RunID:     runID,
		Method:    p.opts.Method,
		Outcomes:  make([]Outcome, len(docs)),
		Documents: docs,
		Summaries: sums,
	}
	start := time.Now()
	p.logger.Info("Oracle run starting",
		slog.String("run", runID), slog.String("method", string(p.opts.Method)),
		slog.Int("documents", len(docs)), slog.Int("workers", p.opts.Workers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i := range docs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			out := p.label(gctx, docs[i], sums[i], c.Entries[i].Oracle)
			out.Index = i
			out.DocID = c.Entries[i].ID
			if errors.Is(out.Err, context.Canceled) || errors.Is(out.Err, context.DeadlineExceeded) {
				return out.Err
			}
			report.Outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	if p.opts.Refine {
		p.refine(report)
	}
	for _, sink := range p.sinks {
		for _, rec := range report.Records() {
			if err := sink.Save(rec); err != nil {
				return report, fmt.Errorf("pipeline: save %s: %w", rec.DocID, err)
			}
		}
	}
	p.logger.Info("Oracle run finished",
		slog.String("run", runID), slog.Int("documents", len(docs)),
		slog.Int("failed", report.Failed()), slog.Duration("elapsed", time.Since(start)))
	return report, nil
}

func (p *Pipeline) label(ctx context.Context, doc oracle.Document, sum oracle.Summary, stored []int) Outcome {
	start := time.Now()
	var out Outcome
	switch p.opts.Method {
	case Stored:
		out.Indices, out.Score, out.Err = p.stored(doc, sum, stored)
	case Greedy:
		out.Indices, out.Err = p.engine.Greedy(doc, sum)
		if out.Err == nil {
			out.Evaluations = len(doc) * len(sum)
			out.Score, out.Err = p.engine.TotalScore(doc, sum, out.Indices)
		}
	default:
		var res oracle.Result
		res, out.Err = p.engine.BeamSearch(ctx, doc, sum)
		out.Indices, out.Score, out.Evaluations = res.Indices, res.Score, res.Evaluations
	}
	out.Elapsed = time.Since(start)
	outcome := "ok"
	if out.Err != nil {
		outcome = "failed"
		out.Indices = nil
	}
	telemetry.ObserveSearch(string(p.opts.Method), outcome, out.Evaluations, out.Elapsed)
	return out
}

// stored checks an oracle read from the corpus against its segmented document. The score
// is the pairwise total when the oracle has one index per summary sentence, else zero.
func (p *Pipeline) stored(doc oracle.Document, sum oracle.Summary, indices []int) (oracle.Indices, float64, error) {
	if indices == nil {
		return nil, 0, ErrNoStoredOracle
	}
	for _, j := range indices {
		if j < 0 || j >= len(doc) {
			return nil, 0, fmt.Errorf("pipeline: stored index %d outside document of %d sentences", j, len(doc))
		}
	}
	out := slices.Clone(oracle.Indices(indices))
	if len(out) != len(sum) {
		return out, 0, nil
	}
	score, err := p.engine.TotalScore(doc, sum, out)
	return out, score, err
}

// refine reorders the oracles of successful documents. Assignment slots index the
// successful documents in corpus order.
func (p *Pipeline) refine(report *Report) {
	var (
		positions []int
		docs      []oracle.Document
		sums      []oracle.Summary
		oracles   []oracle.Indices
	)
	for i, o := range report.Outcomes {
		if o.Err != nil {
			continue
		}
		positions = append(positions, i)
		docs = append(docs, report.Documents[i])
		sums = append(sums, report.Summaries[i])
		oracles = append(oracles, o.Indices)
	}
	refined, outcomes := p.engine.RefineAll(docs, sums, oracles, p.opts.Assign)
	for _, ro := range outcomes {
		switch {
		case ro.Skipped:
			telemetry.Refinements.WithLabelValues("skipped").Inc()
		case ro.Err != nil:
			telemetry.Refinements.WithLabelValues("failed").Inc()
		default:
			telemetry.Refinements.WithLabelValues("refined").Inc()
		}
	}
	for k, pos := range positions {
		out := &report.Outcomes[pos]
		if slices.Equal(out.Indices, refined[k]) {
			continue
		}
		out.Indices = refined[k]
		out.Refined = true
		// Beam scores compare the joined selection with the whole summary and do not
		// follow a reordering.
		if p.opts.Method == Beam {
			continue
		}
		if score, err := p.engine.TotalScore(docs[k], sums[k], refined[k]); err == nil {
			out.Score = score
		}
	}
}
