package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/oracle/nlp/corpus"
	"github.com/oarkflow/oracle/nlp/dataset"
	"github.com/oarkflow/oracle/nlp/export"
	"github.com/oarkflow/oracle/nlp/oracle"
	"github.com/oarkflow/oracle/nlp/rouge"
	"github.com/oarkflow/oracle/nlp/segmenter"
)

type memorySink struct {
	mu      sync.Mutex
	records []export.Record
	err     error
}

func (m *memorySink) Save(rec export.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func engine(t *testing.T, opts oracle.Options) *oracle.Engine {
	t.Helper()
	e, err := oracle.NewEngine(rouge.Default(), opts)
	require.NoError(t, err)
	return e.WithSegmenter(segmenter.New(nil))
}

func load(t *testing.T, jsonl string) *corpus.Corpus {
	t.Helper()
	c, err := corpus.ReadJSONL(strings.NewReader(jsonl))
	require.NoError(t, err)
	return c
}

const docs = `{"id":"d0","document":"The cat sat on the mat. Dogs bark loudly. Birds fly south.","summary":"Dogs bark loudly."}
{"id":"d1","document":"Rain fell all day. The river rose. Roads closed early.","summary":"Roads closed early. The river rose."}
{"id":"d2","document":"Only text here.","summary":""}
`

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("greedy")
	require.NoError(t, err)
	assert.Equal(t, Greedy, m)
	m, err = ParseMethod("stored")
	require.NoError(t, err)
	assert.Equal(t, Stored, m)
	_, err = ParseMethod("oracle")
	assert.Error(t, err)
}

func TestRunGreedy(t *testing.T) {
	sink := &memorySink{}
	p := New(engine(t, oracle.Options{}), Options{Method: Greedy, Workers: 2, RunID: "run-1"}, sink)
	report, err := p.Run(context.Background(), load(t, docs))
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, oracle.Indices{1}, report.Outcomes[0].Indices)
	assert.InDelta(t, 1.0, report.Outcomes[0].Score, 1e-9)
	assert.Equal(t, oracle.Indices{2, 1}, report.Outcomes[1].Indices)
	assert.InDelta(t, 2.0, report.Outcomes[1].Score, 1e-9)
	assert.ErrorIs(t, report.Outcomes[2].Err, oracle.ErrDegenerateInput)
	assert.Nil(t, report.Outcomes[2].Indices)
	assert.Equal(t, 1, report.Failed())

	require.Len(t, sink.records, 3)
	byID := map[string]export.Record{}
	for _, rec := range sink.records {
		byID[rec.DocID] = rec
	}
	assert.Equal(t, "greedy", byID["d0"].Method)
	assert.Equal(t, "run-1", byID["d1"].RunID)
	assert.NotEmpty(t, byID["d2"].Error)
	assert.Equal(t, []oracle.Indices{{1}, {2, 1}, nil}, report.Oracles())
}

func TestRunBeam(t *testing.T) {
	p := New(engine(t, oracle.Options{}), Options{Method: Beam})
	report, err := p.Run(context.Background(), load(t, docs))
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, oracle.Indices{1}, report.Outcomes[0].Indices)
	assert.Greater(t, report.Outcomes[0].Evaluations, 0)
	// Two summary sentences leave only the third document sentence eligible.
	assert.ErrorIs(t, report.Outcomes[1].Err, oracle.ErrInsufficientCandidates)
	assert.Equal(t, 2, report.Failed())
}

func TestRunBeamAllSentences(t *testing.T) {
	p := New(engine(t, oracle.Options{Eligibility: oracle.AllSentences}), Options{Method: Beam, Workers: 3})
	report, err := p.Run(context.Background(), load(t, docs))
	require.NoError(t, err)
	require.NoError(t, report.Outcomes[1].Err)
	assert.ElementsMatch(t, []int{1, 2}, report.Outcomes[1].Indices)
}

func TestRunRefine(t *testing.T) {
	const pairs = `{"id":"a","document":"A b c. D e f.","summary":"A b c."}
{"id":"b","document":"X y z. P q r.","summary":"P q r."}
`
	current := New(engine(t, oracle.Options{}), Options{Method: Greedy, Refine: true, Assign: oracle.AssignCurrent()})
	report, err := current.Run(context.Background(), load(t, pairs))
	require.NoError(t, err)
	assert.Equal(t, []oracle.Indices{{0}, {1}}, report.Oracles())
	assert.False(t, report.Outcomes[0].Refined)

	fixed := New(engine(t, oracle.Options{}), Options{Method: Greedy, Refine: true, Assign: oracle.AssignFixed(0)})
	report, err = fixed.Run(context.Background(), load(t, pairs))
	require.NoError(t, err)
	assert.Equal(t, []oracle.Indices{{1}, {1}}, report.Oracles())
	assert.True(t, report.Outcomes[0].Refined)
	assert.InDelta(t, 0.0, report.Outcomes[0].Score, 1e-9)
}

func TestRunSinkFailure(t *testing.T) {
	sink := &memorySink{err: errors.New("disk full")}
	p := New(engine(t, oracle.Options{}), Options{Method: Greedy}, sink)
	_, err := p.Run(context.Background(), load(t, docs))
	assert.ErrorContains(t, err, "disk full")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := New(engine(t, oracle.Options{}), Options{Method: Beam})
	_, err := p.Run(ctx, load(t, docs))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunStored(t *testing.T) {
	const stored = `{"id":"s0","document":"Cats purr. Dogs bark. Birds sing. Fish swim.","summary":"Dogs bark. Cats purr.","oracle":[0,1]}
{"id":"s1","document":"Rain fell. Roads closed.","summary":"Roads closed."}
{"id":"s2","document":"One line.","summary":"One line.","oracle":[4]}
{"id":"s3","document":"Sun rose. Birds sang. Day began.","summary":"Birds sang.","oracle":[1]}
`
	p := New(engine(t, oracle.Options{}), Options{Method: Stored, Refine: true, Workers: 2})
	report, err := p.Run(context.Background(), load(t, stored))
	require.NoError(t, err)

	assert.Equal(t, oracle.Indices{1, 0}, report.Outcomes[0].Indices)
	assert.True(t, report.Outcomes[0].Refined)
	assert.InDelta(t, 2.0, report.Outcomes[0].Score, 1e-9)
	assert.ErrorIs(t, report.Outcomes[1].Err, ErrNoStoredOracle)
	assert.ErrorContains(t, report.Outcomes[2].Err, "outside document")
	assert.Equal(t, oracle.Indices{1}, report.Outcomes[3].Indices)
	assert.False(t, report.Outcomes[3].Refined)

	labels, available := dataset.Labels(report.Oracles(), 0)
	assert.Equal(t, []int{1, 1}, labels)
	assert.Equal(t, []int{0, 3}, available)

	counts := make([]int, len(report.Documents))
	for i, doc := range report.Documents {
		counts[i] = len(doc)
	}
	samples, sampled, err := oracle.NewSampler(nil).SampleAll(counts, report.Oracles(), 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, sampled)
	assert.Equal(t, 1, samples[0][0])
	assert.NotContains(t, samples[1][1:], 1)
}
