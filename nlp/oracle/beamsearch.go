package oracle

import (
	"context"
	"strings"
)

// Result is the outcome of a beam search.
type Result struct {
	// Indices are in selection order, not summary order.
	Indices Indices `json:"indices"`
	// Score is the similarity of the selected sentences to the whole summary.
	Score float64 `json:"score"`
	// Evaluations counts scorer calls made by the search.
	Evaluations int `json:"evaluations"`
}

// BeamSearch builds an oracle one summary sentence at a time, keeping the Options.BeamWidth
// best partial selections after every step. At step i each kept fragment is extended by
// every eligible, unused document sentence and scored against the summary prefix
// sum[0..i]. After |Summary| steps the best fragment is returned.
func (e *Engine) BeamSearch(ctx context.Context, doc Document, sum Summary) (Result, error) {
	if err := checkInput(doc, sum); err != nil {
		return Result{}, err
	}
	beam, err := NewBeam(e.opts.BeamWidth)
	if err != nil {
		return Result{}, err
	}
	beam.Add(Fragment{}, 0)

	first := e.firstEligible(len(sum))
	evaluations := 0
	for i := range sum {
		prefix := strings.Join(sum[:i+1], " ")
		next, _ := NewBeam(e.opts.BeamWidth)
		for _, entry := range beam.Entries() {
			if err := ctx.Err(); err != nil {
				return Result{Evaluations: evaluations}, err
			}
			frag := entry.Fragment
			for j := first; j < len(doc); j++ {
				if frag.Contains(j) {
					continue
				}
				if e.opts.MaxEvaluations > 0 && evaluations >= e.opts.MaxEvaluations {
					return Result{Evaluations: evaluations},
						wrap(ErrBudgetExceeded, "%d evaluations at step %d", evaluations, i)
				}
				extended := frag.Extend(doc[j], j)
				next.Add(extended, e.scorer.Score(extended.Text(), prefix))
				evaluations++
			}
		}
		if next.Len() == 0 {
			return Result{Evaluations: evaluations}, wrap(ErrInsufficientCandidates,
				"step %d of %d: %d sentences, first eligible %d", i+1, len(sum), len(doc), first)
		}
		beam = next
	}

	best, _ := beam.Best()
	e.logger.Debug("beam search finished",
		"sentences", len(doc), "summary", len(sum),
		"score", best.Score, "evaluations", evaluations)
	return Result{
		Indices:     best.Fragment.Indices(),
		Score:       best.Score,
		Evaluations: evaluations,
	}, nil
}

func (e *Engine) firstEligible(summaryLen int) int {
	if e.opts.Eligibility == AllSentences {
		return 0
	}
	return summaryLen
}
