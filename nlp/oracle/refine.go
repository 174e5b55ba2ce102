package oracle

import "slices"

// Refine searches every ordering of the oracle's indices for the assignment to summary
// positions with the highest total score. Oracles larger than Options.MaxRefineSize are
// returned unchanged. The identity ordering is evaluated first and only a strictly better
// ordering replaces it, so the result never scores below the input.
func (e *Engine) Refine(doc Document, sum Summary, oracle Indices) (Indices, error) {
	if len(oracle) > e.opts.MaxRefineSize {
		return oracle, nil
	}
	if err := checkAssignment(doc, sum, oracle); err != nil {
		return oracle, err
	}
	// scores[i][k] = Score(sum[i], doc[oracle[k]]); permutations only sum cells.
	n := len(oracle)
	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = make([]float64, n)
		for k, j := range oracle {
			scores[i][k] = e.scorer.Score(sum[i], doc[j])
		}
	}
	total := func(perm []int) float64 {
		s := 0.0
		for i, k := range perm {
			s += scores[i][k]
		}
		return s
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	best := slices.Clone(perm)
	bestScore := total(perm)
	permute(perm, func(p []int) {
		if s := total(p); s > bestScore {
			bestScore = s
			copy(best, p)
		}
	})

	refined := make(Indices, n)
	for i, k := range best {
		refined[i] = oracle[k]
	}
	return refined, nil
}

// permute calls visit for every permutation of p after the initial one (Heap's algorithm).
func permute(p []int, visit func([]int)) {
	n := len(p)
	c := make([]int, n)
	for i := 1; i < n; {
		if c[i] < i {
			if i%2 == 0 {
				p[0], p[i] = p[i], p[0]
			} else {
				p[c[i]], p[i] = p[i], p[c[i]]
			}
			visit(p)
			c[i]++
			i = 1
		} else {
			c[i] = 0
			i++
		}
	}
}

func checkAssignment(doc Document, sum Summary, oracle Indices) error {
	if len(oracle) != len(sum) {
		return wrap(ErrRefinement, "oracle has %d indices for %d summary sentences", len(oracle), len(sum))
	}
	for _, j := range oracle {
		if j < 0 || j >= len(doc) {
			return wrap(ErrRefinement, "index %d outside document of %d sentences", j, len(doc))
		}
	}
	return nil
}

// Assignment decides which output slot receives a refined oracle in RefineAll.
type Assignment struct {
	fixed bool
	slot  int
}

// AssignCurrent writes each refined oracle back to its own document's slot.
func AssignCurrent() Assignment { return Assignment{} }

// AssignFixed writes every refined oracle to the same slot, leaving the refined
// document's own entry untouched. It reproduces the legacy labelling scripts, whose
// refinement step stored results through a stale position; use it only to regenerate
// datasets labelled that way.
func AssignFixed(slot int) Assignment { return Assignment{fixed: true, slot: slot} }

func (a Assignment) target(doc int) int {
	if a.fixed {
		return a.slot
	}
	return doc
}

// RefineOutcome records what RefineAll did for one document.
type RefineOutcome struct {
	Doc     int
	Refined bool
	Skipped bool
	Err     error
}

// RefineAll refines every oracle. A document whose refinement fails keeps its previous
// oracle; the failure is reported in its outcome and processing continues.
func (e *Engine) RefineAll(docs []Document, sums []Summary, oracles []Indices, assign Assignment) ([]Indices, []RefineOutcome) {
	out := slices.Clone(oracles)
	n := min(len(docs), len(sums), len(oracles))
	outcomes := make([]RefineOutcome, 0, n)
	for i := 0; i < n; i++ {
		outcome := RefineOutcome{Doc: i}
		if len(oracles[i]) > e.opts.MaxRefineSize {
			outcome.Skipped = true
			outcomes = append(outcomes, outcome)
			continue
		}
		refined, err := e.Refine(docs[i], sums[i], oracles[i])
		if err != nil {
			outcome.Err = err
			e.logger.Warn("refinement failed; keeping previous oracle",
				"doc", i, "err", err.Error())
			outcomes = append(outcomes, outcome)
			continue
		}
		if t := assign.target(i); t >= 0 && t < len(out) {
			out[t] = refined
			outcome.Refined = true
		}
		outcomes = append(outcomes, outcome)
	}
	return out, outcomes
}
