package oracle

// Greedy picks, independently for every summary sentence, the document sentence with the
// highest normalized similarity. The first index wins ties; the same document sentence may
// be chosen for several summary sentences.
func (e *Engine) Greedy(doc Document, sum Summary) (Indices, error) {
	if err := checkInput(doc, sum); err != nil {
		return nil, err
	}
	normDoc := make([]string, len(doc))
	for j, sentence := range doc {
		normDoc[j] = e.normalizer.Normalize(sentence)
	}
	oracle := make(Indices, len(sum))
	for i, sentence := range sum {
		target := e.normalizer.Normalize(sentence)
		best, bestScore := 0, e.scorer.Score(target, normDoc[0])
		for j := 1; j < len(normDoc); j++ {
			if score := e.scorer.Score(target, normDoc[j]); score > bestScore {
				best, bestScore = j, score
			}
		}
		oracle[i] = best
	}
	return oracle, nil
}
