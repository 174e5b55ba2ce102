// Package rouge implements ROUGE-N and ROUGE-L overlap scores between a hypothesis and a
// reference text.
package rouge

import (
	"fmt"
	"strings"

	"github.com/oarkflow/oracle/nlp/ngram"
	"github.com/oarkflow/oracle/nlp/tokenizer"
)

// Score holds precision, recall and F1 of a hypothesis against a reference.
type Score struct {
	P float64 `json:"p"`
	R float64 `json:"r"`
	F float64 `json:"f"`
}

func newScore(overlap, hypTotal, refTotal int) Score {
	var s Score
	if hypTotal > 0 {
		s.P = float64(overlap) / float64(hypTotal)
	}
	if refTotal > 0 {
		s.R = float64(overlap) / float64(refTotal)
	}
	if s.P+s.R > 0 {
		s.F = 2 * s.P * s.R / (s.P + s.R)
	}
	return s
}

// N computes ROUGE-N over lowercased word tokens.
func N(hypothesis, reference string, n int) Score {
	return nTokens(tokenizer.Words(hypothesis), tokenizer.Words(reference), n)
}

func nTokens(hyp, ref []string, n int) Score {
	h := ngram.ExtractNgrams(hyp, n)
	r := ngram.ExtractNgrams(ref, n)
	return newScore(ngram.Overlap(h, r), ngram.Total(h), ngram.Total(r))
}

// L computes ROUGE-L from the longest common subsequence of the token sequences.
func L(hypothesis, reference string) Score {
	return lTokens(tokenizer.Words(hypothesis), tokenizer.Words(reference))
}

func lTokens(hyp, ref []string) Score {
	return newScore(lcs(hyp, ref), len(hyp), len(ref))
}

func lcs(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// Scorer selects one ROUGE variant and one of its components. It satisfies
// oracle.Scorer.
type Scorer struct {
	variant string
	n       int
	metric  string
}

// New returns a scorer for variant ("rouge-1", "rouge-2", ..., "rouge-l") and metric
// ("f", "p" or "r").
func New(variant, metric string) (*Scorer, error) {
	variant = strings.ToLower(strings.TrimSpace(variant))
	metric = strings.ToLower(strings.TrimSpace(metric))
	s := &Scorer{variant: variant, metric: metric}
	switch {
	case variant == "rouge-l":
	case strings.HasPrefix(variant, "rouge-"):
		if _, err := fmt.Sscanf(variant, "rouge-%d", &s.n); err != nil || s.n < 1 {
			return nil, fmt.Errorf("rouge: unknown variant %q", variant)
		}
	default:
		return nil, fmt.Errorf("rouge: unknown variant %q", variant)
	}
	switch metric {
	case "f", "p", "r":
	default:
		return nil, fmt.Errorf("rouge: unknown metric %q", metric)
	}
	return s, nil
}

// Default is ROUGE-1 F1.
func Default() *Scorer {
	return &Scorer{variant: "rouge-1", n: 1, metric: "f"}
}

func (s *Scorer) String() string { return s.variant + "/" + s.metric }

func (s *Scorer) Score(hypothesis, reference string) float64 {
	var sc Score
	if s.n == 0 {
		sc = L(hypothesis, reference)
	} else {
		sc = N(hypothesis, reference, s.n)
	}
	switch s.metric {
	case "p":
		return sc.P
	case "r":
		return sc.R
	default:
		return sc.F
	}
}
