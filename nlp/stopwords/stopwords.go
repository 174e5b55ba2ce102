package stopwords

import (
	"bufio"
	"os"
	"strings"
)

// Set is a collection of words ignored during normalization.
type Set map[string]struct{}

var english = strings.Fields(`a about above after again against all am an and any are as at
be because been before being below between both but by can could did do does doing down
during each few for from further had has have having he her here hers herself him himself
his how i if in into is it its itself just me more most my myself no nor not now of off on
once only or other our ours ourselves out over own same she should so some such than that
the their theirs them themselves then there these they this those through to too under
until up very was we were what when where which while who whom why will with would you
your yours yourself yourselves`)

// English returns a fresh copy of the built-in English list.
func English() Set {
	s := make(Set, len(english))
	for _, w := range english {
		s[w] = struct{}{}
	}
	return s
}

// Load reads one word per line.
func Load(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s := make(Set)
	scan := bufio.NewScanner(f)
	for scan.Scan() {
		w := strings.TrimSpace(scan.Text())
		if w != "" {
			s[w] = struct{}{}
		}
	}
	return s, scan.Err()
}

func (s Set) Contains(w string) bool {
	_, ok := s[w]
	return ok
}

// Filter removes any token present in the stopword set.
func (s Set) Filter(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		if !s.Contains(t) {
			out = append(out, t)
		}
	}
	return out
}
