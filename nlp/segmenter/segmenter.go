package segmenter

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// SentenceSplit splits text into sentences ending with . ! or ?; a trailing fragment
// without terminal punctuation is kept as the last sentence.
var reSentence = regexp.MustCompile(`[^.!?]+(?:[.!?]+["'”’)\]]*|$)`)

func SentenceSplit(text string) []string {
	return reSentence.FindAllString(text, -1)
}

// ParagraphSplit splits text into paragraphs separated by ≥2 newlines.
var reParagraph = regexp.MustCompile(`\r?\n\s*\r?\n`)

func ParagraphSplit(text string) []string {
	return reParagraph.Split(text, -1)
}

// LegalAbbreviations expands the abbreviations common in appellate opinions whose periods
// would otherwise end a sentence.
var LegalAbbreviations = map[string]string{
	"Crim.": "Criminal",
	"Nos.":  "Numbers",
	"No.":   "Number",
	"App.":  "Appeal",
	"Tenn.": "Tennessee",
}

// Segmenter splits documents into trimmed, non-empty sentences, expanding abbreviations
// first. It satisfies oracle.Segmenter.
type Segmenter struct {
	replacer *strings.Replacer
	clean    bool
}

func New(abbreviations map[string]string) *Segmenter {
	s := &Segmenter{}
	if len(abbreviations) == 0 {
		return s
	}
	// Longer abbreviations first: Replacer prefers earlier pairs matching at one position.
	keys := make([]string, 0, len(abbreviations))
	for abbr := range abbreviations {
		keys = append(keys, abbr)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	pairs := make([]string, 0, 2*len(keys))
	for _, abbr := range keys {
		pairs = append(pairs, abbr, abbreviations[abbr])
	}
	s.replacer = strings.NewReplacer(pairs...)
	return s
}

// WithClean makes SegmentDocument strip opinion boilerplate, see Clean. Summaries are
// never cleaned.
func (s *Segmenter) WithClean() *Segmenter {
	s.clean = true
	return s
}

func (s *Segmenter) Segment(text string) []string {
	return split(s.expand(text))
}

func (s *Segmenter) SegmentDocument(text string) []string {
	if s.clean {
		return Clean(s.expand(text))
	}
	return s.Segment(text)
}

func (s *Segmenter) expand(text string) string {
	if s.replacer != nil {
		return s.replacer.Replace(text)
	}
	return text
}

func split(text string) []string {
	var out []string
	for _, para := range ParagraphSplit(text) {
		for _, sent := range SentenceSplit(para) {
			if sent = strings.Join(strings.Fields(sent), " "); sent != "" {
				out = append(out, sent)
			}
		}
	}
	return out
}

var (
	reFirstParagraph = regexp.MustCompile(`\W\s*¶\s*1\s*\W`)
	reDocket         = regexp.MustCompile(`[a-zA-Z]\d+CCA-[a-zA-Z0-9]{2}-[a-zA-Z0-9]{1,3}`)
	rePageMarker     = regexp.MustCompile(`-\s*[0-9]*\s*-`)
	reRule           = regexp.MustCompile(`__+`)
)

// minCleanWords is the number of alphabetic words a cleaned sentence needs to survive
// unless it mentions an affirmance.
const minCleanWords = 6

// Clean segments an appellate opinion and drops its boilerplate: everything before the
// first numbered paragraph, the docket header of the first sentence, text up to and
// including OPINION, page markers and underscore rules. Sentences with fewer than six
// alphabetic words are dropped unless they contain "affirm".
func Clean(text string) []string {
	if loc := reFirstParagraph.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}
	var out []string
	for i, sent := range split(text) {
		if i == 0 {
			if loc := reDocket.FindStringIndex(sent); loc != nil {
				sent = sent[loc[1]:]
			}
		}
		if at := strings.Index(sent, "OPINION"); at >= 0 {
			sent = sent[at+len("OPINION"):]
		}
		sent = rePageMarker.ReplaceAllString(sent, "")
		sent = reRule.ReplaceAllString(sent, "")
		sent = strings.Join(strings.Fields(sent), " ")
		if sent == "" {
			continue
		}
		words := alphaWords(sent)
		if len(words) >= minCleanWords || strings.Contains(strings.Join(words, " "), "affirm") {
			out = append(out, sent)
		}
	}
	return out
}

// alphaWords lowercases sent, strips punctuation from each word and keeps the words
// left purely alphabetic.
func alphaWords(sent string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(sent)) {
		w = strings.Map(func(r rune) rune {
			if unicode.IsPunct(r) || unicode.IsSymbol(r) {
				return -1
			}
			return r
		}, w)
		if w == "" {
			continue
		}
		alpha := true
		for _, r := range w {
			if !unicode.IsLetter(r) {
				alpha = false
				break
			}
		}
		if alpha {
			out = append(out, w)
		}
	}
	return out
}
