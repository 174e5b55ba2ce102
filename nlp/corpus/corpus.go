// Package corpus loads document/summary pairs, with any previously computed oracles, from
// JSON-lines or msgpack files.
package corpus

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/oarkflow/oracle/nlp/oracle"
	"github.com/oarkflow/oracle/nlp/streaming"
)

// Entry is one document of the corpus. Oracle is nil when the document was never
// labelled.
type Entry struct {
	ID       string `json:"id" msgpack:"id"`
	Document string `json:"document" msgpack:"document"`
	Summary  string `json:"summary" msgpack:"summary"`
	Oracle   []int  `json:"oracle,omitempty" msgpack:"oracle,omitempty"`
}

type Corpus struct {
	Entries []Entry
}

// Load reads path; ".msgpack" and ".mp" files are msgpack streams, anything else is
// JSON lines.
func Load(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		return ReadMsgpack(f)
	default:
		return ReadJSONL(f)
	}
}

func ReadJSONL(r io.Reader) (*Corpus, error) {
	c := &Corpus{}
	err := streaming.ProcessLines(r, func(n int, line []byte) error {
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return fmt.Errorf("corpus: line %d: %w", n, err)
		}
		c.add(e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func ReadMsgpack(r io.Reader) (*Corpus, error) {
	c := &Corpus{}
	dec := msgpack.NewDecoder(bufio.NewReader(r))
	for {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return c, nil
			}
			return nil, fmt.Errorf("corpus: entry %d: %w", len(c.Entries), err)
		}
		c.add(e)
	}
}

// WriteMsgpack writes the corpus in the format read by ReadMsgpack.
func (c *Corpus) WriteMsgpack(w io.Writer) error {
	bw := bufio.NewWriter(w)
	enc := msgpack.NewEncoder(bw)
	for i := range c.Entries {
		if err := enc.Encode(&c.Entries[i]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// add assigns positional ids to entries that carry none.
func (c *Corpus) add(e Entry) {
	if e.ID == "" {
		e.ID = fmt.Sprint(len(c.Entries))
	}
	c.Entries = append(c.Entries, e)
}

func (c *Corpus) Len() int { return len(c.Entries) }

// Columns returns documents, summaries and oracles in corpus order.
func (c *Corpus) Columns() (documents, summaries []string, oracles []oracle.Indices) {
	documents = make([]string, len(c.Entries))
	summaries = make([]string, len(c.Entries))
	oracles = make([]oracle.Indices, len(c.Entries))
	for i, e := range c.Entries {
		documents[i] = e.Document
		summaries[i] = e.Summary
		if e.Oracle != nil {
			oracles[i] = oracle.Indices(e.Oracle)
		}
	}
	return documents, summaries, oracles
}

// Segment splits every entry with the engine's segmenter.
func (c *Corpus) Segment(e *oracle.Engine) ([]oracle.Document, []oracle.Summary) {
	docs := make([]oracle.Document, len(c.Entries))
	sums := make([]oracle.Summary, len(c.Entries))
	for i, entry := range c.Entries {
		docs[i], sums[i] = e.Segment(entry.Document, entry.Summary)
	}
	return docs, sums
}
