package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Record is a persisted oracle for one document.
type Record struct {
	DocID   string  `json:"doc_id" msgpack:"doc_id"`
	Method  string  `json:"method" msgpack:"method"`
	Indices []int   `json:"indices" msgpack:"indices"`
	Score   float64 `json:"score,omitempty" msgpack:"score,omitempty"`
	RunID   string  `json:"run_id,omitempty" msgpack:"run_id,omitempty"`
	Error   string  `json:"error,omitempty" msgpack:"error,omitempty"`
}

func ToJSON(r *Record) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteJSONL writes one JSON object per line.
func WriteJSONL(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteMsgpack writes records as consecutive msgpack values.
func WriteMsgpack(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	enc := msgpack.NewEncoder(bw)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadMsgpack reads values written by WriteMsgpack until EOF.
func ReadMsgpack(r io.Reader) ([]Record, error) {
	dec := msgpack.NewDecoder(bufio.NewReader(r))
	var out []Record
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, err
		}
		out = append(out, rec)
	}
}
