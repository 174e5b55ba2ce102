package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToJSON(t *testing.T) {
	s, err := ToJSON(&Record{DocID: "7", Method: "beam", Indices: []int{4, 2}, Score: 0.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"doc_id":"7","method":"beam","indices":[4,2],"score":0.5}`, s)
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, []Record{
		{DocID: "1", Method: "greedy", Indices: []int{0}},
		{DocID: "2", Method: "greedy", Error: "oracle: degenerate input"},
	}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"doc_id":"2","method":"greedy","indices":null,"error":"oracle: degenerate input"}`, lines[1])
}

func TestMsgpackStream(t *testing.T) {
	in := []Record{
		{DocID: "a", Method: "beam", Indices: []int{3, 5}, Score: 0.25, RunID: "r1"},
		{DocID: "b", Method: "refined", Indices: []int{1}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteMsgpack(&buf, in))

	out, err := ReadMsgpack(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	out, err = ReadMsgpack(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, out)
}
