package streaming

import (
	"bufio"
	"bytes"
	"io"
)

// MaxLineSize bounds a single line; whole documents are stored one per line.
const MaxLineSize = 16 << 20

// ProcessLines calls handler for every non-blank line of r and stops at the first error.
// The slice passed to handler is only valid during the call.
func ProcessLines(r io.Reader, handler func(n int, line []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := handler(n, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}
