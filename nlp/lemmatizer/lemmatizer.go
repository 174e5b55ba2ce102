package lemmatizer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Dict maps surface forms to lemmas.
type Dict map[string]string

// Load reads a "form,lemma" CSV file.
func Load(path string) (Dict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("lemmatizer: %s: %w", path, err)
	}
	return d, nil
}

// Parse reads "form,lemma" lines; blank lines and lines starting with # are skipped.
func Parse(r io.Reader) (Dict, error) {
	d := make(Dict)
	scan := bufio.NewScanner(r)
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) == 2 {
			d[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return d, scan.Err()
}

// Lemma returns the base form if present.
func (d Dict) Lemma(token string) string {
	if l, ok := d[token]; ok {
		return l
	}
	return token
}
