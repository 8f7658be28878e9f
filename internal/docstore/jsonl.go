package docstore

import (
	"bufio"
	"fmt"
	"os"

	"github.com/segmentio/encoding/json"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines.
// Usage documents may carry full text, so lines can be large.
const MaxJSONLLineCapacity = 16 * 1024 * 1024

// RawDoc is one document read from a JSONL dump, keyed by its bibcode.
type RawDoc struct {
	Bibcode string
	Data    []byte
}

// ReadJSONL reads all documents from a JSONL file. Every line must be a JSON
// object with a non-empty "bibcode" field.
func ReadJSONL(path string) ([]RawDoc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening documents file: %w", err)
	}
	defer f.Close()

	var docs []RawDoc
	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var head struct {
			Bibcode string `json:"bibcode"`
		}
		if err := json.Unmarshal(line, &head); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if head.Bibcode == "" {
			return nil, fmt.Errorf("line %d: missing bibcode", lineNum)
		}

		data := make([]byte, len(line))
		copy(data, line)
		docs = append(docs, RawDoc{Bibcode: head.Bibcode, Data: data})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading documents file: %w", err)
	}

	return docs, nil
}
