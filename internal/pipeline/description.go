package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/veltio/tallypipe/internal/pipes"
)

// Entry is one (stage identifier, stage configuration) pair of a
// pipeline description. The identifier stays a raw string here; it is
// validated on every execution, not at parse time.
type Entry struct {
	ID     string
	Config pipes.Config
}

// Description is an ordered pipeline description. It is created once
// from configuration input and never mutated during a run.
type Description []Entry

// ParseDescription parses the JSON wire format: an array of 2-element
// entries [stageIdentifier, configOrNull].
func ParseDescription(raw []byte) (Description, error) {
	var entries [][]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse pipeline description: %w", err)
	}

	desc := make(Description, 0, len(entries))
	for i, pair := range entries {
		if len(pair) != 2 {
			return nil, fmt.Errorf("parse pipeline description: entry %d has %d elements, want 2", i, len(pair))
		}

		var id string
		if err := json.Unmarshal(pair[0], &id); err != nil {
			return nil, fmt.Errorf("parse pipeline description: entry %d identifier: %w", i, err)
		}

		var cfg pipes.Config
		if err := json.Unmarshal(pair[1], &cfg); err != nil {
			return nil, fmt.Errorf("parse pipeline description: entry %d config: %w", i, err)
		}

		desc = append(desc, Entry{ID: id, Config: cfg})
	}
	return desc, nil
}

// LoadDescription reads a pipeline description document from path.
func LoadDescription(path string) (Description, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline description %s: %w", path, err)
	}
	return ParseDescription(raw)
}
