// Package results provides the builtin pipe that seeds each tally's
// results value from the questions document in its working directory.
package results

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/veltio/tallypipe/internal/pipes"
	"github.com/veltio/tallypipe/internal/tally"
)

// ShortName is the registry key for the load pipe.
const ShortName = "results.load"

// Load reads questions.json from every tally's working directory and
// stores an initial Results value on the context. Counts default to
// whatever the document carries (zero for ephemeral tallies).
type Load struct{}

// New creates the load pipe.
func New() *Load { return &Load{} }

func (*Load) Name() string { return ShortName }

// CheckConfig accepts only an empty or nil config.
func (*Load) CheckConfig(cfg pipes.Config) error {
	if len(cfg) > 0 {
		return fmt.Errorf("takes no configuration")
	}
	return nil
}

func (*Load) Execute(_ context.Context, tallies []*tally.Context, _ pipes.Config) (pipes.Signal, error) {
	for _, t := range tallies {
		path := filepath.Join(t.ExtractDir, tally.QuestionsFile)
		raw, err := os.ReadFile(path)
		if err != nil {
			return pipes.SignalContinue, fmt.Errorf("read %s: %w", path, err)
		}

		var questions []*tally.Question
		if err := json.Unmarshal(raw, &questions); err != nil {
			return pipes.SignalContinue, fmt.Errorf("parse %s: %w", path, err)
		}

		t.SetResults(&tally.Results{Questions: questions})
	}
	return pipes.SignalContinue, nil
}

var _ pipes.Pipe = (*Load)(nil)
