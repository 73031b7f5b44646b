// Package pipes defines the pipe contract and the namespaced registry
// that maps short stage names to loaded pipe implementations.
package pipes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/veltio/tallypipe/internal/tally"
)

// Signal is the control result of a pipe execution. Halting is a
// normal, successful outcome, not an error.
type Signal int

const (
	// SignalContinue proceeds to the next pipe in the pipeline.
	SignalContinue Signal = iota
	// SignalHalt stops the pipeline without error; no later pipe runs.
	SignalHalt
)

func (s Signal) String() string {
	switch s {
	case SignalContinue:
		return "continue"
	case SignalHalt:
		return "halt"
	default:
		return fmt.Sprintf("signal(%d)", int(s))
	}
}

// Config is the opaque structured configuration for one pipe
// invocation. It is owned by the pipeline description and borrowed
// read-only by the pipe; nil means the pipe takes no configuration.
type Config map[string]any

// Pipe is a registerable transformation stage. Execute receives the
// full shared tally context list and mutates it in place.
type Pipe interface {
	// Name returns the short stage name this pipe registers under,
	// in module.symbol form.
	Name() string

	// CheckConfig validates the shape of cfg, failing descriptively
	// on invalid input. It runs before any pipe executes.
	CheckConfig(cfg Config) error

	// Execute runs the pipe against the shared context list.
	Execute(ctx context.Context, tallies []*tally.Context, cfg Config) (Signal, error)
}

// DecodeConfig unmarshals an opaque Config into a typed parameter
// struct, rejecting keys the struct does not declare.
func DecodeConfig(cfg Config, v any) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}
