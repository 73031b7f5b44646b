package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/veltio/tallypipe/internal/pipes"
	"github.com/veltio/tallypipe/internal/tally"
)

// Executor runs pipeline descriptions sequentially against a shared
// mutable tally context list. The executor owns the list for the
// run's duration and lends it to exactly one pipe at a time; there is
// no parallelism and no retry.
type Executor struct {
	registry *pipes.Registry
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewExecutor creates an executor resolving pipes from reg. A nil
// logger defaults to slog.Default().
func NewExecutor(reg *pipes.Registry, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		registry: reg,
		logger:   logger,
		tracer:   otel.Tracer("tallypipe/pipeline"),
	}
}

// CheckConfig resolves every stage in desc and asks it to validate its
// own configuration, aborting on the first failure. Identifiers are
// checked structurally here; whitelist enforcement happens again, per
// stage, during Execute.
func (e *Executor) CheckConfig(namespace string, desc Description) error {
	for _, entry := range desc {
		id, err := ParseStageIdentifier(entry.ID)
		if err != nil {
			return err
		}
		if err := e.registry.CheckConfig(namespace, id.ShortName(), entry.Config); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs desc in order against tallies. For each entry the
// identifier is validated against wl, the pipe is resolved within
// namespace, and its execution entry point is invoked with the full
// shared context list. A pipe returning SignalHalt stops the pipeline
// immediately with no error; a pipe error propagates with no retry
// and no rollback, leaving resource release to the caller's cleanup
// path.
func (e *Executor) Execute(ctx context.Context, namespace string, desc Description, tallies []*tally.Context, wl Whitelist) (pipes.Signal, error) {
	for _, entry := range desc {
		id, err := Validate(entry.ID, wl)
		if err != nil {
			return pipes.SignalContinue, err
		}

		pipe, err := e.registry.Resolve(namespace, id.ShortName())
		if err != nil {
			return pipes.SignalContinue, err
		}

		sctx, span := e.tracer.Start(ctx, "pipe."+id.ShortName(),
			trace.WithAttributes(attribute.String("pipe.id", entry.ID)))
		sig, err := pipe.Execute(sctx, tallies, entry.Config)
		if err != nil {
			span.RecordError(err)
			span.End()
			return pipes.SignalContinue, fmt.Errorf("pipe %s: %w", entry.ID, err)
		}
		span.End()

		if sig == pipes.SignalHalt {
			e.logger.Debug("pipeline halted", slog.String("pipe", entry.ID))
			return pipes.SignalHalt, nil
		}
	}
	return pipes.SignalContinue, nil
}
