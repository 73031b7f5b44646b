// Package runtime ties a full tallypipe run together: materializing
// working contexts, registering pipes, checking configuration,
// executing the pipeline, rendering results, and guaranteeing cleanup
// on every exit path.
package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/veltio/tallypipe/internal/config"
	"github.com/veltio/tallypipe/internal/output"
	"github.com/veltio/tallypipe/internal/pipeline"
	"github.com/veltio/tallypipe/internal/pipes"
	"github.com/veltio/tallypipe/internal/registration"
	"github.com/veltio/tallypipe/internal/tally"
)

// UsageError indicates invalid invocation input rather than a runtime
// failure; the CLI reports it and exits with status 1.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

// IsUsage returns true if err is a UsageError.
func IsUsage(err error) bool {
	_, ok := err.(*UsageError)
	return ok
}

// Runner owns one pipeline run end to end. Create it with New, then
// call Run once.
type Runner struct {
	logger    *slog.Logger
	registry  *pipes.Registry
	namespace string
	guard     *tally.Guard

	description  pipeline.Description
	whitelist    pipeline.Whitelist
	whitelistSet bool

	tallies        []string
	electionConfig string

	outputFormat string
	out          io.Writer
	quiet        bool
}

// New creates a Runner. Exactly one of WithTallies and
// WithElectionConfig must be supplied.
func New(opts ...Option) (*Runner, error) {
	r := &Runner{
		logger:       slog.Default(),
		outputFormat: "json",
		out:          os.Stdout,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if len(r.tallies) == 0 && r.electionConfig == "" {
		return nil, &UsageError{Message: "either tally archives or an election config is required"}
	}
	if len(r.tallies) > 0 && r.electionConfig != "" {
		return nil, &UsageError{Message: "tally archives and an election config are mutually exclusive"}
	}

	if r.registry == nil {
		r.registry = pipes.NewRegistry()
		r.namespace = config.DefaultPipelineName
		registration.RegisterBuiltins(r.registry, r.namespace)
	}

	if r.description == nil {
		desc, err := pipeline.ParseDescription([]byte(config.DefaultDescription))
		if err != nil {
			return nil, fmt.Errorf("parse default pipeline description: %w", err)
		}
		r.description = desc
	}

	if !r.whitelistSet {
		r.whitelist = pipeline.NewWhitelist(config.DefaultWhitelist...)
	}

	r.guard = tally.NewGuard(r.logger)

	return r, nil
}

// Run executes the pipeline. It returns the final control signal;
// halting is a successful outcome. Working directories are removed on
// every exit path: normal completion, error, or termination signal.
func (r *Runner) Run(ctx context.Context) (pipes.Signal, error) {
	stop := r.guard.HandleSignals(r.quiet)
	defer stop()
	defer r.guard.Cleanup()

	contexts, err := r.materialize()
	if err != nil {
		return pipes.SignalContinue, err
	}

	executor := pipeline.NewExecutor(r.registry, r.logger)
	if err := executor.CheckConfig(r.namespace, r.description); err != nil {
		return pipes.SignalContinue, err
	}

	sig, err := executor.Execute(ctx, r.namespace, r.description, contexts, r.whitelist)
	if err != nil {
		return pipes.SignalContinue, err
	}

	r.logger.Info("pipeline finished",
		slog.String("pipeline", r.namespace),
		slog.Int("stages", len(r.description)),
		slog.String("signal", sig.String()))

	if r.out != nil {
		if err := r.render(contexts); err != nil {
			return sig, err
		}
	}

	return sig, nil
}

// materialize builds the initial working context list, tracking every
// context with the guard as soon as it exists so a failure part way
// through still cleans up the earlier directories.
func (r *Runner) materialize() ([]*tally.Context, error) {
	if r.electionConfig != "" {
		c, err := tally.FromElectionConfig(r.electionConfig)
		if err != nil {
			return nil, err
		}
		r.guard.Track(c)
		r.logger.Debug("synthesized ephemeral tally",
			slog.String("config", r.electionConfig),
			slog.String("dir", c.ExtractDir))
		return []*tally.Context{c}, nil
	}

	contexts := make([]*tally.Context, 0, len(r.tallies))
	for _, path := range r.tallies {
		c, err := tally.FromArchive(path)
		if err != nil {
			return nil, err
		}
		r.guard.Track(c)
		r.logger.Debug("extracted tally",
			slog.String("archive", path),
			slog.String("dir", c.ExtractDir))
		contexts = append(contexts, c)
	}
	return contexts, nil
}

// render writes the first context's results, following the convention
// that presentation pipes and serializers read the first tally.
func (r *Runner) render(contexts []*tally.Context) error {
	res := contexts[0].Results()
	if res == nil {
		return fmt.Errorf("pipeline produced no results to render")
	}
	return output.Render(r.outputFormat, r.out, res)
}
