package runtime

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/veltio/tallypipe/internal/pipeline"
	"github.com/veltio/tallypipe/internal/pipes"
)

// Option is a functional option for configuring a Runner.
type Option func(*Runner) error

// WithTallies sets the tally archive paths to materialize. Mutually
// exclusive with WithElectionConfig.
func WithTallies(paths ...string) Option {
	return func(r *Runner) error {
		r.tallies = append(r.tallies, paths...)
		return nil
	}
}

// WithElectionConfig sets the election configuration document an
// ephemeral zero-ballot tally is synthesized from. Mutually exclusive
// with WithTallies.
func WithElectionConfig(path string) Option {
	return func(r *Runner) error {
		r.electionConfig = path
		return nil
	}
}

// WithDescription sets the pipeline description to execute.
func WithDescription(desc pipeline.Description) Option {
	return func(r *Runner) error {
		r.description = desc
		return nil
	}
}

// WithWhitelist sets the stage identifier whitelist. Passing nil
// disables whitelist enforcement entirely; the CLI never does this,
// but embedders may.
func WithWhitelist(wl pipeline.Whitelist) Option {
	return func(r *Runner) error {
		r.whitelist = wl
		r.whitelistSet = true
		return nil
	}
}

// WithRegistry replaces the default registry (builtin pipes under the
// default pipeline name). The caller owns all registration.
func WithRegistry(reg *pipes.Registry, namespace string) Option {
	return func(r *Runner) error {
		if reg == nil {
			return fmt.Errorf("registry cannot be nil")
		}
		if namespace == "" {
			return fmt.Errorf("namespace cannot be empty")
		}
		r.registry = reg
		r.namespace = namespace
		return nil
	}
}

// WithOutput sets the output format and destination writer.
func WithOutput(format string, w io.Writer) Option {
	return func(r *Runner) error {
		if format == "" {
			return fmt.Errorf("output format cannot be empty")
		}
		r.outputFormat = format
		r.out = w
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		r.logger = logger
		return nil
	}
}

// WithQuiet suppresses the best-effort notice printed on signal
// cleanup.
func WithQuiet(quiet bool) Option {
	return func(r *Runner) error {
		r.quiet = quiet
		return nil
	}
}
