// Package registration wires the builtin pipes into a registry
// explicitly. This replaces init-based side effects and is intended to
// be called from cmd/tallypipe and tests before a run.
package registration

import (
	"github.com/veltio/tallypipe/internal/pipes"
	"github.com/veltio/tallypipe/internal/pipes/parity"
	"github.com/veltio/tallypipe/internal/pipes/results"
	sortpipe "github.com/veltio/tallypipe/internal/pipes/sort"
)

// RegisterBuiltins registers every builtin pipe into reg under the
// given pipeline namespace.
func RegisterBuiltins(reg *pipes.Registry, namespace string) {
	for _, p := range Builtins() {
		reg.Register(namespace, p.Name(), p)
	}
}

// Builtins returns fresh instances of all builtin pipes.
func Builtins() []pipes.Pipe {
	return []pipes.Pipe{
		results.New(),
		sortpipe.New(),
		parity.NewProportionRounded(),
		parity.NewZipNonIterative(),
		parity.NewReorderWinners(),
	}
}
