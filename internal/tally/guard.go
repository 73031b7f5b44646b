package tally

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Guard owns working-directory cleanup for a run. Every materialized
// Context is tracked, and each ExtractDir is removed at most once no
// matter which exit path triggers cleanup: normal completion, an error
// anywhere in the run, or an interrupt/terminate signal.
//
// The signal handler and the normal completion path both call Cleanup
// on the same context list; deletion stays idempotent through an
// existence check before each removal rather than any locking between
// the two paths.
type Guard struct {
	mu       sync.Mutex
	contexts []*Context
	logger   *slog.Logger

	// exit is a seam for tests; defaults to os.Exit.
	exit func(int)
}

// NewGuard creates a guard. A nil logger defaults to slog.Default().
func NewGuard(logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		logger: logger,
		exit:   os.Exit,
	}
}

// Track registers a context for cleanup.
func (g *Guard) Track(c *Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.contexts = append(g.contexts, c)
}

// Cleanup removes every tracked context's extraction directory.
// Directories that no longer exist are skipped, so Cleanup is safe to
// call more than once and safe against the signal path racing the
// normal path.
func (g *Guard) Cleanup() {
	g.mu.Lock()
	contexts := make([]*Context, len(g.contexts))
	copy(contexts, g.contexts)
	g.mu.Unlock()

	for _, c := range contexts {
		if c.ExtractDir == "" {
			continue
		}
		if _, err := os.Stat(c.ExtractDir); err != nil {
			continue
		}
		if err := os.RemoveAll(c.ExtractDir); err != nil {
			g.logger.Error("failed to remove working dir",
				slog.String("dir", c.ExtractDir),
				slog.String("error", err.Error()))
		}
	}
}

// HandleSignals installs an interrupt/terminate handler that prints a
// best-effort notice (unless quiet), cleans up every still-existing
// working directory, and exits with a non-zero status. The returned
// stop function uninstalls the handler; call it once the normal
// completion path has taken over cleanup responsibility.
func (g *Guard) HandleSignals(quiet bool) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig, ok := <-ch
		if !ok {
			return
		}
		if !quiet {
			fmt.Fprintf(os.Stderr, "tallypipe: received %s, removing working directories\n", sig)
		}
		g.Cleanup()
		g.exit(1)
	}()

	return func() {
		signal.Stop(ch)
		close(ch)
	}
}
