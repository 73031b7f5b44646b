// Package output renders final pipeline results in the supported
// presentation formats. Renderers live in a registry so embedders can
// add their own formats next to the builtin json, csv, tsv and pretty
// ones.
package output

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/veltio/tallypipe/internal/tally"
)

// RenderFunc writes a results value to w in one presentation format.
type RenderFunc func(w io.Writer, res *tally.Results) error

var (
	rendererMu  sync.RWMutex
	rendererMap = make(map[string]RenderFunc)
)

// Register adds a renderer under name. Panics on empty name, nil
// renderer, or duplicate registration.
func Register(name string, fn RenderFunc) {
	rendererMu.Lock()
	defer rendererMu.Unlock()

	if name == "" {
		panic("output: renderer name cannot be empty")
	}
	if fn == nil {
		panic(fmt.Sprintf("output: renderer %q cannot be nil", name))
	}
	if _, exists := rendererMap[name]; exists {
		panic(fmt.Sprintf("output: renderer %q already registered", name))
	}
	rendererMap[name] = fn
}

// Get returns the renderer registered under name.
func Get(name string) (RenderFunc, bool) {
	rendererMu.RLock()
	defer rendererMu.RUnlock()

	fn, ok := rendererMap[name]
	return fn, ok
}

// Formats returns all registered format names, sorted.
func Formats() []string {
	rendererMu.RLock()
	defer rendererMu.RUnlock()

	names := make([]string, 0, len(rendererMap))
	for name := range rendererMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render writes res to w in the named format.
func Render(name string, w io.Writer, res *tally.Results) error {
	fn, ok := Get(name)
	if !ok {
		return fmt.Errorf("unknown output format %q (available: %v)", name, Formats())
	}
	return fn(w, res)
}
