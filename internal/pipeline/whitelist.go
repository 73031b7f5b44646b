package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Whitelist is the set of stage identifiers a run may execute.
//
// A nil Whitelist means unrestricted: every structurally valid
// identifier passes. This is a deliberately gated mode for embedders
// driving the executor directly; the CLI wiring never produces a nil
// whitelist, falling back to the built-in default list instead.
type Whitelist map[string]struct{}

// NewWhitelist builds a whitelist from identifier strings.
func NewWhitelist(ids ...string) Whitelist {
	wl := make(Whitelist, len(ids))
	for _, id := range ids {
		wl[id] = struct{}{}
	}
	return wl
}

// Contains reports membership of id.
func (wl Whitelist) Contains(id string) bool {
	_, ok := wl[id]
	return ok
}

// ParseWhitelist reads a newline-delimited identifier list. Blank
// lines and #-comments are skipped.
func ParseWhitelist(r io.Reader) (Whitelist, error) {
	wl := make(Whitelist)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		wl[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read whitelist: %w", err)
	}
	return wl, nil
}

// LoadWhitelist reads a whitelist file from path.
func LoadWhitelist(path string) (Whitelist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open whitelist %s: %w", path, err)
	}
	defer f.Close()
	return ParseWhitelist(f)
}
