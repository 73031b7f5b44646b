package pipeline

import (
	"fmt"
	"strings"
	"unicode"
)

// Fixed leading segments every stage identifier must carry.
const (
	RootSegment      = "tallypipe"
	NamespaceSegment = "pipes"
)

const identifierSegments = 4

// StageIdentifier is a parsed, immutable stage identifier of the form
// tallypipe.pipes.<module>.<symbol>. Identifiers double as load
// specifiers for pipe code named in configuration, so they are
// validated structurally and against a whitelist before any pipe is
// resolved or executed.
type StageIdentifier struct {
	raw    string
	module string
	symbol string
}

func (id StageIdentifier) String() string { return id.raw }

// ShortName returns the module.symbol suffix, the key pipes register
// under.
func (id StageIdentifier) ShortName() string {
	return id.module + "." + id.symbol
}

// RejectedStageError indicates a stage identifier failed structural
// validation or whitelist enforcement.
type RejectedStageError struct {
	ID     string
	Reason string
}

func (e *RejectedStageError) Error() string {
	return fmt.Sprintf("rejected stage %q: %s", e.ID, e.Reason)
}

// IsRejected returns true if err is a RejectedStageError.
func IsRejected(err error) bool {
	_, ok := err.(*RejectedStageError)
	return ok
}

// ParseStageIdentifier validates the structure of raw and returns the
// parsed identifier. Structural rules: exactly four non-empty
// dot-separated segments, no whitespace anywhere, no segment starting
// with an underscore, and the fixed root and namespace segments in
// positions one and two.
func ParseStageIdentifier(raw string) (StageIdentifier, error) {
	reject := func(reason string) (StageIdentifier, error) {
		return StageIdentifier{}, &RejectedStageError{ID: raw, Reason: reason}
	}

	if strings.IndexFunc(raw, unicode.IsSpace) >= 0 {
		return reject("contains whitespace")
	}

	segments := strings.Split(raw, ".")
	if len(segments) != identifierSegments {
		return reject(fmt.Sprintf("expected %d dot-separated segments, got %d", identifierSegments, len(segments)))
	}
	for _, seg := range segments {
		if seg == "" {
			return reject("empty segment")
		}
		if strings.HasPrefix(seg, "_") {
			return reject(fmt.Sprintf("segment %q starts with underscore", seg))
		}
	}
	if segments[0] != RootSegment {
		return reject(fmt.Sprintf("root segment must be %q", RootSegment))
	}
	if segments[1] != NamespaceSegment {
		return reject(fmt.Sprintf("namespace segment must be %q", NamespaceSegment))
	}

	return StageIdentifier{raw: raw, module: segments[2], symbol: segments[3]}, nil
}

// Validate parses raw and enforces the whitelist. It runs for every
// stage on every execution: registration and validation are
// independent gates and both must pass. A nil whitelist disables the
// membership check (see Whitelist).
func Validate(raw string, wl Whitelist) (StageIdentifier, error) {
	id, err := ParseStageIdentifier(raw)
	if err != nil {
		return StageIdentifier{}, err
	}
	if wl != nil && !wl.Contains(raw) {
		return StageIdentifier{}, &RejectedStageError{ID: raw, Reason: "not in whitelist"}
	}
	return id, nil
}
