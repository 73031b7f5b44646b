// Package tally manages the per-tally working state of a pipeline run:
// materializing tally archives into working directories, the mutable
// context pipes operate on, and guaranteed cleanup of those directories.
package tally

// Well-known context value keys.
const (
	KeyResults           = "results"
	KeyWithdrawals       = "withdrawals"
	KeyRemovedCandidates = "removed-candidates"
)

// Context is the mutable working state for a single tally. Pipes share
// one Context list per run and mutate it in place; later pipes see
// everything earlier pipes accumulated.
//
// ExtractDir is an owning reference to a temporary directory. It is
// created by the materializer and removed exactly once by the Guard.
type Context struct {
	ExtractDir string
	Values     map[string]any
}

// NewContext creates a working context rooted at dir.
func NewContext(dir string) *Context {
	return &Context{
		ExtractDir: dir,
		Values:     make(map[string]any),
	}
}

// Set stores an arbitrary value under key.
func (c *Context) Set(key string, v any) {
	c.Values[key] = v
}

// Get returns the value stored under key.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.Values[key]
	return v, ok
}

// Results returns the accumulated results value, or nil if no pipe has
// produced one yet.
func (c *Context) Results() *Results {
	r, _ := c.Values[KeyResults].(*Results)
	return r
}

// SetResults stores the results value.
func (c *Context) SetResults(r *Results) {
	c.Values[KeyResults] = r
}

// Withdrawals returns the withdrawal records attached to this tally.
func (c *Context) Withdrawals() []AnswerRef {
	w, _ := c.Values[KeyWithdrawals].([]AnswerRef)
	return w
}

// SetWithdrawals stores withdrawal records on this tally.
func (c *Context) SetWithdrawals(w []AnswerRef) {
	c.Values[KeyWithdrawals] = w
}

// RemovedCandidates returns the removed-candidate records attached to
// this tally.
func (c *Context) RemovedCandidates() []AnswerRef {
	r, _ := c.Values[KeyRemovedCandidates].([]AnswerRef)
	return r
}

// SetRemovedCandidates stores removed-candidate records on this tally.
func (c *Context) SetRemovedCandidates(r []AnswerRef) {
	c.Values[KeyRemovedCandidates] = r
}
