package config

// DefaultPipelineName is the namespace the builtin pipes register
// under and the default pipeline a run executes.
const DefaultPipelineName = "results"

// DefaultDescription is the built-in pipeline description used when no
// description document is supplied: load results and sort the first
// question.
const DefaultDescription = `[
  ["tallypipe.pipes.results.load", null],
  ["tallypipe.pipes.sort.sort_non_iterative", {"question_indexes": [0]}]
]`

// DefaultWhitelist lists the builtin pipe identifiers. An absent
// whitelist file means this list, never "unrestricted".
var DefaultWhitelist = []string{
	"tallypipe.pipes.results.load",
	"tallypipe.pipes.sort.sort_non_iterative",
	"tallypipe.pipes.parity.proportion_rounded",
	"tallypipe.pipes.parity.parity_zip_non_iterative",
	"tallypipe.pipes.parity.reorder_winners",
}
