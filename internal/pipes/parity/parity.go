// Package parity provides the builtin pipes that adjust winner
// selection for sex parity: capped same-sex proportions, woman/man
// zipped orderings, and externally imposed winner positions.
//
// All of them assume the answer lists are already sorted, typically by
// a preceding sort pipe.
package parity

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/veltio/tallypipe/internal/pipes"
	"github.com/veltio/tallypipe/internal/tally"
)

// Registry keys for the parity pipes.
const (
	ProportionShortName = "parity.proportion_rounded"
	ZipShortName        = "parity.parity_zip_non_iterative"
	ReorderShortName    = "parity.reorder_winners"
)

// Tally types the zip pipe applies to.
var zipTallyTypes = map[string]bool{
	"plurality-at-large": true,
	"borda":              true,
	"borda-nauru":        true,
}

func womenSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

type proportionConfig struct {
	WomenNames  []string  `json:"women_names"`
	Proportions []float64 `json:"proportions"`
}

// ProportionRounded keeps the proportion of each sex among a
// question's winners between the configured bounds, demoting
// overrepresented winners in favor of the best-placed answers of the
// other sex.
type ProportionRounded struct {
	logger *slog.Logger
}

// NewProportionRounded creates the proportion pipe.
func NewProportionRounded() *ProportionRounded {
	return &ProportionRounded{logger: slog.Default()}
}

func (*ProportionRounded) Name() string { return ProportionShortName }

func (*ProportionRounded) CheckConfig(cfg pipes.Config) error {
	var params proportionConfig
	if err := pipes.DecodeConfig(cfg, &params); err != nil {
		return err
	}
	if len(params.Proportions) != 2 {
		return fmt.Errorf("proportions must have exactly 2 elements, got %d", len(params.Proportions))
	}
	for _, p := range params.Proportions {
		if p <= 0 {
			return fmt.Errorf("proportions must be positive, got %v", p)
		}
	}
	return nil
}

func (p *ProportionRounded) Execute(_ context.Context, tallies []*tally.Context, cfg pipes.Config) (pipes.Signal, error) {
	var params proportionConfig
	if err := pipes.DecodeConfig(cfg, &params); err != nil {
		return pipes.SignalContinue, err
	}

	data := tallies[0]
	results := data.Results()
	if results == nil {
		return pipes.SignalContinue, fmt.Errorf("no results loaded")
	}

	women := womenSet(params.WomenNames)
	total := params.Proportions[0] + params.Proportions[1]
	slices.Sort(params.Proportions)

	for _, question := range results.Questions {
		if question.TallyType != "plurality-at-large" || len(question.Answers) < 2 || question.NumWinners < 2 {
			continue
		}
		maxSameSex := int(math.Round(float64(question.NumWinners) * params.Proportions[1] / total))

		for _, a := range question.Answers {
			a.WinnerPosition = nil
		}

		allWomen := filterAnswers(question.Answers, women, true)
		allMen := filterAnswers(question.Answers, women, false)

		base := question.Answers[:min(question.NumWinners, len(question.Answers))]
		baseWomen := filterAnswers(base, women, true)
		baseMen := filterAnswers(base, women, false)

		winners := append(append([]*tally.Answer{}, baseWomen...), baseMen...)
		switch {
		case len(baseWomen) > maxSameSex:
			fill := min(question.NumWinners-maxSameSex, len(allMen))
			winners = append(append([]*tally.Answer{}, baseWomen[:maxSameSex]...),
				allMen[:fill]...)
			p.logger.Warn("too many women among winners, rebalancing",
				slog.Int("women_winners", len(baseWomen)),
				slog.Int("max_samesex", maxSameSex))
		case len(baseMen) > maxSameSex:
			fill := min(question.NumWinners-maxSameSex, len(allWomen))
			winners = append(append([]*tally.Answer{}, baseMen[:maxSameSex]...),
				allWomen[:fill]...)
			p.logger.Warn("too many men among winners, rebalancing",
				slog.Int("men_winners", len(baseMen)),
				slog.Int("max_samesex", maxSameSex))
		}

		slices.SortStableFunc(winners, func(a, b *tally.Answer) int {
			return cmp.Compare(b.TotalCount, a.TotalCount)
		})
		for i, a := range winners {
			pos := i
			a.WinnerPosition = &pos
		}
	}
	return pipes.SignalContinue, nil
}

func filterAnswers(answers []*tally.Answer, women map[string]bool, wantWomen bool) []*tally.Answer {
	var out []*tally.Answer
	for _, a := range answers {
		if women[a.Text] == wantWomen {
			out = append(out, a)
		}
	}
	return out
}

type zipConfig struct {
	WomenNames      []string `json:"women_names"`
	QuestionIndexes *[]int   `json:"question_indexes"`
}

// ZipNonIterative reorders winners into an alternating woman/man
// sequence. When applied to multiple questions the alternation
// carries over between them, as if all winners sat in one question:
// the sex of one question's last winner decides which sex opens the
// next question.
type ZipNonIterative struct{}

// NewZipNonIterative creates the zip pipe.
func NewZipNonIterative() *ZipNonIterative { return &ZipNonIterative{} }

func (*ZipNonIterative) Name() string { return ZipShortName }

func (*ZipNonIterative) CheckConfig(cfg pipes.Config) error {
	var params zipConfig
	return pipes.DecodeConfig(cfg, &params)
}

func (*ZipNonIterative) Execute(_ context.Context, tallies []*tally.Context, cfg pipes.Config) (pipes.Signal, error) {
	var params zipConfig
	if err := pipes.DecodeConfig(cfg, &params); err != nil {
		return pipes.SignalContinue, err
	}

	data := tallies[0]
	results := data.Results()
	if results == nil {
		return pipes.SignalContinue, fmt.Errorf("no results loaded")
	}

	women := womenSet(params.WomenNames)
	var lastIsWoman *bool

	for qIndex, question := range results.Questions {
		if params.QuestionIndexes != nil && !slices.Contains(*params.QuestionIndexes, qIndex) {
			continue
		}
		if !zipTallyTypes[question.TallyType] || len(question.Answers) == 0 {
			continue
		}

		qWomen := filterAnswers(question.Answers, women, true)
		qMen := filterAnswers(question.Answers, women, false)

		// A man opens the question either when the previous question
		// ended on a woman, or on the first question when the top
		// answer is a man.
		manFirst := false
		if lastIsWoman != nil {
			manFirst = *lastIsWoman
		} else if len(qMen) > 0 && qMen[0].Text == question.Answers[0].Text {
			manFirst = true
		}

		sorted := interleave(qWomen, qMen, manFirst)
		for i, a := range sorted {
			if i < question.NumWinners {
				pos := i
				a.WinnerPosition = &pos
				isWoman := women[a.Text]
				lastIsWoman = &isWoman
			} else {
				a.WinnerPosition = nil
			}
		}
		question.Answers = sorted
	}
	return pipes.SignalContinue, nil
}

// interleave zips the two lists one woman, one man, appending the
// leftover tail of the longer list.
func interleave(women, men []*tally.Answer, manFirst bool) []*tally.Answer {
	out := make([]*tally.Answer, 0, len(women)+len(men))
	wi, mi := 0, 0
	if manFirst && mi < len(men) {
		out = append(out, men[mi])
		mi++
	}
	for wi < len(women) || mi < len(men) {
		if wi < len(women) {
			out = append(out, women[wi])
			wi++
		}
		if mi < len(men) {
			out = append(out, men[mi])
			mi++
		}
	}
	return out
}

type reorderConfig struct {
	QuestionIndex    int                       `json:"question_index"`
	WinnersPositions []tally.WinnerPositionRef `json:"winners_positions"`
}

// ReorderWinners sets winner positions of a single question from an
// externally supplied list, matching answers by id and text. Answers
// not listed lose any winner position.
type ReorderWinners struct{}

// NewReorderWinners creates the reorder pipe.
func NewReorderWinners() *ReorderWinners { return &ReorderWinners{} }

func (*ReorderWinners) Name() string { return ReorderShortName }

func (*ReorderWinners) CheckConfig(cfg pipes.Config) error {
	var params reorderConfig
	if err := pipes.DecodeConfig(cfg, &params); err != nil {
		return err
	}
	if params.QuestionIndex < 0 {
		return fmt.Errorf("question_index %d is negative", params.QuestionIndex)
	}
	return nil
}

func (*ReorderWinners) Execute(_ context.Context, tallies []*tally.Context, cfg pipes.Config) (pipes.Signal, error) {
	var params reorderConfig
	if err := pipes.DecodeConfig(cfg, &params); err != nil {
		return pipes.SignalContinue, err
	}

	data := tallies[0]
	results := data.Results()
	if results == nil {
		return pipes.SignalContinue, fmt.Errorf("no results loaded")
	}
	if params.QuestionIndex >= len(results.Questions) {
		return pipes.SignalContinue, fmt.Errorf("question_index %d out of range (%d questions)",
			params.QuestionIndex, len(results.Questions))
	}

	question := results.Questions[params.QuestionIndex]
	for _, a := range question.Answers {
		a.WinnerPosition = nil
		for _, ref := range params.WinnersPositions {
			if ref.ID == a.ID && ref.Text == a.Text {
				pos := ref.WinnerPosition
				a.WinnerPosition = &pos
				break
			}
		}
	}
	return pipes.SignalContinue, nil
}

var (
	_ pipes.Pipe = (*ProportionRounded)(nil)
	_ pipes.Pipe = (*ZipNonIterative)(nil)
	_ pipes.Pipe = (*ReorderWinners)(nil)
)
