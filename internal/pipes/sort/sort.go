// Package sort provides the builtin pipe that orders non-iterative
// question answers by total count, resolving ties, withdrawals and
// removed candidates, and marks winner positions.
package sort

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/veltio/tallypipe/internal/pipes"
	"github.com/veltio/tallypipe/internal/tally"
)

// ShortName is the registry key for the non-iterative sort pipe.
const ShortName = "sort.sort_non_iterative"

// Tally types whose answers can be ordered by total count.
var sortableTallyTypes = map[string]bool{
	"plurality-at-large": true,
	"borda":              true,
	"borda-nauru":        true,
	"pairwise-beta":      true,
	"cup":                true,
}

// unplaced orders withdrawn and non-winning answers after every
// winner during the final positional sort.
const unplaced = 999999999

type nonIterativeConfig struct {
	QuestionIndexes []int             `json:"question_indexes"`
	Withdrawals     []tally.AnswerRef `json:"withdrawals"`
	TiesSorting     []tally.AnswerRef `json:"ties_sorting"`
	Help            string            `json:"help"`
}

// NonIterative sorts the selected non-iterative questions of the
// first tally by total count and marks winner positions. Withdrawn
// answers keep their slot in the ordering but never win; ties are
// broken by the configured ties_sorting order.
type NonIterative struct{}

// New creates the non-iterative sort pipe.
func New() *NonIterative { return &NonIterative{} }

func (*NonIterative) Name() string { return ShortName }

func (*NonIterative) CheckConfig(cfg pipes.Config) error {
	var params nonIterativeConfig
	if err := pipes.DecodeConfig(cfg, &params); err != nil {
		return err
	}
	for _, qi := range params.QuestionIndexes {
		if qi < 0 {
			return fmt.Errorf("question index %d is negative", qi)
		}
	}
	return nil
}

func (*NonIterative) Execute(_ context.Context, tallies []*tally.Context, cfg pipes.Config) (pipes.Signal, error) {
	var params nonIterativeConfig
	if err := pipes.DecodeConfig(cfg, &params); err != nil {
		return pipes.SignalContinue, err
	}

	data := tallies[0]
	results := data.Results()
	if results == nil {
		return pipes.SignalContinue, fmt.Errorf("no results loaded")
	}

	// withdrawals already recorded on the tally apply on top of the
	// configured ones
	withdrawals := append([]tally.AnswerRef{}, params.Withdrawals...)
	withdrawals = append(withdrawals, data.Withdrawals()...)

	for qNum, question := range results.Questions {
		if !sortableTallyTypes[question.TallyType] || !slices.Contains(params.QuestionIndexes, qNum) {
			continue
		}
		if err := sortQuestion(data, qNum, question, withdrawals, params.TiesSorting); err != nil {
			return pipes.SignalContinue, fmt.Errorf("question %d: %w", qNum, err)
		}
	}
	return pipes.SignalContinue, nil
}

func sortQuestion(data *tally.Context, qNum int, question *tally.Question, withdrawals, tiesSorting []tally.AnswerRef) error {
	removed := make(map[int]bool)
	for _, r := range data.RemovedCandidates() {
		if r.QuestionIndex == qNum {
			removed[r.AnswerID] = true
		}
	}
	if len(removed) > 0 {
		question.Answers = slices.DeleteFunc(question.Answers, func(a *tally.Answer) bool {
			return removed[a.ID]
		})
	}

	withdrawnIDs := make(map[int]bool)
	for _, w := range withdrawals {
		if w.QuestionIndex != qNum {
			continue
		}
		withdrawnIDs[w.AnswerID] = true

		if removed[w.AnswerID] {
			continue
		}
		a := question.AnswerByID(w.AnswerID)
		if a == nil {
			return fmt.Errorf("withdrawal references unknown answer id %d", w.AnswerID)
		}
		if a.Text != w.AnswerText {
			return fmt.Errorf("withdrawal text %q does not match answer %d text %q", w.AnswerText, w.AnswerID, a.Text)
		}
	}

	// Reverse tie ranks, so higher rank sorts alongside higher total
	// count.
	tieSort := make(map[int]int)
	var qTies []tally.AnswerRef
	for _, t := range tiesSorting {
		if t.QuestionIndex == qNum {
			qTies = append(qTies, t)
		}
	}
	for i, t := range qTies {
		a := question.AnswerByID(t.AnswerID)
		if a == nil {
			return fmt.Errorf("ties_sorting references unknown answer id %d", t.AnswerID)
		}
		if a.Text != t.AnswerText {
			return fmt.Errorf("ties_sorting text %q does not match answer %d text %q", t.AnswerText, t.AnswerID, a.Text)
		}
		tieSort[a.ID] = len(qTies) - i
	}

	// Sort by id first for a stable base order, then by total count
	// descending with tie ranks breaking equal counts.
	slices.SortStableFunc(question.Answers, func(a, b *tally.Answer) int {
		return cmp.Compare(a.ID, b.ID)
	})
	slices.SortStableFunc(question.Answers, func(a, b *tally.Answer) int {
		if c := cmp.Compare(b.TotalCount, a.TotalCount); c != 0 {
			return c
		}
		return cmp.Compare(tieSort[b.ID], tieSort[a.ID])
	})

	// Mark winners in order, skipping withdrawn answers.
	positions := make(map[int]int, len(question.Answers))
	next := 0
	for _, a := range question.Answers {
		if withdrawnIDs[a.ID] || next >= question.NumWinners {
			positions[a.ID] = unplaced
		} else {
			positions[a.ID] = next
			next++
		}
	}

	slices.SortStableFunc(question.Answers, func(a, b *tally.Answer) int {
		return cmp.Compare(positions[a.ID], positions[b.ID])
	})

	for _, a := range question.Answers {
		if pos := positions[a.ID]; pos == unplaced {
			a.WinnerPosition = nil
		} else {
			p := pos
			a.WinnerPosition = &p
		}
	}
	return nil
}

var _ pipes.Pipe = (*NonIterative)(nil)
