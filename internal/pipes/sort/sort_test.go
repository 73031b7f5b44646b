package sort

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veltio/tallypipe/internal/pipes"
	"github.com/veltio/tallypipe/internal/tally"
)

func fixtureContext() *tally.Context {
	ctx := tally.NewContext("/tmp/fake")
	ctx.SetResults(&tally.Results{
		Questions: []*tally.Question{{
			Title:      "Board",
			TallyType:  "plurality-at-large",
			NumWinners: 2,
			Answers: []*tally.Answer{
				{ID: 0, Text: "Alice", TotalCount: 10},
				{ID: 1, Text: "Bob", TotalCount: 30},
				{ID: 2, Text: "Carol", TotalCount: 20},
				{ID: 3, Text: "Dave", TotalCount: 30},
			},
		}},
	})
	return ctx
}

func texts(answers []*tally.Answer) []string {
	out := make([]string, len(answers))
	for i, a := range answers {
		out[i] = a.Text
	}
	return out
}

func TestNonIterative_SortsByTotalCount(t *testing.T) {
	ctx := fixtureContext()
	p := New()

	sig, err := p.Execute(context.Background(), []*tally.Context{ctx}, pipes.Config{
		"question_indexes": []any{float64(0)},
	})
	require.NoError(t, err)
	assert.Equal(t, pipes.SignalContinue, sig)

	q := ctx.Results().Questions[0]
	// Bob and Dave tie at 30; without tie sorting the lower id wins
	assert.Equal(t, []string{"Bob", "Dave", "Carol", "Alice"}, texts(q.Answers))

	require.NotNil(t, q.Answers[0].WinnerPosition)
	assert.Equal(t, 0, *q.Answers[0].WinnerPosition)
	require.NotNil(t, q.Answers[1].WinnerPosition)
	assert.Equal(t, 1, *q.Answers[1].WinnerPosition)
	assert.Nil(t, q.Answers[2].WinnerPosition)
	assert.Nil(t, q.Answers[3].WinnerPosition)
}

func TestNonIterative_TiesSorting(t *testing.T) {
	ctx := fixtureContext()
	p := New()

	_, err := p.Execute(context.Background(), []*tally.Context{ctx}, pipes.Config{
		"question_indexes": []any{float64(0)},
		"ties_sorting": []any{
			map[string]any{"question_index": float64(0), "answer_id": float64(3), "answer_text": "Dave"},
		},
	})
	require.NoError(t, err)

	q := ctx.Results().Questions[0]
	assert.Equal(t, []string{"Dave", "Bob", "Carol", "Alice"}, texts(q.Answers))
}

func TestNonIterative_TiesSortingMismatch(t *testing.T) {
	ctx := fixtureContext()
	p := New()

	_, err := p.Execute(context.Background(), []*tally.Context{ctx}, pipes.Config{
		"question_indexes": []any{float64(0)},
		"ties_sorting": []any{
			map[string]any{"question_index": float64(0), "answer_id": float64(3), "answer_text": "Not Dave"},
		},
	})
	require.Error(t, err)
}

func TestNonIterative_WithdrawnNeverWins(t *testing.T) {
	ctx := fixtureContext()
	p := New()

	_, err := p.Execute(context.Background(), []*tally.Context{ctx}, pipes.Config{
		"question_indexes": []any{float64(0)},
		"withdrawals": []any{
			map[string]any{"question_index": float64(0), "answer_id": float64(1), "answer_text": "Bob"},
		},
	})
	require.NoError(t, err)

	q := ctx.Results().Questions[0]
	// Bob is withdrawn: Dave and Carol win, Bob sorts after the winners
	assert.Equal(t, []string{"Dave", "Carol", "Bob", "Alice"}, texts(q.Answers))
	assert.Nil(t, q.AnswerByID(1).WinnerPosition)
	require.NotNil(t, q.AnswerByID(3).WinnerPosition)
	assert.Equal(t, 0, *q.AnswerByID(3).WinnerPosition)
	require.NotNil(t, q.AnswerByID(2).WinnerPosition)
	assert.Equal(t, 1, *q.AnswerByID(2).WinnerPosition)
}

func TestNonIterative_ContextWithdrawalsApply(t *testing.T) {
	ctx := fixtureContext()
	ctx.SetWithdrawals([]tally.AnswerRef{
		{QuestionIndex: 0, AnswerID: 1, AnswerText: "Bob"},
	})
	p := New()

	_, err := p.Execute(context.Background(), []*tally.Context{ctx}, pipes.Config{
		"question_indexes": []any{float64(0)},
	})
	require.NoError(t, err)

	q := ctx.Results().Questions[0]
	assert.Nil(t, q.AnswerByID(1).WinnerPosition)
}

func TestNonIterative_RemovedCandidatesDropped(t *testing.T) {
	ctx := fixtureContext()
	ctx.SetRemovedCandidates([]tally.AnswerRef{
		{QuestionIndex: 0, AnswerID: 0, AnswerText: "Alice"},
	})
	p := New()

	_, err := p.Execute(context.Background(), []*tally.Context{ctx}, pipes.Config{
		"question_indexes": []any{float64(0)},
	})
	require.NoError(t, err)

	q := ctx.Results().Questions[0]
	assert.Len(t, q.Answers, 3)
	assert.Nil(t, q.AnswerByID(0))
}

func TestNonIterative_SkipsUnselectedQuestions(t *testing.T) {
	ctx := fixtureContext()
	p := New()

	_, err := p.Execute(context.Background(), []*tally.Context{ctx}, pipes.Config{
		"question_indexes": []any{float64(5)},
	})
	require.NoError(t, err)

	q := ctx.Results().Questions[0]
	// untouched: original answer order preserved
	assert.Equal(t, []string{"Alice", "Bob", "Carol", "Dave"}, texts(q.Answers))
}

func TestNonIterative_SkipsUnsortableTallyTypes(t *testing.T) {
	ctx := fixtureContext()
	ctx.Results().Questions[0].TallyType = "meek-stv"
	p := New()

	_, err := p.Execute(context.Background(), []*tally.Context{ctx}, pipes.Config{
		"question_indexes": []any{float64(0)},
	})
	require.NoError(t, err)

	q := ctx.Results().Questions[0]
	assert.Equal(t, []string{"Alice", "Bob", "Carol", "Dave"}, texts(q.Answers))
}

func TestNonIterative_CheckConfig(t *testing.T) {
	p := New()

	assert.NoError(t, p.CheckConfig(nil))
	assert.NoError(t, p.CheckConfig(pipes.Config{"question_indexes": []any{float64(0)}}))
	assert.Error(t, p.CheckConfig(pipes.Config{"question_indexes": []any{float64(-1)}}))
	assert.Error(t, p.CheckConfig(pipes.Config{"unknown_key": true}))
}

func TestNonIterative_NoResults(t *testing.T) {
	ctx := tally.NewContext("/tmp/fake")
	p := New()

	_, err := p.Execute(context.Background(), []*tally.Context{ctx}, pipes.Config{
		"question_indexes": []any{float64(0)},
	})
	require.Error(t, err)
}
