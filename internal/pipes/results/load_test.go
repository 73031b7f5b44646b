package results

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veltio/tallypipe/internal/pipes"
	"github.com/veltio/tallypipe/internal/tally"
)

const questionsDoc = `[
	{
		"title": "Board",
		"tally_type": "plurality-at-large",
		"num_winners": 2,
		"answers": [
			{"id": 0, "text": "Alice", "total_count": 0},
			{"id": 1, "text": "Bob", "total_count": 0}
		]
	}
]`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, tally.QuestionsFile), []byte(questionsDoc), 0o644))

	ctx := tally.NewContext(dir)
	p := New()

	sig, err := p.Execute(context.Background(), []*tally.Context{ctx}, nil)
	require.NoError(t, err)
	assert.Equal(t, pipes.SignalContinue, sig)

	res := ctx.Results()
	require.NotNil(t, res)
	require.Len(t, res.Questions, 1)
	assert.Equal(t, "Board", res.Questions[0].Title)
	assert.Equal(t, 2, res.Questions[0].NumWinners)
	assert.Len(t, res.Questions[0].Answers, 2)
}

func TestLoad_MultipleTallies(t *testing.T) {
	var contexts []*tally.Context
	for range 2 {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, tally.QuestionsFile), []byte(questionsDoc), 0o644))
		contexts = append(contexts, tally.NewContext(dir))
	}

	p := New()
	_, err := p.Execute(context.Background(), contexts, nil)
	require.NoError(t, err)

	for _, c := range contexts {
		assert.NotNil(t, c.Results())
	}
}

func TestLoad_MissingQuestionsFile(t *testing.T) {
	ctx := tally.NewContext(t.TempDir())
	p := New()

	_, err := p.Execute(context.Background(), []*tally.Context{ctx}, nil)
	require.Error(t, err)
}

func TestLoad_CheckConfig(t *testing.T) {
	p := New()
	assert.NoError(t, p.CheckConfig(nil))
	assert.NoError(t, p.CheckConfig(pipes.Config{}))
	assert.Error(t, p.CheckConfig(pipes.Config{"anything": 1}))
}
