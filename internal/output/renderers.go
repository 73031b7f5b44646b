package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/veltio/tallypipe/internal/tally"
)

func init() {
	Register("json", renderJSON)
	Register("csv", renderCSV(','))
	Register("tsv", renderCSV('\t'))
	Register("pretty", renderPretty)
}

func renderJSON(w io.Writer, res *tally.Results) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

var tabularHeader = []string{"question_index", "question", "answer_id", "answer", "total_count", "winner_position"}

func tabularRow(qIndex int, q *tally.Question, a *tally.Answer) []string {
	pos := ""
	if a.WinnerPosition != nil {
		pos = strconv.Itoa(*a.WinnerPosition)
	}
	return []string{
		strconv.Itoa(qIndex),
		q.Title,
		strconv.Itoa(a.ID),
		a.Text,
		strconv.Itoa(a.TotalCount),
		pos,
	}
}

func renderCSV(delimiter rune) RenderFunc {
	return func(w io.Writer, res *tally.Results) error {
		cw := csv.NewWriter(w)
		cw.Comma = delimiter
		if err := cw.Write(tabularHeader); err != nil {
			return err
		}
		for qIndex, q := range res.Questions {
			for _, a := range q.Answers {
				if err := cw.Write(tabularRow(qIndex, q, a)); err != nil {
					return err
				}
			}
		}
		cw.Flush()
		return cw.Error()
	}
}

func renderPretty(w io.Writer, res *tally.Results) error {
	for qIndex, q := range res.Questions {
		title := q.Title
		if title == "" {
			title = fmt.Sprintf("question %d", qIndex)
		}
		if _, err := fmt.Fprintf(w, "%s (%s, %d winners)\n", title, q.TallyType, q.NumWinners); err != nil {
			return err
		}

		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Position", "Answer", "Total count"})
		for _, a := range q.Answers {
			pos := "-"
			if a.WinnerPosition != nil {
				pos = strconv.Itoa(*a.WinnerPosition + 1)
			}
			table.Append([]string{pos, a.Text, strconv.Itoa(a.TotalCount)})
		}
		table.Render()

		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
