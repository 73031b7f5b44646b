package tally

// Results is the tallied outcome pipes accumulate and serializers
// render. The JSON shape matches the questions document stored in a
// tally's working directory.
type Results struct {
	Questions []*Question `json:"questions"`
}

// Question is one contest in an election.
type Question struct {
	Title      string    `json:"title,omitempty"`
	TallyType  string    `json:"tally_type"`
	NumWinners int       `json:"num_winners"`
	Answers    []*Answer `json:"answers"`
}

// Answer is one candidate option within a question. WinnerPosition is
// nil for non-winners.
type Answer struct {
	ID             int    `json:"id"`
	Text           string `json:"text"`
	TotalCount     int    `json:"total_count"`
	WinnerPosition *int   `json:"winner_position"`
}

// AnswerRef identifies an answer across questions. Used for
// withdrawals and removed-candidate records.
type AnswerRef struct {
	QuestionIndex int    `json:"question_index"`
	AnswerID      int    `json:"answer_id"`
	AnswerText    string `json:"answer_text"`
}

// WinnerPositionRef pins an answer to an explicit winner position.
type WinnerPositionRef struct {
	ID             int    `json:"id"`
	Text           string `json:"text"`
	WinnerPosition int    `json:"winner_position"`
}

// AnswerByID returns the answer with the given id, or nil.
func (q *Question) AnswerByID(id int) *Answer {
	for _, a := range q.Answers {
		if a.ID == id {
			return a
		}
	}
	return nil
}
