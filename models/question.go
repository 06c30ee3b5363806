package models

// QuizQuestion is a multiple-choice question built from one vocabulary entry
type QuizQuestion struct {
	Word         string   `json:"word"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

// Answer returns the correct option text
func (q QuizQuestion) Answer() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// QuizPoll links a delivered Telegram poll to the question it carried
type QuizPoll struct {
	PollID       string `db:"poll_id"`
	RunID        string `db:"run_id"`
	Word         string `db:"word"`
	Answer       string `db:"answer"`
	CorrectIndex int    `db:"correct_index"`
	SentAt       int64  `db:"sent_at"`
}

// QuizAnswer stores a user's answer to a delivered poll
type QuizAnswer struct {
	PollID    string `db:"poll_id"`
	UserID    int64  `db:"user_id"`
	OptionID  int    `db:"option_id"`
	Correct   bool   `db:"correct"`
	Timestamp int64  `db:"timestamp"`
}

// MissedWord is a word ranked by how often it was answered incorrectly
type MissedWord struct {
	Word   string `db:"word"`
	Answer string `db:"answer"`
	Misses int    `db:"misses"`
}
