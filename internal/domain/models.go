package domain

// Question is one entry of the uploaded catalog. Index defines navigation
// order; Link points at the question's submission feed (typically a
// spreadsheet CSV export); Answer is the canonical key, trimmed and
// upper-cased at load time.
type Question struct {
	Index  int    `json:"index"`
	Link   string `json:"link"`
	Answer string `json:"ans"`
}

// Submission is one normalized feed row. It only lives for the duration of a
// single scoring pass and is never persisted.
type Submission struct {
	Timestamp     string
	ParticipantID string
	Answer        string
}

// Score is one participant's credited result for a single question.
type Score struct {
	ParticipantID string `json:"participantId"`
	Points        int    `json:"points"`
	Timestamp     string `json:"timestamp"`
}

// Stats is the computed result for one question. Scores is ordered
// earliest-correct-first and contains at most one entry per participant.
type Stats struct {
	Scores             []Score `json:"scores"`
	TotalSubmissions   int     `json:"totalSubmissions"`
	CorrectSubmissions int     `json:"correctSubmissions"`
	AverageScore       float64 `json:"averageScore"`
	Loaded             bool    `json:"loaded"`
}

// SuccessRate reports the fraction of submissions that were credited, as a
// percentage. Zero when nothing was submitted.
func (s Stats) SuccessRate() float64 {
	if s.TotalSubmissions == 0 {
		return 0
	}
	return float64(s.CorrectSubmissions) / float64(s.TotalSubmissions) * 100
}

// Ranking is a participant's cumulative total across all scored questions.
// Derived on demand, never stored.
type Ranking struct {
	ParticipantID string `json:"participantId"`
	TotalPoints   int    `json:"totalPoints"`
}

// Leaderboard is a snapshot of the cumulative rankings, suitable for pushing
// to subscribers after a scoring pass.
type Leaderboard struct {
	Rankings        []Ranking `json:"rankings"`
	QuestionsScored int       `json:"questionsScored"`
}
