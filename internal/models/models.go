package models

import "time"

// QuestionKind distinguishes single-select questions from free-text ones
type QuestionKind string

const (
	KindSelect QuestionKind = "select"
	KindText   QuestionKind = "text"
)

// Question represents one award category on the ballot
type Question struct {
	ID   int          `json:"id"`
	Text string       `json:"text"`
	Kind QuestionKind `json:"kind,omitempty"` // empty means select
}

// IsText reports whether the question takes free text instead of a candidate
func (q Question) IsText() bool {
	return q.Kind == KindText
}

// AnswerSet maps question id to the chosen candidate (or free text)
type AnswerSet map[int]string

// Submission is a finalized ballot as stored in the remote votes table
type Submission struct {
	ID        int64     `json:"id,omitempty"`
	Email     string    `json:"email"`
	Votes     AnswerSet `json:"votes"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ConfigLabel is the reserved respondent label of the sentinel config row.
// Rows with this label are settings, not ballots, and must be excluded
// from every listing, count, and export.
const ConfigLabel = "admin_config"

// IsConfig reports whether the submission is the sentinel config row
func (s Submission) IsConfig() bool {
	return s.Email == ConfigLabel
}

// StoreConfig holds remote row-store connection settings
type StoreConfig struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// WSMessage represents a WebSocket message pushed to admin panels
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
