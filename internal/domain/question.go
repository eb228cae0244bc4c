package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Question is a free-text quiz question with one or more accepted answers and
// a per-question time limit. Questions are immutable once created.
type Question struct {
	ID             string   `json:"id"`
	Text           string   `json:"text"`
	CorrectAnswers []string `json:"correctAnswers"`
	TimeLimit      int      `json:"timeLimit"` // seconds
	SubmitterID    string   `json:"submitterId,omitempty"`
}

// NewQuestion creates a question with a generated id. submitterID is empty for
// admin-authored questions and carries the player id for player-submitted ones.
func NewQuestion(text string, correctAnswers []string, timeLimit int, submitterID string) Question {
	answers := make([]string, len(correctAnswers))
	copy(answers, correctAnswers)
	return Question{
		ID:             uuid.NewString(),
		Text:           text,
		CorrectAnswers: answers,
		TimeLimit:      timeLimit,
		SubmitterID:    submitterID,
	}
}

// IsCorrectAnswer matches the given answer against the accepted list,
// ignoring case and surrounding whitespace.
func (q Question) IsCorrectAnswer(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	for _, correct := range q.CorrectAnswers {
		if strings.EqualFold(correct, trimmed) {
			return true
		}
	}
	return false
}

// Round is an ordered batch of questions with its own lifecycle. Questions can
// be appended until the round is activated or completed.
type Round struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
	Active    bool       `json:"active"`
	Completed bool       `json:"completed"`
}

// NewRound creates an empty inactive round with a generated id.
func NewRound(name string) *Round {
	return &Round{
		ID:   uuid.NewString(),
		Name: name,
	}
}

// AddQuestion appends a question. Rejected once the round is active or
// completed.
func (r *Round) AddQuestion(q Question) error {
	if r.Active || r.Completed {
		return fmtInvalidState("cannot add questions to an active or completed round")
	}
	r.Questions = append(r.Questions, q)
	return nil
}

// Activate marks the round live. A round without questions cannot start, and a
// completed round cannot be reopened.
func (r *Round) Activate() error {
	if len(r.Questions) == 0 {
		return fmtInvalidState("cannot activate a round without questions")
	}
	if r.Completed {
		return fmtInvalidState("cannot activate a completed round")
	}
	r.Active = true
	return nil
}

// Complete closes out an active round. Completing a round that was never
// activated is a bug in the caller and is reported, not tolerated.
func (r *Round) Complete() error {
	if !r.Active {
		return fmtInvalidState("cannot complete a round that is not active")
	}
	r.Active = false
	r.Completed = true
	return nil
}

// clone deep-copies the round so a running game is insulated from later edits
// to the source quiz.
func (r *Round) clone() *Round {
	questions := make([]Question, len(r.Questions))
	copy(questions, r.Questions)
	return &Round{
		ID:        r.ID,
		Name:      r.Name,
		Questions: questions,
		Active:    r.Active,
		Completed: r.Completed,
	}
}
