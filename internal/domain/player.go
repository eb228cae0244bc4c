package domain

// PlayerInGame is a player's state within one game: identity, display name,
// and accumulated score.
type PlayerInGame struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
}

// AddPoints increases the player's score. Scores only ever go up.
func (p *PlayerInGame) AddPoints(points int) {
	p.Score += points
}

// PlayerSubmission records one player's answer to one question. Immutable once
// created; correctness is computed at submission time and never re-evaluated.
type PlayerSubmission struct {
	PlayerID      string `json:"playerId"`
	QuestionID    string `json:"questionId"`
	AnswerText    string `json:"answerText"`
	SubmittedAtMs int64  `json:"submittedAt"` // milliseconds since epoch
	Correct       bool   `json:"correct"`
}
