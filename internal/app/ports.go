package app

import (
	"context"

	"github.com/Zuehlke/kwiz/internal/domain"
)

// GameRepository stores Game aggregates by id. Implementations must be safe
// under concurrent multi-key access; per-game linearizability is the
// orchestrator's job, not the repository's.
type GameRepository interface {
	Save(game *domain.Game) *domain.Game
	FindByID(gameID string) (*domain.Game, bool)
	FindAll() []*domain.Game
	DeleteByID(gameID string)
	Count() int
}

// QuizSource resolves a quiz definition at game-creation time (from the
// in-memory setup engine, or from cache/backing store).
type QuizSource interface {
	GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, error)
}

// AckOutcome is the per-player result of an answer submission.
type AckOutcome struct {
	Confirmed bool   `json:"confirmed"`
	Message   string `json:"message,omitempty"`
}

// AckConfirmed reports a recorded submission.
func AckConfirmed() AckOutcome { return AckOutcome{Confirmed: true} }

// AckError reports a rejected submission with the rejection reason.
func AckError(message string) AckOutcome { return AckOutcome{Message: message} }

// Broadcaster delivers state snapshots and per-player acks to subscribed
// clients. Fire-and-forget; the orchestrator consumes no return value.
type Broadcaster interface {
	BroadcastState(gameID string, snapshot GameSnapshot)
	SendPlayerAck(gameID, playerID, questionID string, outcome AckOutcome)
}

// TimerRegistry tracks which games are currently ticking. Register and
// Unregister are idempotent and never fail.
type TimerRegistry interface {
	Register(gameID string)
	Unregister(gameID string)
}

// NopBroadcaster discards everything. Useful in tests and tools.
type NopBroadcaster struct{}

func (NopBroadcaster) BroadcastState(string, GameSnapshot) {}

func (NopBroadcaster) SendPlayerAck(string, string, string, AckOutcome) {}
