package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// QuizPlayer is a roster entry on a quiz definition, seeded into games started
// from it.
type QuizPlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Quiz is the static template a game is started from: ordered rounds of
// questions plus the roster of players who joined during setup.
type Quiz struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	MaxPlayers int          `json:"maxPlayers"`
	Players    []QuizPlayer `json:"players"`
	Rounds     []*Round     `json:"rounds"`
	Started    bool         `json:"started"`
	Ended      bool         `json:"ended"`
}

// NewQuiz creates an empty quiz definition.
func NewQuiz(id, name string, maxPlayers int) *Quiz {
	return &Quiz{ID: id, Name: name, MaxPlayers: maxPlayers}
}

// AddPlayer joins a player during setup. Names must be unique; the roster is
// frozen once the quiz starts.
func (q *Quiz) AddPlayer(name string) (QuizPlayer, error) {
	if q.Started {
		return QuizPlayer{}, fmtInvalidState("cannot add player after quiz has started")
	}
	if strings.TrimSpace(name) == "" {
		return QuizPlayer{}, fmt.Errorf("%w: player name cannot be empty", ErrInvalidArgument)
	}
	if q.MaxPlayers > 0 && len(q.Players) >= q.MaxPlayers {
		return QuizPlayer{}, fmtInvalidState("maximum number of players reached")
	}
	for _, existing := range q.Players {
		if existing.Name == name {
			return QuizPlayer{}, fmt.Errorf("%w: player name must be unique", ErrInvalidArgument)
		}
	}
	player := QuizPlayer{ID: uuid.NewString(), Name: name}
	q.Players = append(q.Players, player)
	return player, nil
}

// AddRound appends a round during setup.
func (q *Quiz) AddRound(round *Round) error {
	if q.Started {
		return fmtInvalidState("cannot add round after quiz has started")
	}
	q.Rounds = append(q.Rounds, round)
	return nil
}

// RoundByID looks up a round on this quiz.
func (q *Quiz) RoundByID(roundID string) (*Round, error) {
	for _, round := range q.Rounds {
		if round.ID == roundID {
			return round, nil
		}
	}
	return nil, fmt.Errorf("%w: no round with id %q", ErrNotFound, roundID)
}

// HasPlayer reports whether the roster contains the given player id.
func (q *Quiz) HasPlayer(playerID string) bool {
	for _, player := range q.Players {
		if player.ID == playerID {
			return true
		}
	}
	return false
}

// Start freezes the quiz for play. Requires at least one round and one player.
func (q *Quiz) Start() error {
	if q.Started {
		return fmtInvalidState("quiz has already started")
	}
	if len(q.Rounds) == 0 {
		return fmtInvalidState("cannot start quiz without rounds")
	}
	if len(q.Players) == 0 {
		return fmtInvalidState("cannot start quiz without players")
	}
	q.Started = true
	return nil
}

// End marks a started quiz as finished.
func (q *Quiz) End() error {
	if !q.Started {
		return fmtInvalidState("cannot end quiz that hasn't started")
	}
	q.Ended = true
	return nil
}
