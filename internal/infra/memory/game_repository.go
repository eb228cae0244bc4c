package memory

import (
	"sync"

	"github.com/Zuehlke/kwiz/internal/domain"
)

// GameRepository is an in-memory implementation of app.GameRepository. It is
// safe under concurrent multi-key access; callers serialize per-game mutation
// themselves.
type GameRepository struct {
	mu    sync.RWMutex
	games map[string]*domain.Game
}

func NewGameRepository() *GameRepository {
	return &GameRepository{games: make(map[string]*domain.Game)}
}

// Save stores the game, replacing any previous entry with the same id.
func (r *GameRepository) Save(game *domain.Game) *domain.Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[game.ID] = game
	return game
}

func (r *GameRepository) FindByID(gameID string) (*domain.Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	game, ok := r.games[gameID]
	return game, ok
}

func (r *GameRepository) FindAll() []*domain.Game {
	r.mu.RLock()
	defer r.mu.RUnlock()
	games := make([]*domain.Game, 0, len(r.games))
	for _, game := range r.games {
		games = append(games, game)
	}
	return games
}

func (r *GameRepository) DeleteByID(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, gameID)
}

func (r *GameRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}
