package timer

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Zuehlke/kwiz/internal/app"
	"github.com/Zuehlke/kwiz/internal/domain"
)

// TickHandler applies one timer tick to one game under the game's lock and
// reports the status the tick left it in. Implemented by the orchestrator.
type TickHandler interface {
	HandleGameTick(gameID string) (domain.GameStatus, error)
}

// Driver ticks every registered game on a fixed cadence. One misbehaving game
// never stalls the cycle for the others; its failure is logged and the loop
// moves on. Game state is only ever read through the handler, which holds the
// game's lock. The registration set is in-memory only, so RecoverActiveGames
// re-seeds it from the repository on startup.
type Driver struct {
	registry *Registry
	games    app.GameRepository
	handler  TickHandler
	interval time.Duration
}

// NewDriver builds a driver ticking at the given interval; zero or negative
// means the 1-second default.
func NewDriver(registry *Registry, games app.GameRepository, handler TickHandler, interval time.Duration) *Driver {
	if interval <= 0 {
		interval = time.Second
	}
	return &Driver{
		registry: registry,
		games:    games,
		handler:  handler,
		interval: interval,
	}
}

// Registry exposes the driver's registration set for wiring into the
// orchestrator.
func (d *Driver) Registry() *Registry {
	return d.registry
}

// Run ticks until the context is canceled. Blocking; callers run it on its
// own goroutine.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Tick()
		}
	}
}

// Tick processes one cycle over every registered game id. Exported so tests
// can drive cycles deterministically.
func (d *Driver) Tick() {
	for _, gameID := range d.registry.IDs() {
		d.tickGame(gameID)
	}
}

func (d *Driver) tickGame(gameID string) {
	status, err := d.handler.HandleGameTick(gameID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Printf("timer: game %s not found, unregistering", gameID)
			d.registry.Unregister(gameID)
			return
		}
		log.Printf("timer: tick failed for game %s: %v", gameID, err)
		return
	}
	if status == domain.StatusGameOver {
		d.registry.Unregister(gameID)
	}
}

// RecoverActiveGames scans the repository and registers every game with an
// active question. Called once at startup, before any commands run, to restore
// timers lost with the ephemeral registration set.
func (d *Driver) RecoverActiveGames() {
	for _, game := range d.games.FindAll() {
		if game.Status == domain.StatusQuestionActive {
			d.registry.Register(game.ID)
		}
	}
}
