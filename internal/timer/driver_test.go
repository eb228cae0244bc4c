package timer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Zuehlke/kwiz/internal/app"
	"github.com/Zuehlke/kwiz/internal/domain"
	"github.com/Zuehlke/kwiz/internal/infra/memory"
)

func TestRegistryIsIdempotent(t *testing.T) {
	registry := NewRegistry()

	registry.Register("g1")
	registry.Register("g1")
	if got := registry.IDs(); len(got) != 1 {
		t.Fatalf("expected one id after double register, got %v", got)
	}

	registry.Unregister("g1")
	registry.Unregister("g1")
	registry.Unregister("never-registered")
	if registry.Contains("g1") {
		t.Fatalf("expected g1 gone")
	}
}

type recordingHandler struct {
	mu       sync.Mutex
	ticked   []string
	statuses map[string]domain.GameStatus
	fail     map[string]error
}

func (h *recordingHandler) HandleGameTick(gameID string) (domain.GameStatus, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ticked = append(h.ticked, gameID)
	if err, ok := h.fail[gameID]; ok {
		return "", err
	}
	if status, ok := h.statuses[gameID]; ok {
		return status, nil
	}
	return domain.StatusQuestionActive, nil
}

func (h *recordingHandler) tickedIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := append([]string(nil), h.ticked...)
	sort.Strings(ids)
	return ids
}

func TestTickProcessesAllRegisteredGames(t *testing.T) {
	handler := &recordingHandler{}
	driver := NewDriver(NewRegistry(), memory.NewGameRepository(), handler, 0)
	driver.Registry().Register("g1")
	driver.Registry().Register("g2")

	driver.Tick()

	got := handler.tickedIDs()
	if len(got) != 2 || got[0] != "g1" || got[1] != "g2" {
		t.Fatalf("expected both games ticked, got %v", got)
	}
	if !driver.Registry().Contains("g1") || !driver.Registry().Contains("g2") {
		t.Fatalf("active games must stay registered")
	}
}

func TestTickIsolatesFailures(t *testing.T) {
	handler := &recordingHandler{fail: map[string]error{"bad": errors.New("boom")}}
	driver := NewDriver(NewRegistry(), memory.NewGameRepository(), handler, 0)
	driver.Registry().Register("bad")
	driver.Registry().Register("good")

	driver.Tick()

	if got := handler.tickedIDs(); len(got) != 2 {
		t.Fatalf("a failing game must not stop the cycle, ticked %v", got)
	}
	// A transient failure is not grounds for dropping the game's timer.
	if !driver.Registry().Contains("bad") {
		t.Fatalf("failing game must stay registered")
	}
}

func TestTickCleansUpFinishedAndMissingGames(t *testing.T) {
	handler := &recordingHandler{
		statuses: map[string]domain.GameStatus{
			"closed": domain.StatusQuestionClosed,
			"over":   domain.StatusGameOver,
		},
		fail: map[string]error{
			"vanished": fmt.Errorf("%w: no game with id %q", domain.ErrNotFound, "vanished"),
		},
	}
	driver := NewDriver(NewRegistry(), memory.NewGameRepository(), handler, 0)
	driver.Registry().Register("closed")
	driver.Registry().Register("over")
	driver.Registry().Register("vanished")

	driver.Tick()

	// Closed games may linger one cycle; finished and missing ones are
	// dropped immediately.
	if !driver.Registry().Contains("closed") {
		t.Fatalf("closed game should stay registered until unregistered by a command")
	}
	if driver.Registry().Contains("over") {
		t.Fatalf("finished game should be unregistered")
	}
	if driver.Registry().Contains("vanished") {
		t.Fatalf("missing game should be unregistered")
	}
}

func activeGame(t *testing.T, adminID string) *domain.Game {
	t.Helper()
	game := domain.NewGame("quiz-1", adminID)
	if err := game.AddPlayer("P1", "Alice"); err != nil {
		t.Fatalf("add player: %v", err)
	}
	round := domain.NewRound("Round 1")
	_ = round.AddQuestion(domain.NewQuestion("q", []string{"a"}, 10, ""))
	if err := game.Start([]*domain.Round{round}); err != nil {
		t.Fatalf("start: %v", err)
	}
	return game
}

func TestRecoverActiveGames(t *testing.T) {
	games := memory.NewGameRepository()

	active := activeGame(t, "A1")
	games.Save(active)

	idle := domain.NewGame("quiz-2", "A1")
	games.Save(idle)

	driver := NewDriver(NewRegistry(), games, &recordingHandler{}, 0)
	driver.RecoverActiveGames()

	if !driver.Registry().Contains(active.ID) {
		t.Fatalf("expected active game re-registered")
	}
	if driver.Registry().Contains(idle.ID) {
		t.Fatalf("lobby game must not be registered")
	}
}

// Ticks and admin commands race on the same game; all shared state must be
// reached through the orchestrator's per-game lock.
func TestTickRunsConcurrentlyWithAdminCommands(t *testing.T) {
	quiz := domain.NewQuiz("quiz-1", "Pub Quiz", 0)
	if _, err := quiz.AddPlayer("Alice"); err != nil {
		t.Fatalf("add player: %v", err)
	}
	round := domain.NewRound("Round 1")
	for i := 0; i < 20; i++ {
		_ = round.AddQuestion(domain.NewQuestion(fmt.Sprintf("question %d", i), []string{"a"}, 3, ""))
	}
	_ = quiz.AddRound(round)

	games := memory.NewGameRepository()
	registry := NewRegistry()
	source := memory.NewQuizCache(memory.NewStaticQuizLoader(map[string]*domain.Quiz{quiz.ID: quiz}), time.Minute)
	orchestrator := app.NewGameOrchestrator(games, source, app.NopBroadcaster{}, registry)

	gameID, err := orchestrator.CreateAndStartGame(context.Background(), quiz.ID, "A1")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	driver := NewDriver(registry, games, orchestrator, 0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			driver.Tick()
		}
	}()

	// Each close+advance pair moves past exactly one question, whether the
	// close came from the admin or from a racing tick.
	for i := 0; i < 20; i++ {
		_ = orchestrator.AdminCloseCurrentQuestion(gameID, "A1")
		if err := orchestrator.AdminAdvanceToNextQuestion(gameID, "A1"); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	<-done

	snapshot, err := orchestrator.Snapshot(gameID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.Status != domain.StatusGameOver {
		t.Fatalf("expected game over after the last question, got %s", snapshot.Status)
	}
	if registry.Contains(gameID) {
		t.Fatalf("expected finished game unregistered")
	}
}
