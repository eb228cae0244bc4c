package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/Zuehlke/kwiz/internal/domain"
)

// GameOrchestrator is the command/query facade over running games. Every
// command loads the game, delegates to the aggregate, persists the result,
// and emits a broadcast snapshot; the answer path additionally acks the
// submitting player. Timer registration side effects follow the status the
// command left the game in.
//
// Mutations are serialized per game id by a lock table, so state transitions
// are linearizable per game while distinct games proceed in parallel.
// Broadcasts and acks are emitted after the lock is released, always from the
// snapshot taken after the mutation committed.
type GameOrchestrator struct {
	games       GameRepository
	quizzes     QuizSource
	broadcaster Broadcaster
	timers      TimerRegistry
	scoring     domain.ScoringPolicy

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGameOrchestrator wires the orchestrator to its collaborators.
func NewGameOrchestrator(games GameRepository, quizzes QuizSource, broadcaster Broadcaster, timers TimerRegistry) *GameOrchestrator {
	return &GameOrchestrator{
		games:       games,
		quizzes:     quizzes,
		broadcaster: broadcaster,
		timers:      timers,
		scoring:     domain.TimeDecayScoring,
		locks:       make(map[string]*sync.Mutex),
	}
}

// SetScoringPolicy swaps the scoring policy applied to games created after
// the call.
func (o *GameOrchestrator) SetScoringPolicy(policy domain.ScoringPolicy) {
	o.scoring = policy
}

// lockFor returns the mutex serializing one game's commands. Locks live for
// the process lifetime; the set of games per process stays small.
func (o *GameOrchestrator) lockFor(gameID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.locks[gameID]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[gameID] = lock
	}
	return lock
}

func (o *GameOrchestrator) loadGame(gameID string) (*domain.Game, error) {
	game, ok := o.games.FindByID(gameID)
	if !ok {
		return nil, fmt.Errorf("%w: no game with id %q", domain.ErrNotFound, gameID)
	}
	return game, nil
}

// CreateAndStartGame starts a new game from a quiz definition: copies the
// quiz's roster and rounds in, registers the game for ticking, and broadcasts
// the initial state. Returns the new game's id.
func (o *GameOrchestrator) CreateAndStartGame(ctx context.Context, quizID, adminID string) (string, error) {
	quiz, err := o.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return "", err
	}

	game := domain.NewGame(quiz.ID, adminID)
	game.SetScoringPolicy(o.scoring)
	for _, player := range quiz.Players {
		if err := game.AddPlayer(player.ID, player.Name); err != nil {
			return "", err
		}
	}
	if err := game.Start(quiz.Rounds); err != nil {
		return "", err
	}

	lock := o.lockFor(game.ID)
	lock.Lock()
	o.games.Save(game)
	snapshot := buildSnapshot(game)
	lock.Unlock()

	o.timers.Register(game.ID)
	o.broadcaster.BroadcastState(game.ID, snapshot)
	return game.ID, nil
}

// SubmitPlayerAnswer records a player's answer. On success the player gets a
// confirmation ack and everyone gets a fresh snapshot; on failure the player
// gets an error ack and the same error is returned to the caller.
func (o *GameOrchestrator) SubmitPlayerAnswer(gameID, playerID, questionID, answerText string) error {
	lock := o.lockFor(gameID)
	lock.Lock()

	game, err := o.loadGame(gameID)
	if err != nil {
		lock.Unlock()
		return err
	}

	_, err = game.AcceptPlayerAnswer(playerID, questionID, answerText)
	if err != nil {
		lock.Unlock()
		o.broadcaster.SendPlayerAck(gameID, playerID, questionID, AckError(err.Error()))
		return err
	}

	o.games.Save(game)
	snapshot := buildSnapshot(game)
	lock.Unlock()

	o.broadcaster.BroadcastState(gameID, snapshot)
	o.broadcaster.SendPlayerAck(gameID, playerID, questionID, AckConfirmed())
	return nil
}

// AdminCloseCurrentQuestion forces the active question shut and stops the
// game's ticks.
func (o *GameOrchestrator) AdminCloseCurrentQuestion(gameID, adminID string) error {
	snapshot, err := o.runCommand(gameID, func(game *domain.Game) error {
		return game.AdminCloseCurrentQuestion(adminID)
	})
	if err != nil {
		return err
	}

	o.timers.Unregister(gameID)
	o.broadcaster.BroadcastState(gameID, snapshot)
	return nil
}

// AdminAdvanceToNextQuestion moves past a closed question, re-arming the
// timer when a new question opened and releasing it when the game ended.
func (o *GameOrchestrator) AdminAdvanceToNextQuestion(gameID, adminID string) error {
	snapshot, err := o.runCommand(gameID, func(game *domain.Game) error {
		return game.AdminProceedToNextQuestion(adminID)
	})
	if err != nil {
		return err
	}

	switch snapshot.Status {
	case domain.StatusQuestionActive:
		o.timers.Register(gameID)
	case domain.StatusGameOver:
		o.timers.Unregister(gameID)
	}

	o.broadcaster.BroadcastState(gameID, snapshot)
	return nil
}

// AdminStartNextRound opens the next round's first question and re-arms the
// timer.
func (o *GameOrchestrator) AdminStartNextRound(gameID, adminID string) error {
	snapshot, err := o.runCommand(gameID, func(game *domain.Game) error {
		return game.AdminStartNextRound(adminID)
	})
	if err != nil {
		return err
	}

	o.timers.Register(gameID)
	o.broadcaster.BroadcastState(gameID, snapshot)
	return nil
}

// HandleGameTick applies one timer tick: decrement, persist, broadcast. Ticks
// against games without an active question change nothing. The returned status
// is read under the game's lock so the timer driver can base cleanup on it
// without touching shared state itself.
func (o *GameOrchestrator) HandleGameTick(gameID string) (domain.GameStatus, error) {
	lock := o.lockFor(gameID)
	lock.Lock()

	game, err := o.loadGame(gameID)
	if err != nil {
		lock.Unlock()
		return "", err
	}
	if game.Status != domain.StatusQuestionActive {
		status := game.Status
		lock.Unlock()
		return status, nil
	}

	game.DecrementQuestionTimer()
	o.games.Save(game)
	snapshot := buildSnapshot(game)
	lock.Unlock()

	o.broadcaster.BroadcastState(gameID, snapshot)
	return snapshot.Status, nil
}

// Snapshot produces the read-only state view of a game for arbitrary queries.
func (o *GameOrchestrator) Snapshot(gameID string) (GameSnapshot, error) {
	lock := o.lockFor(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, err := o.loadGame(gameID)
	if err != nil {
		return GameSnapshot{}, err
	}
	return buildSnapshot(game), nil
}

// runCommand wraps the lock/load/mutate/save/snapshot sequence shared by the
// admin commands.
func (o *GameOrchestrator) runCommand(gameID string, command func(*domain.Game) error) (GameSnapshot, error) {
	lock := o.lockFor(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, err := o.loadGame(gameID)
	if err != nil {
		return GameSnapshot{}, err
	}
	if err := command(game); err != nil {
		return GameSnapshot{}, err
	}
	o.games.Save(game)
	return buildSnapshot(game), nil
}
