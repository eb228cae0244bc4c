package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Zuehlke/kwiz/internal/domain"
)

// GameStarter starts a game from a quiz definition. Implemented by the
// orchestrator; an interface here keeps the setup engine decoupled from it.
type GameStarter interface {
	CreateAndStartGame(ctx context.Context, quizID, adminID string) (string, error)
}

// QuizEngine handles pre-game quiz setup: creating quizzes, joining players,
// building rounds and questions, and handing a finished quiz off to the
// orchestrator. It doubles as the in-memory QuizSource for game creation.
type QuizEngine struct {
	mu      sync.RWMutex
	quizzes map[string]*domain.Quiz
	starter GameStarter
}

// NewQuizEngine creates an empty engine.
func NewQuizEngine() *QuizEngine {
	return &QuizEngine{quizzes: make(map[string]*domain.Quiz)}
}

// SetGameStarter attaches the collaborator that turns a started quiz into a
// running game. Must be called before StartQuiz.
func (e *QuizEngine) SetGameStarter(starter GameStarter) {
	e.starter = starter
}

// CreateQuiz registers a new quiz with a default first round.
func (e *QuizEngine) CreateQuiz(quizID, name string, maxPlayers int) (*domain.Quiz, error) {
	if strings.TrimSpace(quizID) == "" {
		return nil, fmt.Errorf("%w: quiz id cannot be empty", domain.ErrInvalidArgument)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.quizzes[quizID]; exists {
		return nil, fmt.Errorf("%w: quiz %q already exists", domain.ErrInvalidArgument, quizID)
	}
	quiz := domain.NewQuiz(quizID, name, maxPlayers)
	if err := quiz.AddRound(domain.NewRound("Default Round")); err != nil {
		return nil, err
	}
	e.quizzes[quizID] = quiz
	return quiz, nil
}

// GetQuiz implements QuizSource over the engine's own quizzes.
func (e *QuizEngine) GetQuiz(_ context.Context, quizID string) (*domain.Quiz, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	quiz, ok := e.quizzes[quizID]
	if !ok {
		return nil, fmt.Errorf("%w: no quiz with id %q", domain.ErrNotFound, quizID)
	}
	return quiz, nil
}

// Quizzes lists all quizzes known to the engine.
func (e *QuizEngine) Quizzes() []*domain.Quiz {
	e.mu.RLock()
	defer e.mu.RUnlock()
	result := make([]*domain.Quiz, 0, len(e.quizzes))
	for _, quiz := range e.quizzes {
		result = append(result, quiz)
	}
	return result
}

// AddPlayer joins a player to a quiz during setup.
func (e *QuizEngine) AddPlayer(quizID, playerName string) (domain.QuizPlayer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	quiz, ok := e.quizzes[quizID]
	if !ok {
		return domain.QuizPlayer{}, fmt.Errorf("%w: no quiz with id %q", domain.ErrNotFound, quizID)
	}
	return quiz.AddPlayer(playerName)
}

// AddRound appends a named round to a quiz during setup.
func (e *QuizEngine) AddRound(quizID, roundName string) (*domain.Round, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	quiz, ok := e.quizzes[quizID]
	if !ok {
		return nil, fmt.Errorf("%w: no quiz with id %q", domain.ErrNotFound, quizID)
	}
	round := domain.NewRound(roundName)
	if err := quiz.AddRound(round); err != nil {
		return nil, err
	}
	return round, nil
}

// AddQuestion appends an admin-authored question to a round.
func (e *QuizEngine) AddQuestion(quizID, roundID, text string, correctAnswers []string, timeLimit int) (domain.Question, error) {
	return e.addQuestion(quizID, roundID, text, correctAnswers, timeLimit, "")
}

// SubmitPlayerQuestion lets a rostered player contribute a question before the
// quiz starts. The question carries the player's id as its submitter.
func (e *QuizEngine) SubmitPlayerQuestion(quizID, playerID, roundID, text string, correctAnswers []string, timeLimit int) (domain.Question, error) {
	if playerID == "" {
		return domain.Question{}, fmt.Errorf("%w: player id cannot be empty", domain.ErrInvalidArgument)
	}
	return e.addQuestion(quizID, roundID, text, correctAnswers, timeLimit, playerID)
}

func (e *QuizEngine) addQuestion(quizID, roundID, text string, correctAnswers []string, timeLimit int, submitterID string) (domain.Question, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	quiz, ok := e.quizzes[quizID]
	if !ok {
		return domain.Question{}, fmt.Errorf("%w: no quiz with id %q", domain.ErrNotFound, quizID)
	}
	if quiz.Started {
		return domain.Question{}, fmt.Errorf("%w: cannot add questions after the quiz has started", domain.ErrInvalidState)
	}
	if submitterID != "" && !quiz.HasPlayer(submitterID) {
		return domain.Question{}, fmt.Errorf("%w: no player with id %q", domain.ErrNotFound, submitterID)
	}
	round, err := quiz.RoundByID(roundID)
	if err != nil {
		return domain.Question{}, err
	}
	question := domain.NewQuestion(text, correctAnswers, timeLimit, submitterID)
	if err := round.AddQuestion(question); err != nil {
		return domain.Question{}, err
	}
	return question, nil
}

// QuestionWithRound pairs a question with the round it belongs to.
type QuestionWithRound struct {
	Question  domain.Question `json:"question"`
	RoundID   string          `json:"roundId"`
	RoundName string          `json:"roundName"`
}

// QuestionsSubmittedBy lists the questions a player contributed across all
// rounds of a quiz.
func (e *QuizEngine) QuestionsSubmittedBy(quizID, playerID string) ([]QuestionWithRound, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	quiz, ok := e.quizzes[quizID]
	if !ok {
		return nil, fmt.Errorf("%w: no quiz with id %q", domain.ErrNotFound, quizID)
	}
	if !quiz.HasPlayer(playerID) {
		return nil, fmt.Errorf("%w: no player with id %q", domain.ErrNotFound, playerID)
	}

	var result []QuestionWithRound
	for _, round := range quiz.Rounds {
		for _, question := range round.Questions {
			if question.SubmitterID == playerID {
				result = append(result, QuestionWithRound{
					Question:  question,
					RoundID:   round.ID,
					RoundName: round.Name,
				})
			}
		}
	}
	return result, nil
}

// StartQuiz freezes the quiz and starts a game from it, returning the new
// game's id. A failed game start unfreezes the quiz so it can be fixed up and
// started again.
func (e *QuizEngine) StartQuiz(ctx context.Context, quizID, adminID string) (string, error) {
	if e.starter == nil {
		return "", fmt.Errorf("%w: no game starter attached", domain.ErrInvalidState)
	}

	e.mu.Lock()
	quiz, ok := e.quizzes[quizID]
	if !ok {
		e.mu.Unlock()
		return "", fmt.Errorf("%w: no quiz with id %q", domain.ErrNotFound, quizID)
	}
	if err := quiz.Start(); err != nil {
		e.mu.Unlock()
		return "", err
	}
	e.mu.Unlock()

	gameID, err := e.starter.CreateAndStartGame(ctx, quizID, adminID)
	if err != nil {
		e.mu.Lock()
		quiz.Started = false
		e.mu.Unlock()
		return "", err
	}
	return gameID, nil
}

// EndQuiz marks a started quiz as finished.
func (e *QuizEngine) EndQuiz(quizID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	quiz, ok := e.quizzes[quizID]
	if !ok {
		return fmt.Errorf("%w: no quiz with id %q", domain.ErrNotFound, quizID)
	}
	return quiz.End()
}
