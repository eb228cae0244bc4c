package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func fmtInvalidState(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, msg)
}

// Game is the aggregate root for one running play-through of a quiz. It owns
// the players, the rounds copied in at start time, the full submission
// history, the question cursors, and the countdown state.
//
// Game itself is not safe for concurrent use; the orchestrator serializes all
// mutations per game id.
type Game struct {
	ID               string                   `json:"id"`
	QuizDefinitionID string                   `json:"quizDefinitionId"`
	AdminID          string                   `json:"adminId"`
	Players          map[string]*PlayerInGame `json:"players"`
	Rounds           []*Round                 `json:"rounds"`
	Submissions      []PlayerSubmission       `json:"submissions"`

	CurrentRoundIndex    int        `json:"currentRoundIndex"`
	CurrentQuestionIndex int        `json:"currentQuestionIndex"`
	RemainingSeconds     int        `json:"remainingSeconds"`
	QuestionStartTimeMs  int64      `json:"questionStartTime"`
	AcceptingAnswers     bool       `json:"acceptingAnswers"`
	Status               GameStatus `json:"status"`

	scoring ScoringPolicy
	now     func() time.Time
}

// NewGame creates a game in the lobby state, controlled by adminID.
func NewGame(quizDefinitionID, adminID string) *Game {
	return &Game{
		ID:               uuid.NewString(),
		QuizDefinitionID: quizDefinitionID,
		AdminID:          adminID,
		Players:          make(map[string]*PlayerInGame),
		Status:           StatusLobby,
		scoring:          TimeDecayScoring,
		now:              time.Now,
	}
}

// SetScoringPolicy replaces the default time-decay policy. Only effective
// before answers are accepted.
func (g *Game) SetScoringPolicy(policy ScoringPolicy) {
	g.scoring = policy
}

// SetClock is test-only; it pins the wall clock used for question start times
// and submission timestamps.
func (g *Game) SetClock(now func() time.Time) {
	g.now = now
}

func (g *Game) clock() func() time.Time {
	if g.now == nil {
		return time.Now
	}
	return g.now
}

func (g *Game) policy() ScoringPolicy {
	if g.scoring == nil {
		return TimeDecayScoring
	}
	return g.scoring
}

// CurrentRound returns the round under the cursor, or nil if the game has no
// rounds or the cursor ran past the end.
func (g *Game) CurrentRound() *Round {
	if g.CurrentRoundIndex < 0 || g.CurrentRoundIndex >= len(g.Rounds) {
		return nil
	}
	return g.Rounds[g.CurrentRoundIndex]
}

// CurrentQuestion returns the question under the cursors, or nil if none is
// resolvable.
func (g *Game) CurrentQuestion() *Question {
	round := g.CurrentRound()
	if round == nil || g.CurrentQuestionIndex < 0 || g.CurrentQuestionIndex >= len(round.Questions) {
		return nil
	}
	return &round.Questions[g.CurrentQuestionIndex]
}

// AddPlayer registers a player while the game is still in the lobby.
func (g *Game) AddPlayer(playerID, displayName string) error {
	if g.Status != StatusLobby {
		return fmtInvalidState("cannot add player after game has started")
	}
	if _, exists := g.Players[playerID]; exists {
		return fmt.Errorf("%w: player %q already exists in this game", ErrInvalidArgument, playerID)
	}
	g.Players[playerID] = &PlayerInGame{PlayerID: playerID, DisplayName: displayName}
	return nil
}

// Start leaves the lobby: copies the given rounds in, resets the cursors, and
// opens the first question. Requires at least one round and one player.
func (g *Game) Start(rounds []*Round) error {
	if g.Status != StatusLobby {
		return fmtInvalidState("game has already started")
	}
	if len(rounds) == 0 {
		return fmtInvalidState("cannot start game without rounds")
	}
	if len(g.Players) == 0 {
		return fmtInvalidState("cannot start game without players")
	}
	// Validated up front so a failed start leaves the game untouched.
	if len(rounds[0].Questions) == 0 {
		return fmtInvalidState("cannot start game with an empty first round")
	}
	if rounds[0].Completed {
		return fmtInvalidState("cannot start game with a completed first round")
	}

	g.Rounds = make([]*Round, 0, len(rounds))
	for _, round := range rounds {
		g.Rounds = append(g.Rounds, round.clone())
	}
	g.CurrentRoundIndex = 0
	g.CurrentQuestionIndex = 0

	return g.startCurrentQuestion()
}

// startCurrentQuestion arms the countdown for the question under the cursors
// and opens it for answers. Unreachable states (no resolvable question) are
// reported rather than panicking.
func (g *Game) startCurrentQuestion() error {
	question := g.CurrentQuestion()
	if question == nil {
		return fmtInvalidState("no current question available")
	}

	// Activation can fail, so it runs before any countdown state changes.
	round := g.CurrentRound()
	if !round.Active {
		if err := round.Activate(); err != nil {
			return err
		}
	}

	g.RemainingSeconds = question.TimeLimit
	g.AcceptingAnswers = true
	g.Status = StatusQuestionActive
	g.QuestionStartTimeMs = g.clock()().UnixMilli()
	return nil
}

// AcceptPlayerAnswer records an answer for the current question. Duplicate
// submissions per (player, question) are rejected. A correct answer earns
// points through the scoring policy based on time elapsed since the question
// opened. Status is never changed here.
func (g *Game) AcceptPlayerAnswer(playerID, questionID, answerText string) (PlayerSubmission, error) {
	if !g.AcceptingAnswers {
		return PlayerSubmission{}, fmtInvalidState("game is not currently accepting answers")
	}

	player, ok := g.Players[playerID]
	if !ok {
		return PlayerSubmission{}, fmt.Errorf("%w: player %q does not exist in this game", ErrNotFound, playerID)
	}

	question := g.CurrentQuestion()
	if question == nil || question.ID != questionID {
		return PlayerSubmission{}, fmt.Errorf("%w: question %q is not the current question", ErrInvalidArgument, questionID)
	}

	for _, submission := range g.Submissions {
		if submission.PlayerID == playerID && submission.QuestionID == questionID {
			return PlayerSubmission{}, fmtInvalidState("player has already submitted an answer for this question")
		}
	}

	submittedAt := g.clock()().UnixMilli()
	submission := PlayerSubmission{
		PlayerID:      playerID,
		QuestionID:    questionID,
		AnswerText:    answerText,
		SubmittedAtMs: submittedAt,
		Correct:       question.IsCorrectAnswer(answerText),
	}
	g.Submissions = append(g.Submissions, submission)

	if submission.Correct {
		elapsed := submittedAt - g.QuestionStartTimeMs
		player.AddPoints(g.policy()(elapsed, question.TimeLimit))
	}
	return submission, nil
}

// DecrementQuestionTimer applies one tick. No-op unless a question is active;
// at zero the question closes and further ticks leave the state unchanged.
func (g *Game) DecrementQuestionTimer() {
	if g.Status != StatusQuestionActive {
		return
	}
	if g.RemainingSeconds <= 0 {
		return
	}
	g.RemainingSeconds--
	if g.RemainingSeconds == 0 {
		g.AcceptingAnswers = false
		g.Status = StatusQuestionClosed
	}
}

// AdminCloseCurrentQuestion forces immediate closure of the active question,
// identical to the timer reaching zero.
func (g *Game) AdminCloseCurrentQuestion(adminID string) error {
	if err := g.requireAdmin(adminID, "close the current question"); err != nil {
		return err
	}
	if g.Status != StatusQuestionActive {
		return fmtInvalidState("no active question to close")
	}
	g.AcceptingAnswers = false
	g.Status = StatusQuestionClosed
	return nil
}

// AdminProceedToNextQuestion moves past a closed question. Within a round it
// opens the next question directly; at the end of a round it completes the
// round and either waits in ROUND_COMPLETED or, after the last round, ends the
// game.
func (g *Game) AdminProceedToNextQuestion(adminID string) error {
	if err := g.requireAdmin(adminID, "proceed to the next question"); err != nil {
		return err
	}
	if g.Status != StatusQuestionClosed {
		return fmtInvalidState("cannot proceed to next question until current question is closed")
	}

	round := g.CurrentRound()
	if g.CurrentQuestionIndex >= len(round.Questions)-1 {
		if err := round.Complete(); err != nil {
			return err
		}

		g.CurrentRoundIndex++
		g.CurrentQuestionIndex = 0

		if g.CurrentRoundIndex >= len(g.Rounds) {
			g.Status = StatusGameOver
		} else {
			g.Status = StatusRoundCompleted
		}
		return nil
	}

	g.CurrentQuestionIndex++
	return g.startCurrentQuestion()
}

// AdminStartNextRound opens the first question of the next round once the
// previous round has completed.
func (g *Game) AdminStartNextRound(adminID string) error {
	if err := g.requireAdmin(adminID, "start the next round"); err != nil {
		return err
	}
	if g.Status != StatusRoundCompleted {
		return fmtInvalidState("cannot start next round until current round is completed")
	}
	return g.startCurrentQuestion()
}

func (g *Game) requireAdmin(adminID, action string) error {
	if g.AdminID != adminID {
		return fmt.Errorf("%w: only the game admin can %s", ErrInvalidArgument, action)
	}
	return nil
}

// SubmissionsForQuestion returns the submissions recorded for one question, in
// submission order.
func (g *Game) SubmissionsForQuestion(questionID string) []PlayerSubmission {
	var result []PlayerSubmission
	for _, submission := range g.Submissions {
		if submission.QuestionID == questionID {
			result = append(result, submission)
		}
	}
	return result
}
