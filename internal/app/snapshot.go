package app

import (
	"sort"

	"github.com/Zuehlke/kwiz/internal/domain"
)

// PlayerSnapshot is the roster view carried in every snapshot.
type PlayerSnapshot struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
}

// PlayerAnswer reports that a player answered the current question and how
// fast, without leaking the answer text while the question is open.
type PlayerAnswer struct {
	PlayerID     string `json:"playerId"`
	PlayerName   string `json:"playerName"`
	AnswerTimeMs int64  `json:"answerTimeMs"`
}

// GameSnapshot is the read-only state view broadcast to clients and served on
// queries. Nullable fields are pointers so absent values serialize as null.
type GameSnapshot struct {
	GameID              string            `json:"gameId"`
	QuizDefinitionID    string            `json:"quizDefinitionId"`
	Status              domain.GameStatus `json:"status"`
	CurrentRoundID      *string           `json:"currentRoundId"`
	CurrentRoundName    *string           `json:"currentRoundName"`
	CurrentQuestionID   *string           `json:"currentQuestionId"`
	CurrentQuestionText *string           `json:"currentQuestionText"`
	RemainingSeconds    int               `json:"remainingSeconds"`
	AcceptingAnswers    bool              `json:"acceptingAnswers"`
	Players             []PlayerSnapshot  `json:"players"`
	PlayersAnswered     int               `json:"playersAnswered"`
	PlayerAnswers       []PlayerAnswer    `json:"playerAnswers"`
	FastestAnswerTime   *int64            `json:"fastestAnswerTime"` // whole seconds
	CorrectAnswer       *string           `json:"correctAnswer"`
}

const noCorrectAnswerDefined = "No correct answer defined"

// buildSnapshot captures a game's state. Must be called while holding the
// game's lock; the returned value is detached and safe to hand out.
func buildSnapshot(game *domain.Game) GameSnapshot {
	snapshot := GameSnapshot{
		GameID:           game.ID,
		QuizDefinitionID: game.QuizDefinitionID,
		Status:           game.Status,
		RemainingSeconds: game.RemainingSeconds,
		AcceptingAnswers: game.AcceptingAnswers,
		Players:          make([]PlayerSnapshot, 0, len(game.Players)),
		PlayerAnswers:    []PlayerAnswer{},
	}

	for _, player := range game.Players {
		snapshot.Players = append(snapshot.Players, PlayerSnapshot{
			PlayerID:    player.PlayerID,
			DisplayName: player.DisplayName,
			Score:       player.Score,
		})
	}
	sort.Slice(snapshot.Players, func(i, j int) bool {
		if snapshot.Players[i].Score != snapshot.Players[j].Score {
			return snapshot.Players[i].Score > snapshot.Players[j].Score
		}
		return snapshot.Players[i].DisplayName < snapshot.Players[j].DisplayName
	})

	if round := game.CurrentRound(); round != nil {
		roundID, roundName := round.ID, round.Name
		snapshot.CurrentRoundID = &roundID
		snapshot.CurrentRoundName = &roundName
	}

	question := game.CurrentQuestion()
	if question == nil {
		return snapshot
	}
	questionID, questionText := question.ID, question.Text
	snapshot.CurrentQuestionID = &questionID
	snapshot.CurrentQuestionText = &questionText

	submissions := game.SubmissionsForQuestion(question.ID)
	snapshot.PlayersAnswered = len(submissions)

	for _, submission := range submissions {
		name := "Unknown"
		if player, ok := game.Players[submission.PlayerID]; ok {
			name = player.DisplayName
		}
		snapshot.PlayerAnswers = append(snapshot.PlayerAnswers, PlayerAnswer{
			PlayerID:     submission.PlayerID,
			PlayerName:   name,
			AnswerTimeMs: submission.SubmittedAtMs - game.QuestionStartTimeMs,
		})
	}

	var fastest *int64
	for _, submission := range submissions {
		if !submission.Correct {
			continue
		}
		elapsed := submission.SubmittedAtMs - game.QuestionStartTimeMs
		if fastest == nil || elapsed < *fastest {
			fastest = &elapsed
		}
	}
	if fastest != nil {
		fastestSeconds := *fastest / 1000
		snapshot.FastestAnswerTime = &fastestSeconds
	}

	// The correct answer stays hidden until the question closed or every
	// player answered.
	if !game.AcceptingAnswers || snapshot.PlayersAnswered == len(game.Players) {
		answer := noCorrectAnswerDefined
		if len(question.CorrectAnswers) > 0 {
			answer = question.CorrectAnswers[0]
		}
		snapshot.CorrectAnswer = &answer
	}

	return snapshot
}
