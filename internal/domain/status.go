package domain

// GameStatus tracks the overall state of a running game.
type GameStatus string

const (
	// StatusLobby means the game is waiting for the start command.
	StatusLobby GameStatus = "LOBBY"
	// StatusQuestionActive means a question is live, the timer is running,
	// and the game is accepting answers.
	StatusQuestionActive GameStatus = "QUESTION_ACTIVE"
	// StatusQuestionClosed means the timer ran out or the admin closed the
	// question; answers are no longer accepted.
	StatusQuestionClosed GameStatus = "QUESTION_CLOSED"
	// StatusRoundCompleted means the current round finished and the game is
	// waiting for the admin to start the next one.
	StatusRoundCompleted GameStatus = "ROUND_COMPLETED"
	// StatusGameOver is terminal.
	StatusGameOver GameStatus = "GAME_OVER"
)
