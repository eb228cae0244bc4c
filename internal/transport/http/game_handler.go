package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Zuehlke/kwiz/internal/app"
	"github.com/Zuehlke/kwiz/internal/domain"
)

// GameHandler exposes the thin REST surface: quiz setup, game creation, and
// snapshot queries. The live path is the websocket handler.
type GameHandler struct {
	engine       *app.QuizEngine
	orchestrator *app.GameOrchestrator
}

func NewGameHandler(engine *app.QuizEngine, orchestrator *app.GameOrchestrator) *GameHandler {
	return &GameHandler{engine: engine, orchestrator: orchestrator}
}

// Register attaches all routes to the mux.
func (h *GameHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /quizzes", h.createQuiz)
	mux.HandleFunc("GET /quizzes/{quizID}", h.getQuiz)
	mux.HandleFunc("POST /quizzes/{quizID}/players", h.addPlayer)
	mux.HandleFunc("POST /quizzes/{quizID}/rounds", h.addRound)
	mux.HandleFunc("POST /quizzes/{quizID}/rounds/{roundID}/questions", h.addQuestion)
	mux.HandleFunc("GET /quizzes/{quizID}/players/{playerID}/questions", h.questionsSubmittedBy)
	mux.HandleFunc("POST /quizzes/{quizID}/start", h.startQuiz)
	mux.HandleFunc("POST /games", h.createGame)
	mux.HandleFunc("GET /games/{gameID}", h.getGame)
}

func (h *GameHandler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		MaxPlayers int    `json:"maxPlayers"`
	}
	if !decode(w, r, &req) {
		return
	}
	quiz, err := h.engine.CreateQuiz(req.ID, req.Name, req.MaxPlayers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *GameHandler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.engine.GetQuiz(r.Context(), r.PathValue("quizID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *GameHandler) addPlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	player, err := h.engine.AddPlayer(r.PathValue("quizID"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

func (h *GameHandler) addRound(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	round, err := h.engine.AddRound(r.PathValue("quizID"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, round)
}

func (h *GameHandler) addQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text           string   `json:"text"`
		CorrectAnswers []string `json:"correctAnswers"`
		TimeLimit      int      `json:"timeLimit"`
		SubmitterID    string   `json:"submitterId"`
	}
	if !decode(w, r, &req) {
		return
	}

	quizID := r.PathValue("quizID")
	roundID := r.PathValue("roundID")
	var question domain.Question
	var err error
	if req.SubmitterID != "" {
		question, err = h.engine.SubmitPlayerQuestion(quizID, req.SubmitterID, roundID, req.Text, req.CorrectAnswers, req.TimeLimit)
	} else {
		question, err = h.engine.AddQuestion(quizID, roundID, req.Text, req.CorrectAnswers, req.TimeLimit)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

func (h *GameHandler) questionsSubmittedBy(w http.ResponseWriter, r *http.Request) {
	questions, err := h.engine.QuestionsSubmittedBy(r.PathValue("quizID"), r.PathValue("playerID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *GameHandler) startQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminID string `json:"adminId"`
	}
	if !decode(w, r, &req) {
		return
	}
	gameID, err := h.engine.StartQuiz(r.Context(), r.PathValue("quizID"), req.AdminID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"gameId": gameID})
}

func (h *GameHandler) createGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuizID  string `json:"quizId"`
		AdminID string `json:"adminId"`
	}
	if !decode(w, r, &req) {
		return
	}
	gameID, err := h.orchestrator.CreateAndStartGame(r.Context(), req.QuizID, req.AdminID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"gameId": gameID})
}

func (h *GameHandler) getGame(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.orchestrator.Snapshot(r.PathValue("gameID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidState):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
