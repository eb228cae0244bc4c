package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/Zuehlke/kwiz/internal/app"
	"github.com/gorilla/websocket"
)

// WSHandler upgrades HTTP requests to websockets and wires them into the game
// orchestrator: state pushes and acks flow out through the hub, player and
// admin commands flow in as typed frames.
type WSHandler struct {
	orchestrator *app.GameOrchestrator
	hub          *Hub
	upgrader     websocket.Upgrader
}

func NewWSHandler(orchestrator *app.GameOrchestrator, hub *Hub) *WSHandler {
	return &WSHandler{
		orchestrator: orchestrator,
		hub:          hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	AnswerText string `json:"answerText"`
}

type adminPayload struct {
	AdminID string `json:"adminId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS handles one live connection to a game. Players connect with
// gameId+playerId; the admin connects with gameId only and authorizes each
// command with its adminId.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	playerID := r.URL.Query().Get("playerId")
	if gameID == "" {
		http.Error(w, "missing gameId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	snapshot, err := h.orchestrator.Snapshot(gameID)
	if err != nil {
		_ = conn.WriteJSON(envelope{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	sub, cancel := h.hub.Subscribe(gameID, playerID)
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range sub.send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	sub.send <- envelope{Type: "gameState", Payload: snapshot}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(sub, gameID, playerID, inbound)
	}

	cancel()
	<-writerDone
}

func (h *WSHandler) dispatch(sub *subscriber, gameID, playerID string, inbound inboundMessage) {
	switch inbound.Type {
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.sendError(sub, "invalid answer payload")
			return
		}
		// Rejections are acked to the player by the orchestrator; nothing
		// more to do here.
		_ = h.orchestrator.SubmitPlayerAnswer(gameID, playerID, payload.QuestionID, payload.AnswerText)
	case "closeQuestion":
		h.adminCommand(sub, inbound.Payload, func(adminID string) error {
			return h.orchestrator.AdminCloseCurrentQuestion(gameID, adminID)
		})
	case "nextQuestion":
		h.adminCommand(sub, inbound.Payload, func(adminID string) error {
			return h.orchestrator.AdminAdvanceToNextQuestion(gameID, adminID)
		})
	case "nextRound":
		h.adminCommand(sub, inbound.Payload, func(adminID string) error {
			return h.orchestrator.AdminStartNextRound(gameID, adminID)
		})
	default:
		h.sendError(sub, "unsupported message type")
	}
}

func (h *WSHandler) adminCommand(sub *subscriber, raw json.RawMessage, command func(adminID string) error) {
	var payload adminPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.sendError(sub, "invalid admin payload")
		return
	}
	if err := command(payload.AdminID); err != nil {
		h.sendError(sub, err.Error())
	}
}

func (h *WSHandler) sendError(sub *subscriber, message string) {
	select {
	case sub.send <- envelope{Type: "error", Payload: errorPayload{Message: message}}:
	default:
	}
}
