package http

import (
	"sync"

	"github.com/Zuehlke/kwiz/internal/app"
)

// envelope is the typed frame sent to websocket clients.
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type subscriber struct {
	playerID string
	send     chan envelope
}

// Hub fans game snapshots and per-player acks out to websocket subscribers.
// It implements app.Broadcaster. Delivery is fire-and-forget: a slow client
// loses stale frames rather than blocking the rest.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe attaches a client to a game's update stream. playerID may be
// empty for spectators and admins; only player acks are filtered by it. The
// returned cancel must be called to avoid leaks.
func (h *Hub) Subscribe(gameID, playerID string) (*subscriber, func()) {
	sub := &subscriber{playerID: playerID, send: make(chan envelope, 16)}

	h.mu.Lock()
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[*subscriber]struct{})
	}
	h.subs[gameID][sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[gameID]; ok {
			if _, ok := set[sub]; ok {
				delete(set, sub)
				close(sub.send)
			}
			if len(set) == 0 {
				delete(h.subs, gameID)
			}
		}
		h.mu.Unlock()
	}
	return sub, cancel
}

// BroadcastState delivers a snapshot to every subscriber of the game.
func (h *Hub) BroadcastState(gameID string, snapshot app.GameSnapshot) {
	h.fanOut(gameID, envelope{Type: "gameState", Payload: snapshot}, "")
}

type ackPayload struct {
	QuestionID string         `json:"questionId"`
	Outcome    app.AckOutcome `json:"outcome"`
}

// SendPlayerAck delivers a submission outcome to the subscriptions of one
// player.
func (h *Hub) SendPlayerAck(gameID, playerID, questionID string, outcome app.AckOutcome) {
	h.fanOut(gameID, envelope{Type: "answerAck", Payload: ackPayload{QuestionID: questionID, Outcome: outcome}}, playerID)
}

func (h *Hub) fanOut(gameID string, msg envelope, onlyPlayerID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[gameID] {
		if onlyPlayerID != "" && sub.playerID != onlyPlayerID {
			continue
		}
		select {
		case sub.send <- msg:
		default:
			// Drop the oldest queued frame so broadcast never blocks on a
			// slow client.
			select {
			case <-sub.send:
			default:
			}
			select {
			case sub.send <- msg:
			default:
			}
		}
	}
}
