package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgFieldChanged     MessageType = "field_changed"
	MsgSessionSubmitted MessageType = "session_submitted"
	MsgSessionDiscarded MessageType = "session_discarded"
	MsgViewerJoined     MessageType = "viewer_joined"
	MsgViewerLeft       MessageType = "viewer_left"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection represents a WebSocket connection watching one session
type Connection struct {
	SessionID   string
	ClinicianID string
	Send        chan []byte
	Hub         *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	SessionID string
	Message   *Message
	// Close disconnects the session's viewers instead of sending Message.
	Close bool
}

// Hub fans session events out to every connection watching that session.
// Several clinicians (or tabs) may watch the same report.
type Hub struct {
	sessions map[string]map[*Connection]bool
	mu       sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}

	logger *slog.Logger
}

// NewHub creates a new WebSocket hub and starts its event loop
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		sessions:   make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			return

		case conn := <-h.register:
			h.mu.Lock()
			conns := h.sessions[conn.SessionID]
			if conns == nil {
				conns = make(map[*Connection]bool)
				h.sessions[conn.SessionID] = conns
			}
			conns[conn] = true
			h.notify(conn.SessionID, MsgViewerJoined, conn.ClinicianID)
			h.mu.Unlock()
			h.logger.Info("ws viewer connected", "session_id", conn.SessionID, "clinician_id", conn.ClinicianID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.sessions[conn.SessionID]; ok && conns[conn] {
				delete(conns, conn)
				close(conn.Send)
				if len(conns) == 0 {
					delete(h.sessions, conn.SessionID)
				} else {
					h.notify(conn.SessionID, MsgViewerLeft, conn.ClinicianID)
				}
				h.logger.Info("ws viewer disconnected", "session_id", conn.SessionID)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			if msg.Close {
				h.closeSession(msg.SessionID)
				continue
			}
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.logger.Error("ws marshal failed", "session_id", msg.SessionID, "error", err)
				continue
			}
			h.mu.RLock()
			for conn := range h.sessions[msg.SessionID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) closeSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.sessions[sessionID] {
		close(conn.Send)
	}
	delete(h.sessions, sessionID)
	h.logger.Info("ws session closed", "session_id", sessionID)
}

// notify must be called with h.mu held.
func (h *Hub) notify(sessionID string, msgType MessageType, clinicianID string) {
	payload, _ := json.Marshal(map[string]string{"clinicianId": clinicianID})
	data, _ := json.Marshal(&Message{Type: msgType, Payload: payload})
	for conn := range h.sessions[sessionID] {
		select {
		case conn.Send <- data:
		default:
		}
	}
}

// Register adds a connection. It returns false if the hub is closed.
func (h *Hub) Register(conn *Connection) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// BroadcastToSession sends a message to every viewer of a session (implements service.Broadcaster)
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("ws payload marshal failed", "session_id", sessionID, "error", err)
		return
	}
	h.broadcast <- &BroadcastMessage{
		SessionID: sessionID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// CloseSession disconnects every viewer of a session after the messages
// already queued for it (implements service.Broadcaster)
func (h *Hub) CloseSession(sessionID string) {
	h.broadcast <- &BroadcastMessage{SessionID: sessionID, Close: true}
}

// Viewers returns the number of connections watching a session.
func (h *Hub) Viewers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// Close stops the event loop.
func (h *Hub) Close() {
	close(h.done)
}
