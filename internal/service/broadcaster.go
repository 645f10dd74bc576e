package service

// Session event types pushed to websocket subscribers.
const (
	MsgFieldChanged     = "field_changed"
	MsgSessionSubmitted = "session_submitted"
	MsgSessionDiscarded = "session_discarded"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
	CloseSession(sessionID string)
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastToSession(string, string, interface{}) {}
func (noopBroadcaster) CloseSession(string)                            {}
