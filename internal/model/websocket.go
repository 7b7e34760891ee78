package model

// WebSocket message types
const (
	WSMessageTypeSnapshot = "snapshot"
	WSMessageTypePing     = "ping"
	WSMessageTypePong     = "pong"
)

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}

// WSSnapshotMessage carries the full state of one session
type WSSnapshotMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	Session   interface{} `json:"session"`
}
