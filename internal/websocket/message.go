package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	// Client to Server
	MessageTypePing MessageType = "PING"

	// Server to Client
	MessageTypeConnected    MessageType = "CONNECTED"
	MessageTypePong         MessageType = "PONG"
	MessageTypeNotesChanged MessageType = "NOTES_CHANGED"
	MessageTypeError        MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	msg := &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
	}
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = payloadBytes
	}
	return msg, nil
}

// Server to Client payloads

type ConnectedPayload struct {
	UserID string `json:"userId"`
}

// NotesChangedPayload tells a client to re-fetch its notes.
type NotesChangedPayload struct {
	Reason  string   `json:"reason"`
	NoteIDs []string `json:"noteIds"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
