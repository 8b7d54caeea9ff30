package model

import "time"

type EventType string

const (
	TypeMessage EventType = "message"
	TypeError   EventType = "error"
)

// Message is one persisted direct message between two users. Records are
// append-only: nothing mutates a message after the store assigns its id and
// timestamp.
type Message struct {
	ID          int64     `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

// SendEvent is the client-to-server frame asking to deliver a message.
type SendEvent struct {
	Type        EventType `json:"type"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Text        string    `json:"text"`
}

// MessageEvent is the frame broadcast to every member of a room once a
// message has been persisted. The sender receives it too.
type MessageEvent struct {
	Type EventType `json:"type"`
	Message
}

// ErrorEvent is delivered to the offending connection only; other members
// of the room never see it.
type ErrorEvent struct {
	Type  EventType `json:"type"`
	Code  string    `json:"code"`
	Error string    `json:"error"`
}
