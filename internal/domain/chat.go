package domain

import (
	"fmt"
	"time"
)

type MessageKind string

const (
	// KindBroadcast is visible to everyone whatever its addressee.
	KindBroadcast MessageKind = "message"
	KindPrivate   MessageKind = "private_message"
	// KindStatus marks join and leave notices written by the system.
	KindStatus MessageKind = "status"
)

const (
	DefaultBroadcastTarget = "Todos"

	StatusJoinedText = "entra na sala..."
	StatusLeftText   = "sai da sala..."
)

// ParseMessageKind accepts only the kinds a participant may send.
func ParseMessageKind(s string) (MessageKind, error) {
	switch MessageKind(s) {
	case KindBroadcast, KindPrivate:
		return MessageKind(s), nil
	default:
		return "", fmt.Errorf("unknown message kind %q", s)
	}
}

// Message is an immutable chat log entry. ID is the log position assigned
// by the store on append and breaks ties between equal SentAt values.
type Message struct {
	ID     int64       `json:"id"`
	From   string      `json:"from"`
	To     string      `json:"to"`
	Text   string      `json:"text"`
	Kind   MessageKind `json:"type"`
	SentAt time.Time   `json:"sentAt"`
}

func NewStatusMessage(name, text, broadcastTarget string) *Message {
	return &Message{
		From: name,
		To:   broadcastTarget,
		Text: text,
		Kind: KindStatus,
	}
}
