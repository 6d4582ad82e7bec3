package model

import "time"

type Speaker string

const (
	SpeakerUser        Speaker = "user"
	SpeakerAssistant   Speaker = "assistant"
	SpeakerSystemError Speaker = "system_error"
)

// ChatTurn is one entry of the chat history. Seq is the append order.
type ChatTurn struct {
	ID        string    `json:"id"`
	Seq       int       `json:"seq"`
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
