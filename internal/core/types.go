package core

import "time"

const (
	AppName    = "MediVise"
	AppVersion = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type StoredMessage struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

type Document struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	FullText  string    `json:"full_text"`
	CreatedAt time.Time `json:"created_at"`
}
