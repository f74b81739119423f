package models

import "time"

// ChatRole identifies who wrote a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

func (r ChatRole) Valid() bool {
	return r == ChatRoleUser || r == ChatRoleAssistant
}

// ChatThread groups a conversation with the AI mentor. UserID is the partition key.
type ChatThread struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	MessageCount int       `json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ChatMessage is one turn in a thread. ThreadID is the partition key.
type ChatMessage struct {
	ID       string   `json:"id"`
	ThreadID string   `json:"threadId"`
	UserID   string   `json:"userId"`
	Role     ChatRole `json:"role"`
	Content  string   `json:"content"`

	// Model names the mentor persona that produced an assistant message.
	Model string `json:"model,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}
