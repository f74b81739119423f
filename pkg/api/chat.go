package api

import "github.com/mptwarrior/warrior/internal/models"

type CreateThreadRequest struct {
	Title string `json:"title,omitempty"`
}

type ThreadResponse struct {
	Thread *models.ChatThread `json:"thread"`
}

type ListThreadsRequest struct {
	// Limit defaults to 20.
	Limit int `json:"limit,omitempty"`
}

type ListThreadsResponse struct {
	Threads []*models.ChatThread `json:"threads"`
}

type GetThreadRequest struct {
	ThreadID string `json:"threadId"`
	// LastN keeps only the most recent messages when positive.
	LastN int `json:"lastN,omitempty"`
}

type GetThreadResponse struct {
	Thread   *models.ChatThread    `json:"thread"`
	Messages []*models.ChatMessage `json:"messages"`
}

type SaveMessageRequest struct {
	ThreadID string          `json:"threadId"`
	Role     models.ChatRole `json:"role"`
	Content  string          `json:"content"`
	Model    string          `json:"model,omitempty"`
}

type SaveMessageResponse struct {
	Message *models.ChatMessage `json:"message"`
	Thread  *models.ChatThread  `json:"thread"`
}

type DeleteThreadRequest struct {
	ThreadID string `json:"threadId"`
}

type DeleteThreadResponse struct{}

type SearchMessagesRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type SearchMessagesResponse struct {
	Messages []*models.ChatMessage `json:"messages"`
}
