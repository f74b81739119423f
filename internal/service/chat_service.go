package service

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mptwarrior/warrior/internal/middleware"
	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
	"github.com/mptwarrior/warrior/pkg/api"
)

const (
	defaultThreadLimit = 20
	maxThreadLimit     = 100
	defaultSearchLimit = 50
	maxTitleLength     = 60
	defaultThreadTitle = "New conversation"
)

// ChatService stores AI mentor conversations. Threads are only visible to
// the user who created them.
type ChatService struct {
	store storage.ChatStore
	now   func() time.Time
}

func NewChatService(store storage.ChatStore) *ChatService {
	return &ChatService{store: store, now: time.Now}
}

func (s *ChatService) CreateThread(ctx context.Context, req *connect.Request[api.CreateThreadRequest]) (*connect.Response[api.ThreadResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	thread := &models.ChatThread{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     strings.TrimSpace(req.Msg.Title),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateThread(ctx, thread); err != nil {
		slog.Error("CreateThread failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}
	slog.Info("Thread created", "user_id", userID, "thread_id", thread.ID)
	return connect.NewResponse(&api.ThreadResponse{Thread: thread}), nil
}

// ListThreads returns the caller's threads, most recently active first.
func (s *ChatService) ListThreads(ctx context.Context, req *connect.Request[api.ListThreadsRequest]) (*connect.Response[api.ListThreadsResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	limit := clampLimit(req.Msg.Limit, defaultThreadLimit, maxThreadLimit)

	threads, err := s.store.ListThreads(ctx, userID, limit)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListThreadsResponse{Threads: threads}), nil
}

func (s *ChatService) GetThread(ctx context.Context, req *connect.Request[api.GetThreadRequest]) (*connect.Response[api.GetThreadResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ThreadID == "" {
		return nil, invalidArgument("threadId is required")
	}

	thread, err := s.store.GetThread(ctx, userID, req.Msg.ThreadID)
	if err != nil {
		return nil, toConnectError(err)
	}
	messages, err := s.store.ListMessages(ctx, thread.ID, req.Msg.LastN)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetThreadResponse{Thread: thread, Messages: messages}), nil
}

// SaveMessage appends a message to one of the caller's threads.
func (s *ChatService) SaveMessage(ctx context.Context, req *connect.Request[api.SaveMessageRequest]) (*connect.Response[api.SaveMessageResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	content := strings.TrimSpace(msg.Content)
	switch {
	case msg.ThreadID == "":
		return nil, invalidArgument("threadId is required")
	case !msg.Role.Valid():
		return nil, invalidArgument("role must be user or assistant")
	case content == "":
		return nil, invalidArgument("content is required")
	}

	thread, err := s.store.GetThread(ctx, userID, msg.ThreadID)
	if err != nil {
		return nil, toConnectError(err)
	}

	now := s.now().UTC()
	message := &models.ChatMessage{
		ID:        uuid.New().String(),
		ThreadID:  thread.ID,
		UserID:    userID,
		Role:      msg.Role,
		Content:   content,
		Model:     msg.Model,
		CreatedAt: now,
	}
	if err := s.store.CreateMessage(ctx, message); err != nil {
		slog.Error("SaveMessage failed", "user_id", userID, "thread_id", thread.ID, "error", err)
		return nil, toConnectError(err)
	}

	thread.MessageCount++
	thread.UpdatedAt = now
	if thread.Title == "" && msg.Role == models.ChatRoleUser {
		thread.Title = titleFrom(content)
	}
	if err := s.store.UpdateThread(ctx, thread); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SaveMessageResponse{Message: message, Thread: thread}), nil
}

func (s *ChatService) DeleteThread(ctx context.Context, req *connect.Request[api.DeleteThreadRequest]) (*connect.Response[api.DeleteThreadResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ThreadID == "" {
		return nil, invalidArgument("threadId is required")
	}
	if err := s.store.DeleteThread(ctx, userID, req.Msg.ThreadID); err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Thread deleted", "user_id", userID, "thread_id", req.Msg.ThreadID)
	return connect.NewResponse(&api.DeleteThreadResponse{}), nil
}

// SearchMessages finds the caller's messages containing the query, ignoring case.
func (s *ChatService) SearchMessages(ctx context.Context, req *connect.Request[api.SearchMessagesRequest]) (*connect.Response[api.SearchMessagesResponse], error) {
	userID, err := middleware.Authenticated(ctx)
	if err != nil {
		return nil, err
	}
	query := strings.TrimSpace(req.Msg.Query)
	if query == "" {
		return nil, invalidArgument("query is required")
	}
	limit := clampLimit(req.Msg.Limit, defaultSearchLimit, maxThreadLimit)

	messages, err := s.store.SearchMessages(ctx, userID, query, limit)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SearchMessagesResponse{Messages: messages}), nil
}

// titleFrom shortens the first line of a message into a thread title.
func titleFrom(content string) string {
	line, _, _ := strings.Cut(content, "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return defaultThreadTitle
	}
	if utf8.RuneCountInString(line) <= maxTitleLength {
		return line
	}
	runes := []rune(line)
	return strings.TrimSpace(string(runes[:maxTitleLength])) + "..."
}

func clampLimit(limit, def, ceiling int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, ceiling)
}
