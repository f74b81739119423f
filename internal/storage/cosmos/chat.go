package cosmos

import (
	"context"
	"fmt"
	"sort"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/tidwall/gjson"

	"github.com/mptwarrior/warrior/internal/models"
)

// CreateThread stores a thread in its owner's partition.
func (s *Store) CreateThread(ctx context.Context, thread *models.ChatThread) error {
	return createItem(ctx, s.threads, thread.UserID, thread, "thread "+thread.ID)
}

// GetThread point-reads a thread from its owner's partition.
func (s *Store) GetThread(ctx context.Context, userID, threadID string) (*models.ChatThread, error) {
	thread, _, err := readItem[models.ChatThread](ctx, s.threads, userID, threadID, "thread "+threadID)
	return thread, err
}

// ListThreads returns the owner's threads, most recently updated first.
func (s *Store) ListThreads(ctx context.Context, userID string, limit int) ([]*models.ChatThread, error) {
	query := "SELECT * FROM c WHERE c.userId = @userId ORDER BY c.updatedAt DESC"
	if limit > 0 {
		query += fmt.Sprintf(" OFFSET 0 LIMIT %d", limit)
	}
	return queryItems[models.ChatThread](ctx, s.threads, azcosmos.NewPartitionKeyString(userID),
		query, param("@userId", userID))
}

// UpdateThread replaces a thread document.
func (s *Store) UpdateThread(ctx context.Context, thread *models.ChatThread) error {
	return replaceItem(ctx, s.threads, thread.UserID, thread.ID, thread, "", "thread "+thread.ID)
}

// DeleteThread removes every message of the thread, then the thread itself.
// The thread is read first so a foreign owner gets ErrNotFound before
// anything is deleted.
func (s *Store) DeleteThread(ctx context.Context, userID, threadID string) error {
	if _, err := s.GetThread(ctx, userID, threadID); err != nil {
		return err
	}

	raw, err := queryRaw(ctx, s.messages, azcosmos.NewPartitionKeyString(threadID),
		"SELECT c.id FROM c WHERE c.threadId = @threadId", param("@threadId", threadID))
	if err != nil {
		return err
	}
	for _, item := range raw {
		id := gjson.GetBytes(item, "id").String()
		if err := deleteItem(ctx, s.messages, threadID, id, "message "+id); err != nil {
			return err
		}
	}

	return deleteItem(ctx, s.threads, userID, threadID, "thread "+threadID)
}

// CreateMessage stores a message in its thread's partition.
func (s *Store) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	return createItem(ctx, s.messages, msg.ThreadID, msg, "message "+msg.ID)
}

// ListMessages reads the thread's partition oldest first.
func (s *Store) ListMessages(ctx context.Context, threadID string, lastN int) ([]*models.ChatMessage, error) {
	msgs, err := queryItems[models.ChatMessage](ctx, s.messages, azcosmos.NewPartitionKeyString(threadID),
		"SELECT * FROM c WHERE c.threadId = @threadId ORDER BY c.createdAt ASC", param("@threadId", threadID))
	if err != nil {
		return nil, err
	}
	if lastN > 0 && len(msgs) > lastN {
		msgs = msgs[len(msgs)-lastN:]
	}
	return msgs, nil
}

// SearchMessages scans the user's messages across threads with a
// case-insensitive CONTAINS.
func (s *Store) SearchMessages(ctx context.Context, userID, query string, limit int) ([]*models.ChatMessage, error) {
	msgs, err := queryItems[models.ChatMessage](ctx, s.messages, allPartitions,
		"SELECT * FROM c WHERE c.userId = @userId AND CONTAINS(c.content, @q, true)",
		param("@userId", userID), param("@q", query))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}
