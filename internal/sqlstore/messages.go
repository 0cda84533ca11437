package sqlstore

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// CreateMessage inserts m, generating a UUID v7 when m.MessageID is empty.
// Returns the message id.
func (r *records) CreateMessage(ctx context.Context, m *types.Message) (string, error) {
	if m == nil {
		return "", types.ErrInvalidData
	}
	if m.ChatID == "" || m.OwnerID == "" {
		return "", types.ErrInvalidID
	}
	if !types.ValidRole(m.Role) {
		return "", types.ErrInvalidRole
	}
	if m.MessageID == "" {
		id, err := newID()
		if err != nil {
			return "", err
		}
		m.MessageID = id
	}

	_, err := r.exec(ctx,
		"INSERT INTO messages ("+messageColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		m.MessageID, m.ChatID, m.OwnerID, m.Content, m.Role, m.Timestamp,
	)
	if err != nil {
		return "", fmt.Errorf("inserting message: %w", err)
	}
	return m.MessageID, nil
}

// ListMessages returns the chat's messages oldest first. Returns an empty
// slice when the chat has none.
func (r *records) ListMessages(ctx context.Context, chatID string) ([]*types.Message, error) {
	if chatID == "" {
		return nil, types.ErrInvalidID
	}
	var rows []messageRow
	err := r.selectAll(ctx, &rows,
		"SELECT "+messageColumns+" FROM messages WHERE chat_id = ? ORDER BY sent_at ASC, message_id ASC",
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	messages := make([]*types.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.message())
	}
	return messages, nil
}

// CountMessages counts the chat's messages with the given role. An empty
// role counts all messages.
func (r *records) CountMessages(ctx context.Context, chatID, role string) (int, error) {
	if chatID == "" {
		return 0, types.ErrInvalidID
	}
	query, args := "SELECT COUNT(*) FROM messages WHERE chat_id = ?", []any{chatID}
	if role != "" {
		if !types.ValidRole(role) {
			return 0, types.ErrInvalidRole
		}
		query, args = query+" AND role = ?", append(args, role)
	}
	var n int
	if err := r.get(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("counting messages: %w", err)
	}
	return n, nil
}

// FirstMessage returns the chat's earliest message with the given role,
// ties broken by id.
func (r *records) FirstMessage(ctx context.Context, chatID, role string) (*types.Message, error) {
	if chatID == "" {
		return nil, types.ErrInvalidID
	}
	if !types.ValidRole(role) {
		return nil, types.ErrInvalidRole
	}
	var row messageRow
	err := r.get(ctx, &row,
		"SELECT "+messageColumns+" FROM messages WHERE chat_id = ? AND role = ? ORDER BY sent_at ASC, message_id ASC LIMIT 1",
		chatID, role,
	)
	if err != nil {
		return nil, notFound(err, "getting first %s message", role)
	}
	return row.message(), nil
}

// DeleteMessages removes every message of the chat and returns how many
// were removed.
func (r *records) DeleteMessages(ctx context.Context, chatID string) (int, error) {
	if chatID == "" {
		return 0, types.ErrInvalidID
	}
	res, err := r.exec(ctx, "DELETE FROM messages WHERE chat_id = ?", chatID)
	if err != nil {
		return 0, fmt.Errorf("deleting messages of chat %s: %w", chatID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting messages of chat %s: %w", chatID, err)
	}
	return int(n), nil
}
