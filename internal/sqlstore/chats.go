package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// CreateChat inserts c, generating a UUID v7 when c.ChatID is empty.
// Returns the chat id.
func (r *records) CreateChat(ctx context.Context, c *types.Chat) (string, error) {
	if c == nil {
		return "", types.ErrInvalidData
	}
	if c.OwnerID == "" {
		return "", types.ErrInvalidID
	}
	if c.Title == "" {
		return "", types.ErrInvalidData
	}
	if c.ChatID == "" {
		id, err := newID()
		if err != nil {
			return "", err
		}
		c.ChatID = id
	}

	_, err := r.exec(ctx,
		"INSERT INTO chats ("+chatColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		c.ChatID, c.OwnerID, c.Title, c.FolderID, c.IsPinned, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("inserting chat: %w", err)
	}
	return c.ChatID, nil
}

// GetChat retrieves a chat by id.
func (r *records) GetChat(ctx context.Context, id string) (*types.Chat, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	var row chatRow
	err := r.get(ctx, &row, "SELECT "+chatColumns+" FROM chats WHERE chat_id = ?"+r.forUpdate(), id)
	if err != nil {
		return nil, notFound(err, "getting chat %s", id)
	}
	return row.chat(), nil
}

// UpdateChat writes the mutable fields of an existing chat.
func (r *records) UpdateChat(ctx context.Context, c *types.Chat) error {
	if c == nil {
		return types.ErrInvalidData
	}
	if c.ChatID == "" {
		return types.ErrInvalidID
	}
	if c.Title == "" {
		return types.ErrInvalidData
	}
	return r.execOne(ctx, "updating chat "+c.ChatID,
		"UPDATE chats SET title = ?, folder_id = ?, is_pinned = ?, updated_at = ? WHERE chat_id = ?",
		c.Title, c.FolderID, c.IsPinned, c.UpdatedAt, c.ChatID,
	)
}

// DeleteChat removes a chat row. Its messages must be deleted first.
func (r *records) DeleteChat(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return r.execOne(ctx, "deleting chat "+id, "DELETE FROM chats WHERE chat_id = ?", id)
}

// ListChats returns the chats matching filter, most recently updated first.
// Returns an empty slice when nothing matches.
func (r *records) ListChats(ctx context.Context, filter types.ChatFilter) ([]*types.Chat, error) {
	if filter.OwnerID == "" {
		return nil, types.ErrInvalidID
	}

	where, args := []string{"owner_id = ?"}, []any{filter.OwnerID}
	if filter.FolderID != nil {
		where, args = append(where, "folder_id = ?"), append(args, *filter.FolderID)
	}
	if filter.Pinned != nil {
		where, args = append(where, "is_pinned = ?"), append(args, *filter.Pinned)
	}

	query := "SELECT " + chatColumns + " FROM chats WHERE " + strings.Join(where, " AND ") +
		" ORDER BY updated_at DESC, chat_id DESC"

	var rows []chatRow
	if err := r.selectAll(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	chats := make([]*types.Chat, 0, len(rows))
	for _, row := range rows {
		chats = append(chats, row.chat())
	}
	return chats, nil
}

// DetachFolderChats unfiles every chat of ownerID in folderID and stamps
// updated_at with now. Returns the number of chats changed.
func (r *records) DetachFolderChats(ctx context.Context, ownerID, folderID string, now int64) (int, error) {
	if ownerID == "" || folderID == "" {
		return 0, types.ErrInvalidID
	}
	res, err := r.exec(ctx,
		"UPDATE chats SET folder_id = NULL, updated_at = ? WHERE owner_id = ? AND folder_id = ?",
		now, ownerID, folderID,
	)
	if err != nil {
		return 0, fmt.Errorf("detaching chats from folder %s: %w", folderID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("detaching chats from folder %s: %w", folderID, err)
	}
	return int(n), nil
}
