package sqlstore

import "github.com/mesh-intelligence/chatkeep/pkg/types"

// Row structs mirror the table columns. The db tags drive sqlx scanning and
// named binding; the json tags define the JSONL export format, which uses
// the column names as keys.

type userRow struct {
	UserID      string  `db:"user_id" json:"user_id"`
	ExternalID  string  `db:"external_id" json:"external_id"`
	Email       string  `db:"email" json:"email"`
	DisplayName string  `db:"display_name" json:"display_name"`
	AvatarURL   *string `db:"avatar_url" json:"avatar_url"`
	CreatedAt   int64   `db:"created_at" json:"created_at"`
}

func (r userRow) user() *types.User {
	return &types.User{
		UserID:      r.UserID,
		ExternalID:  r.ExternalID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		AvatarURL:   r.AvatarURL,
		CreatedAt:   r.CreatedAt,
	}
}

type folderRow struct {
	FolderID  string `db:"folder_id" json:"folder_id"`
	OwnerID   string `db:"owner_id" json:"owner_id"`
	Name      string `db:"name" json:"name"`
	SortOrder int    `db:"sort_order" json:"sort_order"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
	UpdatedAt int64  `db:"updated_at" json:"updated_at"`
}

func (r folderRow) folder() *types.Folder {
	return &types.Folder{
		FolderID:  r.FolderID,
		OwnerID:   r.OwnerID,
		Name:      r.Name,
		Order:     r.SortOrder,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type chatRow struct {
	ChatID    string  `db:"chat_id" json:"chat_id"`
	OwnerID   string  `db:"owner_id" json:"owner_id"`
	Title     string  `db:"title" json:"title"`
	FolderID  *string `db:"folder_id" json:"folder_id"`
	IsPinned  bool    `db:"is_pinned" json:"is_pinned"`
	CreatedAt int64   `db:"created_at" json:"created_at"`
	UpdatedAt int64   `db:"updated_at" json:"updated_at"`
}

func (r chatRow) chat() *types.Chat {
	return &types.Chat{
		ChatID:    r.ChatID,
		OwnerID:   r.OwnerID,
		Title:     r.Title,
		FolderID:  r.FolderID,
		IsPinned:  r.IsPinned,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type messageRow struct {
	MessageID string `db:"message_id" json:"message_id"`
	ChatID    string `db:"chat_id" json:"chat_id"`
	OwnerID   string `db:"owner_id" json:"owner_id"`
	Content   string `db:"content" json:"content"`
	Role      string `db:"role" json:"role"`
	SentAt    int64  `db:"sent_at" json:"sent_at"`
}

func (r messageRow) message() *types.Message {
	return &types.Message{
		MessageID: r.MessageID,
		ChatID:    r.ChatID,
		OwnerID:   r.OwnerID,
		Content:   r.Content,
		Role:      r.Role,
		Timestamp: r.SentAt,
	}
}

// Column lists shared by SELECT and INSERT statements.
const (
	userColumns    = "user_id, external_id, email, display_name, avatar_url, created_at"
	folderColumns  = "folder_id, owner_id, name, sort_order, created_at, updated_at"
	chatColumns    = "chat_id, owner_id, title, folder_id, is_pinned, created_at, updated_at"
	messageColumns = "message_id, chat_id, owner_id, content, role, sent_at"
)
