package types

// DefaultChatTitle is the title of a chat that has nothing to derive a title
// from yet.
const DefaultChatTitle = "New Chat"

// Chat is a single conversation thread. FolderID is nil while the chat is
// unfiled.
type Chat struct {
	ChatID    string  `json:"id"`
	OwnerID   string  `json:"ownerId"`
	Title     string  `json:"title"`
	FolderID  *string `json:"folderId"`
	IsPinned  bool    `json:"isPinned"`
	CreatedAt int64   `json:"createdAt"`
	UpdatedAt int64   `json:"updatedAt"`
}

// InFolder reports whether the chat is filed under the given folder.
func (c *Chat) InFolder(folderID string) bool {
	return c.FolderID != nil && *c.FolderID == folderID
}

// Unfiled reports whether the chat has no folder.
func (c *Chat) Unfiled() bool {
	return c.FolderID == nil
}

// ChatUpdate lists the fields UpdateChat may change. Nil pointers leave the
// field as it is. ClearFolder unfiles the chat and wins over FolderID.
type ChatUpdate struct {
	Title       *string `json:"title,omitempty"`
	FolderID    *string `json:"folderId,omitempty"`
	ClearFolder bool    `json:"clearFolder,omitempty"`
	IsPinned    *bool   `json:"isPinned,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ChatUpdate) Empty() bool {
	return u.Title == nil && u.FolderID == nil && !u.ClearFolder && u.IsPinned == nil
}

// ChatFilter selects chats for ListChats. OwnerID is required; FolderID and
// Pinned narrow the result when set.
type ChatFilter struct {
	OwnerID  string
	FolderID *string
	Pinned   *bool
}
