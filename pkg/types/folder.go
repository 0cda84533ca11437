package types

import "strings"

// Folder is a user-defined grouping of chats. Order is used only for
// relative sorting among the owner's folders; new folders go last.
type Folder struct {
	FolderID  string `json:"id"`
	OwnerID   string `json:"ownerId"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Rename sets the folder name and refreshes UpdatedAt.
// Returns ErrInvalidName if the trimmed name is empty.
func (f *Folder) Rename(name string, now int64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	f.Name = name
	f.UpdatedAt = now
	return nil
}
