package types

import (
	"context"
	"errors"
)

// Store defines backend-agnostic access to the persisted records.
// Callers attach to a backend, run reads with View and atomic writes with
// Update, and detach when done.
type Store interface {
	// Attach connects the Store to the backend described by config and
	// creates the schema if needed. Returns ErrAlreadyAttached if called
	// while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent. After Detach, View and
	// Update return ErrStoreDetached.
	Detach() error

	// View runs fn against the committed state without a transaction.
	View(ctx context.Context, fn func(Records) error) error

	// Update runs fn inside one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise, so partial writes are never
	// visible.
	Update(ctx context.Context, fn func(Records) error) error
}

// Records provides the record-level operations of the four tables. Get,
// update, and delete operations on a missing id return ErrNotFound.
type Records interface {
	// UpsertUser returns the id of the user with u.ExternalID, inserting u
	// first when no such user exists. The bool reports whether a row was
	// inserted.
	UpsertUser(ctx context.Context, u *User) (string, bool, error)
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*User, error)

	CreateFolder(ctx context.Context, f *Folder) (string, error)
	GetFolder(ctx context.Context, id string) (*Folder, error)
	UpdateFolder(ctx context.Context, f *Folder) error
	DeleteFolder(ctx context.Context, id string) error
	// ListFolders returns the owner's folders ordered by order ascending.
	ListFolders(ctx context.Context, ownerID string) ([]*Folder, error)
	// MaxFolderOrder returns the highest order among the owner's folders;
	// the bool is false when the owner has none.
	MaxFolderOrder(ctx context.Context, ownerID string) (int, bool, error)

	CreateChat(ctx context.Context, c *Chat) (string, error)
	GetChat(ctx context.Context, id string) (*Chat, error)
	UpdateChat(ctx context.Context, c *Chat) error
	DeleteChat(ctx context.Context, id string) error
	// ListChats returns chats matching the filter ordered by updatedAt
	// descending.
	ListChats(ctx context.Context, filter ChatFilter) ([]*Chat, error)
	// DetachFolderChats clears the folder of every chat in folderID owned by
	// ownerID, stamping updatedAt with now. Returns the number of chats
	// changed.
	DetachFolderChats(ctx context.Context, ownerID, folderID string, now int64) (int, error)

	CreateMessage(ctx context.Context, m *Message) (string, error)
	// ListMessages returns the chat's messages ordered by timestamp
	// ascending.
	ListMessages(ctx context.Context, chatID string) ([]*Message, error)
	CountMessages(ctx context.Context, chatID, role string) (int, error)
	// FirstMessage returns the earliest message of the given role, or
	// ErrNotFound when the chat has none.
	FirstMessage(ctx context.Context, chatID, role string) (*Message, error)
	// DeleteMessages removes every message of the chat and returns how many
	// were removed. Zero is not an error.
	DeleteMessages(ctx context.Context, chatID string) (int, error)
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Record operation errors.
var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidID         = errors.New("invalid record ID")
	ErrInvalidData       = errors.New("invalid record data")
	ErrInvalidName       = errors.New("invalid name")
	ErrInvalidRole       = errors.New("invalid message role")
	ErrInvalidContent    = errors.New("content must not be empty")
	ErrOwnershipMismatch = errors.New("folder belongs to a different owner")
	ErrNothingToUpdate   = errors.New("no fields to update")
)

// IsValidationError reports whether err is a caller error that retrying
// with the same input cannot fix (as opposed to ErrNotFound or a backend
// failure).
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidID, ErrInvalidData, ErrInvalidName, ErrInvalidRole,
		ErrInvalidContent, ErrNothingToUpdate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
