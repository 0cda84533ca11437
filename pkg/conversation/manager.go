// Package conversation implements the chat lifecycle: starting chats,
// appending messages, promoting titles on the first assistant reply,
// filing and pinning chats, and managing folders. Every mutating operation
// runs as one store transaction, so partial changes are never visible.
//
// All operations take the acting owner's id explicitly. Chats and folders
// of other owners are reported as types.ErrNotFound.
package conversation

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/chatkeep/internal/logging"
	"github.com/mesh-intelligence/chatkeep/internal/metrics"
	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// Operation names used in logs and metrics.
const (
	opSyncUser       = "sync_user"
	opStartChat      = "start_chat"
	opNewChat        = "new_chat"
	opAppendMessage  = "append_message"
	opUpdateChat     = "update_chat"
	opDeleteChat     = "delete_chat"
	opCreateFolder   = "create_folder"
	opRenameFolder   = "rename_folder"
	opReorderFolders = "reorder_folders"
	opDeleteFolder   = "delete_folder"
	opGetChat        = "get_chat"
	opListChats      = "list_chats"
	opListFolders    = "list_folders"
	opListMessages   = "list_messages"
	opSidebar        = "sidebar"
)

// Manager coordinates chats, messages, and folders over a Store.
type Manager struct {
	store   types.Store
	log     *logging.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithMetrics sets the metrics sink. The default records into a private
// registry.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithClock sets the source of record timestamps and of "now" for the
// sidebar. The default is time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New creates a Manager over an attached store.
func New(store types.Store, opts ...Option) *Manager {
	m := &Manager{store: store, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logging.NewNop()
	}
	if m.metrics == nil {
		m.metrics = metrics.NewNop()
	}
	m.log = m.log.Named("conversation")
	return m
}

// nowMillis returns the current time in epoch milliseconds.
func (m *Manager) nowMillis() int64 {
	return m.now().UnixMilli()
}

// observe records the outcome of an operation. Call it deferred with a
// pointer to the named error result.
func (m *Manager) observe(ctx context.Context, op string, start time.Time, errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	result := resultOf(err)
	m.metrics.ObserveOperation(op, result, time.Since(start))

	switch result {
	case metrics.ResultOK:
		m.log.Debug(ctx, "operation completed", zap.String("operation", op))
	case metrics.ResultError:
		m.log.Error(ctx, "operation failed", zap.String("operation", op), zap.Error(err))
	default:
		m.log.Debug(ctx, "operation rejected", zap.String("operation", op), zap.Error(err))
	}
}

// resultOf classifies an operation error for metrics.
func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, types.ErrNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, types.ErrOwnershipMismatch), types.IsValidationError(err):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}

// ownedChat loads a chat and hides it unless owner owns it.
func ownedChat(ctx context.Context, r types.Records, owner, chatID string) (*types.Chat, error) {
	c, err := r.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != owner {
		return nil, types.ErrNotFound
	}
	return c, nil
}

// ownedFolder loads a folder and hides it unless owner owns it.
func ownedFolder(ctx context.Context, r types.Records, owner, folderID string) (*types.Folder, error) {
	f, err := r.GetFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if f.OwnerID != owner {
		return nil, types.ErrNotFound
	}
	return f, nil
}

// assignableFolder checks that a chat of owner may be filed under
// folderID. A folder of another owner is an ownership mismatch rather than
// a missing record.
func assignableFolder(ctx context.Context, r types.Records, owner, folderID string) error {
	f, err := r.GetFolder(ctx, folderID)
	if err != nil {
		return err
	}
	if f.OwnerID != owner {
		return types.ErrOwnershipMismatch
	}
	return nil
}

// requireOwner checks that the owner exists.
func requireOwner(ctx context.Context, r types.Records, owner string) error {
	if owner == "" {
		return types.ErrInvalidID
	}
	_, err := r.GetUser(ctx, owner)
	return err
}
