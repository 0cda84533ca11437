package conversation

import (
	"context"
	"time"

	"github.com/mesh-intelligence/chatkeep/pkg/sidebar"
	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// ChatQuery narrows ListChats. Nil fields do not filter.
type ChatQuery struct {
	FolderID *string
	Pinned   *bool
}

// GetChat returns one of the owner's chats.
func (m *Manager) GetChat(ctx context.Context, owner, chatID string) (chat *types.Chat, err error) {
	defer m.observe(ctx, opGetChat, time.Now(), &err)

	err = m.store.View(ctx, func(r types.Records) error {
		var err error
		chat, err = ownedChat(ctx, r, owner, chatID)
		return err
	})
	return chat, err
}

// ListChats returns the owner's chats, most recently updated first.
func (m *Manager) ListChats(ctx context.Context, owner string, q ChatQuery) (chats []*types.Chat, err error) {
	defer m.observe(ctx, opListChats, time.Now(), &err)

	err = m.store.View(ctx, func(r types.Records) error {
		var err error
		chats, err = r.ListChats(ctx, types.ChatFilter{OwnerID: owner, FolderID: q.FolderID, Pinned: q.Pinned})
		return err
	})
	return chats, err
}

// ListFolders returns the owner's folders by order.
func (m *Manager) ListFolders(ctx context.Context, owner string) (folders []*types.Folder, err error) {
	defer m.observe(ctx, opListFolders, time.Now(), &err)

	err = m.store.View(ctx, func(r types.Records) error {
		var err error
		folders, err = r.ListFolders(ctx, owner)
		return err
	})
	return folders, err
}

// ListMessages returns the messages of one of the owner's chats, oldest
// first.
func (m *Manager) ListMessages(ctx context.Context, owner, chatID string) (messages []*types.Message, err error) {
	defer m.observe(ctx, opListMessages, time.Now(), &err)

	err = m.store.View(ctx, func(r types.Records) error {
		if _, err := ownedChat(ctx, r, owner, chatID); err != nil {
			return err
		}
		var err error
		messages, err = r.ListMessages(ctx, chatID)
		return err
	})
	return messages, err
}

// Sidebar groups the owner's chats for display as of the manager's clock.
func (m *Manager) Sidebar(ctx context.Context, owner string) (groups sidebar.Groups, err error) {
	defer m.observe(ctx, opSidebar, time.Now(), &err)

	var chats []*types.Chat
	var folders []*types.Folder
	err = m.store.View(ctx, func(r types.Records) error {
		var err error
		if chats, err = r.ListChats(ctx, types.ChatFilter{OwnerID: owner}); err != nil {
			return err
		}
		folders, err = r.ListFolders(ctx, owner)
		return err
	})
	if err != nil {
		return sidebar.Groups{}, err
	}
	return sidebar.Organize(chats, folders, m.now()), nil
}
