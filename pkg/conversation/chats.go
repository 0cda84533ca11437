package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/chatkeep/internal/metrics"
	"github.com/mesh-intelligence/chatkeep/pkg/title"
	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// StartChat creates a chat from the owner's first message. The chat is
// titled from the message text, unpinned, and optionally filed under
// folderID; the message is stored with role user.
func (m *Manager) StartChat(ctx context.Context, owner, text string, folderID *string) (chat *types.Chat, err error) {
	defer m.observe(ctx, opStartChat, time.Now(), &err)

	if strings.TrimSpace(text) == "" {
		return nil, types.ErrInvalidContent
	}

	now := m.nowMillis()
	chat = &types.Chat{
		OwnerID:   owner,
		Title:     title.FromFirstMessage(text),
		FolderID:  folderID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = m.store.Update(ctx, func(r types.Records) error {
		if err := requireOwner(ctx, r, owner); err != nil {
			return err
		}
		if folderID != nil {
			if err := assignableFolder(ctx, r, owner, *folderID); err != nil {
				return err
			}
		}
		if _, err := r.CreateChat(ctx, chat); err != nil {
			return err
		}
		_, err := r.CreateMessage(ctx, &types.Message{
			ChatID:    chat.ChatID,
			OwnerID:   owner,
			Content:   text,
			Role:      types.RoleUser,
			Timestamp: now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	m.metrics.TitleDerived(metrics.StrategyFirstMessage)
	m.log.Info(ctx, "chat started", zap.String("chat.id", chat.ChatID), zap.String("chat.title", chat.Title))
	return chat, nil
}

// NewChat creates an empty chat titled "New Chat". Its first user message
// gives it a title the way StartChat does.
func (m *Manager) NewChat(ctx context.Context, owner string, folderID *string) (chat *types.Chat, err error) {
	defer m.observe(ctx, opNewChat, time.Now(), &err)

	now := m.nowMillis()
	chat = &types.Chat{
		OwnerID:   owner,
		Title:     types.DefaultChatTitle,
		FolderID:  folderID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = m.store.Update(ctx, func(r types.Records) error {
		if err := requireOwner(ctx, r, owner); err != nil {
			return err
		}
		if folderID != nil {
			if err := assignableFolder(ctx, r, owner, *folderID); err != nil {
				return err
			}
		}
		_, err := r.CreateChat(ctx, chat)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.log.Info(ctx, "chat created", zap.String("chat.id", chat.ChatID))
	return chat, nil
}

// Appended is the outcome of AppendMessage.
type Appended struct {
	Message *types.Message `json:"message"`
	Chat    *types.Chat    `json:"chat"`
	// Retitled reports whether this append changed the chat's title.
	Retitled bool `json:"retitled"`
}

// AppendMessage adds a message to a chat and refreshes the chat's
// updatedAt.
//
// The first assistant message of a chat re-titles it from the first user
// message and the assistant text; later assistant messages never do. The
// first user message of a chat created by NewChat titles it from that
// message.
func (m *Manager) AppendMessage(ctx context.Context, owner, chatID, text, role string) (out *Appended, err error) {
	defer m.observe(ctx, opAppendMessage, time.Now(), &err)

	if !types.ValidRole(role) {
		return nil, types.ErrInvalidRole
	}
	if strings.TrimSpace(text) == "" {
		return nil, types.ErrInvalidContent
	}

	var strategy string
	out = &Appended{}
	err = m.store.Update(ctx, func(r types.Records) error {
		chat, err := ownedChat(ctx, r, owner, chatID)
		if err != nil {
			return err
		}

		// Counted before the insert so the zero-to-one transition is seen
		// exactly once.
		prior, err := r.CountMessages(ctx, chatID, role)
		if err != nil {
			return err
		}

		now := m.nowMillis()
		msg := &types.Message{ChatID: chatID, OwnerID: owner, Content: text, Role: role, Timestamp: now}
		if _, err := r.CreateMessage(ctx, msg); err != nil {
			return err
		}

		switch {
		case role == types.RoleAssistant && prior == 0:
			first, err := r.FirstMessage(ctx, chatID, types.RoleUser)
			if err != nil && !errors.Is(err, types.ErrNotFound) {
				return err
			}
			if first != nil {
				chat.Title = title.FromExchange(first.Content, text)
				strategy = metrics.StrategyExchange
			}
		case role == types.RoleUser && prior == 0 && chat.Title == types.DefaultChatTitle:
			chat.Title = title.FromFirstMessage(text)
			strategy = metrics.StrategyFirstMessage
		}

		chat.UpdatedAt = now
		if err := r.UpdateChat(ctx, chat); err != nil {
			return err
		}
		out.Message, out.Chat, out.Retitled = msg, chat, strategy != ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Retitled {
		m.metrics.TitleDerived(strategy)
		m.log.Info(ctx, "chat retitled",
			zap.String("chat.id", chatID),
			zap.String("chat.title", out.Chat.Title),
			zap.String("strategy", strategy))
	}
	return out, nil
}

// UpdateChat patches the chat fields set in upd and refreshes updatedAt.
// Filing under a folder of another owner fails with ErrOwnershipMismatch.
func (m *Manager) UpdateChat(ctx context.Context, owner, chatID string, upd types.ChatUpdate) (chat *types.Chat, err error) {
	defer m.observe(ctx, opUpdateChat, time.Now(), &err)

	if upd.Empty() {
		return nil, types.ErrNothingToUpdate
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, types.ErrInvalidName
	}

	err = m.store.Update(ctx, func(r types.Records) error {
		var err error
		chat, err = ownedChat(ctx, r, owner, chatID)
		if err != nil {
			return err
		}
		if upd.Title != nil {
			chat.Title = strings.TrimSpace(*upd.Title)
		}
		switch {
		case upd.ClearFolder:
			chat.FolderID = nil
		case upd.FolderID != nil:
			if err := assignableFolder(ctx, r, owner, *upd.FolderID); err != nil {
				return err
			}
			folderID := *upd.FolderID
			chat.FolderID = &folderID
		}
		if upd.IsPinned != nil {
			chat.IsPinned = *upd.IsPinned
		}
		chat.UpdatedAt = m.nowMillis()
		return r.UpdateChat(ctx, chat)
	})
	if err != nil {
		return nil, err
	}

	m.log.Info(ctx, "chat updated", zap.String("chat.id", chatID))
	return chat, nil
}

// DeleteChat removes a chat and all of its messages.
func (m *Manager) DeleteChat(ctx context.Context, owner, chatID string) (err error) {
	defer m.observe(ctx, opDeleteChat, time.Now(), &err)

	var removed int
	err = m.store.Update(ctx, func(r types.Records) error {
		if _, err := ownedChat(ctx, r, owner, chatID); err != nil {
			return err
		}
		var err error
		if removed, err = r.DeleteMessages(ctx, chatID); err != nil {
			return err
		}
		return r.DeleteChat(ctx, chatID)
	})
	if err != nil {
		return err
	}

	m.log.Info(ctx, "chat deleted", zap.String("chat.id", chatID), zap.Int("messages.deleted", removed))
	return nil
}
