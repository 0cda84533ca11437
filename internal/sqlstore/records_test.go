package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

// update runs fn in a transaction and fails the test on error.
func update(t *testing.T, b *Backend, fn func(ctx context.Context, r types.Records)) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, b.Update(ctx, func(r types.Records) error {
		fn(ctx, r)
		return nil
	}))
}

// view runs fn outside a transaction and fails the test on error.
func view(t *testing.T, b *Backend, fn func(ctx context.Context, r types.Records)) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, b.View(ctx, func(r types.Records) error {
		fn(ctx, r)
		return nil
	}))
}

func TestUsers_Upsert(t *testing.T) {
	for _, tb := range setupBackends(t) {
		t.Run(tb.name, func(t *testing.T) {
			avatar := "https://example.com/a.png"
			update(t, tb.backend, func(ctx context.Context, r types.Records) {
				u := &types.User{ExternalID: "idp|42", Email: "a@example.com", DisplayName: "Ada", AvatarURL: &avatar, CreatedAt: 500}
				id, inserted, err := r.UpsertUser(ctx, u)
				require.NoError(t, err)
				assert.True(t, inserted)
				assert.NotEmpty(t, id)
				assert.Equal(t, id, u.UserID)

				again := &types.User{ExternalID: "idp|42", Email: "other@example.com", DisplayName: "Other", CreatedAt: 900}
				id2, inserted2, err := r.UpsertUser(ctx, again)
				require.NoError(t, err)
				assert.False(t, inserted2)
				assert.Equal(t, id, id2)
				assert.Equal(t, "a@example.com", again.Email, "existing record is returned unchanged")

				got, err := r.GetUser(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, "Ada", got.DisplayName)
				require.NotNil(t, got.AvatarURL)
				assert.Equal(t, avatar, *got.AvatarURL)
				assert.Equal(t, int64(500), got.CreatedAt)

				byExt, err := r.GetUserByExternalID(ctx, "idp|42")
				require.NoError(t, err)
				assert.Equal(t, id, byExt.UserID)
			})
		})
	}
}

func TestUsers_Errors(t *testing.T) {
	b := setupBackend(t)
	view(t, b, func(ctx context.Context, r types.Records) {
		_, _, err := r.UpsertUser(ctx, &types.User{Email: "x@example.com"})
		assert.ErrorIs(t, err, types.ErrInvalidID)
		_, _, err = r.UpsertUser(ctx, nil)
		assert.ErrorIs(t, err, types.ErrInvalidData)
		_, err = r.GetUser(ctx, "missing")
		assert.ErrorIs(t, err, types.ErrNotFound)
		_, err = r.GetUser(ctx, "")
		assert.ErrorIs(t, err, types.ErrInvalidID)
		_, err = r.GetUserByExternalID(ctx, "idp|nobody")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestFolders_CRUD(t *testing.T) {
	for _, tb := range setupBackends(t) {
		t.Run(tb.name, func(t *testing.T) {
			owner := seedUser(t, tb.backend, "idp|folders")
			update(t, tb.backend, func(ctx context.Context, r types.Records) {
				_, ok, err := r.MaxFolderOrder(ctx, owner)
				require.NoError(t, err)
				assert.False(t, ok, "no folders yet")

				for i, order := range []int{5, 0, 2} {
					_, err := r.CreateFolder(ctx, &types.Folder{
						OwnerID:   owner,
						Name:      []string{"Five", "Zero", "Two"}[i],
						Order:     order,
						CreatedAt: int64(100 + i),
						UpdatedAt: int64(100 + i),
					})
					require.NoError(t, err)
				}

				highest, ok, err := r.MaxFolderOrder(ctx, owner)
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, 5, highest)

				folders, err := r.ListFolders(ctx, owner)
				require.NoError(t, err)
				require.Len(t, folders, 3)
				assert.Equal(t, "Zero", folders[0].Name)
				assert.Equal(t, "Two", folders[1].Name)
				assert.Equal(t, "Five", folders[2].Name)

				f := folders[0]
				require.NoError(t, f.Rename("Renamed", 999))
				f.Order = 7
				require.NoError(t, r.UpdateFolder(ctx, f))

				got, err := r.GetFolder(ctx, f.FolderID)
				require.NoError(t, err)
				assert.Equal(t, "Renamed", got.Name)
				assert.Equal(t, 7, got.Order)
				assert.Equal(t, int64(999), got.UpdatedAt)
				assert.Equal(t, int64(100+1), got.CreatedAt)

				require.NoError(t, r.DeleteFolder(ctx, f.FolderID))
				_, err = r.GetFolder(ctx, f.FolderID)
				assert.ErrorIs(t, err, types.ErrNotFound)
				assert.ErrorIs(t, r.DeleteFolder(ctx, f.FolderID), types.ErrNotFound)
				assert.ErrorIs(t, r.UpdateFolder(ctx, f), types.ErrNotFound)
			})
		})
	}
}

func TestFolders_Validation(t *testing.T) {
	b := setupBackend(t)
	owner := seedUser(t, b, "idp|folder-validation")
	view(t, b, func(ctx context.Context, r types.Records) {
		_, err := r.CreateFolder(ctx, &types.Folder{OwnerID: owner, Name: "   "})
		assert.ErrorIs(t, err, types.ErrInvalidName)
		_, err = r.CreateFolder(ctx, &types.Folder{Name: "No owner"})
		assert.ErrorIs(t, err, types.ErrInvalidID)
		_, err = r.ListFolders(ctx, "")
		assert.ErrorIs(t, err, types.ErrInvalidID)

		folders, err := r.ListFolders(ctx, owner)
		require.NoError(t, err)
		assert.NotNil(t, folders)
		assert.Empty(t, folders)
	})
}

func TestChats_CRUD(t *testing.T) {
	for _, tb := range setupBackends(t) {
		t.Run(tb.name, func(t *testing.T) {
			owner := seedUser(t, tb.backend, "idp|chats")
			update(t, tb.backend, func(ctx context.Context, r types.Records) {
				folderID, err := r.CreateFolder(ctx, &types.Folder{OwnerID: owner, Name: "Work", CreatedAt: 1, UpdatedAt: 1})
				require.NoError(t, err)

				c := &types.Chat{OwnerID: owner, Title: "First", CreatedAt: 10, UpdatedAt: 10}
				id, err := r.CreateChat(ctx, c)
				require.NoError(t, err)
				assert.Equal(t, id, c.ChatID)

				got, err := r.GetChat(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, "First", got.Title)
				assert.Nil(t, got.FolderID)
				assert.False(t, got.IsPinned)

				got.Title = "Renamed"
				got.FolderID = &folderID
				got.IsPinned = true
				got.UpdatedAt = 20
				require.NoError(t, r.UpdateChat(ctx, got))

				again, err := r.GetChat(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, "Renamed", again.Title)
				require.NotNil(t, again.FolderID)
				assert.Equal(t, folderID, *again.FolderID)
				assert.True(t, again.IsPinned)
				assert.Equal(t, int64(10), again.CreatedAt)
				assert.Equal(t, int64(20), again.UpdatedAt)

				require.NoError(t, r.DeleteChat(ctx, id))
				_, err = r.GetChat(ctx, id)
				assert.ErrorIs(t, err, types.ErrNotFound)
				assert.ErrorIs(t, r.DeleteChat(ctx, id), types.ErrNotFound)
				assert.ErrorIs(t, r.UpdateChat(ctx, again), types.ErrNotFound)
			})
		})
	}
}

func TestChats_Validation(t *testing.T) {
	b := setupBackend(t)
	view(t, b, func(ctx context.Context, r types.Records) {
		_, err := r.CreateChat(ctx, &types.Chat{Title: "x"})
		assert.ErrorIs(t, err, types.ErrInvalidID)
		_, err = r.CreateChat(ctx, &types.Chat{OwnerID: "u"})
		assert.ErrorIs(t, err, types.ErrInvalidData)
		_, err = r.CreateChat(ctx, nil)
		assert.ErrorIs(t, err, types.ErrInvalidData)
		_, err = r.GetChat(ctx, "")
		assert.ErrorIs(t, err, types.ErrInvalidID)
		_, err = r.ListChats(ctx, types.ChatFilter{})
		assert.ErrorIs(t, err, types.ErrInvalidID)
	})
}

func TestChats_List(t *testing.T) {
	for _, tb := range setupBackends(t) {
		t.Run(tb.name, func(t *testing.T) {
			owner := seedUser(t, tb.backend, "idp|list")
			other := seedUser(t, tb.backend, "idp|other")

			var folderID string
			update(t, tb.backend, func(ctx context.Context, r types.Records) {
				var err error
				folderID, err = r.CreateFolder(ctx, &types.Folder{OwnerID: owner, Name: "F", CreatedAt: 1, UpdatedAt: 1})
				require.NoError(t, err)

				chats := []*types.Chat{
					{ChatID: "c-old", OwnerID: owner, Title: "Old", CreatedAt: 1, UpdatedAt: 100},
					{ChatID: "c-new", OwnerID: owner, Title: "New", CreatedAt: 2, UpdatedAt: 300},
					{ChatID: "c-filed", OwnerID: owner, Title: "Filed", FolderID: &folderID, CreatedAt: 3, UpdatedAt: 200},
					{ChatID: "c-pinned", OwnerID: owner, Title: "Pinned", IsPinned: true, CreatedAt: 4, UpdatedAt: 50},
					{ChatID: "c-other", OwnerID: other, Title: "Other", CreatedAt: 5, UpdatedAt: 999},
				}
				for _, c := range chats {
					_, err := r.CreateChat(ctx, c)
					require.NoError(t, err)
				}
			})

			chatIDs := func(chats []*types.Chat) []string {
				out := make([]string, len(chats))
				for i, c := range chats {
					out[i] = c.ChatID
				}
				return out
			}

			view(t, tb.backend, func(ctx context.Context, r types.Records) {
				all, err := r.ListChats(ctx, types.ChatFilter{OwnerID: owner})
				require.NoError(t, err)
				assert.Equal(t, []string{"c-new", "c-filed", "c-old", "c-pinned"}, chatIDs(all))

				filed, err := r.ListChats(ctx, types.ChatFilter{OwnerID: owner, FolderID: &folderID})
				require.NoError(t, err)
				assert.Equal(t, []string{"c-filed"}, chatIDs(filed))

				pinned, err := r.ListChats(ctx, types.ChatFilter{OwnerID: owner, Pinned: boolPtr(true)})
				require.NoError(t, err)
				assert.Equal(t, []string{"c-pinned"}, chatIDs(pinned))

				none, err := r.ListChats(ctx, types.ChatFilter{OwnerID: owner, FolderID: strPtr("nope")})
				require.NoError(t, err)
				assert.NotNil(t, none)
				assert.Empty(t, none)
			})
		})
	}
}

func TestChats_DetachFolderChats(t *testing.T) {
	for _, tb := range setupBackends(t) {
		t.Run(tb.name, func(t *testing.T) {
			owner := seedUser(t, tb.backend, "idp|detach")
			update(t, tb.backend, func(ctx context.Context, r types.Records) {
				folderID, err := r.CreateFolder(ctx, &types.Folder{OwnerID: owner, Name: "F", CreatedAt: 1, UpdatedAt: 1})
				require.NoError(t, err)
				for _, id := range []string{"c1", "c2"} {
					_, err := r.CreateChat(ctx, &types.Chat{ChatID: id, OwnerID: owner, Title: id, FolderID: &folderID, CreatedAt: 1, UpdatedAt: 1})
					require.NoError(t, err)
				}
				_, err = r.CreateChat(ctx, &types.Chat{ChatID: "c3", OwnerID: owner, Title: "c3", CreatedAt: 1, UpdatedAt: 1})
				require.NoError(t, err)

				n, err := r.DetachFolderChats(ctx, owner, folderID, 77)
				require.NoError(t, err)
				assert.Equal(t, 2, n)

				for _, id := range []string{"c1", "c2"} {
					c, err := r.GetChat(ctx, id)
					require.NoError(t, err)
					assert.Nil(t, c.FolderID)
					assert.Equal(t, int64(77), c.UpdatedAt)
				}
				c3, err := r.GetChat(ctx, "c3")
				require.NoError(t, err)
				assert.Equal(t, int64(1), c3.UpdatedAt, "unfiled chat untouched")

				require.NoError(t, r.DeleteFolder(ctx, folderID))
			})
		})
	}
}

func TestFolders_DeleteReferencedFolderFails(t *testing.T) {
	b := setupBackend(t)
	owner := seedUser(t, b, "idp|fk")
	ctx := context.Background()

	var folderID string
	update(t, b, func(ctx context.Context, r types.Records) {
		var err error
		folderID, err = r.CreateFolder(ctx, &types.Folder{OwnerID: owner, Name: "F", CreatedAt: 1, UpdatedAt: 1})
		require.NoError(t, err)
		_, err = r.CreateChat(ctx, &types.Chat{OwnerID: owner, Title: "t", FolderID: &folderID, CreatedAt: 1, UpdatedAt: 1})
		require.NoError(t, err)
	})

	err := b.Update(ctx, func(r types.Records) error {
		return r.DeleteFolder(ctx, folderID)
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, types.ErrNotFound)
}

func TestMessages(t *testing.T) {
	for _, tb := range setupBackends(t) {
		t.Run(tb.name, func(t *testing.T) {
			owner := seedUser(t, tb.backend, "idp|messages")
			update(t, tb.backend, func(ctx context.Context, r types.Records) {
				chatID, err := r.CreateChat(ctx, &types.Chat{OwnerID: owner, Title: "T", CreatedAt: 1, UpdatedAt: 1})
				require.NoError(t, err)

				n, err := r.CountMessages(ctx, chatID, types.RoleAssistant)
				require.NoError(t, err)
				assert.Equal(t, 0, n)
				_, err = r.FirstMessage(ctx, chatID, types.RoleUser)
				assert.ErrorIs(t, err, types.ErrNotFound)

				msgs := []*types.Message{
					{MessageID: "m-b", ChatID: chatID, OwnerID: owner, Content: "second at 10", Role: types.RoleUser, Timestamp: 10},
					{MessageID: "m-a", ChatID: chatID, OwnerID: owner, Content: "first at 10", Role: types.RoleUser, Timestamp: 10},
					{MessageID: "m-c", ChatID: chatID, OwnerID: owner, Content: "reply", Role: types.RoleAssistant, Timestamp: 20},
					{MessageID: "m-0", ChatID: chatID, OwnerID: owner, Content: "later", Role: types.RoleUser, Timestamp: 30},
				}
				for _, m := range msgs {
					_, err := r.CreateMessage(ctx, m)
					require.NoError(t, err)
				}

				list, err := r.ListMessages(ctx, chatID)
				require.NoError(t, err)
				require.Len(t, list, 4)
				assert.Equal(t, "m-a", list[0].MessageID)
				assert.Equal(t, "m-b", list[1].MessageID)
				assert.Equal(t, "m-c", list[2].MessageID)
				assert.Equal(t, "m-0", list[3].MessageID)

				first, err := r.FirstMessage(ctx, chatID, types.RoleUser)
				require.NoError(t, err)
				assert.Equal(t, "first at 10", first.Content)

				n, err = r.CountMessages(ctx, chatID, types.RoleUser)
				require.NoError(t, err)
				assert.Equal(t, 3, n)
				n, err = r.CountMessages(ctx, chatID, types.RoleAssistant)
				require.NoError(t, err)
				assert.Equal(t, 1, n)
				n, err = r.CountMessages(ctx, chatID, "")
				require.NoError(t, err)
				assert.Equal(t, 4, n)

				removed, err := r.DeleteMessages(ctx, chatID)
				require.NoError(t, err)
				assert.Equal(t, 4, removed)

				removed, err = r.DeleteMessages(ctx, chatID)
				require.NoError(t, err)
				assert.Equal(t, 0, removed)

				list, err = r.ListMessages(ctx, chatID)
				require.NoError(t, err)
				assert.NotNil(t, list)
				assert.Empty(t, list)
			})
		})
	}
}

func TestMessages_Validation(t *testing.T) {
	b := setupBackend(t)
	view(t, b, func(ctx context.Context, r types.Records) {
		_, err := r.CreateMessage(ctx, &types.Message{ChatID: "c", OwnerID: "u", Content: "x", Role: "system"})
		assert.ErrorIs(t, err, types.ErrInvalidRole)
		_, err = r.CreateMessage(ctx, &types.Message{OwnerID: "u", Content: "x", Role: types.RoleUser})
		assert.ErrorIs(t, err, types.ErrInvalidID)
		_, err = r.CountMessages(ctx, "c", "robot")
		assert.ErrorIs(t, err, types.ErrInvalidRole)
		_, err = r.FirstMessage(ctx, "c", "")
		assert.ErrorIs(t, err, types.ErrInvalidRole)
	})
}

func TestMessages_RequireExistingChat(t *testing.T) {
	b := setupBackend(t)
	owner := seedUser(t, b, "idp|orphan")
	ctx := context.Background()

	err := b.Update(ctx, func(r types.Records) error {
		_, err := r.CreateMessage(ctx, &types.Message{ChatID: "missing", OwnerID: owner, Content: "hi", Role: types.RoleUser, Timestamp: 1})
		return err
	})
	assert.Error(t, err)
}
