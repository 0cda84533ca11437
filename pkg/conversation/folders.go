package conversation

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// CreateFolder creates a folder placed after the owner's existing folders:
// its order is the current maximum plus one, or 0 for the first folder.
func (m *Manager) CreateFolder(ctx context.Context, owner, name string) (folder *types.Folder, err error) {
	defer m.observe(ctx, opCreateFolder, time.Now(), &err)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.ErrInvalidName
	}

	now := m.nowMillis()
	folder = &types.Folder{OwnerID: owner, Name: name, CreatedAt: now, UpdatedAt: now}
	err = m.store.Update(ctx, func(r types.Records) error {
		if err := requireOwner(ctx, r, owner); err != nil {
			return err
		}
		highest, ok, err := r.MaxFolderOrder(ctx, owner)
		if err != nil {
			return err
		}
		if ok {
			folder.Order = highest + 1
		}
		_, err = r.CreateFolder(ctx, folder)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.log.Info(ctx, "folder created", zap.String("folder.id", folder.FolderID), zap.Int("folder.order", folder.Order))
	return folder, nil
}

// RenameFolder changes a folder's name.
func (m *Manager) RenameFolder(ctx context.Context, owner, folderID, name string) (folder *types.Folder, err error) {
	defer m.observe(ctx, opRenameFolder, time.Now(), &err)

	if strings.TrimSpace(name) == "" {
		return nil, types.ErrInvalidName
	}
	err = m.store.Update(ctx, func(r types.Records) error {
		var err error
		folder, err = ownedFolder(ctx, r, owner, folderID)
		if err != nil {
			return err
		}
		if err := folder.Rename(name, m.nowMillis()); err != nil {
			return err
		}
		return r.UpdateFolder(ctx, folder)
	})
	if err != nil {
		return nil, err
	}
	return folder, nil
}

// ReorderFolders sets the order of each listed folder to its index in
// folderIDs. Every id must name a distinct folder of owner. Folders not
// listed keep their order. Returns all of the owner's folders in their new
// order.
func (m *Manager) ReorderFolders(ctx context.Context, owner string, folderIDs []string) (folders []*types.Folder, err error) {
	defer m.observe(ctx, opReorderFolders, time.Now(), &err)

	if len(folderIDs) == 0 {
		return nil, types.ErrNothingToUpdate
	}
	seen := make(map[string]bool, len(folderIDs))
	for _, id := range folderIDs {
		if id == "" || seen[id] {
			return nil, types.ErrInvalidData
		}
		seen[id] = true
	}

	err = m.store.Update(ctx, func(r types.Records) error {
		now := m.nowMillis()
		for i, id := range folderIDs {
			f, err := ownedFolder(ctx, r, owner, id)
			if err != nil {
				return err
			}
			f.Order = i
			f.UpdatedAt = now
			if err := r.UpdateFolder(ctx, f); err != nil {
				return err
			}
		}
		var err error
		folders, err = r.ListFolders(ctx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return folders, nil
}

// DeleteFolder removes a folder. Its chats are kept: each is unfiled and
// its updatedAt refreshed. Returns the number of chats unfiled.
func (m *Manager) DeleteFolder(ctx context.Context, owner, folderID string) (detached int, err error) {
	defer m.observe(ctx, opDeleteFolder, time.Now(), &err)

	err = m.store.Update(ctx, func(r types.Records) error {
		f, err := ownedFolder(ctx, r, owner, folderID)
		if err != nil {
			return err
		}
		if detached, err = r.DetachFolderChats(ctx, f.OwnerID, folderID, m.nowMillis()); err != nil {
			return err
		}
		return r.DeleteFolder(ctx, folderID)
	})
	if err != nil {
		return 0, err
	}

	m.log.Info(ctx, "folder deleted", zap.String("folder.id", folderID), zap.Int("chats.detached", detached))
	return detached, nil
}
