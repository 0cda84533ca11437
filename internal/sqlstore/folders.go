package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// CreateFolder inserts f, generating a UUID v7 when f.FolderID is empty.
// Returns the folder id.
func (r *records) CreateFolder(ctx context.Context, f *types.Folder) (string, error) {
	if f == nil {
		return "", types.ErrInvalidData
	}
	if f.OwnerID == "" {
		return "", types.ErrInvalidID
	}
	if strings.TrimSpace(f.Name) == "" {
		return "", types.ErrInvalidName
	}
	if f.FolderID == "" {
		id, err := newID()
		if err != nil {
			return "", err
		}
		f.FolderID = id
	}

	_, err := r.exec(ctx,
		"INSERT INTO folders ("+folderColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		f.FolderID, f.OwnerID, f.Name, f.Order, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("inserting folder: %w", err)
	}
	return f.FolderID, nil
}

// GetFolder retrieves a folder by id.
func (r *records) GetFolder(ctx context.Context, id string) (*types.Folder, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	var row folderRow
	err := r.get(ctx, &row, "SELECT "+folderColumns+" FROM folders WHERE folder_id = ?"+r.forUpdate(), id)
	if err != nil {
		return nil, notFound(err, "getting folder %s", id)
	}
	return row.folder(), nil
}

// UpdateFolder writes the name, order, and updated time of an existing
// folder.
func (r *records) UpdateFolder(ctx context.Context, f *types.Folder) error {
	if f == nil {
		return types.ErrInvalidData
	}
	if f.FolderID == "" {
		return types.ErrInvalidID
	}
	if strings.TrimSpace(f.Name) == "" {
		return types.ErrInvalidName
	}
	return r.execOne(ctx, "updating folder "+f.FolderID,
		"UPDATE folders SET name = ?, sort_order = ?, updated_at = ? WHERE folder_id = ?",
		f.Name, f.Order, f.UpdatedAt, f.FolderID,
	)
}

// DeleteFolder removes a folder. Chats still referencing it make the
// delete fail; callers detach them first.
func (r *records) DeleteFolder(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return r.execOne(ctx, "deleting folder "+id, "DELETE FROM folders WHERE folder_id = ?", id)
}

// ListFolders returns the owner's folders by order ascending, ties by
// creation time. Returns an empty slice when the owner has none.
func (r *records) ListFolders(ctx context.Context, ownerID string) ([]*types.Folder, error) {
	if ownerID == "" {
		return nil, types.ErrInvalidID
	}
	var rows []folderRow
	err := r.selectAll(ctx, &rows,
		"SELECT "+folderColumns+" FROM folders WHERE owner_id = ? ORDER BY sort_order ASC, created_at ASC, folder_id ASC",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	folders := make([]*types.Folder, 0, len(rows))
	for _, row := range rows {
		folders = append(folders, row.folder())
	}
	return folders, nil
}

// MaxFolderOrder returns the highest order among the owner's folders. The
// bool is false when the owner has no folders.
func (r *records) MaxFolderOrder(ctx context.Context, ownerID string) (int, bool, error) {
	if ownerID == "" {
		return 0, false, types.ErrInvalidID
	}
	var highest sql.NullInt64
	err := r.get(ctx, &highest, "SELECT MAX(sort_order) FROM folders WHERE owner_id = ?", ownerID)
	if err != nil {
		return 0, false, fmt.Errorf("reading max folder order: %w", err)
	}
	if !highest.Valid {
		return 0, false, nil
	}
	return int(highest.Int64), true, nil
}
