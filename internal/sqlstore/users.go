package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// UpsertUser returns the id of the user with u.ExternalID, inserting u when
// no such user exists. The insert relies on the unique index over
// external_id, so concurrent sign-ins of the same identity resolve to one
// row.
func (r *records) UpsertUser(ctx context.Context, u *types.User) (string, bool, error) {
	if u == nil {
		return "", false, types.ErrInvalidData
	}
	if u.ExternalID == "" {
		return "", false, types.ErrInvalidID
	}

	id := u.UserID
	if id == "" {
		var err error
		if id, err = newID(); err != nil {
			return "", false, err
		}
	}
	createdAt := u.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().UnixMilli()
	}

	res, err := r.exec(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT (external_id) DO NOTHING",
		id, u.ExternalID, u.Email, u.DisplayName, u.AvatarURL, createdAt,
	)
	if err != nil {
		return "", false, fmt.Errorf("inserting user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("inserting user: %w", err)
	}
	if n == 1 {
		u.UserID = id
		u.CreatedAt = createdAt
		return id, true, nil
	}

	existing, err := r.GetUserByExternalID(ctx, u.ExternalID)
	if err != nil {
		return "", false, err
	}
	*u = *existing
	return existing.UserID, false, nil
}

// GetUser retrieves a user by id.
func (r *records) GetUser(ctx context.Context, id string) (*types.User, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	var row userRow
	err := r.get(ctx, &row, "SELECT "+userColumns+" FROM users WHERE user_id = ?", id)
	if err != nil {
		return nil, notFound(err, "getting user %s", id)
	}
	return row.user(), nil
}

// GetUserByExternalID retrieves a user by identity-provider id.
func (r *records) GetUserByExternalID(ctx context.Context, externalID string) (*types.User, error) {
	if externalID == "" {
		return nil, types.ErrInvalidID
	}
	var row userRow
	err := r.get(ctx, &row, "SELECT "+userColumns+" FROM users WHERE external_id = ?", externalID)
	if err != nil {
		return nil, notFound(err, "getting user by external id")
	}
	return row.user(), nil
}
