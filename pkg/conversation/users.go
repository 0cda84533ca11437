package conversation

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// SyncUser records a signed-in identity. If a user with the same external
// id exists it is returned unchanged; otherwise a new user is created. The
// bool reports whether the user was created.
func (m *Manager) SyncUser(ctx context.Context, id types.Identity) (user *types.User, created bool, err error) {
	defer m.observe(ctx, opSyncUser, time.Now(), &err)

	if err := id.Validate(); err != nil {
		return nil, false, err
	}

	u := &types.User{
		ExternalID:  id.ExternalID,
		Email:       strings.TrimSpace(id.Email),
		DisplayName: strings.TrimSpace(id.DisplayName),
		AvatarURL:   id.AvatarURL,
		CreatedAt:   m.nowMillis(),
	}
	err = m.store.Update(ctx, func(r types.Records) error {
		var err error
		_, created, err = r.UpsertUser(ctx, u)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		m.log.Info(ctx, "user created", zap.String("user.id", u.UserID))
	}
	return u, created, nil
}
