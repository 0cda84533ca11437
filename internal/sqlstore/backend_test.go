package sqlstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// postgresDSNEnv names the environment variable that enables the PostgreSQL
// runs of the shared store tests.
const postgresDSNEnv = "CHATKEEP_TEST_POSTGRES_DSN"

type testBackend struct {
	name    string
	backend *Backend
}

// setupBackend attaches a SQLite backend in a temporary directory and
// detaches it when the test ends.
func setupBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	return b
}

// setupBackends returns the backends the shared tests run against: SQLite
// always, PostgreSQL when CHATKEEP_TEST_POSTGRES_DSN is set. The PostgreSQL
// tables are emptied first.
func setupBackends(t *testing.T) []testBackend {
	t.Helper()
	out := []testBackend{{name: "sqlite", backend: setupBackend(t)}}

	dsn := os.Getenv(postgresDSNEnv)
	if dsn == "" {
		return out
	}
	pg := NewBackend()
	require.NoError(t, pg.Attach(types.Config{Backend: types.BackendPostgres, DSN: dsn}))
	t.Cleanup(func() { pg.Detach() })
	_, err := pg.db.Exec("TRUNCATE messages, chats, folders, users")
	require.NoError(t, err)
	return append(out, testBackend{name: "postgres", backend: pg})
}

// seedUser inserts a user with the given external id and returns its id.
func seedUser(t *testing.T, b *Backend, externalID string) string {
	t.Helper()
	var id string
	err := b.Update(context.Background(), func(r types.Records) error {
		var err error
		id, _, err = r.UpsertUser(context.Background(), &types.User{
			ExternalID:  externalID,
			Email:       externalID + "@example.com",
			DisplayName: externalID,
			CreatedAt:   1000,
		})
		return err
	})
	require.NoError(t, err)
	return id
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()
	b := NewBackend()
	config := types.Config{Backend: types.BackendSQLite, DataDir: tmpDir}

	require.NoError(t, b.Attach(config))
	defer b.Detach()

	_, err := os.Stat(filepath.Join(tmpDir, DatabaseFile))
	assert.NoError(t, err, "database file should exist")

	assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)
	assert.Equal(t, config, b.Config())
}

func TestBackend_AttachCreatesMissingDataDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "data")
	b := NewBackend()

	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}))
	defer b.Detach()

	_, err := os.Stat(filepath.Join(dataDir, DatabaseFile))
	assert.NoError(t, err)
}

func TestBackend_AttachRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  types.Config
		wantErr error
	}{
		{"empty backend", types.Config{}, types.ErrBackendEmpty},
		{"unknown backend", types.Config{Backend: "mysql"}, types.ErrBackendUnknown},
		{"postgres without dsn", types.Config{Backend: types.BackendPostgres}, types.ErrDSNRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBackend()
			assert.ErrorIs(t, b.Attach(tt.config), tt.wantErr)
			assert.NoError(t, b.Detach())
		})
	}
}

func TestBackend_Detach(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))

	require.NoError(t, b.Detach())
	assert.NoError(t, b.Detach(), "second Detach should not error")

	noop := func(types.Records) error { return nil }
	assert.ErrorIs(t, b.View(context.Background(), noop), types.ErrStoreDetached)
	assert.ErrorIs(t, b.Update(context.Background(), noop), types.ErrStoreDetached)

	_, err := b.Export(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = b.Import(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}

func TestBackend_DataSurvivesReattach(t *testing.T) {
	dataDir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dataDir}

	b := NewBackend()
	require.NoError(t, b.Attach(config))
	id := seedUser(t, b, "idp|reattach")
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(config))
	defer b2.Detach()

	err := b2.View(context.Background(), func(r types.Records) error {
		u, err := r.GetUser(context.Background(), id)
		if err != nil {
			return err
		}
		assert.Equal(t, "idp|reattach", u.ExternalID)
		return nil
	})
	require.NoError(t, err)
}

func TestBackend_UpdateRollsBackOnError(t *testing.T) {
	for _, tb := range setupBackends(t) {
		t.Run(tb.name, func(t *testing.T) {
			ctx := context.Background()
			owner := seedUser(t, tb.backend, "idp|rollback")
			boom := errors.New("boom")

			var chatID string
			err := tb.backend.Update(ctx, func(r types.Records) error {
				id, err := r.CreateChat(ctx, &types.Chat{OwnerID: owner, Title: "Doomed", CreatedAt: 1, UpdatedAt: 1})
				if err != nil {
					return err
				}
				chatID = id
				return boom
			})
			require.ErrorIs(t, err, boom)
			require.NotEmpty(t, chatID)

			err = tb.backend.View(ctx, func(r types.Records) error {
				_, err := r.GetChat(ctx, chatID)
				return err
			})
			assert.ErrorIs(t, err, types.ErrNotFound)
		})
	}
}
