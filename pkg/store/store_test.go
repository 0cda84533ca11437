package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

func TestNewBackendStartsDetached(t *testing.T) {
	s := NewBackend()
	err := s.View(context.Background(), func(types.Records) error { return nil })
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}

func TestOpen(t *testing.T) {
	s, err := Open(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Detach() })

	err = s.View(context.Background(), func(r types.Records) error {
		_, err := r.ListFolders(context.Background(), "nobody")
		return err
	})
	assert.NoError(t, err)
}

func TestOpenRejectsBadConfig(t *testing.T) {
	_, err := Open(types.Config{Backend: "mysql", DataDir: t.TempDir()})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}
