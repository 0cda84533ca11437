// Package store provides the public factory for chatkeep record stores.
// The SQL implementation stays internal; callers program against
// types.Store.
package store

import (
	"github.com/mesh-intelligence/chatkeep/internal/sqlstore"
	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// NewBackend creates a store for either supported backend. The store is not
// attached; call Attach with a Config to open it.
//
// Example:
//
//	s := store.NewBackend()
//	err := s.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".chatkeep-db",
//	})
//	defer s.Detach()
func NewBackend() types.Store {
	return sqlstore.NewBackend()
}

// Open creates a store and attaches it to the backend described by cfg.
func Open(cfg types.Config) (types.Store, error) {
	s := sqlstore.NewBackend()
	if err := s.Attach(cfg); err != nil {
		return nil, err
	}
	return s, nil
}
