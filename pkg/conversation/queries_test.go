package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/mesh-intelligence/chatkeep/internal/logging"
	"github.com/mesh-intelligence/chatkeep/internal/metrics"
	"github.com/mesh-intelligence/chatkeep/internal/sqlstore"
	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

func chatIDs(chats []*types.Chat) []string {
	ids := make([]string, 0, len(chats))
	for _, c := range chats {
		ids = append(ids, c.ChatID)
	}
	return ids
}

func TestSidebar(t *testing.T) {
	f := setupManager(t)
	ctx := context.Background()

	folder, err := f.mgr.CreateFolder(ctx, f.owner, "Work")
	require.NoError(t, err)

	old, err := f.mgr.StartChat(ctx, f.owner, "an old chat", nil)
	require.NoError(t, err)
	f.clock.Advance(10 * 24 * time.Hour)
	filed, err := f.mgr.StartChat(ctx, f.owner, "a filed chat", &folder.FolderID)
	require.NoError(t, err)
	f.clock.Advance(24 * time.Hour)
	pinned, err := f.mgr.StartChat(ctx, f.owner, "a pinned chat", nil)
	require.NoError(t, err)
	_, err = f.mgr.UpdateChat(ctx, f.owner, pinned.ChatID, types.ChatUpdate{IsPinned: boolPtr(true)})
	require.NoError(t, err)
	f.clock.Advance(24 * time.Hour)
	today, err := f.mgr.StartChat(ctx, f.owner, "a chat from today", nil)
	require.NoError(t, err)

	groups, err := f.mgr.Sidebar(ctx, f.owner)
	require.NoError(t, err)

	assert.Equal(t, []string{pinned.ChatID}, chatIDs(groups.Pinned))
	require.Len(t, groups.Folders, 1)
	assert.Equal(t, folder.FolderID, groups.Folders[0].Folder.FolderID)
	assert.Equal(t, []string{filed.ChatID}, chatIDs(groups.Folders[0].Chats))
	assert.Equal(t, []string{today.ChatID}, chatIDs(groups.Today))
	assert.Empty(t, groups.Yesterday)
	assert.Empty(t, groups.Last7Days)
	assert.Equal(t, []string{old.ChatID}, chatIDs(groups.Older))
}

func TestSidebarIsPerOwner(t *testing.T) {
	f := setupManager(t)
	ctx := context.Background()
	_, err := f.mgr.StartChat(ctx, f.owner, "mine", nil)
	require.NoError(t, err)

	groups, err := f.mgr.Sidebar(ctx, f.otherUser(t))
	require.NoError(t, err)
	assert.Empty(t, groups.Pinned)
	assert.Empty(t, groups.Folders)
	assert.Empty(t, groups.Today)
	assert.Empty(t, groups.Older)
}

func TestOperationsAreObserved(t *testing.T) {
	store := sqlstore.NewBackend()
	require.NoError(t, store.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { store.Detach() })

	reg := prometheus.NewRegistry()
	cfg := metrics.DefaultConfig()
	cfg.Registry = reg
	tl := logging.NewTestLogger()
	mgr := New(store, WithLogger(tl.Logger), WithMetrics(metrics.New(cfg)))
	ctx := context.Background()

	u, _, err := mgr.SyncUser(ctx, types.Identity{ExternalID: "idp|1"})
	require.NoError(t, err)
	chat, err := mgr.StartChat(ctx, u.UserID, "How do I learn React?", nil)
	require.NoError(t, err)
	_, err = mgr.AppendMessage(ctx, u.UserID, chat.ChatID, "Start with components", types.RoleAssistant)
	require.NoError(t, err)
	_, err = mgr.GetChat(ctx, u.UserID, "missing")
	require.ErrorIs(t, err, types.ErrNotFound)
	_, err = mgr.CreateFolder(ctx, u.UserID, "")
	require.ErrorIs(t, err, types.ErrInvalidName)

	assert.Equal(t, 1.0, counter(t, reg, "chatkeep_operations_total", map[string]string{"operation": opStartChat, "result": metrics.ResultOK}))
	assert.Equal(t, 1.0, counter(t, reg, "chatkeep_operations_total", map[string]string{"operation": opGetChat, "result": metrics.ResultNotFound}))
	assert.Equal(t, 1.0, counter(t, reg, "chatkeep_operations_total", map[string]string{"operation": opCreateFolder, "result": metrics.ResultInvalid}))
	assert.Equal(t, 1.0, counter(t, reg, "chatkeep_titles_total", map[string]string{"strategy": metrics.StrategyFirstMessage}))
	assert.Equal(t, 1.0, counter(t, reg, "chatkeep_titles_total", map[string]string{"strategy": metrics.StrategyExchange}))

	tl.AssertLogged(t, zapcore.InfoLevel, "user created")
	tl.AssertLogged(t, zapcore.InfoLevel, "chat retitled")
	tl.AssertField(t, "chat retitled", "strategy", metrics.StrategyExchange)
	tl.AssertLogged(t, zapcore.DebugLevel, "operation rejected")
	tl.AssertNotLogged(t, zapcore.ErrorLevel, "operation failed")
}

func TestBackendFailureIsLoggedAsError(t *testing.T) {
	store := sqlstore.NewBackend()
	tl := logging.NewTestLogger()
	mgr := New(store, WithLogger(tl.Logger))

	_, err := mgr.ListFolders(context.Background(), "someone")
	require.ErrorIs(t, err, types.ErrStoreDetached)
	tl.AssertLogged(t, zapcore.ErrorLevel, "operation failed")
}

// counter returns the value of a counter series, or -1 when it is absent.
func counter(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
	series:
		for _, m := range fam.GetMetric() {
			got := map[string]string{}
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue series
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return -1
}
