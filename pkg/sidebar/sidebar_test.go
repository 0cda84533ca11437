package sidebar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

var now = time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

func ms(t time.Time) int64 { return t.UnixMilli() }

func strPtr(s string) *string { return &s }

func ids(chats []*types.Chat) []string {
	out := make([]string, len(chats))
	for i, c := range chats {
		out[i] = c.ChatID
	}
	return out
}

func TestBoundariesAt(t *testing.T) {
	b := BoundariesAt(now)

	assert.Equal(t, ms(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)), b.Today)
	assert.Equal(t, ms(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)), b.Yesterday)
	assert.Equal(t, ms(time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)), b.Last7Days)
}

func TestBoundariesUseLocationOfNow(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	local := time.Date(2026, 3, 15, 1, 0, 0, 0, loc)

	b := BoundariesAt(local)

	assert.Equal(t, ms(time.Date(2026, 3, 15, 0, 0, 0, 0, loc)), b.Today)
	// 23:00 UTC on the 14th is already the 15th in UTC+9.
	assert.Equal(t, BucketToday, b.Bucket(ms(time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC))))
}

func TestBucket(t *testing.T) {
	b := BoundariesAt(now)

	tests := []struct {
		name      string
		createdAt time.Time
		want      string
	}{
		{"start of today", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), BucketToday},
		{"later today", time.Date(2026, 3, 15, 13, 0, 0, 0, time.UTC), BucketToday},
		{"created in the future", time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC), BucketToday},
		{"last instant of yesterday", time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC), BucketYesterday},
		{"start of yesterday", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), BucketYesterday},
		{"day before yesterday", time.Date(2026, 3, 13, 12, 0, 0, 0, time.UTC), BucketLast7Days},
		{"seventh day before yesterday", time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), BucketLast7Days},
		{"eighth day before yesterday", time.Date(2026, 3, 6, 23, 59, 0, 0, time.UTC), BucketOlder},
		{"long ago", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), BucketOlder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Bucket(ms(tt.createdAt)))
		})
	}
}

func TestOrganizePinnedFiledChatAppearsTwice(t *testing.T) {
	folder := &types.Folder{FolderID: "F", Name: "Work", Order: 0}
	chat := &types.Chat{
		ChatID:    "c1",
		FolderID:  strPtr("F"),
		IsPinned:  true,
		CreatedAt: ms(now),
		UpdatedAt: ms(now),
	}

	g := Organize([]*types.Chat{chat}, []*types.Folder{folder}, now)

	assert.Equal(t, []string{"c1"}, ids(g.Pinned))
	require.Len(t, g.Folders, 1)
	assert.Equal(t, []string{"c1"}, ids(g.Folders[0].Chats))
	assert.Empty(t, g.Today)
	assert.Empty(t, g.Yesterday)
	assert.Empty(t, g.Last7Days)
	assert.Empty(t, g.Older)
}

func TestOrganize(t *testing.T) {
	folders := []*types.Folder{
		{FolderID: "f-a", Name: "Alpha", Order: 0},
		{FolderID: "f-b", Name: "Beta", Order: 1},
	}
	today := ms(now.Add(-time.Hour))
	yesterday := ms(now.Add(-24 * time.Hour))
	lastWeek := ms(now.Add(-4 * 24 * time.Hour))
	old := ms(now.Add(-60 * 24 * time.Hour))

	chats := []*types.Chat{
		{ChatID: "pinned-old", IsPinned: true, CreatedAt: old, UpdatedAt: old},
		{ChatID: "pinned-new", IsPinned: true, CreatedAt: today, UpdatedAt: today + 10},
		{ChatID: "filed-1", FolderID: strPtr("f-b"), CreatedAt: old, UpdatedAt: yesterday},
		{ChatID: "filed-2", FolderID: strPtr("f-b"), CreatedAt: old, UpdatedAt: today},
		{ChatID: "today-1", CreatedAt: today, UpdatedAt: today},
		{ChatID: "today-2", CreatedAt: today - 5, UpdatedAt: today + 5},
		{ChatID: "yest", CreatedAt: yesterday, UpdatedAt: yesterday},
		{ChatID: "week", CreatedAt: lastWeek, UpdatedAt: today + 20},
		{ChatID: "older", CreatedAt: old, UpdatedAt: old},
		{ChatID: "orphan", FolderID: strPtr("gone"), CreatedAt: old, UpdatedAt: old + 1},
	}

	g := Organize(chats, folders, now)

	assert.Equal(t, []string{"pinned-new", "pinned-old"}, ids(g.Pinned))
	require.Len(t, g.Folders, 2)
	assert.Equal(t, "f-a", g.Folders[0].Folder.FolderID)
	assert.Empty(t, g.Folders[0].Chats)
	assert.NotNil(t, g.Folders[0].Chats)
	assert.Equal(t, "f-b", g.Folders[1].Folder.FolderID)
	assert.Equal(t, []string{"filed-2", "filed-1"}, ids(g.Folders[1].Chats))
	assert.Equal(t, []string{"today-2", "today-1"}, ids(g.Today))
	assert.Equal(t, []string{"yest"}, ids(g.Yesterday))
	assert.Equal(t, []string{"week"}, ids(g.Last7Days))
	assert.Equal(t, []string{"orphan", "older"}, ids(g.Older))
}

func TestOrganizeRecencyBucketsAreExclusive(t *testing.T) {
	var chats []*types.Chat
	for h := 0; h < 24*20; h += 7 {
		at := ms(now.Add(-time.Duration(h) * time.Hour))
		chats = append(chats, &types.Chat{ChatID: time.UnixMilli(at).UTC().Format(time.RFC3339), CreatedAt: at, UpdatedAt: at})
	}

	g := Organize(chats, nil, now)

	seen := map[string]int{}
	for _, bucket := range [][]*types.Chat{g.Today, g.Yesterday, g.Last7Days, g.Older} {
		for _, c := range bucket {
			seen[c.ChatID]++
		}
	}
	assert.Len(t, seen, len(chats))
	for id, n := range seen {
		assert.Equal(t, 1, n, "chat %s placed in %d buckets", id, n)
	}
}

func TestOrganizeEmpty(t *testing.T) {
	g := Organize(nil, nil, now)

	assert.NotNil(t, g.Pinned)
	assert.NotNil(t, g.Folders)
	assert.NotNil(t, g.Today)
	assert.NotNil(t, g.Older)
	assert.Empty(t, g.Pinned)
}
