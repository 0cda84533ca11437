// Package sidebar groups a user's chats for display: pinned chats, chats by
// folder, and unfiled chats by recency.
//
// Organize is pure. It never touches the store and can be called on any
// snapshot of chats and folders.
package sidebar

import (
	"sort"
	"time"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// Recency bucket names.
const (
	BucketToday     = "Today"
	BucketYesterday = "Yesterday"
	BucketLast7Days = "Last 7 Days"
	BucketOlder     = "Older"
)

// FolderGroup is a folder and the chats filed under it.
type FolderGroup struct {
	Folder *types.Folder `json:"folder"`
	Chats  []*types.Chat `json:"chats"`
}

// Groups is the organized sidebar. Every chat list is sorted by UpdatedAt
// descending. Slices are never nil.
type Groups struct {
	Pinned    []*types.Chat `json:"pinned"`
	Folders   []FolderGroup `json:"folders"`
	Today     []*types.Chat `json:"today"`
	Yesterday []*types.Chat `json:"yesterday"`
	Last7Days []*types.Chat `json:"last7Days"`
	Older     []*types.Chat `json:"older"`
}

// Boundaries are the recency cut-offs in epoch milliseconds. A chat created
// at or after Today is in the Today bucket, at or after Yesterday in the
// Yesterday bucket, at or after Last7Days in the Last 7 Days bucket, and
// Older otherwise.
type Boundaries struct {
	Today     int64
	Yesterday int64
	Last7Days int64
}

// BoundariesAt computes the recency cut-offs from calendar days in now's
// location.
func BoundariesAt(now time.Time) Boundaries {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)
	week := yesterday.AddDate(0, 0, -7)
	return Boundaries{
		Today:     today.UnixMilli(),
		Yesterday: yesterday.UnixMilli(),
		Last7Days: week.UnixMilli(),
	}
}

// Bucket returns the recency bucket for a creation time.
func (b Boundaries) Bucket(createdAt int64) string {
	switch {
	case createdAt >= b.Today:
		return BucketToday
	case createdAt >= b.Yesterday:
		return BucketYesterday
	case createdAt >= b.Last7Days:
		return BucketLast7Days
	default:
		return BucketOlder
	}
}

// Organize groups chats for the sidebar.
//
// A pinned chat appears under Pinned and, when filed, under its folder too.
// Only chats that are neither pinned nor filed land in a recency bucket.
// Folder groups follow the order of folders as given; callers pass them
// sorted by Order. A chat whose folder is not among folders is treated as
// unfiled.
func Organize(chats []*types.Chat, folders []*types.Folder, now time.Time) Groups {
	g := Groups{
		Pinned:    []*types.Chat{},
		Folders:   make([]FolderGroup, 0, len(folders)),
		Today:     []*types.Chat{},
		Yesterday: []*types.Chat{},
		Last7Days: []*types.Chat{},
		Older:     []*types.Chat{},
	}

	index := make(map[string]int, len(folders))
	for _, f := range folders {
		index[f.FolderID] = len(g.Folders)
		g.Folders = append(g.Folders, FolderGroup{Folder: f, Chats: []*types.Chat{}})
	}

	b := BoundariesAt(now)
	for _, c := range chats {
		if c.IsPinned {
			g.Pinned = append(g.Pinned, c)
		}
		filed := false
		if c.FolderID != nil {
			if i, ok := index[*c.FolderID]; ok {
				g.Folders[i].Chats = append(g.Folders[i].Chats, c)
				filed = true
			}
		}
		if filed || c.IsPinned {
			continue
		}
		switch b.Bucket(c.CreatedAt) {
		case BucketToday:
			g.Today = append(g.Today, c)
		case BucketYesterday:
			g.Yesterday = append(g.Yesterday, c)
		case BucketLast7Days:
			g.Last7Days = append(g.Last7Days, c)
		default:
			g.Older = append(g.Older, c)
		}
	}

	byRecentUpdate(g.Pinned)
	for i := range g.Folders {
		byRecentUpdate(g.Folders[i].Chats)
	}
	byRecentUpdate(g.Today)
	byRecentUpdate(g.Yesterday)
	byRecentUpdate(g.Last7Days)
	byRecentUpdate(g.Older)
	return g
}

// byRecentUpdate sorts chats by UpdatedAt descending, ties by id.
func byRecentUpdate(chats []*types.Chat) {
	sort.SliceStable(chats, func(i, j int) bool {
		if chats[i].UpdatedAt != chats[j].UpdatedAt {
			return chats[i].UpdatedAt > chats[j].UpdatedAt
		}
		return chats[i].ChatID < chats[j].ChatID
	})
}
