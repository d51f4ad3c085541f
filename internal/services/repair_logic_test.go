package services

import (
	"testing"

	"github.com/google/uuid"

	volRepos "github.com/zhiyuanbang/gaokao-backend/internal/data/repos/volunteer"
	types "github.com/zhiyuanbang/gaokao-backend/internal/domain"
)

func driftedRow(group *string, groupRank, itemRank int) *types.Choice {
	return &types.Choice{ID: uuid.New(), GroupCode: group, GroupRank: groupRank, ItemRank: itemRank}
}

func byID(updates []volRepos.RankUpdate) map[uuid.UUID]volRepos.RankUpdate {
	m := make(map[uuid.UUID]volRepos.RankUpdate, len(updates))
	for _, u := range updates {
		m[u.ID] = u
	}
	return m
}

func TestRenumberPartitionFirstSeenGroups(t *testing.T) {
	gA := strPtr("G-A")
	gB := strPtr("G-B")
	// Drifted ranks with gaps; created-at order is the slice order.
	rows := []*types.Choice{
		driftedRow(gA, 3, 2),
		driftedRow(gB, 7, 5),
		driftedRow(gA, 3, 9),
		driftedRow(nil, 12, 1),
	}

	updates := renumberPartition(rows)
	if len(updates) != 4 {
		t.Fatalf("expected 4 updates, got %d", len(updates))
	}
	m := byID(updates)

	if u := m[rows[0].ID]; u.GroupRank != 1 || u.ItemRank != 1 {
		t.Fatalf("first G-A row: got (%d,%d), want (1,1)", u.GroupRank, u.ItemRank)
	}
	if u := m[rows[1].ID]; u.GroupRank != 2 || u.ItemRank != 1 {
		t.Fatalf("first G-B row: got (%d,%d), want (2,1)", u.GroupRank, u.ItemRank)
	}
	if u := m[rows[2].ID]; u.GroupRank != 1 || u.ItemRank != 2 {
		t.Fatalf("second G-A row: got (%d,%d), want (1,2)", u.GroupRank, u.ItemRank)
	}
	if u := m[rows[3].ID]; u.GroupRank != 3 || u.ItemRank != 1 {
		t.Fatalf("standalone row: got (%d,%d), want (3,1)", u.GroupRank, u.ItemRank)
	}
}

func TestRenumberPartitionIdempotent(t *testing.T) {
	gA := strPtr("G-A")
	rows := []*types.Choice{
		driftedRow(gA, 5, 3),
		driftedRow(gA, 5, 8),
		driftedRow(nil, 9, 2),
	}

	first := renumberPartition(rows)
	for _, u := range first {
		for _, row := range rows {
			if row.ID == u.ID {
				row.GroupRank = u.GroupRank
				row.ItemRank = u.ItemRank
			}
		}
	}
	second := renumberPartition(rows)
	m := byID(second)
	for _, row := range rows {
		u := m[row.ID]
		if u.GroupRank != row.GroupRank || u.ItemRank != row.ItemRank {
			t.Fatalf("second pass changed ranks for %s: (%d,%d) -> (%d,%d)",
				row.ID, row.GroupRank, row.ItemRank, u.GroupRank, u.ItemRank)
		}
	}
}
