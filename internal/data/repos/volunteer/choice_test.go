package volunteer

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/zhiyuanbang/gaokao-backend/internal/data/repos/testutil"
)

func TestChoiceRepoReadPaths(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewChoiceRepo(db, testutil.Logger(t))

	p := testutil.SeedProfile(t, ctx, tx, "北京", "物理", "化学,生物")
	key := testutil.PartitionOf(p)

	c11 := testutil.SeedChoice(t, ctx, tx, key, testutil.PtrStr("PKU01"), 1, 1, "计算机科学与技术")
	c12 := testutil.SeedChoice(t, ctx, tx, key, testutil.PtrStr("PKU01"), 1, 2, "软件工程")
	c21 := testutil.SeedChoice(t, ctx, tx, key, nil, 2, 1, "临床医学")

	rows, err := repo.ListByPartition(ctx, tx, key)
	if err != nil {
		t.Fatalf("ListByPartition: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, want := range []uuid.UUID{c11.ID, c12.ID, c21.ID} {
		if rows[i].ID != want {
			t.Fatalf("row %d out of order: got %s want %s", i, rows[i].ID, want)
		}
	}

	group, err := repo.ListGroup(ctx, tx, key, 1)
	if err != nil || len(group) != 2 {
		t.Fatalf("ListGroup: rows=%d err=%v", len(group), err)
	}

	got, err := repo.GetByOwnerAndID(ctx, tx, key.UserID, c12.ID)
	if err != nil || got == nil || got.MajorName != "软件工程" {
		t.Fatalf("GetByOwnerAndID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByOwnerAndID(ctx, tx, uuid.New(), c12.ID); err != nil || got != nil {
		t.Fatalf("expected nil for foreign owner, got=%v err=%v", got, err)
	}

	slot, err := repo.GetBySlot(ctx, tx, key, 2, 1)
	if err != nil || slot == nil || slot.ID != c21.ID {
		t.Fatalf("GetBySlot: got=%v err=%v", slot, err)
	}
	if slot, err := repo.GetBySlot(ctx, tx, key, 2, 2); err != nil || slot != nil {
		t.Fatalf("expected empty slot, got=%v err=%v", slot, err)
	}
}

func TestChoiceRepoAggregates(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewChoiceRepo(db, testutil.Logger(t))

	p := testutil.SeedProfile(t, ctx, tx, "上海", "物理", "化学,地理")
	key := testutil.PartitionOf(p)

	if max, err := repo.MaxGroupRank(ctx, tx, key); err != nil || max != 0 {
		t.Fatalf("MaxGroupRank empty: max=%d err=%v", max, err)
	}
	if max, err := repo.MaxItemRank(ctx, tx, key, 1); err != nil || max != 0 {
		t.Fatalf("MaxItemRank empty: max=%d err=%v", max, err)
	}

	testutil.SeedChoice(t, ctx, tx, key, testutil.PtrStr("FDU02"), 1, 1, "数学与应用数学")
	testutil.SeedChoice(t, ctx, tx, key, testutil.PtrStr("FDU02"), 1, 2, "物理学")
	testutil.SeedChoice(t, ctx, tx, key, testutil.PtrStr("SJTU01"), 3, 1, "电子信息工程")

	if max, err := repo.MaxGroupRank(ctx, tx, key); err != nil || max != 3 {
		t.Fatalf("MaxGroupRank: max=%d err=%v", max, err)
	}
	if max, err := repo.MaxItemRank(ctx, tx, key, 1); err != nil || max != 2 {
		t.Fatalf("MaxItemRank: max=%d err=%v", max, err)
	}
	if n, err := repo.CountGroup(ctx, tx, key, 1); err != nil || n != 2 {
		t.Fatalf("CountGroup: n=%d err=%v", n, err)
	}

	rank, ok, err := repo.GroupRankForCode(ctx, tx, key, "SJTU01")
	if err != nil || !ok || rank != 3 {
		t.Fatalf("GroupRankForCode: rank=%d ok=%v err=%v", rank, ok, err)
	}
	if _, ok, err := repo.GroupRankForCode(ctx, tx, key, "NOPE"); err != nil || ok {
		t.Fatalf("expected unknown group code, ok=%v err=%v", ok, err)
	}
}

func TestChoiceRepoFindDuplicate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewChoiceRepo(db, testutil.Logger(t))

	p := testutil.SeedProfile(t, ctx, tx, "江苏", "历史", "政治,地理")
	key := testutil.PartitionOf(p)

	testutil.SeedChoice(t, ctx, tx, key, testutil.PtrStr("NJU01"), 1, 1, "法学")
	testutil.SeedChoice(t, ctx, tx, key, nil, 2, 1, "汉语言文学")

	dup, err := repo.FindDuplicate(ctx, tx, key, testutil.PtrStr("NJU01"), "法学", "本科批", "")
	if err != nil || dup == nil {
		t.Fatalf("expected duplicate hit, got=%v err=%v", dup, err)
	}

	// Null group codes count as equal to each other, not to every code.
	dup, err = repo.FindDuplicate(ctx, tx, key, nil, "汉语言文学", "本科批", "")
	if err != nil || dup == nil {
		t.Fatalf("expected null-code duplicate hit, got=%v err=%v", dup, err)
	}
	dup, err = repo.FindDuplicate(ctx, tx, key, nil, "法学", "本科批", "")
	if err != nil || dup != nil {
		t.Fatalf("null code must not match coded row, got=%v err=%v", dup, err)
	}

	dup, err = repo.FindDuplicate(ctx, tx, key, testutil.PtrStr("NJU01"), "法学", "本科批", "冲刺")
	if err != nil || dup != nil {
		t.Fatalf("remark mismatch must not be a duplicate, got=%v err=%v", dup, err)
	}
}

func TestChoiceRepoBulkUpdateRanksSwap(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewChoiceRepo(db, testutil.Logger(t))

	p := testutil.SeedProfile(t, ctx, tx, "广东", "物理", "化学,生物")
	key := testutil.PartitionOf(p)

	a := testutil.SeedChoice(t, ctx, tx, key, testutil.PtrStr("SYSU01"), 1, 1, "口腔医学")
	b := testutil.SeedChoice(t, ctx, tx, key, testutil.PtrStr("SCUT01"), 2, 1, "建筑学")

	// Swapping two occupied slots in one statement only works because the
	// slot constraint is deferred until commit.
	n, err := repo.BulkUpdateRanks(ctx, tx, []RankUpdate{
		{ID: a.ID, GroupRank: 2, ItemRank: 1},
		{ID: b.ID, GroupRank: 1, ItemRank: 1},
	})
	if err != nil {
		t.Fatalf("BulkUpdateRanks: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows touched, got %d", n)
	}

	got, err := repo.GetBySlot(ctx, tx, key, 1, 1)
	if err != nil || got == nil || got.ID != b.ID {
		t.Fatalf("slot (1,1) after swap: got=%v err=%v", got, err)
	}

	// No-op updates touch nothing.
	n, err = repo.BulkUpdateRanks(ctx, tx, []RankUpdate{
		{ID: a.ID, GroupRank: 2, ItemRank: 1},
	})
	if err != nil || n != 0 {
		t.Fatalf("no-op update: n=%d err=%v", n, err)
	}
}

func TestChoiceRepoDeleteByOwnerAndIDs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewChoiceRepo(db, testutil.Logger(t))

	p := testutil.SeedProfile(t, ctx, tx, "湖北", "物理", "化学,政治")
	key := testutil.PartitionOf(p)

	a := testutil.SeedChoice(t, ctx, tx, key, testutil.PtrStr("WHU01"), 1, 1, "测绘工程")
	b := testutil.SeedChoice(t, ctx, tx, key, testutil.PtrStr("WHU01"), 1, 2, "遥感科学与技术")

	// Foreign owner deletes nothing even with the right ids.
	n, err := repo.DeleteByOwnerAndIDs(ctx, tx, uuid.New(), []uuid.UUID{a.ID, b.ID})
	if err != nil || n != 0 {
		t.Fatalf("foreign delete: n=%d err=%v", n, err)
	}

	n, err = repo.DeleteByOwnerAndIDs(ctx, tx, key.UserID, []uuid.UUID{a.ID, uuid.New()})
	if err != nil || n != 1 {
		t.Fatalf("delete: n=%d err=%v", n, err)
	}
	rows, err := repo.ListByPartition(ctx, tx, key)
	if err != nil || len(rows) != 1 || rows[0].ID != b.ID {
		t.Fatalf("expected only second row to survive, rows=%d err=%v", len(rows), err)
	}
}

func TestChoiceRepoSlotConstraint(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewChoiceRepo(db, testutil.Logger(t))

	p := testutil.SeedProfile(t, ctx, tx, "海南", "物理", "化学,生物")
	key := testutil.PartitionOf(p)
	c := testutil.SeedChoice(t, ctx, tx, key, testutil.PtrStr("HNU01"), 1, 1, "旅游管理")

	dup := *c
	dup.ID = uuid.New()
	dup.MajorName = "会展经济与管理"
	err := repo.Create(ctx, tx, &dup)
	if err == nil {
		t.Fatalf("expected unique violation on occupied slot")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	// The violation aborts the transaction; Cleanup rolls it back.
}
