package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/zhiyuanbang/gaokao-backend/internal/data/repos/testutil"
	types "github.com/zhiyuanbang/gaokao-backend/internal/domain"
)

func TestProfileRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewProfileRepo(db, testutil.Logger(t))

	userID := uuid.New()
	p := &types.Profile{
		ID:        uuid.New(),
		UserID:    userID,
		Region:    "广东",
		Track:     "物理",
		Subjects:  "化学,生物",
		CycleYear: 2026,
		ExamScore: 598,
		ExamRank:  20411,
	}
	if err := repo.Upsert(ctx, tx, p); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repo.GetByUserID(ctx, tx, userID)
	if err != nil || got == nil {
		t.Fatalf("GetByUserID: got=%v err=%v", got, err)
	}
	if got.Region != "广东" || got.ExamScore != 598 {
		t.Fatalf("unexpected profile: %+v", got)
	}

	// Upsert with the same user rewrites profile fields in place.
	p2 := &types.Profile{
		ID:        uuid.New(),
		UserID:    userID,
		Region:    "湖南",
		Track:     "历史",
		Subjects:  "政治,地理",
		CycleYear: 2026,
		ExamScore: 601,
	}
	if err := repo.Upsert(ctx, tx, p2); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	got, err = repo.GetByUserID(ctx, tx, userID)
	if err != nil || got == nil {
		t.Fatalf("GetByUserID after update: got=%v err=%v", got, err)
	}
	if got.Region != "湖南" || got.Track != "历史" {
		t.Fatalf("expected updated profile, got %+v", got)
	}

	if missing, err := repo.GetByUserID(ctx, tx, uuid.New()); err != nil || missing != nil {
		t.Fatalf("expected nil for unknown user, got=%v err=%v", missing, err)
	}
}
