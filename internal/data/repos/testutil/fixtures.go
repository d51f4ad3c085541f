package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/zhiyuanbang/gaokao-backend/internal/domain"
	"github.com/zhiyuanbang/gaokao-backend/internal/domain/volunteer"
)

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, region, track, subjects string) *types.Profile {
	tb.Helper()
	p := &types.Profile{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Region:    region,
		Track:     track,
		Subjects:  subjects,
		CycleYear: 2026,
		ExamScore: 612,
		ExamRank:  15321,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

// PartitionOf derives the partition a seeded profile maps to.
func PartitionOf(p *types.Profile) types.PartitionKey {
	return types.PartitionKey{
		UserID:    p.UserID,
		Region:    p.Region,
		Track:     p.Track,
		Subjects:  volunteer.ParseSubjectSet(p.Subjects),
		CycleYear: p.CycleYear,
	}
}

func SeedChoice(tb testing.TB, ctx context.Context, tx *gorm.DB, key types.PartitionKey, groupCode *string, groupRank, itemRank int, major string) *types.Choice {
	tb.Helper()
	c := &types.Choice{
		ID:           uuid.New(),
		UserID:       key.UserID,
		Region:       key.Region,
		Track:        key.Track,
		SubjectCombo: key.Combo(),
		CycleYear:    key.CycleYear,
		GroupRank:    groupRank,
		ItemRank:     itemRank,
		GroupCode:    groupCode,
		MajorName:    major,
		Batch:        "本科批",
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed choice: %v", err)
	}
	return c
}

func PtrStr(v string) *string { return &v }

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }
