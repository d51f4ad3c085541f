package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	volRepos "github.com/zhiyuanbang/gaokao-backend/internal/data/repos/volunteer"
	types "github.com/zhiyuanbang/gaokao-backend/internal/domain"
	"github.com/zhiyuanbang/gaokao-backend/internal/domain/volunteer"
	"github.com/zhiyuanbang/gaokao-backend/internal/platform/logger"
)

// RepairService renumbers every partition back to contiguous ranks. It is an
// operator-triggered maintenance pass, not part of the request flow, and it
// blocks ordinary mutations for its duration. Idempotent: a second run right
// after a first rewrites nothing.
type RepairService interface {
	RepairAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type repairService struct {
	db         *gorm.DB
	log        *logger.Logger
	choiceRepo volRepos.ChoiceRepo
}

func NewRepairService(db *gorm.DB, baseLog *logger.Logger, choiceRepo volRepos.ChoiceRepo) RepairService {
	return &repairService{
		db:         db,
		log:        baseLog.With("service", "RepairService"),
		choiceRepo: choiceRepo,
	}
}

func (s *repairService) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *repairService) RepairAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	var fixed int64
	err := s.conn(tx).Transaction(func(txx *gorm.DB) error {
		if err := s.choiceRepo.LockAll(ctx, txx); err != nil {
			return err
		}
		rows, err := s.choiceRepo.ListAllOrdered(ctx, txx)
		if err != nil {
			return err
		}

		// Bucket by partition, preserving the created-at order within each
		// bucket. The subject combo is re-normalized here so rows written
		// before combo normalization still land in the right partition.
		order := make([]string, 0)
		partitions := make(map[string][]*types.Choice)
		for _, row := range rows {
			pk := fmt.Sprintf("%s|%s|%s|%s|%d",
				row.UserID, row.Region, row.Track,
				volunteer.ParseSubjectSet(row.SubjectCombo).Combo(),
				row.CycleYear,
			)
			if _, ok := partitions[pk]; !ok {
				order = append(order, pk)
			}
			partitions[pk] = append(partitions[pk], row)
		}

		for _, pk := range order {
			updates := renumberPartition(partitions[pk])
			n, err := s.choiceRepo.BulkUpdateRanks(ctx, txx, updates)
			if err != nil {
				return err
			}
			fixed += n
		}

		s.log.Info("Volunteer rank repair finished",
			"partitions", len(order),
			"rows", len(rows),
			"rewritten", fixed,
		)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return fixed, nil
}

// renumberPartition reassigns contiguous ranks for one partition's rows,
// which must already be in created-at order. Group ranks follow first-seen
// order of distinct group codes; a nil group code always opens a new group.
func renumberPartition(rows []*types.Choice) []volRepos.RankUpdate {
	nextGroup := 0
	groupByCode := make(map[string]int)
	nextItem := make(map[int]int)

	updates := make([]volRepos.RankUpdate, 0, len(rows))
	for _, row := range rows {
		var groupRank int
		if row.GroupCode != nil {
			if rank, ok := groupByCode[*row.GroupCode]; ok {
				groupRank = rank
			} else {
				nextGroup++
				groupRank = nextGroup
				groupByCode[*row.GroupCode] = groupRank
			}
		} else {
			nextGroup++
			groupRank = nextGroup
		}

		nextItem[groupRank]++
		updates = append(updates, volRepos.RankUpdate{
			ID:        row.ID,
			GroupRank: groupRank,
			ItemRank:  nextItem[groupRank],
		})
	}
	return updates
}
