package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/zhiyuanbang/gaokao-backend/internal/clients/catalog"
	volRepos "github.com/zhiyuanbang/gaokao-backend/internal/data/repos/volunteer"
	types "github.com/zhiyuanbang/gaokao-backend/internal/domain"
	"github.com/zhiyuanbang/gaokao-backend/internal/platform/logger"
	"github.com/zhiyuanbang/gaokao-backend/internal/platform/regions"
)

const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

type CreateChoiceInput struct {
	GroupCode  *string           `json:"group_code,omitempty"`
	MajorName  string            `json:"major_name"`
	Batch      string            `json:"batch"`
	Quota      string            `json:"quota,omitempty"`
	Tuition    string            `json:"tuition,omitempty"`
	Remark     string            `json:"remark,omitempty"`
	ScoreLines []types.ScoreLine `json:"score_lines,omitempty"`
}

type BatchDeleteResult struct {
	Deleted int         `json:"deleted"`
	Failed  []uuid.UUID `json:"failed"`
}

// VolunteerService is the choice-list engine surface consumed by the
// mini-app handlers and exporters.
type VolunteerService interface {
	CreateChoice(ctx context.Context, tx *gorm.DB, userID uuid.UUID, in CreateChoiceInput) (*types.Choice, error)
	ListChoices(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.VolunteerList, error)
	DeleteChoice(ctx context.Context, tx *gorm.DB, userID, choiceID uuid.UUID) error
	DeleteChoices(ctx context.Context, tx *gorm.DB, userID uuid.UUID, choiceIDs []uuid.UUID) (BatchDeleteResult, error)
	MoveGroup(ctx context.Context, tx *gorm.DB, userID uuid.UUID, groupRank int, direction string) (int64, error)
	MoveItem(ctx context.Context, tx *gorm.DB, userID, choiceID uuid.UUID, direction string) (*types.Choice, error)
}

type volunteerService struct {
	db         *gorm.DB
	log        *logger.Logger
	choiceRepo volRepos.ChoiceRepo
	resolver   PartitionResolver
	scores     ScoreService
	catalog    catalog.Client
	regions    *regions.Table
}

func NewVolunteerService(
	db *gorm.DB,
	baseLog *logger.Logger,
	choiceRepo volRepos.ChoiceRepo,
	resolver PartitionResolver,
	scores ScoreService,
	catalogClient catalog.Client,
	regionTable *regions.Table,
) VolunteerService {
	return &volunteerService{
		db:         db,
		log:        baseLog.With("service", "VolunteerService"),
		choiceRepo: choiceRepo,
		resolver:   resolver,
		scores:     scores,
		catalog:    catalogClient,
		regions:    regionTable,
	}
}

func (s *volunteerService) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func step(direction string) (int, error) {
	switch direction {
	case DirectionUp:
		return -1, nil
	case DirectionDown:
		return 1, nil
	default:
		return 0, fmt.Errorf("invalid direction %q", direction)
	}
}

func (s *volunteerService) CreateChoice(ctx context.Context, tx *gorm.DB, userID uuid.UUID, in CreateChoiceInput) (*types.Choice, error) {
	if in.MajorName == "" {
		return nil, fmt.Errorf("missing major name")
	}
	key, _, err := s.resolver.Resolve(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	created, err := s.createOnce(ctx, tx, key, in)
	if err == nil {
		return created, nil
	}
	if !volRepos.IsUniqueViolation(err) {
		return nil, err
	}

	// Lost an allocation race to a concurrent create. Recompute ranks once
	// with fresh state; a second loss goes back to the caller.
	s.log.Warn("Choice allocation race, retrying once",
		"user_id", userID,
		"region", key.Region,
		"cycle_year", key.CycleYear,
	)
	created, err = s.createOnce(ctx, tx, key, in)
	if err != nil {
		if volRepos.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: partition %s", ErrRaceConflict, key.LockToken())
		}
		return nil, err
	}
	return created, nil
}

func (s *volunteerService) createOnce(ctx context.Context, tx *gorm.DB, key types.PartitionKey, in CreateChoiceInput) (*types.Choice, error) {
	var created *types.Choice
	err := s.conn(tx).Transaction(func(txx *gorm.DB) error {
		if err := s.choiceRepo.LockPartition(ctx, txx, key); err != nil {
			return err
		}
		alloc, err := allocateSlot(ctx, txx, s.choiceRepo, key, in.GroupCode, in.MajorName, in.Batch, in.Remark)
		if err != nil {
			return err
		}

		row := &types.Choice{
			ID:           uuid.New(),
			UserID:       key.UserID,
			Region:       key.Region,
			Track:        key.Track,
			SubjectCombo: key.Combo(),
			CycleYear:    key.CycleYear,
			GroupRank:    alloc.GroupRank,
			ItemRank:     alloc.ItemRank,
			GroupCode:    in.GroupCode,
			MajorName:    in.MajorName,
			Batch:        in.Batch,
			Quota:        in.Quota,
			Tuition:      in.Tuition,
			Remark:       in.Remark,
		}
		if len(in.ScoreLines) > 0 {
			raw, err := json.Marshal(in.ScoreLines)
			if err != nil {
				return fmt.Errorf("encode score lines: %w", err)
			}
			row.ScoreLines = raw
		}

		if err := s.choiceRepo.Create(ctx, txx, row); err != nil {
			return err
		}
		created = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *volunteerService) ListChoices(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.VolunteerList, error) {
	key, profile, err := s.resolver.Resolve(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.choiceRepo.ListByPartition(ctx, tx, key)
	if err != nil {
		return nil, err
	}

	// Scores and catalog metadata are independent decorations; fetch them
	// concurrently and tolerate either failing.
	var (
		scores map[string]float64
		infos  map[string]*catalog.GroupInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scores = s.scores.ScoresFor(gctx, userID, uniqueMajors(rows))
		return nil
	})
	g.Go(func() error {
		codes := uniqueGroupCodes(rows)
		if s.catalog == nil || len(codes) == 0 {
			return nil
		}
		got, err := s.catalog.GroupInfos(gctx, codes)
		if err != nil {
			s.log.Warn("Catalog lookup failed, projecting without metadata", "user_id", userID, "error", err)
			return nil
		}
		infos = got
		return nil
	})
	_ = g.Wait()

	return &types.VolunteerList{
		Groups:    buildGroupViews(rows, scores, infos),
		Selected:  distinctGroupRanks(rows),
		Total:     s.regions.Max(key.Region),
		ExamScore: profile.ExamScore,
		ExamRank:  profile.ExamRank,
	}, nil
}

func (s *volunteerService) DeleteChoice(ctx context.Context, tx *gorm.DB, userID, choiceID uuid.UUID) error {
	n, err := s.choiceRepo.DeleteByOwnerAndIDs(ctx, tx, userID, []uuid.UUID{choiceID})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrChoiceNotFound, choiceID)
	}
	return nil
}

func (s *volunteerService) DeleteChoices(ctx context.Context, tx *gorm.DB, userID uuid.UUID, choiceIDs []uuid.UUID) (BatchDeleteResult, error) {
	res := BatchDeleteResult{Failed: []uuid.UUID{}}
	for _, id := range choiceIDs {
		n, err := s.choiceRepo.DeleteByOwnerAndIDs(ctx, tx, userID, []uuid.UUID{id})
		if err != nil {
			return res, err
		}
		if n == 0 {
			res.Failed = append(res.Failed, id)
			continue
		}
		res.Deleted++
	}
	return res, nil
}

func (s *volunteerService) MoveGroup(ctx context.Context, tx *gorm.DB, userID uuid.UUID, groupRank int, direction string) (int64, error) {
	delta, err := step(direction)
	if err != nil {
		return 0, err
	}
	key, _, err := s.resolver.Resolve(ctx, tx, userID)
	if err != nil {
		return 0, err
	}

	var updated int64
	err = s.conn(tx).Transaction(func(txx *gorm.DB) error {
		if err := s.choiceRepo.LockPartition(ctx, txx, key); err != nil {
			return err
		}

		current, err := s.choiceRepo.ListGroup(ctx, txx, key, groupRank)
		if err != nil {
			return err
		}
		if len(current) == 0 {
			return fmt.Errorf("%w: group %d", ErrGroupNotFound, groupRank)
		}

		target := groupRank + delta
		if target < 1 {
			return fmt.Errorf("%w: group %d is already first", ErrBoundary, groupRank)
		}
		neighbor, err := s.choiceRepo.ListGroup(ctx, txx, key, target)
		if err != nil {
			return err
		}
		if len(neighbor) == 0 {
			return fmt.Errorf("%w: no group at rank %d", ErrBoundary, target)
		}

		// Full swap of both groups, item ranks untouched.
		updates := make([]volRepos.RankUpdate, 0, len(current)+len(neighbor))
		for _, row := range current {
			updates = append(updates, volRepos.RankUpdate{ID: row.ID, GroupRank: target, ItemRank: row.ItemRank})
		}
		for _, row := range neighbor {
			updates = append(updates, volRepos.RankUpdate{ID: row.ID, GroupRank: groupRank, ItemRank: row.ItemRank})
		}
		updated, err = s.choiceRepo.BulkUpdateRanks(ctx, txx, updates)
		return err
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func (s *volunteerService) MoveItem(ctx context.Context, tx *gorm.DB, userID, choiceID uuid.UUID, direction string) (*types.Choice, error) {
	delta, err := step(direction)
	if err != nil {
		return nil, err
	}
	key, _, err := s.resolver.Resolve(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	var moved *types.Choice
	err = s.conn(tx).Transaction(func(txx *gorm.DB) error {
		if err := s.choiceRepo.LockPartition(ctx, txx, key); err != nil {
			return err
		}

		row, err := s.choiceRepo.GetByOwnerAndID(ctx, txx, userID, choiceID)
		if err != nil {
			return err
		}
		if row == nil {
			return fmt.Errorf("%w: %s", ErrChoiceNotFound, choiceID)
		}

		target := row.ItemRank + delta
		if target < 1 {
			return fmt.Errorf("%w: item %d is already first in its group", ErrBoundary, row.ItemRank)
		}
		sibling, err := s.choiceRepo.GetBySlot(ctx, txx, key, row.GroupRank, target)
		if err != nil {
			return err
		}
		if sibling == nil {
			return fmt.Errorf("%w: no item at rank %d in group %d", ErrBoundary, target, row.GroupRank)
		}

		_, err = s.choiceRepo.BulkUpdateRanks(ctx, txx, []volRepos.RankUpdate{
			{ID: row.ID, GroupRank: row.GroupRank, ItemRank: sibling.ItemRank},
			{ID: sibling.ID, GroupRank: sibling.GroupRank, ItemRank: row.ItemRank},
		})
		if err != nil {
			return err
		}
		row.ItemRank = target
		moved = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}
