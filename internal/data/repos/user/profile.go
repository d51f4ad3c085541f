package user

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/zhiyuanbang/gaokao-backend/internal/domain"
	"github.com/zhiyuanbang/gaokao-backend/internal/platform/logger"
)

type ProfileRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.Profile) error
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Profile, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (r *profileRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *profileRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.Profile) error {
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"region", "track", "subjects", "cycle_year",
				"exam_score", "exam_rank", "group_label", "updated_at",
			}),
		}).
		Create(row).Error
}

func (r *profileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Profile, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var out []*types.Profile
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
