package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	userRepos "github.com/zhiyuanbang/gaokao-backend/internal/data/repos/user"
	types "github.com/zhiyuanbang/gaokao-backend/internal/domain"
	"github.com/zhiyuanbang/gaokao-backend/internal/domain/volunteer"
	"github.com/zhiyuanbang/gaokao-backend/internal/platform/logger"
)

// PartitionResolver projects the owner's current exam profile into the
// partition key choices are scoped by. Stateless: re-evaluated per call, so
// a profile edit changes the partition of subsequent operations without
// rewriting rows created under the old profile.
type PartitionResolver interface {
	Resolve(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (types.PartitionKey, *types.Profile, error)
}

type partitionResolver struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo userRepos.ProfileRepo
	defaultYear int
}

func NewPartitionResolver(db *gorm.DB, baseLog *logger.Logger, profileRepo userRepos.ProfileRepo, defaultYear int) PartitionResolver {
	return &partitionResolver{
		db:          db,
		log:         baseLog.With("service", "PartitionResolver"),
		profileRepo: profileRepo,
		defaultYear: defaultYear,
	}
}

func (s *partitionResolver) Resolve(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (types.PartitionKey, *types.Profile, error) {
	if userID == uuid.Nil {
		return types.PartitionKey{}, nil, fmt.Errorf("%w: missing user id", ErrOwnerNotFound)
	}
	profile, err := s.profileRepo.GetByUserID(ctx, tx, userID)
	if err != nil {
		return types.PartitionKey{}, nil, err
	}
	if profile == nil {
		return types.PartitionKey{}, nil, fmt.Errorf("%w: user %s has no exam profile", ErrOwnerNotFound, userID)
	}

	year := profile.CycleYear
	if year == 0 {
		year = s.defaultYear
	}

	key := types.PartitionKey{
		UserID:    userID,
		Region:    profile.Region,
		Track:     profile.Track,
		Subjects:  volunteer.ParseSubjectSet(profile.Subjects),
		CycleYear: year,
	}
	return key, profile, nil
}
