package services

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/zhiyuanbang/gaokao-backend/internal/clients/redis"
	"github.com/zhiyuanbang/gaokao-backend/internal/clients/score"
	"github.com/zhiyuanbang/gaokao-backend/internal/platform/logger"
)

// ScoreService resolves computed admission scores for the projector.
// Best-effort by contract: a slow or down score engine degrades to missing
// scores, never to a failed projection.
type ScoreService interface {
	ScoresFor(ctx context.Context, userID uuid.UUID, majorNames []string) map[string]float64
}

type scoreService struct {
	log    *logger.Logger
	client score.Client
	cache  redis.ScoreCache
	sf     singleflight.Group
}

// NewScoreService accepts a nil client and a nil cache; both degrade
// gracefully so local setups run without the score engine or Redis.
func NewScoreService(baseLog *logger.Logger, client score.Client, cache redis.ScoreCache) ScoreService {
	return &scoreService{
		log:    baseLog.With("service", "ScoreService"),
		client: client,
		cache:  cache,
	}
}

func (s *scoreService) ScoresFor(ctx context.Context, userID uuid.UUID, majorNames []string) map[string]float64 {
	out := make(map[string]float64, len(majorNames))
	if len(majorNames) == 0 || userID == uuid.Nil {
		return out
	}

	missing := majorNames
	if s.cache != nil {
		var hit map[string]float64
		hit, missing = s.cache.Get(ctx, userID, majorNames)
		for m, f := range hit {
			out[m] = f
		}
	}
	if len(missing) == 0 || s.client == nil {
		return out
	}

	// Collapse concurrent identical lookups (e.g. double-tapped list refresh)
	// into one engine call.
	sorted := append([]string(nil), missing...)
	sort.Strings(sorted)
	sfKey := userID.String() + "|" + strings.Join(sorted, "|")

	v, err, _ := s.sf.Do(sfKey, func() (interface{}, error) {
		return s.client.ScoreForMajors(ctx, userID, sorted)
	})
	if err != nil {
		s.log.Warn("Score lookup failed, degrading to null scores",
			"user_id", userID,
			"majors", len(sorted),
			"error", err,
		)
		return out
	}

	fetched, _ := v.(map[string]float64)
	for m, f := range fetched {
		out[m] = f
	}
	if s.cache != nil {
		s.cache.Set(ctx, userID, fetched)
	}
	return out
}
