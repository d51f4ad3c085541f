package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/zhiyuanbang/gaokao-backend/internal/platform/envutil"
	"github.com/zhiyuanbang/gaokao-backend/internal/platform/logger"
)

// ScoreCache is a read-through cache in front of the score engine. Cached
// per (student, major); misses and cache errors fall through to the engine.
type ScoreCache interface {
	Get(ctx context.Context, userID uuid.UUID, majorNames []string) (map[string]float64, []string)
	Set(ctx context.Context, userID uuid.UUID, scores map[string]float64)
	Close() error
}

type scoreCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewScoreCache(log *logger.Logger) (ScoreCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttlSec := envutil.Int("SCORE_CACHE_TTL_SECONDS", 600, log)

	return &scoreCache{
		log: log.With("service", "ScoreCache"),
		rdb: rdb,
		ttl: time.Duration(ttlSec) * time.Second,
	}, nil
}

func scoreKey(userID uuid.UUID, major string) string {
	return "score:" + userID.String() + ":" + major
}

// Get returns cached scores plus the majors that still need an engine call.
func (c *scoreCache) Get(ctx context.Context, userID uuid.UUID, majorNames []string) (map[string]float64, []string) {
	hit := make(map[string]float64, len(majorNames))
	if len(majorNames) == 0 {
		return hit, nil
	}
	keys := make([]string, len(majorNames))
	for i, m := range majorNames {
		keys[i] = scoreKey(userID, m)
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.log.Warn("Score cache read failed", "error", err)
		return hit, majorNames
	}
	var miss []string
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			miss = append(miss, majorNames[i])
			continue
		}
		var f float64
		if err := json.Unmarshal([]byte(s), &f); err != nil {
			miss = append(miss, majorNames[i])
			continue
		}
		hit[majorNames[i]] = f
	}
	return hit, miss
}

func (c *scoreCache) Set(ctx context.Context, userID uuid.UUID, scores map[string]float64) {
	if len(scores) == 0 {
		return
	}
	pipe := c.rdb.Pipeline()
	for m, f := range scores {
		raw, err := json.Marshal(f)
		if err != nil {
			continue
		}
		pipe.Set(ctx, scoreKey(userID, m), raw, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("Score cache write failed", "error", err)
	}
}

func (c *scoreCache) Close() error { return c.rdb.Close() }
