package app

import (
	"gorm.io/gorm"

	"github.com/zhiyuanbang/gaokao-backend/internal/clients/catalog"
	redisClients "github.com/zhiyuanbang/gaokao-backend/internal/clients/redis"
	"github.com/zhiyuanbang/gaokao-backend/internal/clients/score"
	"github.com/zhiyuanbang/gaokao-backend/internal/platform/logger"
	"github.com/zhiyuanbang/gaokao-backend/internal/platform/regions"
	"github.com/zhiyuanbang/gaokao-backend/internal/services"
)

type Services struct {
	Partition services.PartitionResolver
	Score     services.ScoreService
	Volunteer services.VolunteerService
	Repair    services.RepairService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos) (Services, error) {
	log.Info("Wiring services...")

	regionTable, err := regions.Load(cfg.RegionTablePath)
	if err != nil {
		return Services{}, err
	}

	// Score engine and its cache are optional collaborators; missing config
	// degrades the projection to null scores rather than failing startup.
	scoreClient, err := score.NewClient(log)
	if err != nil {
		log.Warn("Score engine client not configured", "error", err)
		scoreClient = nil
	}
	scoreCache, err := redisClients.NewScoreCache(log)
	if err != nil {
		log.Warn("Score cache not configured", "error", err)
		scoreCache = nil
	}
	catalogClient, err := catalog.NewClient(log)
	if err != nil {
		log.Warn("Catalog client not configured", "error", err)
		catalogClient = nil
	}

	resolver := services.NewPartitionResolver(db, log, repos.Profile, cfg.CycleYear)
	scoreService := services.NewScoreService(log, scoreClient, scoreCache)
	volunteerService := services.NewVolunteerService(db, log, repos.Choice, resolver, scoreService, catalogClient, regionTable)
	repairService := services.NewRepairService(db, log, repos.Choice)

	return Services{
		Partition: resolver,
		Score:     scoreService,
		Volunteer: volunteerService,
		Repair:    repairService,
	}, nil
}
