package app

import (
	"time"

	"github.com/zhiyuanbang/gaokao-backend/internal/platform/envutil"
	"github.com/zhiyuanbang/gaokao-backend/internal/platform/logger"
)

type Config struct {
	JWTSecretKey    string
	CycleYear       int
	RegionTablePath string
	Port            string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		JWTSecretKey:    envutil.Get("JWT_SECRET_KEY", "defaultsecret", log),
		CycleYear:       envutil.Int("GAOKAO_CYCLE_YEAR", time.Now().Year(), log),
		RegionTablePath: envutil.Get("REGION_TABLE_PATH", "", log),
		Port:            envutil.Get("PORT", "8080", log),
	}
}
