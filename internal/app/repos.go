package app

import (
	"gorm.io/gorm"

	userRepos "github.com/zhiyuanbang/gaokao-backend/internal/data/repos/user"
	volRepos "github.com/zhiyuanbang/gaokao-backend/internal/data/repos/volunteer"
	"github.com/zhiyuanbang/gaokao-backend/internal/platform/logger"
)

type Repos struct {
	Profile userRepos.ProfileRepo
	Choice  volRepos.ChoiceRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Profile: userRepos.NewProfileRepo(db, log),
		Choice:  volRepos.NewChoiceRepo(db, log),
	}
}
