package app

import (
	"github.com/gin-gonic/gin"

	httpServer "github.com/zhiyuanbang/gaokao-backend/internal/http"
	httpH "github.com/zhiyuanbang/gaokao-backend/internal/http/handlers"
	httpMW "github.com/zhiyuanbang/gaokao-backend/internal/http/middleware"
	"github.com/zhiyuanbang/gaokao-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Volunteer *httpH.VolunteerHandler
	Admin     *httpH.AdminHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(),
		Volunteer: httpH.NewVolunteerHandler(services.Volunteer),
		Admin:     httpH.NewAdminHandler(services.Repair),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return httpServer.NewRouter(httpServer.RouterConfig{
		Log:              log,
		AuthMiddleware:   middleware.Auth,
		HealthHandler:    handlers.Health,
		VolunteerHandler: handlers.Volunteer,
		AdminHandler:     handlers.Admin,
	})
}
