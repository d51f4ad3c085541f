package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/zhiyuanbang/gaokao-backend/internal/http/handlers"
	httpMW "github.com/zhiyuanbang/gaokao-backend/internal/http/middleware"
	"github.com/zhiyuanbang/gaokao-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler    *httpH.HealthHandler
	VolunteerHandler *httpH.VolunteerHandler
	AdminHandler     *httpH.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("gaokao-backend"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.VolunteerHandler != nil {
			protected.POST("/volunteers", cfg.VolunteerHandler.CreateChoice)
			protected.GET("/volunteers", cfg.VolunteerHandler.ListChoices)
			protected.DELETE("/volunteers/:id", cfg.VolunteerHandler.DeleteChoice)
			protected.POST("/volunteers/batch-delete", cfg.VolunteerHandler.DeleteChoices)
			protected.POST("/volunteers/:id/move", cfg.VolunteerHandler.MoveItem)
			protected.POST("/volunteer-groups/:rank/move", cfg.VolunteerHandler.MoveGroup)
		}

		admin := protected.Group("/admin")
		{
			if cfg.AuthMiddleware != nil {
				admin.Use(cfg.AuthMiddleware.RequireOperator())
			}
			if cfg.AdminHandler != nil {
				admin.POST("/volunteers/repair", cfg.AdminHandler.RepairVolunteers)
			}
		}
	}

	return r
}
