package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/pageza/flavr/backend/internal/api"
	"github.com/pageza/flavr/backend/internal/middleware"
)

// SetupRouter configures the middleware chain and the application routes
func SetupRouter(deps api.Dependencies, corsOrigins []string) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	httpLog := deps.Logger.With("component", "http")

	router := gin.New()
	router.Use(middleware.Recovery(httpLog))
	router.Use(middleware.RequestLogger(httpLog))
	router.Use(middleware.CORS(corsOrigins))

	api.RegisterRoutes(router, deps)
	return router
}
