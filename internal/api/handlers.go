package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/flavr/backend/internal/calendar"
	"github.com/pageza/flavr/backend/internal/collector"
	"github.com/pageza/flavr/backend/internal/database"
	"github.com/pageza/flavr/backend/internal/grocery"
	"github.com/pageza/flavr/backend/internal/latest"
	"github.com/pageza/flavr/backend/internal/middleware"
	"github.com/pageza/flavr/backend/internal/models"
	"github.com/pageza/flavr/backend/internal/service"
	"github.com/pageza/flavr/backend/internal/session"
)

// Sessions opens and closes per-account sessions.
type Sessions interface {
	Open(ctx context.Context, account string) (*session.Session, error)
	Close(account string)
}

var _ Sessions = (*session.Manager)(nil)

// Dependencies holds everything the handlers need.
type Dependencies struct {
	Auth     service.IAuthService
	Sessions Sessions
	// Limiter guards the collector routes. Nil disables rate limiting.
	Limiter *middleware.RateLimiter
	DB      *gorm.DB
	Logger  *slog.Logger
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	// Health check endpoint (no auth required)
	router.GET("/health", HealthCheck(deps.DB))

	v1 := router.Group("/api/v1")
	NewAuthHandler(deps.Auth, deps.Sessions, deps.Logger).RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Auth))

	var collectorLimit []gin.HandlerFunc
	if deps.Limiter != nil {
		collectorLimit = append(collectorLimit, deps.Limiter.Middleware())
	}
	NewRecipeHandler(deps.Sessions, collectorLimit...).RegisterRoutes(protected)
	NewPlannerHandler(deps.Sessions).RegisterRoutes(protected)
	NewGroceryHandler(deps.Sessions).RegisterRoutes(protected)
	NewProfileHandler(deps.Sessions).RegisterRoutes(protected)
	NewSyncHandler(deps.Sessions).RegisterRoutes(protected)
}

// HealthCheck returns the health status of the API
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := database.HealthCheck(c.Request.Context(), db); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Flavr API is running",
		})
	}
}

// sessionFor returns the signed-in account's session, opening it when the
// server restarted since login.
func sessionFor(c *gin.Context, sessions Sessions) (*session.Session, bool) {
	account, ok := middleware.Account(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return nil, false
	}
	s, err := sessions.Open(c.Request.Context(), account)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open session"})
		return nil, false
	}
	return s, true
}

// respondError writes err with the status that matches its kind.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	if msg, ok := collectorFailure(err); ok {
		c.JSON(http.StatusBadGateway, gin.H{"error": msg})
		return
	}

	switch {
	case errors.Is(err, collector.ErrEmptyURL),
		errors.Is(err, calendar.ErrInvalidDate),
		errors.Is(err, models.ErrInvalidMeal),
		errors.Is(err, grocery.ErrEmptyItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrRecipeNotFound),
		errors.Is(err, session.ErrUnknownProvider),
		errors.Is(err, grocery.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, latest.ErrSuperseded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// collectorFailure reports whether err came from the collector and returns
// the message shown to the user.
func collectorFailure(err error) (string, bool) {
	var statusErr *collector.StatusError
	switch {
	case errors.As(err, &statusErr):
		return statusErr.Error(), true
	case errors.Is(err, collector.ErrUnavailable):
		return collector.ErrUnavailable.Error(), true
	}
	return "", false
}
