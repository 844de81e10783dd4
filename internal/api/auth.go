package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/flavr/backend/internal/middleware"
	"github.com/pageza/flavr/backend/internal/models"
	"github.com/pageza/flavr/backend/internal/service"
	"github.com/pageza/flavr/backend/internal/types"
)

// AuthHandler handles sign-up, sign-in and sign-out. Signing in opens the
// account session and pulls the remote snapshot; signing out closes it.
type AuthHandler struct {
	authService service.IAuthService
	sessions    Sessions
	log         *slog.Logger
}

func NewAuthHandler(authService service.IAuthService, sessions Sessions, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		log:         logger.With("component", "auth"),
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", middleware.AuthMiddleware(h.authService), h.Logout)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	synced := h.startSession(c, user)
	c.JSON(http.StatusCreated, types.AuthResponse{Token: token, User: *user, Synced: synced})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign in"})
		return
	}

	synced := h.startSession(c, user)
	c.JSON(http.StatusOK, types.AuthResponse{Token: token, User: *user, Synced: synced})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	account, ok := middleware.Account(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	h.sessions.Close(account)
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// startSession opens the user's session and pulls the remote snapshot.
// Failures are logged; the sign-in itself still succeeds.
func (h *AuthHandler) startSession(c *gin.Context, user *models.User) bool {
	ctx := c.Request.Context()
	account := user.Account()
	s, err := h.sessions.Open(ctx, account)
	if err != nil {
		h.log.ErrorContext(ctx, "failed to open session", slog.String("account", account), slog.String("error", err.Error()))
		return false
	}
	if !s.SyncEnabled() {
		return false
	}
	pulled, err := s.Pull(ctx)
	if err != nil {
		h.log.WarnContext(ctx, "remote pull failed", slog.String("account", account), slog.String("error", err.Error()))
		return false
	}
	return pulled
}
