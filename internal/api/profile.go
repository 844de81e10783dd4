package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/flavr/backend/internal/models"
	"github.com/pageza/flavr/backend/internal/types"
)

// ProfileHandler serves the profile and social connections screens.
type ProfileHandler struct {
	sessions Sessions
}

func NewProfileHandler(sessions Sessions) *ProfileHandler {
	return &ProfileHandler{sessions: sessions}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
	}

	connections := router.Group("/connections")
	{
		connections.GET("", h.ListConnections)
		connections.POST("/:provider", h.Connect)
		connections.DELETE("/:provider", h.Disconnect)
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": s.Profile()})
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req models.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": s.UpdateProfile(c.Request.Context(), req)})
}

// ListConnections returns every provider with its connection state.
func (h *ProfileHandler) ListConnections(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	views := make([]types.ConnectionView, 0, len(models.Providers))
	for _, p := range models.Providers {
		conn, _ := s.Connections.Get(p.Key)
		views = append(views, types.ConnectionView{Provider: p, Connection: conn})
	}
	c.JSON(http.StatusOK, gin.H{"connections": views})
}

func (h *ProfileHandler) Connect(c *gin.Context) {
	var req types.ConnectRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	conn, err := s.Connect(c.Request.Context(), c.Param("provider"), req.Handle)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": c.Param("provider"), "connection": conn})
}

func (h *ProfileHandler) Disconnect(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	if err := s.Disconnect(c.Request.Context(), c.Param("provider")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
