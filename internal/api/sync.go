package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/flavr/backend/internal/latest"
)

// SyncHandler exposes manual account sync.
type SyncHandler struct {
	sessions Sessions
}

func NewSyncHandler(sessions Sessions) *SyncHandler {
	return &SyncHandler{sessions: sessions}
}

func (h *SyncHandler) RegisterRoutes(router *gin.RouterGroup) {
	sync := router.Group("/sync")
	{
		sync.POST("/pull", h.Pull)
		sync.POST("/push", h.Push)
	}
}

func (h *SyncHandler) Pull(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	if !s.SyncEnabled() {
		c.JSON(http.StatusOK, gin.H{"enabled": false, "pulled": false})
		return
	}
	pulled, err := s.Pull(c.Request.Context())
	if err != nil {
		syncError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": true, "pulled": pulled})
}

func (h *SyncHandler) Push(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	if !s.SyncEnabled() {
		c.JSON(http.StatusOK, gin.H{"enabled": false, "pushed": false})
		return
	}
	if err := s.Push(c.Request.Context()); err != nil {
		syncError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": true, "pushed": true})
}

// syncError reports a remote store failure as a bad gateway.
func syncError(c *gin.Context, err error) {
	if errors.Is(err, latest.ErrSuperseded) {
		respondError(c, err)
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusBadGateway, gin.H{"error": "remote sync failed"})
}
