package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/flavr/backend/internal/logging"
	"github.com/pageza/flavr/backend/internal/testhelpers"
)

func TestRateLimiterIntegration(t *testing.T) {
	client := testhelpers.SetupTestRedis(t)
	gin.SetMode(gin.TestMode)

	rl := NewCollectorRateLimiter(client, 2, time.Hour, logging.Discard())
	router := gin.New()
	router.POST("/import", func(c *gin.Context) {
		c.Set(ContextAccount, "u1")
		c.Next()
	}, rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	codes := make([]int, 3)
	for i := range codes {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/import", nil))
		codes[i] = rr.Code
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestRateLimiterRequiresAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewCollectorRateLimiter(nil, 2, time.Minute, logging.Discard())
	router := gin.New()
	router.POST("/import", rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/import", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
