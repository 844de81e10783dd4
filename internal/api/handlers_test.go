package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/flavr/backend/internal/accountsync"
	"github.com/pageza/flavr/backend/internal/calendar"
	"github.com/pageza/flavr/backend/internal/collector"
	"github.com/pageza/flavr/backend/internal/latest"
	"github.com/pageza/flavr/backend/internal/logging"
	"github.com/pageza/flavr/backend/internal/models"
	"github.com/pageza/flavr/backend/internal/service"
	"github.com/pageza/flavr/backend/internal/session"
	"github.com/pageza/flavr/backend/internal/storage"
	"github.com/pageza/flavr/backend/internal/testhelpers"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Import(ctx context.Context, url string) (models.Recipe, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(models.Recipe), args.Error(1)
}

func (m *mockSource) Discover(ctx context.Context, query string, limit int) ([]models.Recipe, error) {
	args := m.Called(ctx, query, limit)
	if rs := args.Get(0); rs != nil {
		return rs.([]models.Recipe), args.Error(1)
	}
	return nil, args.Error(1)
}

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	auth     *service.AuthService
	sessions *session.Manager
	source   *mockSource
	remote   *accountsync.GormStore
	token    string
	account  string
}

type envOption func(*session.Options, *testEnv)

func withRemote() envOption {
	return func(opts *session.Options, env *testEnv) {
		env.remote = accountsync.NewGormStore(env.db)
		opts.Remote = env.remote
	}
}

func setupTestRouter(t *testing.T, options ...envOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		db:     testhelpers.SetupTestDatabase(t),
		source: &mockSource{},
	}
	env.auth = service.NewAuthService(env.db, "test-secret", time.Hour)

	opts := session.Options{
		KV:            storage.NewMemoryKV(),
		Source:        env.source,
		Logger:        logging.Discard(),
		DiscoverLimit: collector.DefaultDiscoverLimit,
	}
	for _, o := range options {
		o(&opts, env)
	}
	env.sessions = session.NewManager(opts)
	t.Cleanup(env.sessions.CloseAll)

	env.router = gin.New()
	RegisterRoutes(env.router, Dependencies{
		Auth:     env.auth,
		Sessions: env.sessions,
		DB:       env.db,
		Logger:   logging.Discard(),
	})
	return env
}

// signIn creates a user and stores its token on env.
func (env *testEnv) signIn(t *testing.T) {
	t.Helper()
	user, token, err := env.auth.Register(context.Background(), "Test User", "test@example.com", "password123")
	require.NoError(t, err)
	env.token = token
	env.account = user.Account()
}

func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if env.token != "" {
		req.Header.Set("Authorization", "Bearer "+env.token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Error string `json:"error"`
}

func TestHealthCheck(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := setupTestRouter(t)

	for _, path := range []string{"/api/v1/recipes", "/api/v1/planner/week", "/api/v1/grocery", "/api/v1/profile"} {
		w := env.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	assert.Equal(t, 0, env.sessions.Len())
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"empty url", collector.ErrEmptyURL, http.StatusBadRequest, collector.ErrEmptyURL.Error()},
		{"bad date", calendar.ErrInvalidDate, http.StatusBadRequest, calendar.ErrInvalidDate.Error()},
		{"bad meal", models.ErrInvalidMeal, http.StatusBadRequest, models.ErrInvalidMeal.Error()},
		{"unknown recipe", session.ErrRecipeNotFound, http.StatusNotFound, session.ErrRecipeNotFound.Error()},
		{"superseded", latest.ErrSuperseded, http.StatusConflict, latest.ErrSuperseded.Error()},
		{"collector status", &collector.StatusError{Op: "Import", StatusCode: 502}, http.StatusBadGateway, "Import failed: 502"},
		{"collector down", collector.ErrUnavailable, http.StatusBadGateway, collector.ErrUnavailable.Error()},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, decode[errorBody](t, w).Error)
		})
	}
}

func TestSessionOpenedLazily(t *testing.T) {
	env := setupTestRouter(t)
	env.signIn(t)
	require.Equal(t, 0, env.sessions.Len())

	w := env.do(t, http.MethodGet, "/api/v1/recipes", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	_, ok := env.sessions.Get(env.account)
	assert.True(t, ok)
}
