package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/flavr/backend/internal/catalog"
	"github.com/pageza/flavr/backend/internal/models"
	"github.com/pageza/flavr/backend/internal/types"
)

func TestRegister(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/register", types.RegisterRequest{
		Name: "Ada", Email: "Ada@Example.com", Password: "password123",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[types.AuthResponse](t, w)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.False(t, resp.Synced)
	assert.Equal(t, 1, env.sessions.Len())
}

func TestRegisterValidation(t *testing.T) {
	env := setupTestRouter(t)

	tests := []struct {
		name string
		body any
	}{
		{"bad email", types.RegisterRequest{Email: "nope", Password: "password123"}},
		{"short password", types.RegisterRequest{Email: "a@example.com", Password: "short"}},
		{"not json", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/auth/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	env := setupTestRouter(t)
	env.signIn(t)
	env.token = ""

	w := env.do(t, http.MethodPost, "/api/v1/auth/register", types.RegisterRequest{
		Email: "test@example.com", Password: "password123",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginAndLogout(t *testing.T) {
	env := setupTestRouter(t)
	env.signIn(t)
	env.token = ""

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", types.LoginRequest{Email: "test@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, env.sessions.Len())

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", types.LoginRequest{Email: "test@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[types.AuthResponse](t, w)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, 1, env.sessions.Len())

	env.token = resp.Token
	w = env.do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.sessions.Len())
}

func TestLoginPullsRemoteSnapshot(t *testing.T) {
	env := setupTestRouter(t, withRemote())
	env.signIn(t)
	env.token = ""

	remoteRecipe := catalog.NewUserRecipe(catalog.Draft{Title: "Remote Soup"}, fixedNow)
	require.NoError(t, env.remote.Push(context.Background(), env.account, models.Snapshot{
		Recipes:   []models.Recipe{remoteRecipe},
		Favorites: []string{remoteRecipe.ID},
	}))

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", types.LoginRequest{Email: "test@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[types.AuthResponse](t, w)
	assert.True(t, resp.Synced)

	env.token = resp.Token
	w = env.do(t, http.MethodGet, "/api/v1/favorites", nil)
	require.Equal(t, http.StatusOK, w.Code)
	favs := decode[recipesBody](t, w)
	require.Len(t, favs.Recipes, 1)
	assert.Equal(t, "Remote Soup", favs.Recipes[0].Title)
}
