package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/flavr/backend/internal/models"
	"github.com/pageza/flavr/backend/internal/planner"
	"github.com/pageza/flavr/backend/internal/types"
)

type plannerBody struct {
	Anchor  string                   `json:"anchor"`
	Month   string                   `json:"month"`
	Weeks   [][]planner.Day          `json:"weeks"`
	Recipes map[string]models.Recipe `json:"recipes"`
}

func TestPlannerAssignAndWeek(t *testing.T) {
	env := setupTestRouter(t)
	env.signIn(t)

	w := env.do(t, http.MethodPut, "/api/v1/planner/2024-01-01/Dinner", types.AssignSlotRequest{RecipeID: "r1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/v1/planner/week?date=2024-01-03&weeks=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[plannerBody](t, w)
	require.Len(t, resp.Weeks, 2)
	require.Len(t, resp.Weeks[0], 7)
	monday := resp.Weeks[0][0]
	assert.Equal(t, "2024-01-01", monday.Key)
	assert.Equal(t, "r1", monday.Slots[models.Dinner])
	assert.Equal(t, "2024-01-08", resp.Weeks[1][0].Key)
	assert.Contains(t, resp.Recipes, "r1")
}

func TestPlannerWeekDefaultsToTwoWeeks(t *testing.T) {
	env := setupTestRouter(t)
	env.signIn(t)

	w := env.do(t, http.MethodGet, "/api/v1/planner/week?date=2024-01-03", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[plannerBody](t, w)
	require.Len(t, resp.Weeks, 2)
	assert.Equal(t, "2024-01-08", resp.Weeks[1][0].Key)
}

func TestPlannerMonth(t *testing.T) {
	env := setupTestRouter(t)
	env.signIn(t)

	w := env.do(t, http.MethodGet, "/api/v1/planner/month?date=2024-02-14", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[plannerBody](t, w)
	assert.Equal(t, "2024-02", resp.Month)
	require.Len(t, resp.Weeks, 6)
	first := resp.Weeks[0][0]
	assert.Equal(t, "2024-01-29", first.Key)
	assert.True(t, first.Dim)
	assert.False(t, resp.Weeks[0][3].Dim)
}

func TestPlannerMove(t *testing.T) {
	env := setupTestRouter(t)
	env.signIn(t)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/v1/planner/2024-01-01/dinner", types.AssignSlotRequest{RecipeID: "r1"}).Code)

	w := env.do(t, http.MethodPost, "/api/v1/planner/move", types.MoveSlotRequest{
		FromDate: "2024-01-01", FromMeal: models.Dinner,
		ToDate: "2024-01-02", ToMeal: models.Lunch,
		RecipeID: "r1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/v1/planner/week?date=2024-01-01", nil)
	week := decode[plannerBody](t, w).Weeks[0]
	assert.Empty(t, week[0].Slots)
	assert.Equal(t, "r1", week[1].Slots[models.Lunch])

	// An unknown recipe leaves both slots untouched.
	w = env.do(t, http.MethodPost, "/api/v1/planner/move", types.MoveSlotRequest{
		FromDate: "2024-01-02", FromMeal: models.Lunch,
		ToDate: "2024-01-03", ToMeal: models.Lunch,
		RecipeID: "ghost",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodGet, "/api/v1/planner/week?date=2024-01-01", nil)
	week = decode[plannerBody](t, w).Weeks[0]
	assert.Equal(t, "r1", week[1].Slots[models.Lunch])
	assert.Empty(t, week[2].Slots)
}

func TestPlannerClear(t *testing.T) {
	env := setupTestRouter(t)
	env.signIn(t)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/v1/planner/2024-01-01/breakfast", types.AssignSlotRequest{RecipeID: "r1"}).Code)

	w := env.do(t, http.MethodDelete, "/api/v1/planner/2024-01-01/breakfast", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// An empty recipe id clears as well.
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/v1/planner/2024-01-01/lunch", types.AssignSlotRequest{RecipeID: "r1"}).Code)
	w = env.do(t, http.MethodPut, "/api/v1/planner/2024-01-01/lunch", types.AssignSlotRequest{})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/planner/week?date=2024-01-01", nil)
	assert.Empty(t, decode[plannerBody](t, w).Weeks[0][0].Slots)
}

func TestPlannerInvalidInput(t *testing.T) {
	env := setupTestRouter(t)
	env.signIn(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"unknown meal", http.MethodPut, "/api/v1/planner/2024-01-01/brunch", types.AssignSlotRequest{RecipeID: "r1"}, http.StatusBadRequest},
		{"bad date", http.MethodPut, "/api/v1/planner/2024-13-01/dinner", types.AssignSlotRequest{RecipeID: "r1"}, http.StatusBadRequest},
		{"bad date before unknown recipe", http.MethodPut, "/api/v1/planner/yesterday/dinner", types.AssignSlotRequest{RecipeID: "nope"}, http.StatusBadRequest},
		{"unknown recipe", http.MethodPut, "/api/v1/planner/2024-01-01/dinner", types.AssignSlotRequest{RecipeID: "nope"}, http.StatusNotFound},
		{"clear bad meal", http.MethodDelete, "/api/v1/planner/2024-01-01/snack", nil, http.StatusBadRequest},
		{"week bad date", http.MethodGet, "/api/v1/planner/week?date=01/02/2024", nil, http.StatusBadRequest},
		{"week too many", http.MethodGet, "/api/v1/planner/week?weeks=7", nil, http.StatusBadRequest},
		{"month bad date", http.MethodGet, "/api/v1/planner/month?date=2024-02-30", nil, http.StatusBadRequest},
		{"move missing fields", http.MethodPost, "/api/v1/planner/move", types.MoveSlotRequest{FromDate: "2024-01-01"}, http.StatusBadRequest},
		{"move unknown recipe", http.MethodPost, "/api/v1/planner/move", types.MoveSlotRequest{
			FromDate: "2024-01-01", FromMeal: "dinner", ToDate: "2024-01-02", ToMeal: "lunch", RecipeID: "nope",
		}, http.StatusNotFound},
		{"move bad date before unknown recipe", http.MethodPost, "/api/v1/planner/move", types.MoveSlotRequest{
			FromDate: "2024-01-01", FromMeal: "dinner", ToDate: "tomorrow", ToMeal: "lunch", RecipeID: "nope",
		}, http.StatusBadRequest},
		{"move bad meal", http.MethodPost, "/api/v1/planner/move", types.MoveSlotRequest{
			FromDate: "2024-01-01", FromMeal: "dinner", ToDate: "2024-01-02", ToMeal: "tea", RecipeID: "r1",
		}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}
