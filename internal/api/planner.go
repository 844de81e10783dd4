package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/flavr/backend/internal/calendar"
	"github.com/pageza/flavr/backend/internal/models"
	"github.com/pageza/flavr/backend/internal/planner"
	"github.com/pageza/flavr/backend/internal/session"
	"github.com/pageza/flavr/backend/internal/types"
)

// defaultWeeks is the number of week rows shown when ?weeks is absent.
const defaultWeeks = 2

// PlannerHandler serves the week and month views and slot edits.
type PlannerHandler struct {
	sessions Sessions
	now      func() time.Time
}

func NewPlannerHandler(sessions Sessions) *PlannerHandler {
	return &PlannerHandler{sessions: sessions, now: time.Now}
}

func (h *PlannerHandler) RegisterRoutes(router *gin.RouterGroup) {
	plan := router.Group("/planner")
	{
		plan.GET("/week", h.Week)
		plan.GET("/month", h.Month)
		plan.POST("/move", h.Move)
		plan.PUT("/:date/:meal", h.Assign)
		plan.DELETE("/:date/:meal", h.Clear)
	}
}

// anchor reads ?date=, defaulting to today.
func (h *PlannerHandler) anchor(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return h.now(), nil
	}
	return calendar.ParseDateKey(raw, time.Local)
}

func (h *PlannerHandler) Week(c *gin.Context) {
	anchor, err := h.anchor(c)
	if err != nil {
		respondError(c, err)
		return
	}
	weeks := defaultWeeks
	if raw := c.Query("weeks"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > calendar.MaxWeeks {
			c.JSON(http.StatusBadRequest, gin.H{"error": "weeks must be between 1 and 6"})
			return
		}
		weeks = n
	}
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	rows := s.Planner.Week(anchor, weeks)
	c.JSON(http.StatusOK, gin.H{
		"anchor":  calendar.DateKey(anchor),
		"weeks":   rows,
		"recipes": plannedRecipes(s, rows),
	})
}

func (h *PlannerHandler) Month(c *gin.Context) {
	anchor, err := h.anchor(c)
	if err != nil {
		respondError(c, err)
		return
	}
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	rows := s.Planner.Month(anchor)
	c.JSON(http.StatusOK, gin.H{
		"month":   anchor.Format("2006-01"),
		"weeks":   rows,
		"recipes": plannedRecipes(s, rows),
	})
}

func (h *PlannerHandler) Assign(c *gin.Context) {
	date, meal, ok := slotParams(c)
	if !ok {
		return
	}
	var req types.AssignSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}

	var err error
	if req.RecipeID == "" {
		err = s.Planner.Clear(c.Request.Context(), date, meal)
	} else {
		err = s.PlanRecipe(c.Request.Context(), req.RecipeID, date, meal)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "meal": meal, "recipeId": req.RecipeID})
}

func (h *PlannerHandler) Clear(c *gin.Context) {
	date, meal, ok := slotParams(c)
	if !ok {
		return
	}
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	if err := s.Planner.Clear(c.Request.Context(), date, meal); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PlannerHandler) Move(c *gin.Context) {
	var req types.MoveSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	if err := s.MoveRecipe(c.Request.Context(), req.RecipeID, req.FromDate, req.FromMeal, req.ToDate, req.ToMeal); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": req.ToDate, "meal": req.ToMeal, "recipeId": req.RecipeID})
}

// slotParams validates the :date and :meal path parameters.
func slotParams(c *gin.Context) (string, models.Meal, bool) {
	date := c.Param("date")
	if _, err := calendar.ParseDateKey(date, time.Local); err != nil {
		respondError(c, err)
		return "", "", false
	}
	meal, err := models.ParseMeal(c.Param("meal"))
	if err != nil {
		respondError(c, err)
		return "", "", false
	}
	return date, meal, true
}

// plannedRecipes returns the catalog entries referenced by rows, keyed by id.
func plannedRecipes(s *session.Session, rows [][]planner.Day) map[string]models.Recipe {
	var ids []string
	for _, row := range rows {
		for _, day := range row {
			for _, id := range day.Slots {
				ids = append(ids, id)
			}
		}
	}
	out := make(map[string]models.Recipe)
	for _, r := range s.Catalog.ByIDs(ids) {
		out[r.ID] = r
	}
	return out
}
