package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/flavr/backend/internal/models"
	"github.com/pageza/flavr/backend/internal/session"
	"github.com/pageza/flavr/backend/internal/types"
)

// groceryGroupView is a grocery group with the recipe title resolved.
type groceryGroupView struct {
	RecipeID string               `json:"recipeId"`
	Title    string               `json:"title"`
	Items    []models.GroceryItem `json:"items"`
}

const manualGroupTitle = "Other items"

type GroceryHandler struct {
	sessions Sessions
}

func NewGroceryHandler(sessions Sessions) *GroceryHandler {
	return &GroceryHandler{sessions: sessions}
}

func (h *GroceryHandler) RegisterRoutes(router *gin.RouterGroup) {
	grocery := router.Group("/grocery")
	{
		grocery.GET("", h.List)
		grocery.DELETE("", h.ClearAll)
		grocery.POST("/recipes/:id", h.AddRecipe)
		grocery.POST("/items", h.AddItem)
		grocery.POST("/items/:id/toggle", h.ToggleItem)
		grocery.DELETE("/items/:id", h.RemoveItem)
		grocery.POST("/clear-checked", h.ClearChecked)
	}
}

// List returns the list grouped by recipe.
func (h *GroceryHandler) List(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, groceryBody(s))
}

func (h *GroceryHandler) AddRecipe(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	added, err := s.AddToGrocery(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	body := groceryBody(s)
	body["added"] = added
	c.JSON(http.StatusOK, body)
}

func (h *GroceryHandler) AddItem(c *gin.Context) {
	var req types.AddGroceryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	item, err := s.Grocery.AddManual(c.Request.Context(), req.Item, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

func (h *GroceryHandler) ToggleItem(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	item, err := s.Grocery.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *GroceryHandler) RemoveItem(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	if err := s.Grocery.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GroceryHandler) ClearChecked(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	removed := s.Grocery.ClearChecked(c.Request.Context())
	body := groceryBody(s)
	body["removed"] = removed
	c.JSON(http.StatusOK, body)
}

func (h *GroceryHandler) ClearAll(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	s.Grocery.Clear(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func groceryBody(s *session.Session) gin.H {
	groups := s.Grocery.Groups()
	views := make([]groceryGroupView, 0, len(groups))
	count := 0
	for _, g := range groups {
		v := groceryGroupView{RecipeID: g.RecipeID, Items: g.Items, Title: manualGroupTitle}
		if g.RecipeID != "" {
			v.Title = g.RecipeID
			if r, ok := s.Catalog.Get(g.RecipeID); ok {
				v.Title = r.Title
			}
		}
		count += len(g.Items)
		views = append(views, v)
	}
	return gin.H{"count": count, "groups": views}
}
