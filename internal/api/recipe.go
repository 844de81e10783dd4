package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/flavr/backend/internal/catalog"
	"github.com/pageza/flavr/backend/internal/models"
	"github.com/pageza/flavr/backend/internal/types"
)

type RecipeHandler struct {
	sessions       Sessions
	collectorLimit []gin.HandlerFunc
}

// NewRecipeHandler creates the recipe and favorites handler. collectorLimit
// runs before the routes that call the collector.
func NewRecipeHandler(sessions Sessions, collectorLimit ...gin.HandlerFunc) *RecipeHandler {
	return &RecipeHandler{sessions: sessions, collectorLimit: collectorLimit}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/discover", h.limited(h.Discover)...)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", h.CreateRecipe)
		recipes.POST("/import", h.limited(h.ImportRecipe)...)
	}

	favorites := router.Group("/favorites")
	{
		favorites.GET("", h.ListFavorites)
		favorites.POST("/:id/toggle", h.ToggleFavorite)
	}
}

func (h *RecipeHandler) limited(handler gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(h.collectorLimit)+1)
	chain = append(chain, h.collectorLimit...)
	return append(chain, handler)
}

// ListRecipes returns the catalog, filtered by ?q= when present.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	if q := c.Query("q"); q != "" {
		c.JSON(http.StatusOK, gin.H{"recipes": s.Catalog.Search(q)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": s.Catalog.List()})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	recipe, found := s.Catalog.Get(c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recipe":   recipe,
		"favorite": s.Favorites.IsSet(recipe.ID),
	})
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	recipe := s.CreateRecipe(c.Request.Context(), catalog.Draft{
		Title:       req.Title,
		Image:       req.Image,
		Time:        req.Time,
		Ingredients: req.Ingredients,
		Steps:       req.Steps,
	})
	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) ImportRecipe(c *gin.Context) {
	var req types.ImportRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	recipe, err := s.ImportURL(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}

// Discover searches the collector. When the collector fails the response is
// a 502 that still carries the local catalog matches.
func (h *RecipeHandler) Discover(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}

	recipes, err := s.Discover(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		if msg, failed := collectorFailure(err); failed {
			_ = c.Error(err)
			if recipes == nil {
				recipes = []models.Recipe{}
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": msg, "recipes": recipes})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) ListFavorites(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": s.FavoriteRecipes()})
}

func (h *RecipeHandler) ToggleFavorite(c *gin.Context) {
	s, ok := sessionFor(c, h.sessions)
	if !ok {
		return
	}
	on, err := s.ToggleFavorite(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "favorite": on})
}
