package types

import "github.com/pageza/flavr/backend/internal/models"

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the request body for signing in
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token  string      `json:"token"`
	User   models.User `json:"user"`
	Synced bool        `json:"synced"`
}

// ImportRecipeRequest represents the request body for importing a recipe by link
type ImportRecipeRequest struct {
	URL string `json:"url"`
}

// CreateRecipeRequest represents the recipe editor form
type CreateRecipeRequest struct {
	Title       string `json:"title"`
	Image       string `json:"image"`
	Time        int    `json:"time"`
	Ingredients string `json:"ingredients"`
	Steps       string `json:"steps"`
}

// AssignSlotRequest represents the body of PUT /planner/:date/:meal
type AssignSlotRequest struct {
	RecipeID string `json:"recipeId"`
}

// MoveSlotRequest represents the body of POST /planner/move
type MoveSlotRequest struct {
	FromDate string      `json:"fromDate" binding:"required"`
	FromMeal models.Meal `json:"fromMeal" binding:"required"`
	ToDate   string      `json:"toDate" binding:"required"`
	ToMeal   models.Meal `json:"toMeal" binding:"required"`
	RecipeID string      `json:"recipeId" binding:"required"`
}

// AddGroceryItemRequest represents a manual grocery entry
type AddGroceryItemRequest struct {
	Item   string `json:"item"`
	Amount string `json:"amount"`
}

// ConnectRequest represents the body of POST /connections/:provider
type ConnectRequest struct {
	Handle string `json:"handle"`
}

// ConnectionView is one row of the connections screen
type ConnectionView struct {
	models.Provider
	models.Connection
}
