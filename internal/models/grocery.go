package models

// GroceryItem is one entry on the shopping list. RecipeID is empty for
// items added by hand.
type GroceryItem struct {
	ID       string `json:"id"`
	Item     string `json:"item"`
	Amount   string `json:"amount,omitempty"`
	RecipeID string `json:"recipeId,omitempty"`
	Checked  bool   `json:"checked"`
}

// GroceryGroup is a read-only projection of the items that share a
// RecipeID.
type GroceryGroup struct {
	RecipeID string        `json:"recipeId"`
	Items    []GroceryItem `json:"items"`
}
