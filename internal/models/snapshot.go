package models

// Snapshot is the whole state of one account. It is what gets written to
// storage and pushed to remote sync; there are no incremental deltas.
type Snapshot struct {
	Recipes     []Recipe              `json:"recipes"`
	Favorites   []string              `json:"favorites"`
	Grocery     []GroceryItem         `json:"grocery"`
	Planner     Plan                  `json:"planner"`
	Connections map[string]Connection `json:"connections"`
	Profile     Profile               `json:"profile"`
}
