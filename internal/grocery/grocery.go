// Package grocery maintains the shopping list built from recipe
// ingredients and manual entries.
package grocery

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pageza/flavr/backend/internal/models"
)

// ErrNotFound is returned when an item id is not on the list.
var ErrNotFound = errors.New("grocery item not found")

// ErrEmptyItem is returned when a manual entry has no name.
var ErrEmptyItem = errors.New("grocery item name is required")

// Persister receives the full list after every mutation.
type Persister interface {
	Save(ctx context.Context, items []models.GroceryItem) error
}

type itemKey struct {
	item     string
	recipeID string
}

// List is the session's shopping list. An item is unique on its name and
// recipe id, so the same ingredient needed by two recipes appears twice.
type List struct {
	mu      sync.RWMutex
	items   []models.GroceryItem
	persist Persister
	logger  *slog.Logger
	newID   func() string
}

// NewList creates an empty list. persist may be nil.
func NewList(persist Persister, logger *slog.Logger) *List {
	if logger == nil {
		logger = slog.Default()
	}
	return &List{
		persist: persist,
		logger:  logger.With("component", "grocery"),
		newID:   func() string { return uuid.New().String() },
	}
}

// AddRecipeIngredients adds one item per ingredient of r, tagged with r's
// id. Ingredients already on the list for r are skipped. It returns how many
// items were added.
func (l *List) AddRecipeIngredients(ctx context.Context, r models.Recipe) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := l.keysLocked()
	added := 0
	for _, ing := range r.Ingredients {
		k := itemKey{item: ing.Item, recipeID: r.ID}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		l.items = append(l.items, models.GroceryItem{
			ID:       l.newID(),
			Item:     ing.Item,
			Amount:   ing.Amount,
			RecipeID: r.ID,
		})
		added++
	}
	if added > 0 {
		l.saveLocked(ctx)
	}
	return added
}

// AddManual adds an item not tied to any recipe. Adding a name that is
// already on the manual list returns the existing item.
func (l *List) AddManual(ctx context.Context, item, amount string) (models.GroceryItem, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return models.GroceryItem{}, ErrEmptyItem
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		if it.RecipeID == "" && it.Item == item {
			return it, nil
		}
	}
	it := models.GroceryItem{ID: l.newID(), Item: item, Amount: strings.TrimSpace(amount)}
	l.items = append(l.items, it)
	l.saveLocked(ctx)
	return it, nil
}

// Toggle flips the checked flag of an item and returns the updated item.
func (l *List) Toggle(ctx context.Context, id string) (models.GroceryItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.items[i].ID == id {
			l.items[i].Checked = !l.items[i].Checked
			l.saveLocked(ctx)
			return l.items[i], nil
		}
	}
	return models.GroceryItem{}, ErrNotFound
}

// Remove deletes an item.
func (l *List) Remove(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.items[i].ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			l.saveLocked(ctx)
			return nil
		}
	}
	return ErrNotFound
}

// ClearChecked removes every checked item and returns how many went.
func (l *List) ClearChecked(ctx context.Context) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.items[:0]
	removed := 0
	for _, it := range l.items {
		if it.Checked {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	l.items = kept
	if removed > 0 {
		l.saveLocked(ctx)
	}
	return removed
}

// Clear empties the list.
func (l *List) Clear(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
	l.saveLocked(ctx)
}

// Items returns a copy of the list in insertion order.
func (l *List) Items() []models.GroceryItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]models.GroceryItem{}, l.items...)
}

// Groups partitions the list by recipe id in first-seen order. Manual items
// form the last group.
func (l *List) Groups() []models.GroceryGroup {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var groups []models.GroceryGroup
	index := make(map[string]int)
	var manual []models.GroceryItem
	for _, it := range l.items {
		if it.RecipeID == "" {
			manual = append(manual, it)
			continue
		}
		i, ok := index[it.RecipeID]
		if !ok {
			i = len(groups)
			index[it.RecipeID] = i
			groups = append(groups, models.GroceryGroup{RecipeID: it.RecipeID})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	if len(manual) > 0 {
		groups = append(groups, models.GroceryGroup{Items: manual})
	}
	return groups
}

// Restore replaces the list without persisting it. Items without an id get
// one and duplicates of (item, recipe id) are dropped.
func (l *List) Restore(items []models.GroceryItem) {
	l.mu.Lock()
	defer l.mu.Unlock()
	seen := make(map[itemKey]struct{}, len(items))
	l.items = make([]models.GroceryItem, 0, len(items))
	for _, it := range items {
		k := itemKey{item: it.Item, recipeID: it.RecipeID}
		if _, ok := seen[k]; ok || it.Item == "" {
			continue
		}
		seen[k] = struct{}{}
		if it.ID == "" {
			it.ID = l.newID()
		}
		l.items = append(l.items, it)
	}
}

func (l *List) keysLocked() map[itemKey]struct{} {
	seen := make(map[itemKey]struct{}, len(l.items))
	for _, it := range l.items {
		seen[itemKey{item: it.Item, recipeID: it.RecipeID}] = struct{}{}
	}
	return seen
}

func (l *List) saveLocked(ctx context.Context) {
	if l.persist == nil {
		return
	}
	if err := l.persist.Save(ctx, append([]models.GroceryItem{}, l.items...)); err != nil {
		l.logger.ErrorContext(ctx, "failed to persist grocery list", slog.String("error", err.Error()))
	}
}
