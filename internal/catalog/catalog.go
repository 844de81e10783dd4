// Package catalog keeps the ordered recipe collection of a session and
// merges recipes arriving from the seed list, imports, discover results,
// remote sync and the recipe editor.
package catalog

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/pageza/flavr/backend/internal/models"
)

// Persister receives the full recipe list after every change.
type Persister interface {
	Save(ctx context.Context, recipes []models.Recipe) error
}

// Catalog is a concurrency-safe ordered recipe collection.
type Catalog struct {
	mu      sync.RWMutex
	recipes []models.Recipe
	persist Persister
	logger  *slog.Logger
}

// New creates a catalog holding initial. persist may be nil.
func New(initial []models.Recipe, persist Persister, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		recipes: Merge(nil, initial),
		persist: persist,
		logger:  logger.With("component", "catalog"),
	}
}

// List returns a copy of every recipe in catalog order.
func (c *Catalog) List() []models.Recipe {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.recipes)
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.recipes)
}

// Get finds a recipe by id.
func (c *Catalog) Get(id string) (models.Recipe, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.recipes {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return models.Recipe{}, false
}

// GetByKey finds a recipe by its (title, source URL) identity.
func (c *Catalog) GetByKey(k models.RecipeKey) (models.Recipe, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.recipes {
		if r.Key() == k {
			return r.Clone(), true
		}
	}
	return models.Recipe{}, false
}

// ByIDs returns the recipes whose id is in ids, in catalog order.
func (c *Catalog) ByIDs(ids []string) []models.Recipe {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Recipe, 0, len(ids))
	for _, r := range c.recipes {
		if _, ok := want[r.ID]; ok {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Upsert merges incoming into the catalog. New keys are appended.
func (c *Catalog) Upsert(ctx context.Context, incoming ...models.Recipe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recipes = Merge(c.recipes, incoming)
	c.saveLocked(ctx)
}

// Prepend merges incoming into the catalog and moves recipes with new keys
// to the front. Recipes that already existed keep their position.
func (c *Catalog) Prepend(ctx context.Context, incoming ...models.Recipe) {
	c.mu.Lock()
	defer c.mu.Unlock()

	known := make(map[models.RecipeKey]struct{}, len(c.recipes))
	for _, r := range c.recipes {
		known[r.Key()] = struct{}{}
	}
	merged := Merge(c.recipes, incoming)

	front := make([]models.Recipe, 0, len(incoming))
	rest := make([]models.Recipe, 0, len(merged))
	for _, r := range merged {
		if _, ok := known[r.Key()]; ok {
			rest = append(rest, r)
		} else {
			front = append(front, r)
		}
	}
	c.recipes = append(front, rest...)
	c.saveLocked(ctx)
}

// Replace discards the catalog and stores recipes, deduplicated.
func (c *Catalog) Replace(ctx context.Context, recipes []models.Recipe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recipes = Merge(nil, recipes)
	c.saveLocked(ctx)
}

// Restore loads recipes without persisting them.
func (c *Catalog) Restore(recipes []models.Recipe) {
	merged := Merge(nil, recipes)
	c.mu.Lock()
	c.recipes = merged
	c.mu.Unlock()
}

// Search returns recipes whose title, cuisine or tags contain query,
// ignoring case. An empty query matches everything.
func (c *Catalog) Search(query string) []models.Recipe {
	q := strings.ToLower(strings.TrimSpace(query))
	c.mu.RLock()
	defer c.mu.RUnlock()
	if q == "" {
		return cloneAll(c.recipes)
	}
	var out []models.Recipe
	for _, r := range c.recipes {
		if matches(r, q) {
			out = append(out, r.Clone())
		}
	}
	return out
}

func matches(r models.Recipe, q string) bool {
	if strings.Contains(strings.ToLower(r.Title), q) || strings.Contains(strings.ToLower(r.Cuisine), q) {
		return true
	}
	for _, group := range [][]string{r.Tags, r.DietTags} {
		for _, t := range group {
			if strings.Contains(strings.ToLower(t), q) {
				return true
			}
		}
	}
	return false
}

func (c *Catalog) saveLocked(ctx context.Context) {
	if c.persist == nil {
		return
	}
	if err := c.persist.Save(ctx, cloneAll(c.recipes)); err != nil {
		c.logger.ErrorContext(ctx, "failed to persist recipes", slog.String("error", err.Error()))
	}
}

func cloneAll(in []models.Recipe) []models.Recipe {
	out := make([]models.Recipe, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
