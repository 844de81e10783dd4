package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/flavr/backend/internal/logging"
	"github.com/pageza/flavr/backend/internal/models"
)

type memPersister struct {
	saved [][]models.Recipe
	err   error
}

func (m *memPersister) Save(_ context.Context, recipes []models.Recipe) error {
	m.saved = append(m.saved, recipes)
	return m.err
}

func titles(rs []models.Recipe) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Title
	}
	return out
}

func TestCatalogUpsertPersists(t *testing.T) {
	p := &memPersister{}
	c := New(Seed(), p, logging.Discard())

	c.Upsert(context.Background(), recipe("d1", "Tacos", "https://t", 15))

	assert.Equal(t, []string{"Crispy Chili Garlic Noodles", "Tacos"}, titles(c.List()))
	require.Len(t, p.saved, 1)
	assert.Len(t, p.saved[0], 2)
}

func TestCatalogPrependPutsNewFirst(t *testing.T) {
	c := New([]models.Recipe{recipe("1", "A", "u1", 1), recipe("2", "B", "u2", 1)}, nil, logging.Discard())

	c.Prepend(context.Background(), recipe("imp_1", "C", "u3", 1), recipe("imp_2", "B", "u2", 9))

	got := c.List()
	assert.Equal(t, []string{"C", "A", "B"}, titles(got))
	assert.Equal(t, 9, got[2].Time)
	assert.Equal(t, "2", got[2].ID)
}

func TestCatalogGetAndByIDs(t *testing.T) {
	c := New([]models.Recipe{recipe("1", "A", "u1", 1), recipe("2", "B", "u2", 1), recipe("3", "C", "u3", 1)}, nil, logging.Discard())

	r, ok := c.Get("2")
	require.True(t, ok)
	assert.Equal(t, "B", r.Title)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"A", "C"}, titles(c.ByIDs([]string{"3", "1", "nope"})))
}

func TestCatalogReplaceAndRestore(t *testing.T) {
	p := &memPersister{}
	c := New(Seed(), p, logging.Discard())

	c.Restore([]models.Recipe{recipe("1", "A", "u1", 1)})
	assert.Equal(t, 1, c.Len())
	assert.Empty(t, p.saved)

	c.Replace(context.Background(), []models.Recipe{recipe("2", "B", "u2", 1), recipe("3", "B", "u2", 2)})
	assert.Equal(t, []string{"B"}, titles(c.List()))
	assert.Len(t, p.saved, 1)
}

func TestCatalogPersistFailureKeepsChange(t *testing.T) {
	c := New(nil, &memPersister{err: errors.New("full")}, logging.Discard())
	c.Upsert(context.Background(), recipe("1", "A", "u1", 1))
	assert.Equal(t, 1, c.Len())
}

func TestCatalogSearch(t *testing.T) {
	c := New(append(Seed(), models.Recipe{ID: "2", Title: "Shakshuka", Cuisine: "Middle Eastern", Tags: []string{"brunch"}}), nil, logging.Discard())

	assert.Equal(t, []string{"Crispy Chili Garlic Noodles"}, titles(c.Search("noodle")))
	assert.Equal(t, []string{"Shakshuka"}, titles(c.Search("EASTERN")))
	assert.Equal(t, []string{"Shakshuka"}, titles(c.Search("brunch")))
	assert.Equal(t, []string{"Crispy Chili Garlic Noodles"}, titles(c.Search("vegetarian")))
	assert.Len(t, c.Search("  "), 2)
	assert.Empty(t, c.Search("pizza"))
}

func TestNewUserRecipeDefaults(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	r := NewUserRecipe(Draft{Ingredients: "Eggs\n\n  Flour \n", Steps: "Mix\nBake"}, now)

	assert.Equal(t, "user_1700000000000", r.ID)
	assert.Equal(t, "My recipe", r.Title)
	assert.Equal(t, PlaceholderImage, r.Image)
	assert.Equal(t, 20, r.Time)
	assert.Equal(t, "User", r.Source.Platform)
	assert.Empty(t, r.Source.URL)
	assert.Equal(t, []models.Ingredient{{Item: "Eggs"}, {Item: "Flour"}}, r.Ingredients)
	assert.Equal(t, []models.Step{{Text: "Mix"}, {Text: "Bake"}}, r.Steps)
}

func TestNewUserRecipeKeepsValues(t *testing.T) {
	r := NewUserRecipe(Draft{Title: " Pancakes ", Image: "https://img", Time: 35}, time.Now())
	assert.Equal(t, "Pancakes", r.Title)
	assert.Equal(t, "https://img", r.Image)
	assert.Equal(t, 35, r.Time)
	assert.Empty(t, r.Ingredients)
}

func TestCatalogGetByKey(t *testing.T) {
	c := New([]models.Recipe{recipe("1", "A", "u1", 1)}, nil, logging.Discard())
	c.Upsert(context.Background(), recipe("2", "A", "u1", 5))

	r, ok := c.GetByKey(models.RecipeKey{Title: "A", SourceURL: "u1"})
	require.True(t, ok)
	assert.Equal(t, "1", r.ID)
	assert.Equal(t, 5, r.Time)

	_, ok = c.GetByKey(models.RecipeKey{Title: "A"})
	assert.False(t, ok)
}
