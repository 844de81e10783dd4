package grocery

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/flavr/backend/internal/logging"
	"github.com/pageza/flavr/backend/internal/models"
)

type memPersister struct {
	saves int
	last  []models.GroceryItem
	err   error
}

func (m *memPersister) Save(_ context.Context, items []models.GroceryItem) error {
	m.saves++
	m.last = items
	return m.err
}

func newTestList() (*List, *memPersister) {
	p := &memPersister{}
	l := NewList(p, logging.Discard())
	n := 0
	l.newID = func() string {
		n++
		return fmt.Sprintf("g%d", n)
	}
	return l, p
}

var noodles = models.Recipe{
	ID: "r1",
	Ingredients: []models.Ingredient{
		{Item: "Egg noodles", Amount: "8 oz"},
		{Item: "Garlic", Amount: "6 cloves"},
	},
}

var soup = models.Recipe{
	ID:          "r2",
	Ingredients: []models.Ingredient{{Item: "Garlic", Amount: "2 cloves"}},
}

func TestAddRecipeIngredientsTwiceHasNoDuplicates(t *testing.T) {
	ctx := context.Background()
	l, p := newTestList()

	assert.Equal(t, 2, l.AddRecipeIngredients(ctx, noodles))
	assert.Equal(t, 0, l.AddRecipeIngredients(ctx, noodles))

	items := l.Items()
	require.Len(t, items, 2)
	assert.Equal(t, models.GroceryItem{ID: "g1", Item: "Egg noodles", Amount: "8 oz", RecipeID: "r1"}, items[0])
	// nothing new means nothing to save
	assert.Equal(t, 1, p.saves)
}

func TestSameIngredientFromTwoRecipesIsKept(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestList()
	l.AddRecipeIngredients(ctx, noodles)
	l.AddRecipeIngredients(ctx, soup)

	assert.Len(t, l.Items(), 3)
}

func TestAddManual(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestList()

	it, err := l.AddManual(ctx, " Milk ", "1 l")
	require.NoError(t, err)
	assert.Equal(t, "Milk", it.Item)
	assert.Empty(t, it.RecipeID)

	again, err := l.AddManual(ctx, "Milk", "2 l")
	require.NoError(t, err)
	assert.Equal(t, it.ID, again.ID)
	assert.Len(t, l.Items(), 1)

	_, err = l.AddManual(ctx, "  ", "")
	assert.ErrorIs(t, err, ErrEmptyItem)
}

func TestToggleRemoveClearChecked(t *testing.T) {
	ctx := context.Background()
	l, p := newTestList()
	l.AddRecipeIngredients(ctx, noodles)

	it, err := l.Toggle(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, it.Checked)

	it, err = l.Toggle(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, it.Checked)

	_, err = l.Toggle(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _ = l.Toggle(ctx, "g2")
	assert.Equal(t, 1, l.ClearChecked(ctx))
	assert.Equal(t, []string{"g1"}, ids(l.Items()))
	assert.Equal(t, ids(l.Items()), ids(p.last))

	require.NoError(t, l.Remove(ctx, "g1"))
	assert.Empty(t, l.Items())
	assert.ErrorIs(t, l.Remove(ctx, "g1"), ErrNotFound)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	l, p := newTestList()
	l.AddRecipeIngredients(ctx, noodles)
	l.Clear(ctx)

	assert.Empty(t, l.Items())
	assert.Empty(t, p.last)
}

func TestGroupsUnassignedLast(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestList()
	_, err := l.AddManual(ctx, "Milk", "")
	require.NoError(t, err)
	l.AddRecipeIngredients(ctx, soup)
	l.AddRecipeIngredients(ctx, noodles)

	groups := l.Groups()
	require.Len(t, groups, 3)
	assert.Equal(t, "r2", groups[0].RecipeID)
	assert.Equal(t, "r1", groups[1].RecipeID)
	assert.Len(t, groups[1].Items, 2)
	assert.Empty(t, groups[2].RecipeID)
	assert.Equal(t, "Milk", groups[2].Items[0].Item)
}

func TestPersistFailureKeepsItems(t *testing.T) {
	l := NewList(&memPersister{err: errors.New("full")}, logging.Discard())
	l.AddRecipeIngredients(context.Background(), noodles)
	assert.Len(t, l.Items(), 2)
}

func TestRestore(t *testing.T) {
	l, p := newTestList()
	l.Restore([]models.GroceryItem{
		{Item: "Garlic", RecipeID: "r1"},
		{ID: "x", Item: "Garlic", RecipeID: "r1"},
		{ID: "y", Item: "Milk", Checked: true},
		{ID: "z"},
	})

	items := l.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "g1", items[0].ID)
	assert.Equal(t, "y", items[1].ID)
	assert.True(t, items[1].Checked)
	assert.Zero(t, p.saves)
}

func ids(items []models.GroceryItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
