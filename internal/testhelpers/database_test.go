package testhelpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/internal/ingredient"
)

func TestSetupTestDatabase(t *testing.T) {
	db := SetupTestDatabase(t)

	for _, table := range []string{"users", "recipes", "ingredients"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestFactories(t *testing.T) {
	store := SetupTestStore(t)
	ctx := context.Background()

	user := CreateTestUser(t, store)
	ok, err := NewTestHasher(t).Check(TestPassword, user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	text := FakeIngredients(3)
	parsed, err := ingredient.Parse(text)
	require.NoError(t, err)
	assert.Len(t, parsed, 3)

	recipe := CreateTestRecipe(t, store, user, text)
	items, err := store.Ingredients.ListWhere(ctx, "recipe_id", recipe.ID)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}
