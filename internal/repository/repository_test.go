package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/recipebox/internal/models"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return NewStore(db)
}

func createUser(t *testing.T, s *Store, email string) *models.User {
	t.Helper()
	u := &models.User{Username: "cook", Email: email, PasswordHash: "hash"}
	require.NoError(t, s.Users.Create(context.Background(), u))
	return u
}

func TestCreateAssignsID(t *testing.T) {
	s := setupStore(t)
	u := createUser(t, s, "a@example.com")

	assert.NotEqual(t, uuid.Nil, u.ID)

	got, err := s.Users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)
}

func TestGetByIDNotFound(t *testing.T) {
	s := setupStore(t)

	_, err := s.Users.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListWhereOrdersByCreation(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	first := &models.User{Username: "first", Email: "dup@example.com", PasswordHash: "x", CreatedAt: time.Now().Add(-time.Hour)}
	second := &models.User{Username: "second", Email: "dup@example.com", PasswordHash: "x"}
	require.NoError(t, s.Users.Create(ctx, second))
	require.NoError(t, s.Users.Create(ctx, first))
	createUser(t, s, "other@example.com")

	users, err := s.Users.ListWhere(ctx, "email", "dup@example.com")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "first", users[0].Username)

	earliest, err := s.Users.FirstWhere(ctx, "email", "dup@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, earliest.ID)

	_, err = s.Users.FirstWhere(ctx, "email", "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIngredientsListInPositionOrder(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	u := createUser(t, s, "a@example.com")

	r := &models.Recipe{Title: "Soup", Instructions: "Boil", UserID: u.ID}
	require.NoError(t, s.Recipes.Create(ctx, r))
	require.NoError(t, s.Ingredients.CreateBatch(ctx, []models.Ingredient{
		{Name: "salt", Position: 1, RecipeID: r.ID},
		{Name: "water", Position: 0, RecipeID: r.ID},
	}))

	items, err := s.Ingredients.ListWhere(ctx, "recipe_id", r.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "water", items[0].Name)
	assert.Equal(t, "salt", items[1].Name)

	n, err := s.Ingredients.Count(ctx, "recipe_id", r.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestRecipeWithDetails(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	u := createUser(t, s, "a@example.com")

	r := &models.Recipe{Title: "Soup", Instructions: "Boil", UserID: u.ID}
	require.NoError(t, s.Recipes.Create(ctx, r))
	require.NoError(t, s.Ingredients.CreateBatch(ctx, []models.Ingredient{
		{Name: "salt", Position: 1, RecipeID: r.ID},
		{Name: "water", Position: 0, RecipeID: r.ID},
	}))

	got, err := s.RecipeWithDetails(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, u.Email, got.User.Email)
	require.Len(t, got.IngredientItems, 2)
	assert.Equal(t, "water", got.IngredientItems[0].Name)
	assert.Equal(t, "salt", got.IngredientItems[1].Name)

	require.NoError(t, s.Users.Delete(ctx, u.ID))
	got, err = s.RecipeWithDetails(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got.User)

	_, err = s.RecipeWithDetails(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAndDelete(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	u := createUser(t, s, "a@example.com")

	r := &models.Recipe{Title: "Soup", Instructions: "Boil", UserID: u.ID}
	require.NoError(t, s.Recipes.Create(ctx, r))

	r.Title = "Stew"
	require.NoError(t, s.Recipes.Update(ctx, r))
	got, err := s.Recipes.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stew", got.Title)

	require.NoError(t, s.Recipes.Delete(ctx, r.ID))
	assert.ErrorIs(t, s.Recipes.Delete(ctx, r.ID), ErrNotFound)

	all, err := s.Recipes.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeleteWhere(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	rid := uuid.New()
	require.NoError(t, s.Ingredients.CreateBatch(ctx, []models.Ingredient{
		{Name: "a", RecipeID: rid},
		{Name: "b", RecipeID: rid},
	}))

	n, err := s.Ingredients.DeleteWhere(ctx, "recipe_id", rid)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestTransactionRollsBack(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.Users.Create(ctx, &models.User{Username: "x", Email: "x@example.com", PasswordHash: "x"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	users, err := s.Users.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestTransactionCommits(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx *Store) error {
		return tx.Users.Create(ctx, &models.User{Username: "x", Email: "x@example.com", PasswordHash: "x"})
	})
	require.NoError(t, err)

	users, err := s.Users.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
