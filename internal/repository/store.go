package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/internal/models"
)

// Store groups the repositories of every entity over one database handle.
type Store struct {
	db          *gorm.DB
	Users       *Repository[models.User]
	Recipes     *Repository[models.Recipe]
	Ingredients *Repository[models.Ingredient]
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Users:       NewRepository[models.User](db),
		Recipes:     NewRepository[models.Recipe](db),
		Ingredients: NewRepository[models.Ingredient](db, "position"),
	}
}

// DB exposes the underlying handle for health checks and preloading reads.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn against a Store bound to one transaction. The
// transaction commits when fn returns nil and rolls back when it returns an
// error or panics.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{
			db:          tx,
			Users:       s.Users.WithTx(tx),
			Recipes:     s.Recipes.WithTx(tx),
			Ingredients: s.Ingredients.WithTx(tx),
		})
	})
}

// IngredientCounts returns the number of ingredient rows per recipe. Recipes
// without ingredients are absent from the map.
func (s *Store) IngredientCounts(ctx context.Context, recipeIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		RecipeID uuid.UUID
		N        int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Ingredient{}).
		Select("recipe_id, COUNT(*) AS n").
		Where("recipe_id IN ?", recipeIDs).
		Group("recipe_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count ingredients: %w", err)
	}
	for _, r := range rows {
		counts[r.RecipeID] = r.N
	}
	return counts, nil
}

// RecipeWithDetails loads one recipe with its owner and its ingredient rows
// in position order. User stays nil when the owner row is gone.
func (s *Store) RecipeWithDetails(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("IngredientItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position").Order("id")
		}).
		Where("id = ?", id).
		First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe details: %w", err)
	}
	return &recipe, nil
}

// RecipesWithOwners lists every recipe newest first with its User loaded.
func (s *Store) RecipesWithOwners(ctx context.Context) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}
