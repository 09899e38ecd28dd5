package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipebox/internal/apperr"
	"github.com/pageza/recipebox/internal/ingredient"
	"github.com/pageza/recipebox/internal/metrics"
	"github.com/pageza/recipebox/internal/models"
	"github.com/pageza/recipebox/internal/repository"
	"github.com/pageza/recipebox/internal/storage"
)

// RecipeInput is the create and edit form.
type RecipeInput struct {
	Title        string `validate:"required,max=200" label:"Title"`
	Ingredients  string `label:"Ingredients"`
	Instructions string `validate:"required" label:"Instructions"`
	Photo        *PhotoUpload
}

// PhotoUpload is an optional image sent with the form.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// RecipeSummary is one row of a recipe listing.
type RecipeSummary struct {
	models.Recipe
	OwnerName       string
	IngredientCount int64
}

// unknownOwner names the author of a recipe whose account no longer exists.
const unknownOwner = "unknown cook"

// RecipeDetail is everything the recipe page shows.
type RecipeDetail struct {
	Recipe      models.Recipe
	Ingredients []models.Ingredient
	Owner       models.User
	PhotoURL    string
}

type RecipeService struct {
	store   *repository.Store
	photos  storage.PhotoStore
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewRecipeService creates a new RecipeService instance. photos may be nil,
// in which case uploads are ignored.
func NewRecipeService(store *repository.Store, photos storage.PhotoStore, log *zap.Logger, m *metrics.Metrics) *RecipeService {
	return &RecipeService{
		store:   store,
		photos:  photos,
		log:     log.Named("recipes"),
		metrics: m,
	}
}

// PhotosEnabled reports whether uploads are stored.
func (s *RecipeService) PhotosEnabled() bool {
	return s.photos != nil
}

// Create stores a recipe owned by ownerID together with its ingredient rows.
// Either both are written or neither is.
func (s *RecipeService) Create(ctx context.Context, ownerID uuid.UUID, in RecipeInput) (*models.Recipe, error) {
	parsed, err := prepare(&in)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		ID:           uuid.New(),
		Title:        in.Title,
		Ingredients:  in.Ingredients,
		Instructions: in.Instructions,
		UserID:       ownerID,
	}

	photoKey, err := s.uploadPhoto(ctx, recipe.ID, in.Photo)
	if err != nil {
		return nil, err
	}
	recipe.PhotoKey = photoKey

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Recipes.Create(ctx, recipe); err != nil {
			return err
		}
		return tx.Ingredients.CreateBatch(ctx, models.IngredientsFromParsed(recipe.ID, parsed))
	})
	if err != nil {
		s.removePhoto(ctx, photoKey)
		s.log.Error("failed to create recipe", zap.String("user_id", ownerID.String()), zap.Error(err))
		return nil, apperr.Database("create recipe", err)
	}

	s.metrics.RecipeEvent("created")
	s.log.Info("recipe created",
		zap.String("recipe_id", recipe.ID.String()),
		zap.String("user_id", ownerID.String()),
		zap.Int("ingredients", len(parsed)))
	return recipe, nil
}

// Get returns the recipe page data. Unknown ids are NotFound. A recipe whose
// owner account is gone is still shown, attributed to unknownOwner.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*RecipeDetail, error) {
	recipe, err := s.store.RecipeWithDetails(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Recipe")
	}
	if err != nil {
		return nil, apperr.Database("get recipe", err)
	}

	owner := models.User{ID: recipe.UserID, Username: unknownOwner}
	if recipe.User != nil {
		owner = *recipe.User
	} else {
		s.log.Warn("recipe owner missing",
			zap.String("recipe_id", recipe.ID.String()),
			zap.String("user_id", recipe.UserID.String()))
	}
	items := recipe.IngredientItems
	if items == nil {
		items = []models.Ingredient{}
	}
	recipe.User, recipe.IngredientItems = nil, nil

	detail := &RecipeDetail{Recipe: *recipe, Ingredients: items, Owner: owner}
	if s.photos != nil && recipe.PhotoKey != nil {
		url, err := s.photos.URL(ctx, *recipe.PhotoKey)
		if err != nil {
			s.log.Warn("failed to sign photo url", zap.String("recipe_id", recipe.ID.String()), zap.Error(err))
		} else {
			detail.PhotoURL = url
		}
	}
	return detail, nil
}

// ListAll returns every recipe, newest first, with owner names.
func (s *RecipeService) ListAll(ctx context.Context) ([]RecipeSummary, error) {
	recipes, err := s.store.RecipesWithOwners(ctx)
	if err != nil {
		return nil, apperr.Database("list recipes", err)
	}
	return s.summarize(ctx, recipes)
}

// ListByOwner returns the recipes of ownerID with ingredient counts.
func (s *RecipeService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]RecipeSummary, error) {
	recipes, err := s.store.Recipes.ListWhere(ctx, "user_id", ownerID)
	if err != nil {
		return nil, apperr.Database("list user recipes", err)
	}
	return s.summarize(ctx, recipes)
}

// GetOwned returns the recipe when actorID owns it. Otherwise NotFound or
// Forbidden.
func (s *RecipeService) GetOwned(ctx context.Context, actorID, id uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.getRecipe(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if recipe.UserID != actorID {
		return nil, apperr.Forbidden("You can only change your own recipes.")
	}
	return recipe, nil
}

// Update overwrites title, ingredients and instructions and rebuilds the
// ingredient rows from the new text, all in one transaction. A new photo
// replaces the old one.
func (s *RecipeService) Update(ctx context.Context, actorID, id uuid.UUID, in RecipeInput) (*models.Recipe, error) {
	// Ownership is checked before the form or any upload.
	if _, err := s.GetOwned(ctx, actorID, id); err != nil {
		return nil, err
	}

	parsed, err := prepare(&in)
	if err != nil {
		return nil, err
	}

	newKey, err := s.uploadPhoto(ctx, id, in.Photo)
	if err != nil {
		return nil, err
	}

	var (
		updated *models.Recipe
		oldKey  *string
	)
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		recipe, err := s.getRecipe(ctx, tx, id)
		if err != nil {
			return err
		}
		if recipe.UserID != actorID {
			return apperr.Forbidden("You can only change your own recipes.")
		}

		recipe.Title = in.Title
		recipe.Ingredients = in.Ingredients
		recipe.Instructions = in.Instructions
		if newKey != nil {
			oldKey, recipe.PhotoKey = recipe.PhotoKey, newKey
		}
		if err := tx.Recipes.Update(ctx, recipe); err != nil {
			return err
		}

		if _, err := tx.Ingredients.DeleteWhere(ctx, "recipe_id", recipe.ID); err != nil {
			return err
		}
		if err := tx.Ingredients.CreateBatch(ctx, models.IngredientsFromParsed(recipe.ID, parsed)); err != nil {
			return err
		}
		updated = recipe
		return nil
	})
	if err != nil {
		s.removePhoto(ctx, newKey)
		var appErr *apperr.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		s.log.Error("failed to update recipe", zap.String("recipe_id", id.String()), zap.Error(err))
		return nil, apperr.Database("update recipe", err)
	}

	s.removePhoto(ctx, oldKey)
	s.metrics.RecipeEvent("updated")
	s.log.Info("recipe updated", zap.String("recipe_id", id.String()), zap.Int("ingredients", len(parsed)))
	return updated, nil
}

// Delete removes the recipe and its ingredient rows in one transaction. The
// photo object is removed afterwards on a best effort basis.
func (s *RecipeService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	var photoKey *string
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		recipe, err := s.getRecipe(ctx, tx, id)
		if err != nil {
			return err
		}
		if recipe.UserID != actorID {
			return apperr.Forbidden("You can only delete your own recipes.")
		}
		photoKey = recipe.PhotoKey

		if _, err := tx.Ingredients.DeleteWhere(ctx, "recipe_id", recipe.ID); err != nil {
			return err
		}
		return tx.Recipes.Delete(ctx, recipe.ID)
	})
	if err != nil {
		var appErr *apperr.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		s.log.Error("failed to delete recipe", zap.String("recipe_id", id.String()), zap.Error(err))
		return apperr.Database("delete recipe", err)
	}

	s.removePhoto(ctx, photoKey)
	s.metrics.RecipeEvent("deleted")
	s.log.Info("recipe deleted", zap.String("recipe_id", id.String()), zap.String("user_id", actorID.String()))
	return nil
}

func (s *RecipeService) getRecipe(ctx context.Context, store *repository.Store, id uuid.UUID) (*models.Recipe, error) {
	recipe, err := store.Recipes.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Recipe")
	}
	if err != nil {
		return nil, apperr.Database("get recipe", err)
	}
	return recipe, nil
}

func (s *RecipeService) summarize(ctx context.Context, recipes []models.Recipe) ([]RecipeSummary, error) {
	ids := make([]uuid.UUID, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}
	counts, err := s.store.IngredientCounts(ctx, ids)
	if err != nil {
		return nil, apperr.Database("count ingredients", err)
	}

	out := make([]RecipeSummary, len(recipes))
	for i, r := range recipes {
		out[i] = RecipeSummary{Recipe: r, IngredientCount: counts[r.ID], OwnerName: unknownOwner}
		if r.User != nil {
			out[i].OwnerName = r.User.Username
		}
	}
	return out, nil
}

func (s *RecipeService) uploadPhoto(ctx context.Context, recipeID uuid.UUID, photo *PhotoUpload) (*string, error) {
	if photo == nil || s.photos == nil {
		return nil, nil
	}
	key, err := s.photos.Put(ctx, recipeID, photo.Filename, photo.ContentType, photo.Body)
	if err != nil {
		s.log.Error("failed to upload photo", zap.String("recipe_id", recipeID.String()), zap.Error(err))
		return nil, apperr.New(apperr.CodeInternal, "The photo could not be uploaded. Please try again.")
	}
	return &key, nil
}

func (s *RecipeService) removePhoto(ctx context.Context, key *string) {
	if key == nil || s.photos == nil {
		return
	}
	if err := s.photos.Delete(ctx, *key); err != nil {
		s.log.Warn("failed to remove photo", zap.String("key", *key), zap.Error(err))
	}
}

// prepare trims and validates the form and parses the ingredient text.
func prepare(in *RecipeInput) ([]ingredient.Parsed, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Instructions = strings.TrimSpace(in.Instructions)
	in.Ingredients = strings.TrimSpace(in.Ingredients)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	parsed, err := ingredient.Parse(in.Ingredients)
	if err != nil {
		return nil, apperr.Validation("Ingredients: " + err.Error() + ". Use \"name - quantity - unit\" separated by commas.")
	}
	return parsed, nil
}
