package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/recipebox/internal/models"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	PhotosEnabled() bool
	Create(ctx context.Context, ownerID uuid.UUID, in RecipeInput) (*models.Recipe, error)
	Get(ctx context.Context, id uuid.UUID) (*RecipeDetail, error)
	ListAll(ctx context.Context) ([]RecipeSummary, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]RecipeSummary, error)
	GetOwned(ctx context.Context, actorID, id uuid.UUID) (*models.Recipe, error)
	Update(ctx context.Context, actorID, id uuid.UUID, in RecipeInput) (*models.Recipe, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
}

var (
	_ IAuthService   = (*AuthService)(nil)
	_ IRecipeService = (*RecipeService)(nil)
)
