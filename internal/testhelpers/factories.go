package testhelpers

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/recipebox/internal/hashing"
	"github.com/pageza/recipebox/internal/ingredient"
	"github.com/pageza/recipebox/internal/models"
	"github.com/pageza/recipebox/internal/repository"
)

// TestPassword is the plaintext password of every user made by CreateTestUser.
const TestPassword = "s3cret-pass"

// NewTestHasher returns a bcrypt hasher at minimum cost.
func NewTestHasher(t *testing.T) hashing.Hasher {
	t.Helper()
	h, err := hashing.NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to build hasher: %v", err)
	}
	return h
}

// CreateTestUser stores a user with a random name and email and TestPassword.
func CreateTestUser(t *testing.T, store *repository.Store) *models.User {
	t.Helper()

	hash, err := NewTestHasher(t).Make(TestPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Username:     gofakeit.Username(),
		Email:        strings.ToLower(gofakeit.Email()),
		PasswordHash: hash,
	}
	if err := store.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// FakeIngredients returns n random ingredients in "name - quantity - unit" form.
func FakeIngredients(n int) string {
	parsed := make([]ingredient.Parsed, n)
	for i := range parsed {
		qty := fmt.Sprintf("%d", gofakeit.Number(1, 12))
		unit := gofakeit.RandomString([]string{"cup", "tbsp", "tsp", "g", "ml", "pinch"})
		parsed[i] = ingredient.Parsed{
			Name:     strings.ReplaceAll(gofakeit.Noun(), "-", " "),
			Quantity: &qty,
			Unit:     &unit,
		}
	}
	return ingredient.Format(parsed)
}

// CreateTestRecipe stores a recipe owned by owner with parsed ingredient rows.
func CreateTestRecipe(t *testing.T, store *repository.Store, owner *models.User, ingredientsText string) *models.Recipe {
	t.Helper()
	ctx := context.Background()

	parsed, err := ingredient.Parse(ingredientsText)
	if err != nil {
		t.Fatalf("invalid test ingredients %q: %v", ingredientsText, err)
	}
	recipe := &models.Recipe{
		Title:        gofakeit.Sentence(3),
		Ingredients:  ingredientsText,
		Instructions: gofakeit.Paragraph(1, 3, 8, " "),
		UserID:       owner.ID,
	}
	if err := store.Recipes.Create(ctx, recipe); err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}
	if err := store.Ingredients.CreateBatch(ctx, models.IngredientsFromParsed(recipe.ID, parsed)); err != nil {
		t.Fatalf("failed to create test ingredients: %v", err)
	}
	return recipe
}
