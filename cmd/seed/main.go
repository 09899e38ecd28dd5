// Command seed fills the database with demo users and recipes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"github.com/pageza/recipebox/config"
	"github.com/pageza/recipebox/internal/database"
	"github.com/pageza/recipebox/internal/hashing"
	"github.com/pageza/recipebox/internal/ingredient"
	"github.com/pageza/recipebox/internal/logger"
	"github.com/pageza/recipebox/internal/metrics"
	"github.com/pageza/recipebox/internal/repository"
	"github.com/pageza/recipebox/internal/service"
)

const demoPassword = "recipebox-demo"

func main() {
	users := flag.Int("users", 3, "Number of demo users")
	recipes := flag.Int("recipes", 4, "Recipes per user")
	seed := flag.Int64("seed", 0, "Random seed, 0 for a random one")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	zl, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	if err := run(context.Background(), cfg, zl, *users, *recipes, *seed); err != nil {
		zl.Fatal("seeding failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger, users, perUser int, seed int64) error {
	gofakeit.Seed(seed)

	db, err := database.New(cfg.Database, zl)
	if err != nil {
		return err
	}
	defer database.Close(db) //nolint:errcheck
	if err := database.RunMigrations(ctx, db, zl); err != nil {
		return err
	}

	hasher, err := hashing.NewDefaultManager(hashing.DriverName(cfg.Auth.Hasher), cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	store := repository.NewStore(db)
	m := metrics.New()
	auth := service.NewAuthService(store, hasher, service.AuthOptions{RejectDuplicateEmails: true}, zl, m)
	recipeSvc := service.NewRecipeService(store, nil, zl, m)

	for i := 0; i < users; i++ {
		user, err := auth.Register(ctx, service.RegisterInput{
			Username: gofakeit.Username(),
			Email:    strings.ToLower(gofakeit.Email()),
			Password: demoPassword,
		})
		if err != nil {
			return fmt.Errorf("register user %d: %w", i+1, err)
		}

		for j := 0; j < perUser; j++ {
			if _, err := recipeSvc.Create(ctx, user.ID, fakeRecipe()); err != nil {
				return fmt.Errorf("create recipe for %s: %w", user.Email, err)
			}
		}
		zl.Info("seeded user",
			zap.String("email", user.Email),
			zap.String("password", demoPassword),
			zap.Int("recipes", perUser))
	}
	return nil
}

func fakeRecipe() service.RecipeInput {
	parsed := make([]ingredient.Parsed, gofakeit.Number(2, 8))
	for i := range parsed {
		p := ingredient.Parsed{Name: strings.ReplaceAll(gofakeit.Noun(), "-", " ")}
		if gofakeit.Bool() {
			qty := fmt.Sprintf("%d", gofakeit.Number(1, 6))
			unit := gofakeit.RandomString([]string{"cup", "tbsp", "tsp", "g", "ml"})
			p.Quantity, p.Unit = &qty, &unit
		}
		parsed[i] = p
	}

	steps := make([]string, gofakeit.Number(2, 5))
	for i := range steps {
		steps[i] = fmt.Sprintf("%d. %s", i+1, gofakeit.Sentence(8))
	}

	return service.RecipeInput{
		Title:        strings.TrimSuffix(gofakeit.Sentence(3), "."),
		Ingredients:  ingredient.Format(parsed),
		Instructions: strings.Join(steps, "\n"),
	}
}
