package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipebox/internal/api"
	"github.com/pageza/recipebox/internal/metrics"
	"github.com/pageza/recipebox/internal/middleware"
)

// Handlers groups the page handlers mounted by SetupRouter.
type Handlers struct {
	Auth      *api.AuthHandler
	Dashboard *api.DashboardHandler
	Recipes   *api.RecipeHandler
	Health    *api.HealthHandler
}

// Options toggles the optional parts of the router. A nil limiter or an
// empty MetricsPath leaves that feature off.
type Options struct {
	AllowedOrigins []string
	MetricsPath    string
	LoginLimiter   middleware.Limiter
	CreateLimiter  middleware.Limiter
}

// SetupRouter configures the application routes
func SetupRouter(
	h Handlers,
	render *api.Renderer,
	sessions middleware.SessionReader,
	m *metrics.Metrics,
	log *zap.Logger,
	opts Options,
) (*gin.Engine, error) {
	templates, err := api.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(templates)
	router.Use(
		middleware.RequestLogger(log),
		middleware.Recovery(log, render.Panic),
		middleware.Metrics(m),
		middleware.CORS(opts.AllowedOrigins),
		middleware.LoadSession(sessions),
	)
	router.NoRoute(render.NotFound)

	router.GET("/health", h.Health.HealthCheck)
	if opts.MetricsPath != "" {
		router.GET(opts.MetricsPath, api.Metrics(m))
	}

	router.GET("/", api.Landing(render))
	router.GET("/register", h.Auth.RegisterForm)
	router.POST("/register", h.Auth.Register)
	router.GET("/login", h.Auth.LoginForm)
	router.POST("/login", limit("login", opts.LoginLimiter, middleware.ClientIPKey, render, m, log), h.Auth.Login)
	router.GET("/logout", h.Auth.Logout)

	router.GET("/recipes", h.Recipes.ListRecipes)
	router.GET("/recipe/:id", h.Recipes.GetRecipe)

	// Everything below needs a logged in user.
	private := router.Group("")
	private.Use(middleware.RequireSession(render.RequireLogin))
	{
		private.GET("/dashboard", h.Dashboard.Dashboard)

		private.GET("/create_recipe", h.Recipes.NewRecipeForm)
		private.POST("/create_recipe", limit("recipe_create", opts.CreateLimiter, middleware.UserKey, render, m, log), h.Recipes.CreateRecipe)

		private.GET("/edit_recipe/:id", h.Recipes.EditRecipeForm)
		private.POST("/edit_recipe/:id", h.Recipes.UpdateRecipe)

		private.GET("/delete_recipe/:id", h.Recipes.DeleteRecipeForm)
		private.POST("/delete_recipe/:id", h.Recipes.DeleteRecipe)
	}

	return router, nil
}

func limit(name string, limiter middleware.Limiter, key middleware.KeyFunc, render *api.Renderer, m *metrics.Metrics, log *zap.Logger) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(name, limiter, key, m, log, render.TooManyRequests)
}
