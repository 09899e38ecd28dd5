package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/internal/apperr"
	"github.com/pageza/recipebox/internal/middleware"
	"github.com/pageza/recipebox/internal/service"
	"github.com/pageza/recipebox/internal/session"
)

// DashboardHandler shows the logged in user's own recipes.
type DashboardHandler struct {
	auth     service.IAuthService
	recipes  service.IRecipeService
	sessions *session.Manager
	render   *Renderer
}

func NewDashboardHandler(auth service.IAuthService, recipes service.IRecipeService, sessions *session.Manager, render *Renderer) *DashboardHandler {
	return &DashboardHandler{
		auth:     auth,
		recipes:  recipes,
		sessions: sessions,
		render:   render,
	}
}

// Dashboard clears sessions whose user no longer exists.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		h.render.RequireLogin(c)
		return
	}

	user, err := h.auth.GetUser(c.Request.Context(), userID)
	if errors.Is(err, apperr.ErrNotFound) {
		h.sessions.Clear(c)
		h.render.RequireLogin(c)
		return
	}
	if err != nil {
		h.render.Error(c, err)
		return
	}

	recipes, err := h.recipes.ListByOwner(c.Request.Context(), user.ID)
	if err != nil {
		h.render.Error(c, err)
		return
	}

	h.render.HTML(c, http.StatusOK, "dashboard.html", gin.H{
		"Title":   "Dashboard",
		"User":    user,
		"Recipes": recipes,
	})
}
