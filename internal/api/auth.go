package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipebox/internal/apperr"
	"github.com/pageza/recipebox/internal/service"
	"github.com/pageza/recipebox/internal/session"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	auth     service.IAuthService
	sessions *session.Manager
	render   *Renderer
	log      *zap.Logger
}

func NewAuthHandler(auth service.IAuthService, sessions *session.Manager, render *Renderer, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		render:   render,
		log:      log.Named("auth_handler"),
	}
}

func (h *AuthHandler) RegisterForm(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "register.html", gin.H{
		"Title":    "Register",
		"Username": "",
		"Email":    "",
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	in := service.RegisterInput{
		Username: c.PostForm("username"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}

	if _, err := h.auth.Register(c.Request.Context(), in); err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			h.render.HTML(c, http.StatusUnprocessableEntity, "register.html", gin.H{
				"Title":    "Register",
				"Username": in.Username,
				"Email":    in.Email,
				"Error":    apperr.From(err).Message,
			})
			return
		}
		h.render.Error(c, err)
		return
	}

	h.render.Redirect(c, "/login", session.FlashSuccess, "Account created successfully!")
}

func (h *AuthHandler) LoginForm(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "login.html", gin.H{
		"Title": "Log in",
		"Email": "",
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")

	user, err := h.auth.Authenticate(c.Request.Context(), email, c.PostForm("password"))
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCredentials) {
			h.render.HTML(c, http.StatusUnauthorized, "login.html", gin.H{
				"Title": "Log in",
				"Email": email,
				"Error": apperr.From(err).Message,
			})
			return
		}
		h.render.Error(c, err)
		return
	}

	if err := h.sessions.Set(c, user.ID); err != nil {
		h.render.Error(c, apperr.From(err))
		return
	}
	h.log.Info("user logged in", zap.String("user_id", user.ID.String()))
	h.render.Redirect(c, "/dashboard", session.FlashSuccess, "Login successful!")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Clear(c)
	h.render.Redirect(c, "/login", session.FlashInfo, "You have been logged out")
}
