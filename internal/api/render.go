package api

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pageza/recipebox/internal/apperr"
	"github.com/pageza/recipebox/internal/middleware"
	"github.com/pageza/recipebox/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplates parses every page template into one set for gin's HTML
// renderer. Pages are addressed by file name.
func LoadTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		// A Caser is stateful, so each call gets its own.
		"title": func(s string) string {
			return cases.Title(language.English).String(s)
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"date": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
	}
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// Renderer writes pages with the shared layout data and turns errors into
// error pages.
type Renderer struct {
	flash *session.Flash
	log   *zap.Logger
}

func NewRenderer(flash *session.Flash, log *zap.Logger) *Renderer {
	return &Renderer{flash: flash, log: log.Named("render")}
}

// HTML renders page with data plus the layout keys LoggedIn, Flashes and
// RequestID.
func (r *Renderer) HTML(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	_, loggedIn := middleware.CurrentUserID(c)
	data["LoggedIn"] = loggedIn
	data["Flashes"] = r.flash.Consume(c)
	data["RequestID"] = middleware.RequestID(c)
	c.HTML(status, page, data)
}

// Redirect queues a flash notice and redirects with 302.
func (r *Renderer) Redirect(c *gin.Context, location, category, message string) {
	if message != "" {
		r.flash.Add(c, category, message)
	}
	c.Redirect(http.StatusFound, location)
}

// RequireLogin sends an anonymous visitor to the login form.
func (r *Renderer) RequireLogin(c *gin.Context) {
	r.Redirect(c, "/login", session.FlashInfo, apperr.Unauthorized().Message)
}

// Error renders err as the matching error page. Unauthorized becomes a
// login redirect.
func (r *Renderer) Error(c *gin.Context, err error) {
	if errors.Is(err, apperr.ErrUnauthorized) {
		r.RequireLogin(c)
		return
	}
	appErr := apperr.From(err)

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		r.log.Error("request failed",
			zap.String("request_id", middleware.RequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.String("code", string(appErr.Code)),
			zap.String("details", appErr.Details),
			zap.Error(appErr.Cause))
	}
	_ = c.Error(err)

	r.HTML(c, status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": appErr.Message,
	})
}

// Panic renders the generic 500 page after a recovered panic.
func (r *Renderer) Panic(c *gin.Context) {
	r.HTML(c, http.StatusInternalServerError, "error.html", gin.H{
		"Title":   http.StatusText(http.StatusInternalServerError),
		"Status":  http.StatusInternalServerError,
		"Message": "Something went wrong. Please try again.",
	})
}

// NotFound renders the 404 page for unmatched routes.
func (r *Renderer) NotFound(c *gin.Context) {
	r.Error(c, apperr.NotFound("Page"))
}

// TooManyRequests renders the 429 page for rate limited requests.
func (r *Renderer) TooManyRequests(c *gin.Context) {
	r.Error(c, apperr.TooManyRequests(c.FullPath()))
}
