package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/recipebox/internal/api"
	"github.com/pageza/recipebox/internal/database"
	"github.com/pageza/recipebox/internal/metrics"
	"github.com/pageza/recipebox/internal/middleware"
	"github.com/pageza/recipebox/internal/models"
	"github.com/pageza/recipebox/internal/repository"
	"github.com/pageza/recipebox/internal/router"
	"github.com/pageza/recipebox/internal/service"
	"github.com/pageza/recipebox/internal/session"
	"github.com/pageza/recipebox/internal/storage"
	"github.com/pageza/recipebox/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type appOptions struct {
	photos        storage.PhotoStore
	loginLimiter  middleware.Limiter
	createLimiter middleware.Limiter
	pinger        database.Pinger
}

type testApp struct {
	server  *httptest.Server
	store   *repository.Store
	metrics *metrics.Metrics
}

// setupTestApp wires the real services over an in-memory database behind a
// live test server.
func setupTestApp(t *testing.T, opts appOptions) *testApp {
	t.Helper()
	log := zap.NewNop()
	db := testhelpers.SetupTestDatabase(t)
	store := repository.NewStore(db)
	m := metrics.New()

	secret, err := session.NewSecret()
	require.NoError(t, err)
	sessions := session.NewManager(secret, session.Options{CookieName: "recipebox_session", TTL: time.Hour})
	render := api.NewRenderer(session.NewFlash("recipebox_flash", false), log)

	authSvc := service.NewAuthService(store, testhelpers.NewTestHasher(t), service.AuthOptions{}, log, m)
	recipeSvc := service.NewRecipeService(store, opts.photos, log, m)

	pinger := opts.pinger
	if pinger == nil {
		pinger, err = database.NewHealthChecker(db)
		require.NoError(t, err)
	}

	engine, err := router.SetupRouter(router.Handlers{
		Auth:      api.NewAuthHandler(authSvc, sessions, render, log),
		Dashboard: api.NewDashboardHandler(authSvc, recipeSvc, sessions, render),
		Recipes:   api.NewRecipeHandler(recipeSvc, render, 1<<20, log),
		Health:    api.NewHealthHandler(pinger, log),
	}, render, sessions, m, log, router.Options{
		MetricsPath:   "/metrics",
		LoginLimiter:  opts.loginLimiter,
		CreateLimiter: opts.createLimiter,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return &testApp{server: srv, store: store, metrics: m}
}

// browser keeps cookies between requests and never follows redirects.
type browser struct {
	t      *testing.T
	app    *testApp
	client *http.Client
}

func (a *testApp) newBrowser(t *testing.T) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:   t,
		app: a,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type page struct {
	status   int
	body     string
	location string
	header   http.Header
}

func (b *browser) do(req *http.Request) page {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return page{
		status:   resp.StatusCode,
		body:     string(body),
		location: resp.Header.Get("Location"),
		header:   resp.Header,
	}
}

func (b *browser) get(path string) page {
	b.t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, b.app.server.URL+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) page {
	b.t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, b.app.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

// login signs in as user and consumes the welcome flash.
func (b *browser) login(user *models.User) {
	b.t.Helper()
	p := b.post("/login", url.Values{"email": {user.Email}, "password": {testhelpers.TestPassword}})
	require.Equal(b.t, http.StatusFound, p.status, p.body)
	require.Equal(b.t, "/dashboard", p.location)
	b.get("/dashboard")
}
