package api_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/internal/middleware"
	"github.com/pageza/recipebox/internal/testhelpers"
)

func TestRegisterFlow(t *testing.T) {
	app := setupTestApp(t, appOptions{})
	b := app.newBrowser(t)

	p := b.get("/register")
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, `name="username"`)

	p = b.post("/register", url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {"hunter22"},
	})
	assert.Equal(t, http.StatusFound, p.status)
	assert.Equal(t, "/login", p.location)

	p = b.get("/login")
	assert.Contains(t, p.body, "Account created successfully!")

	// The flash is shown once.
	p = b.get("/login")
	assert.NotContains(t, p.body, "Account created successfully!")

	n, err := app.store.Users.Count(context.Background(), "email", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRegisterValidationKeepsInput(t *testing.T) {
	app := setupTestApp(t, appOptions{})
	b := app.newBrowser(t)

	p := b.post("/register", url.Values{
		"username": {"bob"},
		"email":    {"bob@example.com"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, p.status)
	assert.Contains(t, p.body, "Password is required.")
	assert.Contains(t, p.body, `value="bob"`)
	assert.Contains(t, p.body, `value="bob@example.com"`)

	p = b.post("/register", url.Values{
		"username": {"bob"},
		"email":    {"bob@example.com"},
		"password": {strings.Repeat("é", 40)},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, p.status)
	assert.Contains(t, p.body, "Password must be at most 72 bytes.")
	assert.Contains(t, p.body, `value="bob"`)

	n, err := app.store.Users.Count(context.Background(), "email", "bob@example.com")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoginFlow(t *testing.T) {
	app := setupTestApp(t, appOptions{})
	user := testhelpers.CreateTestUser(t, app.store)
	b := app.newBrowser(t)

	p := b.post("/login", url.Values{"email": {user.Email}, "password": {testhelpers.TestPassword}})
	assert.Equal(t, http.StatusFound, p.status)
	assert.Equal(t, "/dashboard", p.location)

	p = b.get("/dashboard")
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "Login successful!")
	assert.Contains(t, p.body, user.Username)
	assert.Contains(t, p.body, `href="/logout"`)
}

func TestLoginFailures(t *testing.T) {
	app := setupTestApp(t, appOptions{})
	user := testhelpers.CreateTestUser(t, app.store)

	tests := []struct {
		name  string
		email string
		pass  string
	}{
		{"wrong password", user.Email, "wrong"},
		{"unknown email", "ghost@example.com", testhelpers.TestPassword},
		{"empty form", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := app.newBrowser(t)
			p := b.post("/login", url.Values{"email": {tt.email}, "password": {tt.pass}})
			assert.Equal(t, http.StatusUnauthorized, p.status)
			assert.Contains(t, p.body, "Login unsuccessful. Check email and password.")

			// No session was issued.
			p = b.get("/dashboard")
			assert.Equal(t, http.StatusFound, p.status)
			assert.Equal(t, "/login", p.location)
		})
	}
}

func TestLogout(t *testing.T) {
	app := setupTestApp(t, appOptions{})
	user := testhelpers.CreateTestUser(t, app.store)
	b := app.newBrowser(t)
	b.login(user)

	p := b.get("/logout")
	assert.Equal(t, http.StatusFound, p.status)
	assert.Equal(t, "/login", p.location)

	p = b.get("/login")
	assert.Contains(t, p.body, "You have been logged out")
	assert.Contains(t, p.body, "flash-info")

	p = b.get("/dashboard")
	assert.Equal(t, http.StatusFound, p.status)
	assert.Equal(t, "/login", p.location)
}

func TestDashboardRequiresLogin(t *testing.T) {
	app := setupTestApp(t, appOptions{})
	b := app.newBrowser(t)

	p := b.get("/dashboard")
	assert.Equal(t, http.StatusFound, p.status)
	assert.Equal(t, "/login", p.location)

	p = b.get("/login")
	assert.Contains(t, p.body, "Please log in to access this page.")
}

func TestDashboardClearsSessionOfDeletedUser(t *testing.T) {
	app := setupTestApp(t, appOptions{})
	user := testhelpers.CreateTestUser(t, app.store)
	b := app.newBrowser(t)
	b.login(user)

	require.NoError(t, app.store.Users.Delete(context.Background(), user.ID))

	p := b.get("/dashboard")
	assert.Equal(t, http.StatusFound, p.status)
	assert.Equal(t, "/login", p.location)

	// The cookie is gone, so the landing page shows the anonymous links.
	p = b.get("/")
	assert.Contains(t, p.body, `href="/register"`)
}

func TestDashboardListsOwnRecipes(t *testing.T) {
	app := setupTestApp(t, appOptions{})
	owner := testhelpers.CreateTestUser(t, app.store)
	other := testhelpers.CreateTestUser(t, app.store)
	mine := testhelpers.CreateTestRecipe(t, app.store, owner, "water - 1 - liter, salt")
	theirs := testhelpers.CreateTestRecipe(t, app.store, other, "")

	b := app.newBrowser(t)
	b.login(owner)

	p := b.get("/dashboard")
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, mine.ID.String())
	assert.Contains(t, p.body, "2 ingredients")
	assert.NotContains(t, p.body, theirs.ID.String())
}

func TestLoginRateLimited(t *testing.T) {
	limiter := middleware.NewMemoryLimiter(middleware.RateLimitConfig{Window: time.Hour, Limit: 2})
	app := setupTestApp(t, appOptions{loginLimiter: limiter})
	b := app.newBrowser(t)

	form := url.Values{"email": {"someone@example.com"}, "password": {"guess"}}
	for i := 0; i < 2; i++ {
		p := b.post("/login", form)
		assert.Equal(t, http.StatusUnauthorized, p.status)
	}

	p := b.post("/login", form)
	assert.Equal(t, http.StatusTooManyRequests, p.status)
	assert.Contains(t, p.body, "Too many requests. Please try again later.")

	// The form itself stays reachable.
	p = b.get("/login")
	assert.Equal(t, http.StatusOK, p.status)
}
