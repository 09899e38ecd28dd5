package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()

	m.RecipeEvent("created")
	m.RecipeEvent("created")
	m.AuthEvent("login", "failure")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecipeEvents.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("login", "failure")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecipeEvent("deleted")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `recipebox_recipe_events_total{action="deleted"} 1`)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestSeparateRegistries(t *testing.T) {
	// Two instances must not panic on duplicate registration.
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
