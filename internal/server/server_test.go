package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nutriflow/backend/config"
	"github.com/nutriflow/backend/internal/service"
	"github.com/nutriflow/backend/internal/testhelpers"
	"github.com/nutriflow/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type closeRecorder struct {
	closed bool
}

func (p *closeRecorder) PublishGenerated(ctx context.Context, event service.PlanGeneratedEvent) error {
	return nil
}

func (p *closeRecorder) Close() error {
	p.closed = true
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		ServerHost:        "localhost",
		ServerPort:        "0",
		JWTSecret:         testhelpers.TestJWTSecret,
		CandidateLimit:    60,
		CandidateCacheTTL: time.Minute,
		RateLimitRequests: 30,
		RateLimitWindow:   time.Minute,
		MealplanSeed:      1,
	}
}

func TestNew(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	server := New(testConfig(), db, Options{})
	require.NotNil(t, server)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"health", "/health", "", http.StatusOK},
		{"metrics", "/metrics", "", http.StatusOK},
		{"api without token", "/api/v1/foods?meal_tag=lunch", "", http.StatusUnauthorized},
		{"api with token", "/api/v1/foods?meal_tag=lunch", testhelpers.CreateTestToken(t, uuid.New(), types.RoleClinician), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			server.Handler().ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestMetricsCountPreviews(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	server := New(testConfig(), db, Options{})
	token := testhelpers.CreateTestToken(t, uuid.New(), types.RoleClinician)

	body := `{"slots":[{"name":"Lunch","target_calories":600}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/meal-plans/preview", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `mealplan_generations_total{mode="preview"} 1`)
	assert.Contains(t, w.Body.String(), `mealplan_slots_total{outcome="no_candidates"} 1`)
}

func TestShutdownClosesPublisher(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	publisher := &closeRecorder{}
	server := New(testConfig(), db, Options{Publisher: publisher})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
	assert.True(t, publisher.closed)
}
