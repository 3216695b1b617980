package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nutriflow/backend/internal/mealplan"
	"github.com/nutriflow/backend/internal/middleware"
	"github.com/nutriflow/backend/internal/service"
	"github.com/nutriflow/backend/internal/testhelpers"
	"github.com/nutriflow/backend/internal/types"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	db     *gorm.DB
	router *gin.Engine
	token  string
}

func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := testhelpers.SetupSQLiteDB(t)

	foods := service.NewFoodService(db)
	patients := service.NewPatientService(db)
	generator := mealplan.NewGenerator(foods,
		mealplan.WithSeed(7),
		mealplan.WithLogger(log.New(io.Discard, "", 0)),
	)
	plans := service.NewMealPlanService(db, generator, nil, nil, nil)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(middleware.NewJWTValidator(testhelpers.TestJWTSecret)))
	NewMealPlanHandler(plans, foods, patients).RegisterRoutes(v1, nil)
	NewFoodHandler(foods, foods).RegisterRoutes(v1)
	NewPatientHandler(patients).RegisterRoutes(v1)

	return &testAPI{
		db:     db,
		router: router,
		token:  testhelpers.CreateTestToken(t, uuid.New(), types.RoleClinician),
	}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.token)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func ptr[T any](v T) *T {
	return &v
}

