package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/nutriflow/backend/internal/mealplan"
	"github.com/nutriflow/backend/internal/models"
	"github.com/nutriflow/backend/internal/testhelpers"
	"github.com/nutriflow/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T, a *testAPI) map[string]*models.Food {
	t.Helper()
	return map[string]*models.Food{
		"oats":    testhelpers.CreateTestFood(t, a.db, "Oats", models.CategoryGrains, 200, "breakfast"),
		"banana":  testhelpers.CreateTestFood(t, a.db, "Banana", models.CategoryFruits, 100, "breakfast", "snack"),
		"milk":    testhelpers.CreateTestFood(t, a.db, "Milk", models.CategoryDairy, 120, "breakfast"),
		"chicken": testhelpers.CreateTestFood(t, a.db, "Chicken", models.CategoryMeat, 250, "lunch", "dinner"),
		"beans":   testhelpers.CreateTestFood(t, a.db, "Beans", models.CategoryLegumes, 150, "lunch", "dinner"),
		"rice":    testhelpers.CreateTestFood(t, a.db, "Rice", models.CategoryGrains, 200, "lunch", "dinner"),
	}
}

func TestPreview(t *testing.T) {
	a := setupTestAPI(t)
	foods := seedCatalog(t, a)

	w := a.do(t, http.MethodPost, "/api/v1/meal-plans/preview", types.PreviewRequest{
		Slots: []types.SlotRequest{
			{Name: "Breakfast", TargetCalories: 400},
			{Name: "Lunch", TargetCalories: 700},
		},
		Patient: &types.PatientRequest{Objective: "Hypertrophy", Restrictions: []string{"vegetarian"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.PreviewResponse
	decode(t, w, &resp)
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, mealplan.ObjectiveHypertrophy, resp.Report.Objective)
	for _, slot := range resp.Slots {
		for _, item := range slot.Items {
			assert.NotEqual(t, foods["chicken"].ID, item.FoodID, "vegetarian plan must not contain meat")
		}
	}

	var count int64
	require.NoError(t, a.db.Model(&models.MealItem{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPreview_StoredPatientAndHandPlacedItems(t *testing.T) {
	a := setupTestAPI(t)
	foods := seedCatalog(t, a)
	patient := testhelpers.CreateTestPatient(t, a.db, "weight loss")

	w := a.do(t, http.MethodPost, "/api/v1/meal-plans/preview", types.PreviewRequest{
		PatientID: &patient.ID,
		Slots: []types.SlotRequest{
			{Name: "Breakfast", TargetCalories: 400, Items: []types.ItemRequest{{FoodID: foods["oats"].ID, Quantity: 1.5}}},
			{Name: "Dinner", TargetCalories: 600},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.PreviewResponse
	decode(t, w, &resp)
	require.Len(t, resp.Slots[0].Items, 1)
	assert.Equal(t, 300.0, resp.Slots[0].Items[0].Calories)
	assert.Equal(t, mealplan.OutcomePrefilled, resp.Report.Slots[0].Outcome)
	assert.Equal(t, mealplan.ObjectiveWeightLoss, resp.Report.Objective)
	for _, item := range resp.Slots[1].Items {
		assert.NotEqual(t, foods["oats"].ID, item.FoodID)
	}
}

func TestPreview_Errors(t *testing.T) {
	a := setupTestAPI(t)

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"no slots", types.PreviewRequest{}, http.StatusBadRequest},
		{"slot without name", types.PreviewRequest{Slots: []types.SlotRequest{{TargetCalories: 300}}}, http.StatusBadRequest},
		{"unknown food", types.PreviewRequest{Slots: []types.SlotRequest{{
			Name: "Lunch", Items: []types.ItemRequest{{FoodID: uuid.New(), Quantity: 1}},
		}}}, http.StatusBadRequest},
		{"unknown patient", types.PreviewRequest{PatientID: ptr(uuid.New()), Slots: []types.SlotRequest{{Name: "Lunch"}}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(t, http.MethodPost, "/api/v1/meal-plans/preview", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestCreateGenerateAndGetPlan(t *testing.T) {
	a := setupTestAPI(t)
	foods := seedCatalog(t, a)
	patient := testhelpers.CreateTestPatient(t, a.db, "maintenance")

	w := a.do(t, http.MethodPost, "/api/v1/meal-plans", types.CreatePlanRequest{
		PatientID: patient.ID,
		Name:      "Tuesday",
		Slots: []types.SlotRequest{
			{Name: "Breakfast", TargetCalories: 400},
			{Name: "Lunch", TargetCalories: 700, Items: []types.ItemRequest{{FoodID: foods["rice"].ID, Quantity: 1}}},
			{Name: "Dinner", TargetCalories: 0},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var plan models.MealPlan
	decode(t, w, &plan)
	require.Len(t, plan.Slots, 3)

	w = a.do(t, http.MethodPost, "/api/v1/meal-plans/"+plan.ID.String()+"/generate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var generated types.GeneratePlanResponse
	decode(t, w, &generated)
	assert.Equal(t, mealplan.OutcomePrefilled, generated.Report.Slots[1].Outcome)
	assert.Equal(t, mealplan.OutcomeNoTarget, generated.Report.Slots[2].Outcome)

	w = a.do(t, http.MethodGet, "/api/v1/meal-plans/"+plan.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stored models.MealPlan
	decode(t, w, &stored)
	require.Len(t, stored.Slots, 3)
	assert.Len(t, stored.Slots[0].Items, len(generated.MealPlan.Slots[0].Items))
	require.Len(t, stored.Slots[1].Items, 1)
	assert.Equal(t, foods["rice"].ID, stored.Slots[1].Items[0].FoodID)
	assert.Empty(t, stored.Slots[2].Items)
}

func TestPlanRoutes_NotFoundAndBadID(t *testing.T) {
	a := setupTestAPI(t)

	w := a.do(t, http.MethodPost, "/api/v1/meal-plans/not-a-uuid/generate", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodPost, "/api/v1/meal-plans/"+uuid.NewString()+"/generate", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodGet, "/api/v1/meal-plans/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodPost, "/api/v1/meal-plans", types.CreatePlanRequest{
		PatientID: uuid.New(),
		Slots:     []types.SlotRequest{{Name: "Lunch", TargetCalories: 500}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlanRoutes_RequireToken(t *testing.T) {
	a := setupTestAPI(t)
	a.token = "garbage"

	w := a.do(t, http.MethodGet, "/api/v1/meal-plans/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
