package service

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nutriflow/backend/internal/mealplan"
	"github.com/nutriflow/backend/internal/metrics"
	"github.com/nutriflow/backend/internal/models"
	"github.com/nutriflow/backend/internal/testhelpers"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockArchiver struct {
	mock.Mock
}

func (m *mockArchiver) Archive(ctx context.Context, plan *models.MealPlan, report mealplan.Report, at time.Time) (string, error) {
	args := m.Called(ctx, plan, report, at)
	return args.String(0), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishGenerated(ctx context.Context, event PlanGeneratedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return nil
}

type mealPlanFixture struct {
	db        *gorm.DB
	svc       *MealPlanService
	collector *metrics.Collector
	patient   *models.PatientProfile
	oats      *models.Food
	chicken   *models.Food
}

func setupMealPlanService(t *testing.T, archiver PlanArchiver, publisher EventPublisher) *mealPlanFixture {
	t.Helper()
	db := testhelpers.SetupSQLiteDB(t)

	f := &mealPlanFixture{db: db, collector: metrics.NewCollector()}
	f.oats = testhelpers.CreateTestFood(t, db, "Oats", models.CategoryGrains, 200, "breakfast")
	testhelpers.CreateTestFood(t, db, "Banana", models.CategoryFruits, 100, "breakfast", "snack")
	testhelpers.CreateTestFood(t, db, "Yogurt", models.CategoryDairy, 120, "breakfast")
	f.chicken = testhelpers.CreateTestFood(t, db, "Chicken", models.CategoryMeat, 250, "lunch", "dinner")
	testhelpers.CreateTestFood(t, db, "Rice", models.CategoryGrains, 200, "lunch", "dinner")
	testhelpers.CreateTestFood(t, db, "Beans", models.CategoryLegumes, 150, "lunch", "dinner")
	f.patient = testhelpers.CreateTestPatient(t, db, "maintenance")

	generator := mealplan.NewGenerator(
		NewFoodService(db),
		mealplan.WithSeed(42),
		mealplan.WithLogger(log.New(io.Discard, "", 0)),
	)
	f.svc = NewMealPlanService(db, generator, archiver, publisher, f.collector)
	return f
}

func countItems(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.MealItem{}).Count(&n).Error)
	return n
}

func TestMealPlanService_CreateAndGetPlan(t *testing.T) {
	f := setupMealPlanService(t, nil, nil)
	ctx := context.Background()

	plan, err := f.svc.CreatePlan(ctx, &models.MealPlan{
		PatientID: f.patient.ID,
		Name:      "Monday",
		Slots: []models.MealSlot{
			{Name: "Dinner", Position: 2, TargetCalories: 600},
			{Name: "Breakfast", Position: 0, TargetCalories: 400},
			{Name: "Lunch", Position: 1, TargetCalories: 700},
		},
	})
	require.NoError(t, err)
	require.Len(t, plan.Slots, 3)
	assert.Equal(t, "Breakfast", plan.Slots[0].Name)
	assert.Equal(t, "Lunch", plan.Slots[1].Name)
	assert.Equal(t, "Dinner", plan.Slots[2].Name)

	_, err = f.svc.CreatePlan(ctx, &models.MealPlan{PatientID: uuid.New(), Name: "Orphan"})
	assert.ErrorIs(t, err, ErrPatientNotFound)

	_, err = f.svc.GetPlan(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrMealPlanNotFound)
}

func TestMealPlanService_PreviewDoesNotWrite(t *testing.T) {
	f := setupMealPlanService(t, nil, nil)

	slots, report := f.svc.Preview(context.Background(), []models.MealSlot{
		testhelpers.Slot("Breakfast", 400),
		testhelpers.Slot("Lunch", 700),
	}, f.patient)

	require.Len(t, slots, 2)
	assert.NotEmpty(t, slots[0].Items)
	assert.NotEmpty(t, slots[1].Items)
	assert.Len(t, report.Slots, 2)
	assert.Equal(t, int64(0), countItems(t, f.db))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.collector.GenerationCounter(modePreview)))
}

func TestMealPlanService_GeneratePlan(t *testing.T) {
	archiver := new(mockArchiver)
	publisher := new(mockPublisher)
	f := setupMealPlanService(t, archiver, publisher)
	ctx := context.Background()

	prefilled := testhelpers.Slot("Dinner", 600)
	prefilled.Items = []models.MealItem{models.NewMealItem(*f.chicken, 2)}
	plan := testhelpers.CreateTestPlan(t, f.db, f.patient,
		testhelpers.Slot("Breakfast", 400),
		testhelpers.Slot("Lunch", 700),
		prefilled,
	)
	require.Equal(t, int64(1), countItems(t, f.db))

	archiver.On("Archive", mock.Anything, mock.AnythingOfType("*models.MealPlan"), mock.Anything, mock.Anything).
		Return("meal-plans/key.json", nil).Once()
	publisher.On("PublishGenerated", mock.Anything, mock.MatchedBy(func(e PlanGeneratedEvent) bool {
		return e.PlanID == plan.ID && len(e.Slots) == 3
	})).Return(nil).Once()

	generated, report, err := f.svc.GeneratePlan(ctx, plan.ID)
	require.NoError(t, err)
	archiver.AssertExpectations(t)
	publisher.AssertExpectations(t)

	require.Len(t, report.Slots, 3)
	assert.Equal(t, mealplan.OutcomePrefilled, report.Slots[2].Outcome)
	require.Len(t, generated.Slots, 3)

	stored, err := f.svc.GetPlan(ctx, plan.ID)
	require.NoError(t, err)

	seen := map[uuid.UUID]bool{}
	for _, slot := range stored.Slots {
		for _, item := range slot.Items {
			assert.False(t, seen[item.FoodID], "food %s used twice", item.FoodName)
			seen[item.FoodID] = true
			assert.Equal(t, slot.ID, item.MealSlotID)
		}
	}

	dinner := stored.Slots[2]
	require.Len(t, dinner.Items, 1)
	assert.Equal(t, f.chicken.ID, dinner.Items[0].FoodID)
	assert.Equal(t, 2.0, dinner.Items[0].Quantity)

	for i := 0; i < 2; i++ {
		assert.Equal(t, len(generated.Slots[i].Items), len(stored.Slots[i].Items))
		if report.Slots[i].Outcome == mealplan.OutcomeFilled {
			total := stored.Slots[i].Totals().Calories
			assert.GreaterOrEqual(t, total, 0.85*stored.Slots[i].TargetCalories)
			assert.LessOrEqual(t, total, 1.15*stored.Slots[i].TargetCalories)
		}
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(f.collector.GenerationCounter(modePersisted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.collector.SlotCounter(string(mealplan.OutcomePrefilled))))
}

func TestMealPlanService_GeneratePlanSideEffectFailures(t *testing.T) {
	archiver := new(mockArchiver)
	publisher := new(mockPublisher)
	f := setupMealPlanService(t, archiver, publisher)

	plan := testhelpers.CreateTestPlan(t, f.db, f.patient, testhelpers.Slot("Breakfast", 400))

	archiver.On("Archive", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("bucket missing"))
	publisher.On("PublishGenerated", mock.Anything, mock.Anything).
		Return(errors.New("broker down"))

	_, report, err := f.svc.GeneratePlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Len(t, report.Slots, 1)
	assert.Greater(t, countItems(t, f.db), int64(0))
}

func TestMealPlanService_GeneratePlanNotFound(t *testing.T) {
	f := setupMealPlanService(t, nil, nil)

	_, _, err := f.svc.GeneratePlan(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrMealPlanNotFound)
}

func TestMealPlanService_GenerateTwiceKeepsFirstItems(t *testing.T) {
	f := setupMealPlanService(t, nil, nil)
	ctx := context.Background()

	plan := testhelpers.CreateTestPlan(t, f.db, f.patient, testhelpers.Slot("Breakfast", 400))

	_, first, err := f.svc.GeneratePlan(ctx, plan.ID)
	require.NoError(t, err)
	before := countItems(t, f.db)

	_, second, err := f.svc.GeneratePlan(ctx, plan.ID)
	require.NoError(t, err)

	assert.NotEqual(t, mealplan.OutcomePrefilled, first.Slots[0].Outcome)
	assert.Equal(t, mealplan.OutcomePrefilled, second.Slots[0].Outcome)
	assert.Equal(t, before, countItems(t, f.db))
}
