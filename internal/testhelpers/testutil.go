package testhelpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nutriflow/backend/internal/models"
	"github.com/nutriflow/backend/internal/types"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestJWTSecret signs tokens created by CreateTestToken.
const TestJWTSecret = "test-jwt-secret"

// CreateTestFood inserts an active food with a 100 g reference portion.
// Protein is 8% of the calorie value so objective scoring has something to rank.
func CreateTestFood(t *testing.T, db *gorm.DB, name, category string, kcal float64, tags ...string) *models.Food {
	t.Helper()
	food := &models.Food{
		Name:          name,
		Category:      category,
		MealTags:      models.JSONBStringArray(tags),
		PortionAmount: 100,
		PortionUnit:   "g",
		Calories:      kcal,
		Protein:       kcal * 0.08,
		Carbs:         kcal * 0.1,
		Fat:           kcal * 0.03,
		Active:        true,
	}
	require.NoError(t, db.Create(food).Error)
	return food
}

// CreateTestPatient inserts a patient with the given objective and restrictions.
func CreateTestPatient(t *testing.T, db *gorm.DB, objective string, restrictions ...string) *models.PatientProfile {
	t.Helper()
	patient := &models.PatientProfile{
		Name:         "Test Patient",
		Objective:    objective,
		Restrictions: models.JSONBStringArray(restrictions),
	}
	require.NoError(t, db.Create(patient).Error)
	return patient
}

// CreateTestPlan inserts a plan for patient with the given slots. Slot
// positions follow the argument order.
func CreateTestPlan(t *testing.T, db *gorm.DB, patient *models.PatientProfile, slots ...models.MealSlot) *models.MealPlan {
	t.Helper()
	for i := range slots {
		slots[i].Position = i
	}
	plan := &models.MealPlan{
		PatientID: patient.ID,
		Name:      "Test Plan",
		Date:      time.Now().UTC().Truncate(24 * time.Hour),
		Slots:     slots,
	}
	require.NoError(t, db.Create(plan).Error)
	return plan
}

// Slot builds an empty slot with a calorie target.
func Slot(name string, kcal float64) models.MealSlot {
	return models.MealSlot{Name: name, TargetCalories: kcal}
}

// CreateTestToken signs a clinician token with TestJWTSecret.
func CreateTestToken(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	claims := types.TokenClaims{
		UserID:   userID,
		Username: "clinician",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString([]byte(TestJWTSecret))
	require.NoError(t, err)
	return token
}
