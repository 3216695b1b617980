package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nutriflow/backend/internal/models"
	"github.com/nutriflow/backend/internal/service"
	"github.com/nutriflow/backend/internal/types"
)

type MealPlanHandler struct {
	plans    service.IMealPlanService
	foods    service.IFoodService
	patients service.IPatientService
}

func NewMealPlanHandler(plans service.IMealPlanService, foods service.IFoodService, patients service.IPatientService) *MealPlanHandler {
	return &MealPlanHandler{
		plans:    plans,
		foods:    foods,
		patients: patients,
	}
}

// RegisterRoutes mounts the plan routes. limit guards the generation routes
// and may be nil.
func (h *MealPlanHandler) RegisterRoutes(router *gin.RouterGroup, limit gin.HandlerFunc) {
	limited := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		if limit == nil {
			return []gin.HandlerFunc{handler}
		}
		return []gin.HandlerFunc{limit, handler}
	}

	plans := router.Group("/meal-plans")
	{
		plans.POST("", h.CreatePlan)
		plans.GET("/:id", h.GetPlan)
		plans.POST("/preview", limited(h.Preview)...)
		plans.POST("/:id/generate", limited(h.GeneratePlan)...)
	}
}

// Preview generates items for the posted slots without storing anything
func (h *MealPlanHandler) Preview(c *gin.Context) {
	var req types.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var patient *models.PatientProfile
	switch {
	case req.PatientID != nil:
		p, err := h.patients.GetPatient(c.Request.Context(), *req.PatientID)
		if err != nil {
			if errors.Is(err, service.ErrPatientNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load patient"})
			return
		}
		patient = p
	case req.Patient != nil:
		patient = req.Patient.ToModel()
	}

	slots, err := buildSlots(c.Request.Context(), h.foods, req.Slots)
	if err != nil {
		respondSlotError(c, err)
		return
	}

	out, report := h.plans.Preview(c.Request.Context(), slots, patient)
	c.JSON(http.StatusOK, types.PreviewResponse{Slots: out, Report: report})
}

// GeneratePlan fills the empty slots of a stored plan
func (h *MealPlanHandler) GeneratePlan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	plan, report, err := h.plans.GeneratePlan(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMealPlanNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Meal plan not found"})
		case errors.Is(err, service.ErrPatientNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		default:
			log.Printf("[MealPlanHandler] Failed to generate plan %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate meal plan"})
		}
		return
	}

	c.JSON(http.StatusOK, types.GeneratePlanResponse{MealPlan: plan, Report: report})
}

func (h *MealPlanHandler) GetPlan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	plan, err := h.plans.GetPlan(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrMealPlanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Meal plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meal plan"})
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *MealPlanHandler) CreatePlan(c *gin.Context) {
	var req types.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slots, err := buildSlots(c.Request.Context(), h.foods, req.Slots)
	if err != nil {
		respondSlotError(c, err)
		return
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != nil {
		date = *req.Date
	}

	plan, err := h.plans.CreatePlan(c.Request.Context(), &models.MealPlan{
		PatientID: req.PatientID,
		Name:      req.Name,
		Date:      date,
		Slots:     slots,
	})
	if err != nil {
		if errors.Is(err, service.ErrPatientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create meal plan"})
		return
	}

	c.JSON(http.StatusCreated, plan)
}
