package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nutriflow/backend/internal/service"
	"github.com/nutriflow/backend/internal/types"
)

type PatientHandler struct {
	patients service.IPatientService
}

func NewPatientHandler(patients service.IPatientService) *PatientHandler {
	return &PatientHandler{patients: patients}
}

func (h *PatientHandler) RegisterRoutes(router *gin.RouterGroup) {
	patients := router.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("/:id", h.GetPatient)
	}
}

func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req types.PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patient, err := h.patients.CreatePatient(c.Request.Context(), req.ToModel())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create patient"})
		return
	}

	c.JSON(http.StatusCreated, patient)
}

func (h *PatientHandler) GetPatient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	patient, err := h.patients.GetPatient(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPatientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch patient"})
		return
	}

	c.JSON(http.StatusOK, patient)
}
