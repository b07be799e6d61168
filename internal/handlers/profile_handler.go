package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/witthaya/prakan/internal/errors"
	"github.com/witthaya/prakan/internal/middleware"
	"github.com/witthaya/prakan/internal/models"
	"github.com/witthaya/prakan/internal/services"
)

// ProfileHandler handles user profile HTTP requests.
type ProfileHandler struct {
	service services.ProfileService
}

// NewProfileHandler creates a new ProfileHandler instance.
func NewProfileHandler(service services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		service: service,
	}
}

// ProfileRequest is the payload for saving a profile. The whole record is
// replaced on save; TaxDeductions may be omitted entirely.
type ProfileRequest struct {
	Name            string                `json:"name" binding:"required"`
	Sex             string                `json:"sex"`
	BirthDate       string                `json:"birthDate" binding:"required"`
	MaritalStatus   string                `json:"maritalStatus"`
	Dependents      int                   `json:"dependents"`
	AnnualIncome    float64               `json:"annualIncome"`
	MonthlyExpenses float64               `json:"monthlyExpenses"`
	TotalDebt       float64               `json:"totalDebt"`
	Deductions      *models.TaxDeductions `json:"taxDeductions"`
}

// Get handles GET /api/v1/profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			apierrors.NotFound(c, "Profile not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to load profile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Put handles PUT /api/v1/profile.
func (h *ProfileHandler) Put(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	birthDate, err := time.ParseInLocation(dateLayout, req.BirthDate, time.Local)
	if err != nil {
		apierrors.BadRequest(c, "Invalid birth date, expected YYYY-MM-DD", map[string]interface{}{
			"birthDate": req.BirthDate,
		})
		return
	}

	profile := models.UserProfile{
		Name:            req.Name,
		Sex:             req.Sex,
		BirthDate:       birthDate,
		MaritalStatus:   req.MaritalStatus,
		Dependents:      req.Dependents,
		AnnualIncome:    req.AnnualIncome,
		MonthlyExpenses: req.MonthlyExpenses,
		TotalDebt:       req.TotalDebt,
		Deductions:      req.Deductions,
	}

	userID := middleware.GetUserID(c)
	saved, err := h.service.SaveProfile(c.Request.Context(), userID, profile)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to save profile", err)
		return
	}

	c.JSON(http.StatusOK, saved)
}
