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

// dateLayout is the wire format for calendar dates. Time-of-day never
// appears in request dates; the classifier strips it anyway.
const dateLayout = "2006-01-02"

// PolicyHandler handles policy CRUD HTTP requests.
type PolicyHandler struct {
	service services.PolicyService
}

// NewPolicyHandler creates a new PolicyHandler instance.
func NewPolicyHandler(service services.PolicyService) *PolicyHandler {
	return &PolicyHandler{
		service: service,
	}
}

// CoverageRequest is one coverage line in a policy create/update payload.
type CoverageRequest struct {
	Type       string  `json:"type" binding:"required,oneof=life health accident critical_illness savings pension hospital_benefit"`
	SumAssured float64 `json:"sumAssured"`
	RoomRate   float64 `json:"roomRate"`
}

// PolicyRequest is the payload for creating or updating a policy.
type PolicyRequest struct {
	Company          string            `json:"company" binding:"required"`
	PlanName         string            `json:"planName" binding:"required"`
	Coverages        []CoverageRequest `json:"coverages" binding:"required,min=1,dive"`
	Premium          float64           `json:"premium"`
	PaymentFrequency string            `json:"paymentFrequency" binding:"required,oneof=monthly quarterly yearly"`
	DueDate          string            `json:"dueDate" binding:"required"`
}

// PolicyListResponse is the response for the list endpoint.
type PolicyListResponse struct {
	Policies []models.Policy `json:"policies"`
	Count    int             `json:"count"`
}

// toModel converts the request payload into a domain policy.
// Returns an error if the due date is not a valid calendar date.
func (r PolicyRequest) toModel() (models.Policy, error) {
	dueDate, err := time.ParseInLocation(dateLayout, r.DueDate, time.Local)
	if err != nil {
		return models.Policy{}, err
	}

	coverages := make([]models.PolicyCoverage, 0, len(r.Coverages))
	for _, c := range r.Coverages {
		coverages = append(coverages, models.PolicyCoverage{
			Type:       models.CoverageType(c.Type),
			SumAssured: c.SumAssured,
			RoomRate:   c.RoomRate,
		})
	}

	return models.Policy{
		Company:          r.Company,
		PlanName:         r.PlanName,
		Coverages:        coverages,
		Premium:          r.Premium,
		PaymentFrequency: models.PaymentFrequency(r.PaymentFrequency),
		DueDate:          dueDate,
	}, nil
}

// List handles GET /api/v1/policies.
// An optional date query parameter sets the reference date used to classify
// each policy's status; it defaults to today.
func (h *PolicyHandler) List(c *gin.Context) {
	asOf, ok := parseRefDate(c)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	policies, err := h.service.ListPolicies(c.Request.Context(), userID, asOf)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load policies", err)
		return
	}

	c.JSON(http.StatusOK, PolicyListResponse{
		Policies: policies,
		Count:    len(policies),
	})
}

// Create handles POST /api/v1/policies.
func (h *PolicyHandler) Create(c *gin.Context) {
	req, ok := bindPolicyRequest(c)
	if !ok {
		return
	}

	policy, err := req.toModel()
	if err != nil {
		apierrors.BadRequest(c, "Invalid due date, expected YYYY-MM-DD", map[string]interface{}{
			"dueDate": req.DueDate,
		})
		return
	}

	userID := middleware.GetUserID(c)
	created, err := h.service.CreatePolicy(c.Request.Context(), userID, policy)
	if err != nil {
		if errors.Is(err, services.ErrNoCoverage) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to create policy", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/v1/policies/:id.
func (h *PolicyHandler) Update(c *gin.Context) {
	req, ok := bindPolicyRequest(c)
	if !ok {
		return
	}

	policy, err := req.toModel()
	if err != nil {
		apierrors.BadRequest(c, "Invalid due date, expected YYYY-MM-DD", map[string]interface{}{
			"dueDate": req.DueDate,
		})
		return
	}
	policy.ID = c.Param("id")

	userID := middleware.GetUserID(c)
	updated, err := h.service.UpdatePolicy(c.Request.Context(), userID, policy)
	if err != nil {
		if errors.Is(err, services.ErrNoCoverage) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		if errors.Is(err, services.ErrPolicyNotFound) {
			apierrors.NotFound(c, "Policy not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to update policy", err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/policies/:id.
func (h *PolicyHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	err := h.service.DeletePolicy(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrPolicyNotFound) {
			apierrors.NotFound(c, "Policy not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to delete policy", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// bindPolicyRequest binds and validates the JSON body, writing the error
// response itself when binding fails.
func bindPolicyRequest(c *gin.Context) (PolicyRequest, bool) {
	var req PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return req, false
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return req, false
	}
	return req, true
}

// parseRefDate reads the optional date query parameter, defaulting to now.
// The reference date is read once here and threaded through the whole
// request so every rollup in the pass sees the same day.
func parseRefDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), true
	}

	asOf, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		apierrors.BadRequest(c, "Invalid date, expected YYYY-MM-DD", map[string]interface{}{
			"date": raw,
		})
		return time.Time{}, false
	}
	return asOf, true
}
