package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/witthaya/prakan/internal/errors"
	"github.com/witthaya/prakan/internal/middleware"
	"github.com/witthaya/prakan/internal/services"
)

// AnalysisHandler forwards portfolio snapshots to the external analysis
// service and returns its output verbatim.
type AnalysisHandler struct {
	service services.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler instance.
func NewAnalysisHandler(service services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
	}
}

// Gap handles POST /api/v1/analysis/gap.
func (h *AnalysisHandler) Gap(c *gin.Context) {
	userID := middleware.GetUserID(c)
	result, err := h.service.GapAnalysis(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			apierrors.NotFound(c, "Profile not found, complete onboarding first")
			return
		}
		apierrors.InternalServerError(c, "Gap analysis failed", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Tax handles POST /api/v1/analysis/tax.
func (h *AnalysisHandler) Tax(c *gin.Context) {
	userID := middleware.GetUserID(c)
	result, err := h.service.TaxAdvice(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			apierrors.NotFound(c, "Profile not found, complete onboarding first")
			return
		}
		apierrors.InternalServerError(c, "Tax advice failed", err)
		return
	}

	c.JSON(http.StatusOK, result)
}
