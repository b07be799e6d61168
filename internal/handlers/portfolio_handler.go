package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/witthaya/prakan/internal/errors"
	"github.com/witthaya/prakan/internal/middleware"
	"github.com/witthaya/prakan/internal/services"
)

// PortfolioHandler handles portfolio rollup and tax computation requests.
type PortfolioHandler struct {
	portfolio services.PortfolioService
	tax       services.TaxService
}

// NewPortfolioHandler creates a new PortfolioHandler instance.
func NewPortfolioHandler(portfolio services.PortfolioService, tax services.TaxService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolio: portfolio,
		tax:       tax,
	}
}

// Summary handles GET /api/v1/portfolio/summary.
// An optional date query parameter sets the reference date for status
// classification; it defaults to today.
func (h *PortfolioHandler) Summary(c *gin.Context) {
	asOf, ok := parseRefDate(c)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	summary, err := h.portfolio.Summary(c.Request.Context(), userID, asOf)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to build portfolio summary", err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Tax handles GET /api/v1/portfolio/tax.
func (h *PortfolioHandler) Tax(c *gin.Context) {
	asOf, ok := parseRefDate(c)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	result, err := h.tax.Compute(c.Request.Context(), userID, asOf)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			apierrors.NotFound(c, "Profile not found, complete onboarding first")
			return
		}
		apierrors.InternalServerError(c, "Failed to compute tax", err)
		return
	}

	c.JSON(http.StatusOK, result)
}
