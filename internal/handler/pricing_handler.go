package handler

import (
	"errors"
	"net/http"

	"backend/internal/pricing"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PricingHandler struct {
	pricingService service.PricingService
}

func NewPricingHandler(pricingService service.PricingService) *PricingHandler {
	return &PricingHandler{pricingService: pricingService}
}

func (h *PricingHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public: the quote widget on the marketing site calls this directly.
	router.POST("/api/pricing/calculate", h.CalculatePrice)
}

// CalculatePrice prices a request against the current rule catalogue
// @Summary      Calculate a price
// @Description  Expands the schedule, resolves the most specific active pricing rule and returns the full breakdown. Does not persist anything.
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CalculatePriceRequest  true  "Pricing Request"
// @Success      200      {object}  response.Response{data=service.PriceBreakdownResponse}
// @Failure      400      {object}  response.Response  "Invalid schedule or request"
// @Failure      422      {object}  response.Response  "No applicable pricing rule"
// @Failure      500      {object}  response.Response  "Catalogue data error"
// @Router       /api/pricing/calculate [post]
func (h *PricingHandler) CalculatePrice(c *gin.Context) {
	var req service.CalculatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	breakdown, err := h.pricingService.CalculatePrice(c.Request.Context(), req)
	if err != nil {
		status := pricingErrorStatus(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, breakdown))
}

// pricingErrorStatus maps typed pricing errors to HTTP status codes.
func pricingErrorStatus(err error) int {
	var validation *pricing.ValidationError
	var noRule *pricing.NoRuleFoundError
	var ambiguous *pricing.AmbiguousRuleError
	var invalid *pricing.InvalidRuleError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &noRule):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ambiguous), errors.As(err, &invalid):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
