package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PricingRuleHandler struct {
	ruleService service.PricingRuleService
}

func NewPricingRuleHandler(ruleService service.PricingRuleService) *PricingRuleHandler {
	return &PricingRuleHandler{ruleService: ruleService}
}

func (h *PricingRuleHandler) RegisterRoutes(router *gin.RouterGroup) {
	rules := router.Group("/api/pricing-rules")
	{
		rules.GET("", middleware.RequirePermission("pricing_rules.read"), h.ListRules)
		rules.GET("/:id", middleware.RequirePermission("pricing_rules.read"), h.GetRule)
		rules.POST("", middleware.RequirePermission("pricing_rules.write"), h.CreateRule)
		rules.PUT("/:id", middleware.RequirePermission("pricing_rules.write"), h.UpdateRule)
		rules.DELETE("/:id", middleware.RequirePermission("pricing_rules.write"), h.DeleteRule)
	}
}

// ListRules returns pricing rules, optionally filtered by service type
// @Summary      List pricing rules
// @Description  Retrieves a paginated rule catalogue ordered by service type and priority
// @Tags         pricing-rules
// @Produce      json
// @Security     BearerAuth
// @Param        service_type  query     string  false  "TRANSLATION | INTERPRETATION | TRANSCRIPTION"
// @Param        page          query     int     false  "Page number (default 1)"
// @Param        limit         query     int     false  "Items per page (default 20)"
// @Success      200           {object}  response.Response{data=object}
// @Router       /api/pricing-rules [get]
func (h *PricingRuleHandler) ListRules(c *gin.Context) {
	params := pagination.Parse(c)

	rules, total, err := h.ruleService.ListRules(c.Request.Context(), c.Query("service_type"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"rules": rules,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// GetRule returns a single pricing rule by ID
// @Summary      Get pricing rule
// @Tags         pricing-rules
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Rule ID"
// @Success      200  {object}  response.Response{data=service.PricingRuleResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/pricing-rules/{id} [get]
func (h *PricingRuleHandler) GetRule(c *gin.Context) {
	rule, err := h.ruleService.GetRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// CreateRule creates a new pricing rule
// @Summary      Create pricing rule
// @Description  Creates a rule after validating rate kind, scoping and scope uniqueness
// @Tags         pricing-rules
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.PricingRuleRequest  true  "Pricing Rule"
// @Success      201      {object}  response.Response{data=service.PricingRuleResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/pricing-rules [post]
func (h *PricingRuleHandler) CreateRule(c *gin.Context) {
	var req service.PricingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.ruleService.CreateRule(c.Request.Context(), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rule))
}

// UpdateRule replaces a pricing rule's definition
// @Summary      Update pricing rule
// @Tags         pricing-rules
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Rule ID"
// @Param        payload  body      service.PricingRuleRequest  true  "Pricing Rule"
// @Success      200      {object}  response.Response{data=service.PricingRuleResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/pricing-rules/{id} [put]
func (h *PricingRuleHandler) UpdateRule(c *gin.Context) {
	var req service.PricingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.ruleService.UpdateRule(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// DeleteRule removes a pricing rule
// @Summary      Delete pricing rule
// @Tags         pricing-rules
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Rule ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/pricing-rules/{id} [delete]
func (h *PricingRuleHandler) DeleteRule(c *gin.Context) {
	if err := h.ruleService.DeleteRule(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "Pricing rule deleted successfully"))
}
