package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QuoteHandler struct {
	quoteService service.QuoteService
}

func NewQuoteHandler(quoteService service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

func (h *QuoteHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public lead intake
	router.POST("/api/quotes", h.CreateQuote)

	quotes := router.Group("/api/quotes")
	{
		quotes.GET("", middleware.RequirePermission("quotes.read"), h.ListQuotes)
		quotes.GET("/:id", middleware.RequirePermission("quotes.read"), h.GetQuote)
		quotes.GET("/:id/reprice", middleware.RequirePermission("quotes.read"), h.Reprice)
		quotes.POST("/:id/review", middleware.RequirePermission("quotes.review"), h.ReviewQuote)
		quotes.POST("/:id/decline", middleware.RequirePermission("quotes.review"), h.DeclineQuote)
	}
}

// CreateQuote prices a request and stores the result
// @Summary      Create a quote
// @Description  Prices the request and persists it. When no rule applies, the quote is stored as NEEDS_REVIEW for manual pricing instead of failing.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateQuoteRequest  true  "Quote Request"
// @Success      201      {object}  response.Response{data=service.QuoteResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req service.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quote, err := h.quoteService.CreateQuote(c.Request.Context(), req)
	if err != nil {
		status := pricingErrorStatus(err)
		if status == http.StatusUnprocessableEntity {
			// NoRuleFound is swallowed by the service (NEEDS_REVIEW); anything
			// else that maps here is a real failure.
			status = http.StatusInternalServerError
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, quote))
}

// ListQuotes returns quotes with optional status/service filters
// @Summary      List quotes
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        status        query     string  false  "QUOTED | NEEDS_REVIEW | REVIEWED | ACCEPTED | DECLINED"
// @Param        service_type  query     string  false  "TRANSLATION | INTERPRETATION | TRANSCRIPTION"
// @Param        client_id     query     string  false  "Client UUID"
// @Param        page          query     int     false  "Page number (default 1)"
// @Param        limit         query     int     false  "Items per page (default 20)"
// @Success      200           {object}  response.Response{data=object}
// @Router       /api/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.QuoteFilter{
		Status:      c.Query("status"),
		ServiceType: c.Query("service_type"),
		Page:        params.Page,
		Limit:       params.Limit,
	}
	if raw := c.Query("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid client_id"))
			return
		}
		filter.ClientID = &clientID
	}

	quotes, total, err := h.quoteService.ListQuotes(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"quotes": quotes,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	}))
}

// GetQuote returns a single quote with its windows and breakdown
// @Summary      Get quote
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response{data=service.QuoteResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/quotes/{id} [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	quote, err := h.quoteService.GetQuote(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// Reprice recomputes a quote against the current catalogue
// @Summary      Reprice quote
// @Description  Recomputes the stored request against the current rule catalogue without mutating the quote. Useful when reviewing rate changes.
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response{data=service.PriceBreakdownResponse}
// @Failure      422  {object}  response.Response  "Still no applicable rule"
// @Router       /api/quotes/{id}/reprice [get]
func (h *QuoteHandler) Reprice(c *gin.Context) {
	breakdown, err := h.quoteService.Reprice(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := pricingErrorStatus(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, breakdown))
}

// ReviewQuote applies a manual price to a NEEDS_REVIEW quote
// @Summary      Review quote
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Quote ID"
// @Param        payload  body      service.ReviewQuoteRequest  true  "Manual Price"
// @Success      200      {object}  response.Response{data=service.QuoteResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/quotes/{id}/review [post]
func (h *QuoteHandler) ReviewQuote(c *gin.Context) {
	var req service.ReviewQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quote, err := h.quoteService.ReviewQuote(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// DeclineQuote declines a NEEDS_REVIEW quote
// @Summary      Decline quote
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Quote ID"
// @Param        payload  body      service.DeclineQuoteRequest  true  "Decline Note"
// @Success      200      {object}  response.Response{data=service.QuoteResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/quotes/{id}/decline [post]
func (h *QuoteHandler) DeclineQuote(c *gin.Context) {
	var req service.DeclineQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quote, err := h.quoteService.DeclineQuote(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}
