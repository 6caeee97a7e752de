package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type LanguageHandler struct {
	langService service.LanguageService
}

func NewLanguageHandler(langService service.LanguageService) *LanguageHandler {
	return &LanguageHandler{langService: langService}
}

func (h *LanguageHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public: the quote form needs the active language list.
	router.GET("/api/languages", h.ListLanguages)

	langs := router.Group("/api/languages")
	{
		langs.GET("/:id", middleware.RequirePermission("languages.read"), h.GetLanguage)
		langs.POST("", middleware.RequirePermission("languages.write"), h.CreateLanguage)
		langs.PUT("/:id", middleware.RequirePermission("languages.write"), h.UpdateLanguage)
		langs.DELETE("/:id", middleware.RequirePermission("languages.write"), h.DeleteLanguage)
	}
}

// ListLanguages returns the language catalogue
// @Summary      List languages
// @Description  Returns all languages; pass active=true to only get bookable ones
// @Tags         languages
// @Produce      json
// @Param        active  query     bool  false  "Only active languages"
// @Success      200     {object}  response.Response{data=object}
// @Router       /api/languages [get]
func (h *LanguageHandler) ListLanguages(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	langs, err := h.langService.ListLanguages(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, langs))
}

// GetLanguage returns a single language by ID
// @Summary      Get language
// @Tags         languages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Language ID"
// @Success      200  {object}  response.Response{data=model.Language}
// @Failure      404  {object}  response.Response
// @Router       /api/languages/{id} [get]
func (h *LanguageHandler) GetLanguage(c *gin.Context) {
	lang, err := h.langService.GetLanguage(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, lang))
}

// CreateLanguage adds a language to the catalogue
// @Summary      Create language
// @Tags         languages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.LanguageRequest  true  "Language"
// @Success      201      {object}  response.Response{data=model.Language}
// @Failure      400      {object}  response.Response
// @Router       /api/languages [post]
func (h *LanguageHandler) CreateLanguage(c *gin.Context) {
	var req service.LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	lang, err := h.langService.CreateLanguage(c.Request.Context(), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, lang))
}

// UpdateLanguage updates a language's code, name or active flag
// @Summary      Update language
// @Tags         languages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Language ID"
// @Param        payload  body      service.LanguageRequest  true  "Language"
// @Success      200      {object}  response.Response{data=model.Language}
// @Failure      400      {object}  response.Response
// @Router       /api/languages/{id} [put]
func (h *LanguageHandler) UpdateLanguage(c *gin.Context) {
	var req service.LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	lang, err := h.langService.UpdateLanguage(c.Request.Context(), c.Param("id"), req, c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, lang))
}

// DeleteLanguage soft deletes a language
// @Summary      Delete language
// @Tags         languages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Language ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/languages/{id} [delete]
func (h *LanguageHandler) DeleteLanguage(c *gin.Context) {
	if err := h.langService.DeleteLanguage(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "Language deleted successfully"))
}
