package handler

import (
	"net/http"

	"otkup-backend/internal/middleware"
	"otkup-backend/internal/service"
	"otkup-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templateService service.TemplateService
}

func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

func (h *TemplateHandler) RegisterRoutes(router *gin.RouterGroup) {
	templates := router.Group("/api")
	templates.Use(middleware.RequireAuth())
	{
		templates.GET("/templates", h.ListTemplates)
		templates.PATCH("/templates/draft", h.SetDraftField)
		templates.POST("/templates/commit", h.CommitTemplate)
	}
}

// ListTemplates returns the configuration templates with their drafts
// @Summary      List templates
// @Description  Groups devices by brand, model, color and storage and returns each group's entry draft
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Substring match over the configuration label"
// @Success      200     {object}  response.Response{data=[]service.TemplateRow}
// @Failure      500     {object}  response.Response
// @Router       /api/templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	rows, err := h.templateService.ListTemplates(c.Request.Context(), c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve templates: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}

// SetDraftField updates one field of a template draft
// @Summary      Update template draft
// @Description  Sets one draft field; switching condition re-derives the listing data from that condition's devices
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.DraftUpdateRequest  true  "Draft Update Payload"
// @Success      200      {object}  response.Response{data=service.TemplateRow}
// @Failure      400      {object}  response.Response
// @Router       /api/templates/draft [patch]
func (h *TemplateHandler) SetDraftField(c *gin.Context) {
	var req service.DraftUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	row, err := h.templateService.SetDraftField(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, row))
}

// CommitTemplate creates a device from a template draft
// @Summary      Commit template
// @Description  Persists the draft as a new device and resets the draft for the next entry
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CommitTemplateRequest  true  "Commit Payload"
// @Success      201      {object}  response.Response{data=service.DeviceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/templates/commit [post]
func (h *TemplateHandler) CommitTemplate(c *gin.Context) {
	var req service.CommitTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	device, err := h.templateService.CommitTemplate(c.Request.Context(), req.Key)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, device))
}
