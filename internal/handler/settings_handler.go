package handler

import (
	"net/http"

	"otkup-backend/internal/middleware"
	"otkup-backend/internal/service"
	"otkup-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService service.SettingsService
}

func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/api/settings")
	settings.Use(middleware.RequireAuth())
	{
		settings.GET("/receipt", h.GetReceipt)
		settings.PUT("/receipt", h.UpdateReceipt)
		settings.GET("/company", h.GetCompany)
		settings.PUT("/company", h.UpdateCompany)
		settings.GET("/storefront", h.GetStorefront)
		settings.PUT("/storefront", h.UpdateStorefront)
	}
}

// GetReceipt returns the receipt boilerplate text
// @Summary      Get receipt settings
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.ReceiptSettingsDTO}
// @Failure      500  {object}  response.Response
// @Router       /api/settings/receipt [get]
func (h *SettingsHandler) GetReceipt(c *gin.Context) {
	settings, err := h.settingsService.GetReceipt(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, settings))
}

// UpdateReceipt saves the receipt boilerplate text
// @Summary      Update receipt settings
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ReceiptSettingsDTO  true  "Receipt Settings"
// @Success      200      {object}  response.Response{data=service.ReceiptSettingsDTO}
// @Failure      400      {object}  response.Response
// @Router       /api/settings/receipt [put]
func (h *SettingsHandler) UpdateReceipt(c *gin.Context) {
	var dto service.ReceiptSettingsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	saved, err := h.settingsService.UpdateReceipt(c.Request.Context(), dto)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, saved))
}

// GetCompany returns the company profile
// @Summary      Get company profile
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.CompanyProfileDTO}
// @Failure      500  {object}  response.Response
// @Router       /api/settings/company [get]
func (h *SettingsHandler) GetCompany(c *gin.Context) {
	profile, err := h.settingsService.GetCompany(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}

// UpdateCompany saves the company profile
// @Summary      Update company profile
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CompanyProfileDTO  true  "Company Profile"
// @Success      200      {object}  response.Response{data=service.CompanyProfileDTO}
// @Failure      400      {object}  response.Response
// @Router       /api/settings/company [put]
func (h *SettingsHandler) UpdateCompany(c *gin.Context) {
	var dto service.CompanyProfileDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	saved, err := h.settingsService.UpdateCompany(c.Request.Context(), dto)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, saved))
}

// GetStorefront returns the storefront connection settings
// @Summary      Get storefront credentials
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.StorefrontCredentialsDTO}
// @Failure      500  {object}  response.Response
// @Router       /api/settings/storefront [get]
func (h *SettingsHandler) GetStorefront(c *gin.Context) {
	creds, err := h.settingsService.GetStorefront(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, creds))
}

// UpdateStorefront saves the storefront connection settings
// @Summary      Update storefront credentials
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.StorefrontCredentialsDTO  true  "Storefront Credentials"
// @Success      200      {object}  response.Response{data=service.StorefrontCredentialsDTO}
// @Failure      400      {object}  response.Response
// @Router       /api/settings/storefront [put]
func (h *SettingsHandler) UpdateStorefront(c *gin.Context) {
	var dto service.StorefrontCredentialsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	saved, err := h.settingsService.UpdateStorefront(c.Request.Context(), dto)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, saved))
}
