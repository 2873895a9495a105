package handler

import (
	"fmt"
	"net/http"
	"time"

	"otkup-backend/internal/middleware"
	"otkup-backend/internal/service"
	"otkup-backend/pkg/pagination"
	"otkup-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	deviceService   service.DeviceService
	transferService service.TransferService
}

func NewDeviceHandler(deviceService service.DeviceService, transferService service.TransferService) *DeviceHandler {
	return &DeviceHandler{deviceService: deviceService, transferService: transferService}
}

func (h *DeviceHandler) RegisterRoutes(router *gin.RouterGroup) {
	devices := router.Group("/api")
	devices.Use(middleware.RequireAuth())
	{
		devices.GET("/devices", h.ListDevices)
		devices.POST("/devices", h.CreateDevice)
		devices.POST("/devices/web", h.CreateWebDevice)
		devices.GET("/devices/export", h.ExportDevices)
		devices.POST("/devices/import", h.ImportDevices)
		devices.GET("/devices/:id", h.GetDevice)
		devices.PUT("/devices/:id", h.UpdateDevice)
		devices.DELETE("/devices/:id", h.DeleteDevice)
		devices.POST("/devices/:id/notes", h.AddNote)
		devices.POST("/devices/:id/status", h.ChangeStatus)
	}
}

// ListDevices returns the filtered, sorted and paginated device list
// @Summary      List devices
// @Description  Retrieves devices matching the given filters, sorted and paginated
// @Tags         devices
// @Security     BearerAuth
// @Produce      json
// @Param        page                   query  int     false  "Page number (default 1)"
// @Param        limit                  query  int     false  "Items per page (default 50)"
// @Param        imei                   query  string  false  "IMEI substring"
// @Param        brand                  query  string  false  "Brand substring"
// @Param        model                  query  string  false  "Model substring"
// @Param        color                  query  string  false  "Color substring"
// @Param        storage_gb             query  string  false  "Storage substring"
// @Param        status                 query  string  false  "Exact status (IN_STOCK, SOLD, RESERVED)"
// @Param        condition              query  string  false  "Exact condition (NEW, USED)"
// @Param        for_web                query  string  false  "Web listing flag (true/false)"
// @Param        purchase_date_start    query  string  false  "Purchase date lower bound (YYYY-MM-DD)"
// @Param        purchase_date_end      query  string  false  "Purchase date upper bound (YYYY-MM-DD)"
// @Param        missing_storefront_id  query  bool    false  "Only unlinked web listings; overrides all other filters"
// @Param        sort                   query  string  false  "Sort key"
// @Param        direction              query  string  false  "Sort direction (asc/desc)"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/devices [get]
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	filter := service.DeviceFilter{
		IMEI:                c.Query("imei"),
		Brand:               c.Query("brand"),
		Model:               c.Query("model"),
		Color:               c.Query("color"),
		StorageGB:           c.Query("storage_gb"),
		Status:              c.Query("status"),
		Condition:           c.Query("condition"),
		ForWeb:              c.Query("for_web"),
		PurchaseDateStart:   c.Query("purchase_date_start"),
		PurchaseDateEnd:     c.Query("purchase_date_end"),
		MissingStorefrontID: c.Query("missing_storefront_id") == "true",
	}

	devices, total, err := h.deviceService.ListDevices(c.Request.Context(), filter, c.Query("sort"), c.DefaultQuery("direction", "asc"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve devices: "+err.Error()))
		return
	}

	params := pagination.Parse(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"devices": pagination.Slice(devices, params),
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}

// CreateDevice books a new device into stock
// @Summary      Create device
// @Description  Creates a device purchased in the shop and assigns it the next order number
// @Tags         devices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateDeviceRequest  true  "Create Device Payload"
// @Success      201      {object}  response.Response{data=service.DeviceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/devices [post]
func (h *DeviceHandler) CreateDevice(c *gin.Context) {
	var req service.CreateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	device, err := h.deviceService.CreateDevice(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, device))
}

// CreateWebDevice books a device purchased through the web channel
// @Summary      Create web device
// @Description  Creates a device sourced from the web shop; IMEI is mandatory and sourcing fields use web placeholders
// @Tags         devices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateWebDeviceRequest  true  "Create Web Device Payload"
// @Success      201      {object}  response.Response{data=service.DeviceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/devices/web [post]
func (h *DeviceHandler) CreateWebDevice(c *gin.Context) {
	var req service.CreateWebDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	device, err := h.deviceService.CreateWebDevice(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, device))
}

// GetDevice returns a single device
// @Summary      Get device
// @Tags         devices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Device ID"
// @Success      200  {object}  response.Response{data=service.DeviceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/devices/{id} [get]
func (h *DeviceHandler) GetDevice(c *gin.Context) {
	device, err := h.deviceService.GetDevice(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, device))
}

// UpdateDevice applies a merge-style edit to a device
// @Summary      Update device
// @Description  Updates the provided fields only and recomputes margins
// @Tags         devices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Device ID"
// @Param        payload  body      service.UpdateDeviceRequest  true  "Update Device Payload"
// @Success      200      {object}  response.Response{data=service.DeviceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/devices/{id} [put]
func (h *DeviceHandler) UpdateDevice(c *gin.Context) {
	var req service.UpdateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	device, err := h.deviceService.UpdateDevice(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, device))
}

// DeleteDevice permanently removes a device
// @Summary      Delete device
// @Tags         devices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Device ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/devices/{id} [delete]
func (h *DeviceHandler) DeleteDevice(c *gin.Context) {
	if err := h.deviceService.DeleteDevice(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]string{"message": "Device deleted"}))
}

// AddNote appends a timestamped note to a device
// @Summary      Add device note
// @Tags         devices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Device ID"
// @Param        payload  body      service.NoteRequest  true  "Note Payload"
// @Success      200      {object}  response.Response{data=service.DeviceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/devices/{id}/notes [post]
func (h *DeviceHandler) AddNote(c *gin.Context) {
	var req service.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	device, err := h.deviceService.AddNote(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, device))
}

// ChangeStatus moves a device through its sale lifecycle
// @Summary      Change device status
// @Description  Applies a status transition, with its side effects on sale fields and storefront stock
// @Tags         devices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Device ID"
// @Param        payload  body      service.StatusChangeRequest  true  "Status Change Payload"
// @Success      200      {object}  response.Response{data=service.StatusChangeResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/devices/{id}/status [post]
func (h *DeviceHandler) ChangeStatus(c *gin.Context) {
	var req service.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.deviceService.ChangeStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ImportDevices ingests legacy records
// @Summary      Import legacy devices
// @Description  Imports devices from the legacy spreadsheet export format
// @Tags         devices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      []service.LegacyDevice  true  "Legacy Records"
// @Success      200      {object}  response.Response{data=service.ImportResult}
// @Failure      400      {object}  response.Response
// @Router       /api/devices/import [post]
func (h *DeviceHandler) ImportDevices(c *gin.Context) {
	var records []service.LegacyDevice
	if err := c.ShouldBindJSON(&records); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.transferService.ImportLegacy(c.Request.Context(), records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Import failed: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ExportDevices downloads the full device list as JSON
// @Summary      Export devices
// @Description  Streams the complete device list as a JSON attachment
// @Tags         devices
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   service.DeviceResponse
// @Failure      500  {object}  response.Response
// @Router       /api/devices/export [get]
func (h *DeviceHandler) ExportDevices(c *gin.Context) {
	devices, err := h.transferService.ExportDevices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Export failed: "+err.Error()))
		return
	}

	filename := fmt.Sprintf("devices_export_%s.json", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.IndentedJSON(http.StatusOK, devices)
}
