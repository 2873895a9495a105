package handler

import (
	"net/http"

	"otkup-backend/internal/middleware"
	"otkup-backend/internal/service"
	"otkup-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	syncService service.SyncService
}

func NewSyncHandler(syncService service.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

func (h *SyncHandler) RegisterRoutes(router *gin.RouterGroup) {
	sync := router.Group("/api")
	sync.Use(middleware.RequireAuth())
	{
		sync.POST("/sync", h.Sync)
	}
}

// Sync pushes recomputed stock counts to the storefront
// @Summary      Sync storefront stock
// @Description  Recomputes per-product stock from the device list and pushes it to the web shop
// @Tags         sync
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Failure      502  {object}  response.Response
// @Router       /api/sync [post]
func (h *SyncHandler) Sync(c *gin.Context) {
	message, err := h.syncService.Sync(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]string{"message": message}))
}
