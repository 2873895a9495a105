package handler

import (
	"net/http"

	"otkup-backend/internal/middleware"
	"otkup-backend/internal/service"
	"otkup-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	stats := router.Group("/api")
	stats.Use(middleware.RequireAuth())
	{
		stats.GET("/statistics", h.GetStatistics)
		stats.GET("/statistics/overview", h.GetOverview)
	}
}

// GetStatistics returns sold and purchased figures for one period
// @Summary      Get statistics
// @Description  Summarizes sales and purchases for a named period or a custom date range
// @Tags         statistics
// @Security     BearerAuth
// @Produce      json
// @Param        period  query     string  false  "Period (today, yesterday, current_week, custom, all)"
// @Param        start   query     string  false  "Custom period start (YYYY-MM-DD)"
// @Param        end     query     string  false  "Custom period end (YYYY-MM-DD)"
// @Success      200     {object}  response.Response{data=service.PeriodSummary}
// @Failure      400     {object}  response.Response
// @Router       /api/statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	summary, err := h.statisticsService.GetStatistics(
		c.Request.Context(),
		c.DefaultQuery("period", service.PeriodAll),
		c.Query("start"),
		c.Query("end"),
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// GetOverview returns the dashboard cards
// @Summary      Get statistics overview
// @Description  Returns today, yesterday and current week summaries plus overall totals
// @Tags         statistics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.OverviewResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/statistics/overview [get]
func (h *StatisticsHandler) GetOverview(c *gin.Context) {
	overview, err := h.statisticsService.GetOverview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to build overview: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, overview))
}
