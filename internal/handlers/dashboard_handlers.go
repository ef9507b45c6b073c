package handlers

import (
	"net/http"

	"gym_club_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(ds services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: ds}
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.Stats()
	if err != nil {
		respondError(c, err, "GetStats: error from dashboardService.Stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) GetMonthlyRevenue(c *gin.Context) {
	series, err := h.dashboardService.MonthlyRevenue()
	if err != nil {
		respondError(c, err, "GetMonthlyRevenue: error from dashboardService.MonthlyRevenue")
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *DashboardHandler) GetDailyAttendance(c *gin.Context) {
	series, err := h.dashboardService.DailyAttendance()
	if err != nil {
		respondError(c, err, "GetDailyAttendance: error from dashboardService.DailyAttendance")
		return
	}
	c.JSON(http.StatusOK, series)
}
