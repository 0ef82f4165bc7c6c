package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/urugendo/student-performance-api/internal/service"
	"github.com/urugendo/student-performance-api/pkg/response"
)

// DashboardHandler exposes aggregate reporting endpoints.
type DashboardHandler struct {
	dashboard *service.DashboardService
	metrics   *service.MetricsService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService, metrics *service.MetricsService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, metrics: metrics}
}

// Summary godoc
// @Summary School-wide dashboard summary
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, fromCache, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordCacheOperation(fromCache)
	response.JSON(c, http.StatusOK, summary, nil, map[string]interface{}{"cache": fromCache})
}

// StudentPerformance godoc
// @Summary Aggregate performance for one student
// @Tags Dashboard
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /dashboard/students/{studentId} [get]
func (h *DashboardHandler) StudentPerformance(c *gin.Context) {
	studentID := c.Param("studentId")
	if studentID == "" {
		studentID = c.Param("id")
	}
	performance, err := h.dashboard.StudentPerformance(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, performance, nil)
}

// TopPerformers godoc
// @Summary Highest averaging students
// @Tags Dashboard
// @Produce json
// @Param limit query int false "Number of students"
// @Success 200 {object} response.Envelope
// @Router /dashboard/top-performers [get]
func (h *DashboardHandler) TopPerformers(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	performers, err := h.dashboard.TopPerformers(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, performers, nil)
}

// Alerts godoc
// @Summary Underperformance alerts
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/alerts [get]
func (h *DashboardHandler) Alerts(c *gin.Context) {
	alerts, err := h.dashboard.Alerts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alerts, nil)
}

// Subjects godoc
// @Summary Subject-level summaries
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/subjects [get]
func (h *DashboardHandler) Subjects(c *gin.Context) {
	summaries, fromCache, err := h.dashboard.SubjectSummaries(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordCacheOperation(fromCache)
	response.JSON(c, http.StatusOK, summaries, nil, map[string]interface{}{"cache": fromCache})
}
