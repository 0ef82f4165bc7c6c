package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urugendo/student-performance-api/internal/models"
	"github.com/urugendo/student-performance-api/internal/service"
	appErrors "github.com/urugendo/student-performance-api/pkg/errors"
	"github.com/urugendo/student-performance-api/pkg/response"
)

// AssessmentHandler exposes assessment endpoints.
type AssessmentHandler struct {
	assessments *service.AssessmentService
}

// NewAssessmentHandler constructs AssessmentHandler.
func NewAssessmentHandler(assessments *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

// List godoc
// @Summary List assessments
// @Tags Assessments
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param subject query string false "Filter by subject"
// @Param term query string false "Filter by term"
// @Success 200 {object} response.Envelope
// @Router /assessments [get]
func (h *AssessmentHandler) List(c *gin.Context) {
	var filter models.AssessmentFilter
	filter.StudentID = c.Query("studentId")
	filter.Subject = c.Query("subject")
	filter.Term = c.Query("term")
	filter.Page, filter.PageSize = pageParams(c)

	assessments, pagination, err := h.assessments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assessments, pagination)
}

// Get godoc
// @Summary Get one assessment
// @Tags Assessments
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id} [get]
func (h *AssessmentHandler) Get(c *gin.Context) {
	assessment, err := h.assessments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assessment, nil)
}

// Create godoc
// @Summary Record an assessment
// @Tags Assessments
// @Accept json
// @Produce json
// @Param payload body service.CreateAssessmentRequest true "Assessment payload"
// @Success 201 {object} response.Envelope
// @Router /assessments [post]
func (h *AssessmentHandler) Create(c *gin.Context) {
	var req service.CreateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assessment, err := h.assessments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assessment)
}

// Update godoc
// @Summary Update an assessment
// @Tags Assessments
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param payload body service.UpdateAssessmentRequest true "Assessment payload"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id} [put]
func (h *AssessmentHandler) Update(c *gin.Context) {
	var req service.UpdateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assessment, err := h.assessments.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assessment, nil)
}

// Delete godoc
// @Summary Delete an assessment
// @Tags Assessments
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 204
// @Router /assessments/{id} [delete]
func (h *AssessmentHandler) Delete(c *gin.Context) {
	if err := h.assessments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Statistics godoc
// @Summary Aggregate assessment statistics
// @Tags Assessments
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param subject query string false "Filter by subject"
// @Param term query string false "Filter by term"
// @Success 200 {object} response.Envelope
// @Router /assessments/statistics [get]
func (h *AssessmentHandler) Statistics(c *gin.Context) {
	var filter models.AssessmentFilter
	filter.StudentID = c.Query("studentId")
	filter.Subject = c.Query("subject")
	filter.Term = c.Query("term")

	stats, err := h.assessments.Statistics(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
