package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urugendo/student-performance-api/internal/models"
	"github.com/urugendo/student-performance-api/internal/service"
	appErrors "github.com/urugendo/student-performance-api/pkg/errors"
	"github.com/urugendo/student-performance-api/pkg/response"
)

// ParticipationHandler exposes participation endpoints.
type ParticipationHandler struct {
	participation *service.ParticipationService
}

// NewParticipationHandler constructs ParticipationHandler.
func NewParticipationHandler(participation *service.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{participation: participation}
}

// List godoc
// @Summary List participation entries
// @Tags Participation
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param classId query string false "Filter by class"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /participation [get]
func (h *ParticipationHandler) List(c *gin.Context) {
	var filter models.ParticipationFilter
	filter.StudentID = c.Query("studentId")
	filter.ClassID = c.Query("classId")
	filter.Date = dateParam(c, "date")
	filter.Page, filter.PageSize = pageParams(c)

	entries, pagination, err := h.participation.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

// Get godoc
// @Summary Get one participation entry
// @Tags Participation
// @Produce json
// @Param id path string true "Participation ID"
// @Success 200 {object} response.Envelope
// @Router /participation/{id} [get]
func (h *ParticipationHandler) Get(c *gin.Context) {
	entry, err := h.participation.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Log godoc
// @Summary Log a participation entry
// @Tags Participation
// @Accept json
// @Produce json
// @Param payload body service.LogParticipationRequest true "Participation payload"
// @Success 201 {object} response.Envelope
// @Router /participation [post]
func (h *ParticipationHandler) Log(c *gin.Context) {
	var req service.LogParticipationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.participation.Log(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Update godoc
// @Summary Update a participation entry
// @Tags Participation
// @Accept json
// @Produce json
// @Param id path string true "Participation ID"
// @Param payload body service.UpdateParticipationRequest true "Participation payload"
// @Success 200 {object} response.Envelope
// @Router /participation/{id} [put]
func (h *ParticipationHandler) Update(c *gin.Context) {
	var req service.UpdateParticipationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.participation.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Delete godoc
// @Summary Delete a participation entry
// @Tags Participation
// @Produce json
// @Param id path string true "Participation ID"
// @Success 204
// @Router /participation/{id} [delete]
func (h *ParticipationHandler) Delete(c *gin.Context) {
	if err := h.participation.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Summary godoc
// @Summary Average participation rating for a student
// @Tags Participation
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /participation/summary/{studentId} [get]
func (h *ParticipationHandler) Summary(c *gin.Context) {
	summary, err := h.participation.Summary(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
