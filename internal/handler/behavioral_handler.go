package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urugendo/student-performance-api/internal/models"
	"github.com/urugendo/student-performance-api/internal/service"
	appErrors "github.com/urugendo/student-performance-api/pkg/errors"
	"github.com/urugendo/student-performance-api/pkg/response"
)

// BehavioralHandler exposes behavioral record endpoints.
type BehavioralHandler struct {
	behavioral *service.BehavioralService
}

// NewBehavioralHandler constructs BehavioralHandler.
func NewBehavioralHandler(behavioral *service.BehavioralService) *BehavioralHandler {
	return &BehavioralHandler{behavioral: behavioral}
}

// List godoc
// @Summary List behavioral records
// @Tags Behavioral
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param type query string false "positive or negative"
// @Param category query string false "Filter by category"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /behavioral [get]
func (h *BehavioralHandler) List(c *gin.Context) {
	var filter models.BehavioralFilter
	filter.StudentID = c.Query("studentId")
	if t := c.Query("type"); t != "" {
		recordType := models.BehavioralType(t)
		filter.Type = &recordType
	}
	filter.Category = c.Query("category")
	filter.DateFrom = dateParam(c, "from")
	filter.DateTo = dateParam(c, "to")
	filter.Page, filter.PageSize = pageParams(c)

	records, pagination, err := h.behavioral.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Get godoc
// @Summary Get one behavioral record
// @Tags Behavioral
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /behavioral/{id} [get]
func (h *BehavioralHandler) Get(c *gin.Context) {
	record, err := h.behavioral.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Create godoc
// @Summary Record a behavioral incident
// @Tags Behavioral
// @Accept json
// @Produce json
// @Param payload body service.CreateBehavioralRequest true "Record payload"
// @Success 201 {object} response.Envelope
// @Router /behavioral [post]
func (h *BehavioralHandler) Create(c *gin.Context) {
	var req service.CreateBehavioralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.behavioral.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Update godoc
// @Summary Update a behavioral record
// @Tags Behavioral
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body service.UpdateBehavioralRequest true "Record payload"
// @Success 200 {object} response.Envelope
// @Router /behavioral/{id} [put]
func (h *BehavioralHandler) Update(c *gin.Context) {
	var req service.UpdateBehavioralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.behavioral.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Delete godoc
// @Summary Delete a behavioral record
// @Tags Behavioral
// @Produce json
// @Param id path string true "Record ID"
// @Success 204
// @Router /behavioral/{id} [delete]
func (h *BehavioralHandler) Delete(c *gin.Context) {
	if err := h.behavioral.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
