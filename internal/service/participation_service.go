package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/urugendo/student-performance-api/internal/models"
	appErrors "github.com/urugendo/student-performance-api/pkg/errors"
)

type participationRepository interface {
	List(ctx context.Context, filter models.ParticipationFilter) ([]models.Participation, int, error)
	FindByID(ctx context.Context, id string) (*models.Participation, error)
	Create(ctx context.Context, entry *models.Participation) error
	Update(ctx context.Context, entry *models.Participation) error
	Delete(ctx context.Context, id string) error
	StatusesByStudent(ctx context.Context, studentID string) ([]string, error)
}

// LogParticipationRequest records a classroom or event participation entry.
type LogParticipationRequest struct {
	StudentID    string `json:"student_id" validate:"required"`
	ClassID      string `json:"class_id" validate:"required"`
	Date         string `json:"date" validate:"required"`
	Subject      string `json:"subject"`
	ActivityType string `json:"activity_type"`
	Description  string `json:"description"`
	Status       string `json:"status" validate:"required"`
	Remarks      string `json:"remarks"`
}

// UpdateParticipationRequest is the partial update payload.
type UpdateParticipationRequest struct {
	Date         *string `json:"date"`
	Subject      *string `json:"subject"`
	ActivityType *string `json:"activity_type"`
	Description  *string `json:"description"`
	Status       *string `json:"status"`
	Remarks      *string `json:"remarks"`
}

// ParticipationService manages participation entries and rating summaries.
type ParticipationService struct {
	repo      participationRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewParticipationService constructs the participation service.
func NewParticipationService(repo participationRepository, validate *validator.Validate, logger *zap.Logger) *ParticipationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParticipationService{repo: repo, validator: validate, logger: logger}
}

// List returns participation entries and pagination metadata.
func (s *ParticipationService) List(ctx context.Context, filter models.ParticipationFilter) ([]models.Participation, *models.Pagination, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list participation entries")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	return entries, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one participation entry.
func (s *ParticipationService) Get(ctx context.Context, id string) (*models.Participation, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "participation entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load participation entry")
	}
	return entry, nil
}

// Log records a participation entry. Status values are free text; only the
// recognised vocabulary contributes to rating summaries.
func (s *ParticipationService) Log(ctx context.Context, req LogParticipationRequest) (*models.Participation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid participation payload")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date, expected YYYY-MM-DD")
	}

	entry := &models.Participation{
		StudentID:    req.StudentID,
		ClassID:      req.ClassID,
		Date:         date,
		Subject:      req.Subject,
		ActivityType: req.ActivityType,
		Description:  req.Description,
		Status:       req.Status,
		Remarks:      req.Remarks,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to log participation")
	}
	return entry, nil
}

// Update applies the fields present in the payload.
func (s *ParticipationService) Update(ctx context.Context, id string, req UpdateParticipationRequest) (*models.Participation, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "participation entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load participation entry")
	}

	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date, expected YYYY-MM-DD")
		}
		entry.Date = date
	}
	if req.Subject != nil {
		entry.Subject = *req.Subject
	}
	if req.ActivityType != nil {
		entry.ActivityType = *req.ActivityType
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	if req.Status != nil {
		entry.Status = *req.Status
	}
	if req.Remarks != nil {
		entry.Remarks = *req.Remarks
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update participation entry")
	}
	return entry, nil
}

// Delete removes a participation entry.
func (s *ParticipationService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "participation entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load participation entry")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete participation entry")
	}
	return nil
}

// Summary averages the numeric ratings of a student's recognised statuses.
// Entries with statuses outside the vocabulary count towards Entries but
// not towards the average.
func (s *ParticipationService) Summary(ctx context.Context, studentID string) (*models.ParticipationSummary, error) {
	statuses, err := s.repo.StatusesByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load participation statuses")
	}

	summary := &models.ParticipationSummary{StudentID: studentID, Entries: len(statuses)}
	sum := 0
	for _, status := range statuses {
		if rating, ok := models.RatingForStatus(status); ok {
			summary.Rated++
			sum += rating
		}
	}
	if summary.Rated > 0 {
		summary.AverageRating = float64(sum) / float64(summary.Rated)
	}
	return summary, nil
}
