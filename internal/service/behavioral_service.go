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

type behavioralRepository interface {
	List(ctx context.Context, filter models.BehavioralFilter) ([]models.BehavioralRecord, int, error)
	FindByID(ctx context.Context, id string) (*models.BehavioralRecord, error)
	Create(ctx context.Context, record *models.BehavioralRecord) error
	Update(ctx context.Context, record *models.BehavioralRecord) error
	Delete(ctx context.Context, id string) error
}

// CreateBehavioralRequest records a conduct incident.
type CreateBehavioralRequest struct {
	StudentID   string `json:"student_id" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Type        string `json:"type" validate:"required"`
	Category    string `json:"category"`
	Description string `json:"description" validate:"required"`
	Severity    string `json:"severity"`
	ActionTaken string `json:"action_taken"`
	ReportedBy  string `json:"reported_by"`
}

// UpdateBehavioralRequest is the partial update payload.
type UpdateBehavioralRequest struct {
	Date        *string `json:"date"`
	Type        *string `json:"type"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Severity    *string `json:"severity"`
	ActionTaken *string `json:"action_taken"`
	ReportedBy  *string `json:"reported_by"`
}

// BehavioralService manages conduct records.
type BehavioralService struct {
	repo       behavioralRepository
	validator  *validator.Validate
	logger     *zap.Logger
	aggregates AggregateInvalidator
}

// NewBehavioralService constructs the behavioral service.
func NewBehavioralService(repo behavioralRepository, validate *validator.Validate, logger *zap.Logger) *BehavioralService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BehavioralService{repo: repo, validator: validate, logger: logger}
}

// WithAggregateInvalidation registers the invalidator notified after writes.
func (s *BehavioralService) WithAggregateInvalidation(inv AggregateInvalidator) *BehavioralService {
	s.aggregates = inv
	return s
}

// List returns conduct records and pagination metadata.
func (s *BehavioralService) List(ctx context.Context, filter models.BehavioralFilter) ([]models.BehavioralRecord, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list behavioral records")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	return records, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one conduct record.
func (s *BehavioralService) Get(ctx context.Context, id string) (*models.BehavioralRecord, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "behavioral record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load behavioral record")
	}
	return record, nil
}

// Create records a conduct incident. Only positive and negative types are
// accepted.
func (s *BehavioralService) Create(ctx context.Context, req CreateBehavioralRequest) (*models.BehavioralRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid behavioral payload")
	}
	recordType := models.BehavioralType(req.Type)
	if !recordType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "type must be positive or negative")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date, expected YYYY-MM-DD")
	}

	record := &models.BehavioralRecord{
		StudentID:   req.StudentID,
		Date:        date,
		Type:        recordType,
		Category:    req.Category,
		Description: req.Description,
		Severity:    req.Severity,
		ActionTaken: req.ActionTaken,
		ReportedBy:  req.ReportedBy,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create behavioral record")
	}
	invalidateAggregates(ctx, s.aggregates)
	return record, nil
}

// Update applies the fields present in the payload.
func (s *BehavioralService) Update(ctx context.Context, id string, req UpdateBehavioralRequest) (*models.BehavioralRecord, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "behavioral record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load behavioral record")
	}

	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date, expected YYYY-MM-DD")
		}
		record.Date = date
	}
	if req.Type != nil {
		recordType := models.BehavioralType(*req.Type)
		if !recordType.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "type must be positive or negative")
		}
		record.Type = recordType
	}
	if req.Category != nil {
		record.Category = *req.Category
	}
	if req.Description != nil {
		record.Description = *req.Description
	}
	if req.Severity != nil {
		record.Severity = *req.Severity
	}
	if req.ActionTaken != nil {
		record.ActionTaken = *req.ActionTaken
	}
	if req.ReportedBy != nil {
		record.ReportedBy = *req.ReportedBy
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update behavioral record")
	}
	invalidateAggregates(ctx, s.aggregates)
	return record, nil
}

// Delete removes a conduct record.
func (s *BehavioralService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "behavioral record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load behavioral record")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete behavioral record")
	}
	invalidateAggregates(ctx, s.aggregates)
	return nil
}
