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

type assessmentRepository interface {
	List(ctx context.Context, filter models.AssessmentFilter) ([]models.Assessment, int, error)
	FindByID(ctx context.Context, id string) (*models.Assessment, error)
	Create(ctx context.Context, assessment *models.Assessment) error
	Update(ctx context.Context, assessment *models.Assessment) error
	Delete(ctx context.Context, id string) error
	Statistics(ctx context.Context, filter models.AssessmentFilter) (*models.AssessmentStatistics, error)
	StudentExists(ctx context.Context, studentID string) (bool, error)
}

// CreateAssessmentRequest holds payload for recording an assessment.
type CreateAssessmentRequest struct {
	StudentID      string  `json:"student_id" validate:"required"`
	Subject        string  `json:"subject" validate:"required"`
	AssessmentType string  `json:"assessment_type" validate:"required"`
	Name           string  `json:"name"`
	Score          float64 `json:"score" validate:"min=0"`
	MaxScore       float64 `json:"max_score" validate:"gt=0"`
	Date           string  `json:"date" validate:"required"`
	Term           string  `json:"term"`
	AcademicYear   string  `json:"academic_year"`
	Notes          string  `json:"notes"`
}

// UpdateAssessmentRequest is the partial update payload.
type UpdateAssessmentRequest struct {
	Subject        *string  `json:"subject"`
	AssessmentType *string  `json:"assessment_type"`
	Name           *string  `json:"name"`
	Score          *float64 `json:"score"`
	MaxScore       *float64 `json:"max_score"`
	Date           *string  `json:"date"`
	Term           *string  `json:"term"`
	AcademicYear   *string  `json:"academic_year"`
	Notes          *string  `json:"notes"`
}

// AssessmentService handles assessment use-cases.
type AssessmentService struct {
	repo       assessmentRepository
	validator  *validator.Validate
	logger     *zap.Logger
	aggregates AggregateInvalidator
}

// NewAssessmentService constructs the assessment service.
func NewAssessmentService(repo assessmentRepository, validate *validator.Validate, logger *zap.Logger) *AssessmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{repo: repo, validator: validate, logger: logger}
}

// WithAggregateInvalidation makes writes drop cached dashboard aggregates.
func (s *AssessmentService) WithAggregateInvalidation(inv AggregateInvalidator) *AssessmentService {
	s.aggregates = inv
	return s
}

// List returns assessments and pagination metadata.
func (s *AssessmentService) List(ctx context.Context, filter models.AssessmentFilter) ([]models.Assessment, *models.Pagination, error) {
	assessments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assessments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	return assessments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one assessment.
func (s *AssessmentService) Get(ctx context.Context, id string) (*models.Assessment, error) {
	assessment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment")
	}
	return assessment, nil
}

// Create records a new assessment. The score may never exceed the maximum.
func (s *AssessmentService) Create(ctx context.Context, req CreateAssessmentRequest) (*models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}
	if req.Score > req.MaxScore {
		return nil, appErrors.Clone(appErrors.ErrValidation, "score cannot exceed max_score")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date, expected YYYY-MM-DD")
	}
	exists, err := s.repo.StudentExists(ctx, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	assessment := &models.Assessment{
		StudentID:      req.StudentID,
		Subject:        req.Subject,
		AssessmentType: req.AssessmentType,
		Name:           req.Name,
		Score:          req.Score,
		MaxScore:       req.MaxScore,
		Date:           date,
		Term:           req.Term,
		AcademicYear:   req.AcademicYear,
		Notes:          req.Notes,
	}
	if err := s.repo.Create(ctx, assessment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assessment")
	}
	invalidateAggregates(ctx, s.aggregates)
	return assessment, nil
}

// Update applies the fields present in the payload, re-checking the score
// bound against the resulting row.
func (s *AssessmentService) Update(ctx context.Context, id string, req UpdateAssessmentRequest) (*models.Assessment, error) {
	assessment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment")
	}

	if req.Subject != nil {
		assessment.Subject = *req.Subject
	}
	if req.AssessmentType != nil {
		assessment.AssessmentType = *req.AssessmentType
	}
	if req.Name != nil {
		assessment.Name = *req.Name
	}
	if req.Score != nil {
		assessment.Score = *req.Score
	}
	if req.MaxScore != nil {
		assessment.MaxScore = *req.MaxScore
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date, expected YYYY-MM-DD")
		}
		assessment.Date = date
	}
	if req.Term != nil {
		assessment.Term = *req.Term
	}
	if req.AcademicYear != nil {
		assessment.AcademicYear = *req.AcademicYear
	}
	if req.Notes != nil {
		assessment.Notes = *req.Notes
	}

	if assessment.MaxScore <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "max_score must be positive")
	}
	if assessment.Score > assessment.MaxScore {
		return nil, appErrors.Clone(appErrors.ErrValidation, "score cannot exceed max_score")
	}

	if err := s.repo.Update(ctx, assessment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assessment")
	}
	invalidateAggregates(ctx, s.aggregates)
	return assessment, nil
}

// Delete removes an assessment.
func (s *AssessmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assessment")
	}
	invalidateAggregates(ctx, s.aggregates)
	return nil
}

// Statistics aggregates assessment percentages for the filter scope.
func (s *AssessmentService) Statistics(ctx context.Context, filter models.AssessmentFilter) (*models.AssessmentStatistics, error) {
	stats, err := s.repo.Statistics(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute assessment statistics")
	}
	return stats, nil
}
