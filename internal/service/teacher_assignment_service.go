package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/urugendo/student-performance-api/internal/models"
	appErrors "github.com/urugendo/student-performance-api/pkg/errors"
)

type teacherAssignmentRepository interface {
	List(ctx context.Context) ([]models.TeacherClassSubjectDetail, error)
	FindByID(ctx context.Context, id string) (*models.TeacherClassSubject, error)
	Create(ctx context.Context, assignment *models.TeacherClassSubject) error
	Delete(ctx context.Context, id string) error
}

// CreateAssignmentRequest links a teacher to a class for one subject.
type CreateAssignmentRequest struct {
	TeacherID string `json:"teacher_id" validate:"required"`
	ClassID   string `json:"class_id" validate:"required"`
	Subject   string `json:"subject" validate:"required"`
}

// TeacherAssignmentService manages teacher-class-subject links.
type TeacherAssignmentService struct {
	repo      teacherAssignmentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherAssignmentService constructs the assignment service.
func NewTeacherAssignmentService(repo teacherAssignmentRepository, validate *validator.Validate, logger *zap.Logger) *TeacherAssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherAssignmentService{repo: repo, validator: validate, logger: logger}
}

// List returns all assignments with joined teacher and class names.
func (s *TeacherAssignmentService) List(ctx context.Context) ([]models.TeacherClassSubjectDetail, error) {
	assignments, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Create records a new assignment.
func (s *TeacherAssignmentService) Create(ctx context.Context, req CreateAssignmentRequest) (*models.TeacherClassSubject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	assignment := &models.TeacherClassSubject{
		TeacherID: req.TeacherID,
		ClassID:   req.ClassID,
		Subject:   req.Subject,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// Delete removes an assignment.
func (s *TeacherAssignmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}
