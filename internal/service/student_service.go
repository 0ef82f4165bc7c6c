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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentSummary, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	Create(ctx context.Context, student *models.Student, guardians []models.Guardian, contacts []models.EmergencyContact) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// ContactRequest holds payload for guardian and emergency contact entries.
type ContactRequest struct {
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name"`
	Relationship string `json:"relationship"`
	Contact      string `json:"contact"`
}

// CreateStudentRequest holds payload for registering students.
type CreateStudentRequest struct {
	FullName          string           `json:"full_name" validate:"required"`
	Gender            string           `json:"gender"`
	DateOfBirth       *time.Time       `json:"date_of_birth"`
	ClassID           string           `json:"class_id" validate:"required"`
	Guardians         []ContactRequest `json:"guardians" validate:"omitempty,dive"`
	EmergencyContacts []ContactRequest `json:"emergency_contacts" validate:"omitempty,dive"`
}

// UpdateStudentRequest holds the partial update payload. Nil fields keep
// their stored value.
type UpdateStudentRequest struct {
	FullName    *string    `json:"full_name"`
	Gender      *string    `json:"gender"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	ClassID     *string    `json:"class_id"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo       studentRepository
	validator  *validator.Validate
	logger     *zap.Logger
	aggregates AggregateInvalidator
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// WithAggregateInvalidation registers the invalidator notified after writes.
func (s *StudentService) WithAggregateInvalidation(inv AggregateInvalidator) *StudentService {
	s.aggregates = inv
	return s
}

// List returns student summaries and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentSummary, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get returns detailed student information.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student with its contact records. The referenced
// class is created when unseen; the student id is issued sequentially.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student := &models.Student{
		FullName:    req.FullName,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
		ClassID:     req.ClassID,
	}
	guardians := make([]models.Guardian, len(req.Guardians))
	for i, g := range req.Guardians {
		guardians[i] = models.Guardian{FirstName: g.FirstName, LastName: g.LastName, Relationship: g.Relationship, Contact: g.Contact}
	}
	contacts := make([]models.EmergencyContact, len(req.EmergencyContacts))
	for i, ec := range req.EmergencyContacts {
		contacts[i] = models.EmergencyContact{FirstName: ec.FirstName, LastName: ec.LastName, Relationship: ec.Relationship, Contact: ec.Contact}
	}

	if err := s.repo.Create(ctx, student, guardians, contacts); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	invalidateAggregates(ctx, s.aggregates)
	s.logger.Info("student registered", zap.String("student_id", student.ID), zap.String("class_id", student.ClassID))
	return student, nil
}

// Update applies the fields present in the payload.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	student := detail.Student
	if req.FullName != nil {
		student.FullName = *req.FullName
	}
	if req.Gender != nil {
		student.Gender = *req.Gender
	}
	if req.DateOfBirth != nil {
		student.DateOfBirth = req.DateOfBirth
	}
	if req.ClassID != nil {
		student.ClassID = *req.ClassID
	}

	if err := s.repo.Update(ctx, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	invalidateAggregates(ctx, s.aggregates)
	return &student, nil
}

// Delete removes the student and its dependent rows.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	invalidateAggregates(ctx, s.aggregates)
	s.logger.Info("student removed", zap.String("student_id", id))
	return nil
}
