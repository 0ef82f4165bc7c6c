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

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error)
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
	Create(ctx context.Context, record *models.Attendance) error
	BulkInsert(ctx context.Context, records []models.Attendance) error
	Update(ctx context.Context, record *models.Attendance) error
	Delete(ctx context.Context, id string) error
	Confirm(ctx context.Context, id string) (string, error)
	StatusesByIDs(ctx context.Context, ids []string) (map[string]string, error)
	ConfirmMany(ctx context.Context, ids []string) error
	StudentExists(ctx context.Context, studentID string) (bool, error)
}

// LogAttendanceRequest holds payload for marking a single attendance row.
type LogAttendanceRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	ClassID   string `json:"class_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

// UpdateAttendanceRequest is the partial update payload.
type UpdateAttendanceRequest struct {
	StudentID *string `json:"student_id"`
	ClassID   *string `json:"class_id"`
	Date      *string `json:"date"`
	Status    *string `json:"status"`
}

// ConfirmBatchRequest lists the rows to confirm.
type ConfirmBatchRequest struct {
	AttendanceIDs []string `json:"attendance_ids" validate:"required,min=1"`
}

// ConfirmOutcome reports the result of a single confirmation.
type ConfirmOutcome struct {
	ID               string `json:"id"`
	AlreadyConfirmed bool   `json:"already_confirmed"`
}

// AttendanceService coordinates attendance workflows.
type AttendanceService struct {
	repo       attendanceRepository
	validator  *validator.Validate
	logger     *zap.Logger
	aggregates AggregateInvalidator
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, validator: validate, logger: logger}
}

// WithAggregateInvalidation makes writes drop cached dashboard aggregates.
func (s *AttendanceService) WithAggregateInvalidation(inv AggregateInvalidator) *AttendanceService {
	s.aggregates = inv
	return s
}

// List returns attendance rows and pagination metadata.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
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

// Get returns one attendance row.
func (s *AttendanceService) Get(ctx context.Context, id string) (*models.Attendance, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	return record, nil
}

// Log records a single attendance entry.
func (s *AttendanceService) Log(ctx context.Context, req LogAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
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

	record := &models.Attendance{
		StudentID: req.StudentID,
		ClassID:   req.ClassID,
		Date:      date,
		Status:    req.Status,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to log attendance")
	}
	invalidateAggregates(ctx, s.aggregates)
	return record, nil
}

// LogBatch records the valid entries of a batch and reports how many were
// created. Entries missing a required field are skipped, never failing the
// batch as a whole.
func (s *AttendanceService) LogBatch(ctx context.Context, reqs []LogAttendanceRequest) (*models.AttendanceBatchResult, error) {
	records := make([]models.Attendance, 0, len(reqs))
	skipped := 0
	for _, req := range reqs {
		if req.StudentID == "" || req.ClassID == "" || req.Date == "" || req.Status == "" {
			skipped++
			continue
		}
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, models.Attendance{
			StudentID: req.StudentID,
			ClassID:   req.ClassID,
			Date:      date,
			Status:    req.Status,
		})
	}

	if err := s.repo.BulkInsert(ctx, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to log attendance batch")
	}
	if skipped > 0 {
		s.logger.Warn("attendance batch skipped invalid entries", zap.Int("skipped", skipped), zap.Int("created", len(records)))
	}
	if len(records) > 0 {
		invalidateAggregates(ctx, s.aggregates)
	}
	return &models.AttendanceBatchResult{Created: len(records), Skipped: skipped}, nil
}

// Update applies the fields present in the payload.
func (s *AttendanceService) Update(ctx context.Context, id string, req UpdateAttendanceRequest) (*models.Attendance, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}

	if req.StudentID != nil {
		record.StudentID = *req.StudentID
	}
	if req.ClassID != nil {
		record.ClassID = *req.ClassID
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date, expected YYYY-MM-DD")
		}
		record.Date = date
	}
	if req.Status != nil {
		record.Status = *req.Status
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
	}
	invalidateAggregates(ctx, s.aggregates)
	return record, nil
}

// Delete removes an attendance row.
func (s *AttendanceService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance")
	}
	invalidateAggregates(ctx, s.aggregates)
	return nil
}

// Confirm marks one row Confirmed. Confirming an already confirmed row is
// a no-op reported back to the caller.
func (s *AttendanceService) Confirm(ctx context.Context, id string) (*ConfirmOutcome, error) {
	previous, err := s.repo.Confirm(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to confirm attendance")
	}
	outcome := &ConfirmOutcome{ID: id, AlreadyConfirmed: previous == models.AttendanceStatusConfirmed}
	if !outcome.AlreadyConfirmed {
		invalidateAggregates(ctx, s.aggregates)
	}
	return outcome, nil
}

// ConfirmBatch confirms every pending id of the request and reports fresh
// confirmations, repeats and unknown ids separately.
func (s *AttendanceService) ConfirmBatch(ctx context.Context, req ConfirmBatchRequest) (*models.AttendanceConfirmResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid confirm payload")
	}

	statuses, err := s.repo.StatusesByIDs(ctx, req.AttendanceIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance records")
	}

	result := &models.AttendanceConfirmResult{}
	pending := make([]string, 0, len(req.AttendanceIDs))
	for _, id := range req.AttendanceIDs {
		status, ok := statuses[id]
		if !ok {
			result.NotFoundIDs = append(result.NotFoundIDs, id)
			continue
		}
		if status == models.AttendanceStatusConfirmed {
			result.AlreadyConfirmed++
			continue
		}
		pending = append(pending, id)
	}

	if err := s.repo.ConfirmMany(ctx, pending); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to confirm attendance batch")
	}
	result.Confirmed = len(pending)
	if result.Confirmed > 0 {
		invalidateAggregates(ctx, s.aggregates)
	}
	return result, nil
}
