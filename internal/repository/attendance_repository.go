package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/urugendo/student-performance-api/internal/models"
)

// AttendanceRepository manages persistence for attendance rows.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// List returns attendance rows per provided filter.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("date = $%d", len(args)+1))
		args = append(args, *filter.Date)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	whereClause := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, student_id, class_id, date, status, created_at, updated_at FROM attendance
        WHERE %s ORDER BY date DESC, created_at DESC LIMIT %d OFFSET %d`, whereClause, size, offset)
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM attendance WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return records, total, nil
}

// FindByID fetches one attendance row.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.Attendance, error) {
	var record models.Attendance
	if err := r.db.GetContext(ctx, &record,
		"SELECT id, student_id, class_id, date, status, created_at, updated_at FROM attendance WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a single attendance row.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.Attendance) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	const query = `INSERT INTO attendance (id, student_id, class_id, date, status, created_at, updated_at)
        VALUES (:id, :student_id, :class_id, :date, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// BulkInsert inserts the provided rows in a single transaction.
func (r *AttendanceRepository) BulkInsert(ctx context.Context, records []models.Attendance) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk attendance: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO attendance (id, student_id, class_id, date, status, created_at, updated_at)
        VALUES (:id, :student_id, :class_id, :date, :status, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		records[i].CreatedAt = now
		records[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, records[i]); err != nil {
			return fmt.Errorf("bulk insert attendance: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk attendance: %w", err)
	}
	return nil
}

// Update modifies an existing attendance row.
func (r *AttendanceRepository) Update(ctx context.Context, record *models.Attendance) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE attendance SET student_id = :student_id, class_id = :class_id, date = :date,
        status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	return nil
}

// Delete removes an attendance row.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM attendance WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}

// Confirm marks one row Confirmed. It returns the previous status so
// callers can distinguish fresh confirmations from repeats.
func (r *AttendanceRepository) Confirm(ctx context.Context, id string) (string, error) {
	var previous string
	err := r.db.GetContext(ctx, &previous, "SELECT status FROM attendance WHERE id = $1", id)
	if err != nil {
		return "", err
	}
	if previous == models.AttendanceStatusConfirmed {
		return previous, nil
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE attendance SET status = $2, updated_at = $3 WHERE id = $1",
		id, models.AttendanceStatusConfirmed, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("confirm attendance: %w", err)
	}
	return previous, nil
}

// StatusesByIDs returns the current status for each existing id.
func (r *AttendanceRepository) StatusesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	rows := []struct {
		ID     string `db:"id"`
		Status string `db:"status"`
	}{}
	if err := r.db.SelectContext(ctx, &rows,
		"SELECT id, status FROM attendance WHERE id = ANY($1)", pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("load attendance statuses: %w", err)
	}
	statuses := make(map[string]string, len(rows))
	for _, row := range rows {
		statuses[row.ID] = row.Status
	}
	return statuses, nil
}

// ConfirmMany marks the provided ids Confirmed in one statement.
func (r *AttendanceRepository) ConfirmMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE attendance SET status = $2, updated_at = $3 WHERE id = ANY($1)",
		pq.Array(ids), models.AttendanceStatusConfirmed, time.Now().UTC()); err != nil {
		return fmt.Errorf("confirm attendance batch: %w", err)
	}
	return nil
}

// StudentExists reports whether the referenced student is present.
func (r *AttendanceRepository) StudentExists(ctx context.Context, studentID string) (bool, error) {
	var one int
	if err := r.db.GetContext(ctx, &one, "SELECT 1 FROM students WHERE id = $1 LIMIT 1", studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student: %w", err)
	}
	return true, nil
}
