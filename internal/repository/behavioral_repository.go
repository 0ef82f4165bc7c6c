package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/urugendo/student-performance-api/internal/models"
)

// BehavioralRepository manages persistence for conduct records.
type BehavioralRepository struct {
	db *sqlx.DB
}

// NewBehavioralRepository constructs a BehavioralRepository.
func NewBehavioralRepository(db *sqlx.DB) *BehavioralRepository {
	return &BehavioralRepository{db: db}
}

// List returns conduct records per provided filter.
func (r *BehavioralRepository) List(ctx context.Context, filter models.BehavioralFilter) ([]models.BehavioralRecord, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("record_type = $%d", len(args)+1))
		args = append(args, string(*filter.Type))
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
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

	query := fmt.Sprintf(`SELECT id, student_id, date, record_type, category, description, severity, action_taken, reported_by, created_at, updated_at
        FROM behavioral_records WHERE %s ORDER BY date DESC, created_at DESC LIMIT %d OFFSET %d`, whereClause, size, offset)
	var records []models.BehavioralRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list behavioral records: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM behavioral_records WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count behavioral records: %w", err)
	}
	return records, total, nil
}

// FindByID fetches one conduct record.
func (r *BehavioralRepository) FindByID(ctx context.Context, id string) (*models.BehavioralRecord, error) {
	var record models.BehavioralRecord
	if err := r.db.GetContext(ctx, &record,
		`SELECT id, student_id, date, record_type, category, description, severity, action_taken, reported_by, created_at, updated_at
        FROM behavioral_records WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new conduct record.
func (r *BehavioralRepository) Create(ctx context.Context, record *models.BehavioralRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	const query = `INSERT INTO behavioral_records (id, student_id, date, record_type, category, description, severity, action_taken, reported_by, created_at, updated_at)
        VALUES (:id, :student_id, :date, :record_type, :category, :description, :severity, :action_taken, :reported_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create behavioral record: %w", err)
	}
	return nil
}

// Update modifies an existing conduct record.
func (r *BehavioralRepository) Update(ctx context.Context, record *models.BehavioralRecord) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE behavioral_records SET student_id = :student_id, date = :date, record_type = :record_type,
        category = :category, description = :description, severity = :severity, action_taken = :action_taken,
        reported_by = :reported_by, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("update behavioral record: %w", err)
	}
	return nil
}

// Delete removes a conduct record.
func (r *BehavioralRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM behavioral_records WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete behavioral record: %w", err)
	}
	return nil
}
