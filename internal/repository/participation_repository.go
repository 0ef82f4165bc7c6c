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

// ParticipationRepository manages persistence for participation entries.
type ParticipationRepository struct {
	db *sqlx.DB
}

// NewParticipationRepository constructs a ParticipationRepository.
func NewParticipationRepository(db *sqlx.DB) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

// List returns participation entries per provided filter.
func (r *ParticipationRepository) List(ctx context.Context, filter models.ParticipationFilter) ([]models.Participation, int, error) {
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

	query := fmt.Sprintf(`SELECT id, student_id, class_id, date, subject, activity_type, description, status, remarks, created_at, updated_at
        FROM participation WHERE %s ORDER BY date DESC, created_at DESC LIMIT %d OFFSET %d`, whereClause, size, offset)
	var entries []models.Participation
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list participation: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM participation WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count participation: %w", err)
	}
	return entries, total, nil
}

// FindByID fetches one participation entry.
func (r *ParticipationRepository) FindByID(ctx context.Context, id string) (*models.Participation, error) {
	var entry models.Participation
	if err := r.db.GetContext(ctx, &entry,
		`SELECT id, student_id, class_id, date, subject, activity_type, description, status, remarks, created_at, updated_at
        FROM participation WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Create inserts a new participation entry.
func (r *ParticipationRepository) Create(ctx context.Context, entry *models.Participation) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	const query = `INSERT INTO participation (id, student_id, class_id, date, subject, activity_type, description, status, remarks, created_at, updated_at)
        VALUES (:id, :student_id, :class_id, :date, :subject, :activity_type, :description, :status, :remarks, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create participation: %w", err)
	}
	return nil
}

// Update modifies an existing participation entry.
func (r *ParticipationRepository) Update(ctx context.Context, entry *models.Participation) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE participation SET student_id = :student_id, class_id = :class_id, date = :date, subject = :subject,
        activity_type = :activity_type, description = :description, status = :status, remarks = :remarks, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("update participation: %w", err)
	}
	return nil
}

// Delete removes a participation entry.
func (r *ParticipationRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM participation WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete participation: %w", err)
	}
	return nil
}

// StatusesByStudent returns every logged status for a student, newest first.
func (r *ParticipationRepository) StatusesByStudent(ctx context.Context, studentID string) ([]string, error) {
	var statuses []string
	if err := r.db.SelectContext(ctx, &statuses,
		"SELECT status FROM participation WHERE student_id = $1 ORDER BY date DESC", studentID); err != nil {
		return nil, fmt.Errorf("load participation statuses: %w", err)
	}
	return statuses, nil
}
