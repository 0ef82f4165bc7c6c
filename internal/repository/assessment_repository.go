package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/urugendo/student-performance-api/internal/models"
)

// AssessmentRepository manages persistence for assessments.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository constructs an AssessmentRepository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

func assessmentConditions(filter models.AssessmentFilter) (string, []interface{}) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("subject = $%d", len(args)+1))
		args = append(args, filter.Subject)
	}
	if filter.Term != "" {
		conditions = append(conditions, fmt.Sprintf("term = $%d", len(args)+1))
		args = append(args, filter.Term)
	}
	return strings.Join(conditions, " AND "), args
}

// List returns assessments matching the filter.
func (r *AssessmentRepository) List(ctx context.Context, filter models.AssessmentFilter) ([]models.Assessment, int, error) {
	whereClause, args := assessmentConditions(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, student_id, subject, assessment_type, name, score, max_score, date, term, academic_year, notes, created_at, updated_at
        FROM assessments WHERE %s ORDER BY date DESC, created_at DESC LIMIT %d OFFSET %d`, whereClause, size, offset)
	var assessments []models.Assessment
	if err := r.db.SelectContext(ctx, &assessments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assessments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM assessments WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assessments: %w", err)
	}
	return assessments, total, nil
}

// FindByID fetches one assessment.
func (r *AssessmentRepository) FindByID(ctx context.Context, id string) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := r.db.GetContext(ctx, &assessment,
		`SELECT id, student_id, subject, assessment_type, name, score, max_score, date, term, academic_year, notes, created_at, updated_at
        FROM assessments WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &assessment, nil
}

// Create inserts a new assessment.
func (r *AssessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	if assessment.ID == "" {
		assessment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	assessment.CreatedAt = now
	assessment.UpdatedAt = now
	const query = `INSERT INTO assessments (id, student_id, subject, assessment_type, name, score, max_score, date, term, academic_year, notes, created_at, updated_at)
        VALUES (:id, :student_id, :subject, :assessment_type, :name, :score, :max_score, :date, :term, :academic_year, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assessment); err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}

// Update modifies an existing assessment.
func (r *AssessmentRepository) Update(ctx context.Context, assessment *models.Assessment) error {
	assessment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assessments SET student_id = :student_id, subject = :subject, assessment_type = :assessment_type,
        name = :name, score = :score, max_score = :max_score, date = :date, term = :term, academic_year = :academic_year,
        notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, assessment); err != nil {
		return fmt.Errorf("update assessment: %w", err)
	}
	return nil
}

// Delete removes an assessment.
func (r *AssessmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM assessments WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	return nil
}

// Statistics aggregates assessment percentages for the filter scope. Rows
// with a zero max_score are excluded from the percentage aggregates.
func (r *AssessmentRepository) Statistics(ctx context.Context, filter models.AssessmentFilter) (*models.AssessmentStatistics, error) {
	whereClause, args := assessmentConditions(filter)

	query := fmt.Sprintf(`SELECT COUNT(*) AS count,
        COALESCE(AVG(score / max_score * 100), 0) AS average_percentage,
        COALESCE(MIN(score / max_score * 100), 0) AS min_percentage,
        COALESCE(MAX(score / max_score * 100), 0) AS max_percentage
        FROM assessments WHERE %s AND max_score > 0`, whereClause)

	var stats struct {
		Count             int     `db:"count"`
		AveragePercentage float64 `db:"average_percentage"`
		MinPercentage     float64 `db:"min_percentage"`
		MaxPercentage     float64 `db:"max_percentage"`
	}
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("assessment statistics: %w", err)
	}

	subjectQuery := fmt.Sprintf(`SELECT subject, COUNT(*) AS count,
        COALESCE(AVG(score / max_score * 100), 0) AS average_percentage
        FROM assessments WHERE %s AND max_score > 0 GROUP BY subject ORDER BY subject`, whereClause)
	var subjects []models.SubjectStatistics
	if err := r.db.SelectContext(ctx, &subjects, subjectQuery, args...); err != nil {
		return nil, fmt.Errorf("assessment subject statistics: %w", err)
	}
	if subjects == nil {
		subjects = []models.SubjectStatistics{}
	}

	return &models.AssessmentStatistics{
		Count:             stats.Count,
		AveragePercentage: stats.AveragePercentage,
		MinPercentage:     stats.MinPercentage,
		MaxPercentage:     stats.MaxPercentage,
		Subjects:          subjects,
	}, nil
}

// StudentExists reports whether the referenced student is present.
func (r *AssessmentRepository) StudentExists(ctx context.Context, studentID string) (bool, error) {
	var one int
	if err := r.db.GetContext(ctx, &one, "SELECT 1 FROM students WHERE id = $1 LIMIT 1", studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student: %w", err)
	}
	return true, nil
}
