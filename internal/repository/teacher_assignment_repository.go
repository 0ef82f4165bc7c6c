package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/urugendo/student-performance-api/internal/models"
)

// TeacherAssignmentRepository manages teacher-class-subject links.
type TeacherAssignmentRepository struct {
	db *sqlx.DB
}

// NewTeacherAssignmentRepository constructs the repository.
func NewTeacherAssignmentRepository(db *sqlx.DB) *TeacherAssignmentRepository {
	return &TeacherAssignmentRepository{db: db}
}

// List returns assignments joined with teacher and class names.
func (r *TeacherAssignmentRepository) List(ctx context.Context) ([]models.TeacherClassSubjectDetail, error) {
	const query = `SELECT a.id, a.teacher_id, a.class_id, a.subject, a.created_at,
        t.full_name AS teacher_name, c.name AS class_name
        FROM teacher_class_subjects a
        LEFT JOIN teachers t ON t.id = a.teacher_id
        LEFT JOIN classes c ON c.id = a.class_id
        ORDER BY a.created_at DESC`
	var assignments []models.TeacherClassSubjectDetail
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list teacher assignments: %w", err)
	}
	return assignments, nil
}

// FindByID fetches one assignment.
func (r *TeacherAssignmentRepository) FindByID(ctx context.Context, id string) (*models.TeacherClassSubject, error) {
	var assignment models.TeacherClassSubject
	if err := r.db.GetContext(ctx, &assignment,
		"SELECT id, teacher_id, class_id, subject, created_at FROM teacher_class_subjects WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Create inserts a new assignment.
func (r *TeacherAssignmentRepository) Create(ctx context.Context, assignment *models.TeacherClassSubject) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	assignment.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO teacher_class_subjects (id, teacher_id, class_id, subject, created_at)
        VALUES (:id, :teacher_id, :class_id, :subject, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create teacher assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment.
func (r *TeacherAssignmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM teacher_class_subjects WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete teacher assignment: %w", err)
	}
	return nil
}
