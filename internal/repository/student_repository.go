package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/urugendo/student-performance-api/internal/models"
)

// StudentRepository manages persistence for student records and their
// contact rows.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns student summaries matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentSummary, int, error) {
	base := "FROM students s LEFT JOIN classes c ON c.id = s.class_id"
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("s.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.full_name) LIKE $%d OR LOWER(s.id) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"id":        "s.id",
		"full_name": "s.full_name",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "s.id"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT s.id, s.full_name, s.gender, s.class_id, c.name AS class_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var students []models.StudentSummary
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student detail including guardians and emergency
// contacts.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	const query = `SELECT s.id, s.full_name, s.gender, s.date_of_birth, s.enrollment_date, s.class_id, s.created_at, s.updated_at,
        c.name AS class_name
        FROM students s LEFT JOIN classes c ON c.id = s.class_id
        WHERE s.id = $1`
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}

	if err := r.db.SelectContext(ctx, &detail.Guardians,
		`SELECT id, student_id, first_name, last_name, relationship, contact FROM guardians WHERE student_id = $1 ORDER BY id`, id); err != nil {
		return nil, fmt.Errorf("load guardians: %w", err)
	}
	if err := r.db.SelectContext(ctx, &detail.EmergencyContacts,
		`SELECT id, student_id, first_name, last_name, relationship, contact FROM emergency_contacts WHERE student_id = $1 ORDER BY id`, id); err != nil {
		return nil, fmt.Errorf("load emergency contacts: %w", err)
	}
	if detail.Guardians == nil {
		detail.Guardians = []models.Guardian{}
	}
	if detail.EmergencyContacts == nil {
		detail.EmergencyContacts = []models.EmergencyContact{}
	}
	return &detail, nil
}

// Create inserts the student together with its guardians and emergency
// contacts in a single transaction. An unseen class id is created on the
// fly; the student id is issued from the RW-NNN sequence inside the same
// transaction.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student, guardians []models.Guardian, contacts []models.EmergencyContact) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create student: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO classes (id, name, created_at, updated_at) VALUES ($1, $1, $2, $2) ON CONFLICT (id) DO NOTHING`,
		student.ClassID, time.Now().UTC()); err != nil {
		return fmt.Errorf("ensure class: %w", err)
	}

	if student.ID == "" {
		nextID, err := nextStudentID(ctx, tx)
		if err != nil {
			return err
		}
		student.ID = nextID
	}

	now := time.Now().UTC()
	if student.EnrollmentDate.IsZero() {
		student.EnrollmentDate = now
	}
	student.CreatedAt = now
	student.UpdatedAt = now
	const insertStudent = `INSERT INTO students (id, full_name, gender, date_of_birth, enrollment_date, class_id, created_at, updated_at)
        VALUES (:id, :full_name, :gender, :date_of_birth, :enrollment_date, :class_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertStudent, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}

	for i := range guardians {
		guardians[i].ID = uuid.NewString()
		guardians[i].StudentID = student.ID
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO guardians (id, student_id, first_name, last_name, relationship, contact)
             VALUES (:id, :student_id, :first_name, :last_name, :relationship, :contact)`, guardians[i]); err != nil {
			return fmt.Errorf("create guardian: %w", err)
		}
	}
	for i := range contacts {
		contacts[i].ID = uuid.NewString()
		contacts[i].StudentID = student.ID
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO emergency_contacts (id, student_id, first_name, last_name, relationship, contact)
             VALUES (:id, :student_id, :first_name, :last_name, :relationship, :contact)`, contacts[i]); err != nil {
			return fmt.Errorf("create emergency contact: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create student: %w", err)
	}
	return nil
}

// Update modifies an existing student row.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET full_name = :full_name, gender = :gender, date_of_birth = :date_of_birth,
        enrollment_date = :enrollment_date, class_id = :class_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes the student and every dependent row in one transaction.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete student: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	dependents := []string{
		"DELETE FROM guardians WHERE student_id = $1",
		"DELETE FROM emergency_contacts WHERE student_id = $1",
		"DELETE FROM attendance WHERE student_id = $1",
		"DELETE FROM assessments WHERE student_id = $1",
		"DELETE FROM participation WHERE student_id = $1",
		"DELETE FROM behavioral_records WHERE student_id = $1",
	}
	for _, stmt := range dependents {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete student dependents: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete student: %w", err)
	}
	return nil
}

// nextStudentID issues the next id of the RW-NNN sequence. The read and the
// subsequent insert share a transaction; under concurrent writers the unique
// constraint on students.id is the final arbiter. Ordering by length first
// keeps the comparison numeric once the suffix grows past three digits.
func nextStudentID(ctx context.Context, tx *sqlx.Tx) (string, error) {
	var lastID string
	err := tx.GetContext(ctx, &lastID,
		"SELECT id FROM students WHERE id LIKE $1 ORDER BY length(id) DESC, id DESC LIMIT 1", models.StudentIDPrefix+"%")
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Sprintf("%s%03d", models.StudentIDPrefix, 1), nil
		}
		return "", fmt.Errorf("read last student id: %w", err)
	}
	lastNum, err := strconv.Atoi(strings.TrimPrefix(lastID, models.StudentIDPrefix))
	if err != nil {
		lastNum = 0
	}
	return fmt.Sprintf("%s%03d", models.StudentIDPrefix, lastNum+1), nil
}
