package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/urugendo/student-performance-api/internal/models"
)

// AnalyticsRepository answers aggregate queries spanning students,
// assessments, attendance and conduct records.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository constructs an AnalyticsRepository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// CountStudents returns the total number of registered students.
func (r *AnalyticsRepository) CountStudents(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students"); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// AverageScore returns the school-wide mean assessment percentage.
func (r *AnalyticsRepository) AverageScore(ctx context.Context) (float64, error) {
	var avg float64
	if err := r.db.GetContext(ctx, &avg,
		"SELECT COALESCE(AVG(score / max_score * 100), 0) FROM assessments WHERE max_score > 0"); err != nil {
		return 0, fmt.Errorf("average score: %w", err)
	}
	return avg, nil
}

// AttendanceCounts returns school-wide present and total attendance tallies.
func (r *AnalyticsRepository) AttendanceCounts(ctx context.Context) (present, total int, err error) {
	row := struct {
		Present int `db:"present"`
		Total   int `db:"total"`
	}{}
	if err := r.db.GetContext(ctx, &row,
		`SELECT COALESCE(SUM(CASE WHEN status = $1 THEN 1 ELSE 0 END), 0) AS present, COUNT(*) AS total FROM attendance`,
		models.AttendanceStatusPresent); err != nil {
		return 0, 0, fmt.Errorf("attendance counts: %w", err)
	}
	return row.Present, row.Total, nil
}

// HighPerformerCount returns the number of students whose mean percentage
// reaches the threshold.
func (r *AnalyticsRepository) HighPerformerCount(ctx context.Context, threshold float64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM (
            SELECT student_id FROM assessments WHERE max_score > 0
            GROUP BY student_id HAVING AVG(score / max_score * 100) >= $1
        ) ranked`, threshold); err != nil {
		return 0, fmt.Errorf("high performer count: %w", err)
	}
	return count, nil
}

// StudentAverages returns each assessed student with its mean percentage,
// highest first. Ties keep the id order the database returns.
func (r *AnalyticsRepository) StudentAverages(ctx context.Context) ([]models.StudentAverage, error) {
	const query = `SELECT a.student_id, s.full_name, AVG(a.score / a.max_score * 100) AS average_percentage
        FROM assessments a JOIN students s ON s.id = a.student_id
        WHERE a.max_score > 0
        GROUP BY a.student_id, s.full_name
        ORDER BY average_percentage DESC, a.student_id ASC`
	var averages []models.StudentAverage
	if err := r.db.SelectContext(ctx, &averages, query); err != nil {
		return nil, fmt.Errorf("student averages: %w", err)
	}
	return averages, nil
}

// StudentAverage returns the mean percentage for one student.
func (r *AnalyticsRepository) StudentAverage(ctx context.Context, studentID string) (float64, error) {
	var avg float64
	if err := r.db.GetContext(ctx, &avg,
		"SELECT COALESCE(AVG(score / max_score * 100), 0) FROM assessments WHERE student_id = $1 AND max_score > 0",
		studentID); err != nil {
		return 0, fmt.Errorf("student average: %w", err)
	}
	return avg, nil
}

// StudentAttendanceCounts returns per-student attendance tallies.
func (r *AnalyticsRepository) StudentAttendanceCounts(ctx context.Context) ([]models.StudentAttendanceCount, error) {
	const query = `SELECT student_id,
        COALESCE(SUM(CASE WHEN status = $1 THEN 1 ELSE 0 END), 0) AS present,
        COUNT(*) AS total
        FROM attendance GROUP BY student_id`
	var counts []models.StudentAttendanceCount
	if err := r.db.SelectContext(ctx, &counts, query, models.AttendanceStatusPresent); err != nil {
		return nil, fmt.Errorf("student attendance counts: %w", err)
	}
	return counts, nil
}

// StudentAttendanceCount returns attendance tallies for one student.
func (r *AnalyticsRepository) StudentAttendanceCount(ctx context.Context, studentID string) (*models.StudentAttendanceCount, error) {
	count := models.StudentAttendanceCount{StudentID: studentID}
	if err := r.db.GetContext(ctx, &count,
		`SELECT COALESCE(SUM(CASE WHEN status = $1 THEN 1 ELSE 0 END), 0) AS present, COUNT(*) AS total
        FROM attendance WHERE student_id = $2`,
		models.AttendanceStatusPresent, studentID); err != nil {
		return nil, fmt.Errorf("student attendance count: %w", err)
	}
	count.StudentID = studentID
	return &count, nil
}

// StudentMisconductCounts returns per-student negative conduct counts.
func (r *AnalyticsRepository) StudentMisconductCounts(ctx context.Context) ([]models.StudentMisconductCount, error) {
	const query = `SELECT student_id, COUNT(*) AS count FROM behavioral_records
        WHERE record_type = $1 GROUP BY student_id`
	var counts []models.StudentMisconductCount
	if err := r.db.SelectContext(ctx, &counts, query, string(models.BehavioralNegative)); err != nil {
		return nil, fmt.Errorf("student misconduct counts: %w", err)
	}
	return counts, nil
}

// SubjectAggregates returns per-subject assessment aggregates.
func (r *AnalyticsRepository) SubjectAggregates(ctx context.Context) ([]models.SubjectAggregate, error) {
	const query = `SELECT subject,
        COUNT(DISTINCT student_id) AS students,
        COUNT(*) AS assessments,
        COALESCE(AVG(score / max_score * 100), 0) AS average_percentage
        FROM assessments WHERE max_score > 0 GROUP BY subject ORDER BY subject`
	var aggregates []models.SubjectAggregate
	if err := r.db.SelectContext(ctx, &aggregates, query); err != nil {
		return nil, fmt.Errorf("subject aggregates: %w", err)
	}
	return aggregates, nil
}
