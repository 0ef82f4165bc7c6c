package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/urugendo/student-performance-api/internal/models"
)

func newAnalyticsRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() { sqlxDB.Close() }
}

func TestAnalyticsAverageScoreNormalizesByMaxScore(t *testing.T) {
	db, mock, cleanup := newAnalyticsRepoMock(t)
	defer cleanup()

	repo := NewAnalyticsRepository(db)

	// The mean must be taken over percentages, not raw scores: an 80/100
	// and a 60/100 average out to 70, and a 30/40 weighs as 75.
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COALESCE(AVG(score / max_score * 100), 0) FROM assessments WHERE max_score > 0")).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(70.0))

	avg, err := repo.AverageScore(context.Background())
	require.NoError(t, err)
	require.Equal(t, 70.0, avg)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsStudentAverageNormalizesByMaxScore(t *testing.T) {
	db, mock, cleanup := newAnalyticsRepoMock(t)
	defer cleanup()

	repo := NewAnalyticsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COALESCE(AVG(score / max_score * 100), 0) FROM assessments WHERE student_id = $1 AND max_score > 0")).
		WithArgs("RW-001").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(70.0))

	avg, err := repo.StudentAverage(context.Background(), "RW-001")
	require.NoError(t, err)
	require.Equal(t, 70.0, avg)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsStudentAveragesRanksByPercentage(t *testing.T) {
	db, mock, cleanup := newAnalyticsRepoMock(t)
	defer cleanup()

	repo := NewAnalyticsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AVG(a.score / a.max_score * 100) AS average_percentage")).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "full_name", "average_percentage"}).
			AddRow("RW-002", "Bob Mugisha", 85.5).
			AddRow("RW-001", "Alice Uwase", 70.0))

	averages, err := repo.StudentAverages(context.Background())
	require.NoError(t, err)
	require.Len(t, averages, 2)
	require.Equal(t, "RW-002", averages[0].StudentID)
	require.Equal(t, 85.5, averages[0].AveragePercentage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsAttendanceCountsFilterPresent(t *testing.T) {
	db, mock, cleanup := newAnalyticsRepoMock(t)
	defer cleanup()

	repo := NewAnalyticsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(CASE WHEN status = $1 THEN 1 ELSE 0 END), 0) AS present, COUNT(*) AS total FROM attendance")).
		WithArgs(models.AttendanceStatusPresent).
		WillReturnRows(sqlmock.NewRows([]string{"present", "total"}).AddRow(18, 20))

	present, total, err := repo.AttendanceCounts(context.Background())
	require.NoError(t, err)
	require.Equal(t, 18, present)
	require.Equal(t, 20, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsSubjectAggregates(t *testing.T) {
	db, mock, cleanup := newAnalyticsRepoMock(t)
	defer cleanup()

	repo := NewAnalyticsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(AVG(score / max_score * 100), 0) AS average_percentage")).
		WillReturnRows(sqlmock.NewRows([]string{"subject", "students", "assessments", "average_percentage"}).
			AddRow("Mathematics", 12, 30, 68.4))

	aggregates, err := repo.SubjectAggregates(context.Background())
	require.NoError(t, err)
	require.Len(t, aggregates, 1)
	require.Equal(t, "Mathematics", aggregates[0].Subject)
	require.Equal(t, 68.4, aggregates[0].AveragePercentage)
	require.NoError(t, mock.ExpectationsWereMet())
}
