package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/urugendo/student-performance-api/internal/models"
)

func newAttendanceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() { sqlxDB.Close() }
}

func TestAttendanceRepositoryConfirm(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM attendance WHERE id =")).
		WithArgs("att-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(models.AttendanceStatusPresent))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE attendance SET status =")).
		WithArgs("att-1", models.AttendanceStatusConfirmed, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	previous, err := repo.Confirm(context.Background(), "att-1")
	require.NoError(t, err)
	require.Equal(t, models.AttendanceStatusPresent, previous)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryConfirmAlreadyConfirmed(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM attendance WHERE id =")).
		WithArgs("att-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(models.AttendanceStatusConfirmed))

	previous, err := repo.Confirm(context.Background(), "att-1")
	require.NoError(t, err)
	require.Equal(t, models.AttendanceStatusConfirmed, previous)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryStatusesByIDs(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	ids := []string{"att-1", "att-2", "att-missing"}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, status FROM attendance WHERE id = ANY")).
		WithArgs(pq.Array(ids)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).
			AddRow("att-1", models.AttendanceStatusPresent).
			AddRow("att-2", models.AttendanceStatusConfirmed))

	statuses, err := repo.StatusesByIDs(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	require.Equal(t, models.AttendanceStatusPresent, statuses["att-1"])
	require.NotContains(t, statuses, "att-missing")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryConfirmManyEmpty(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	require.NoError(t, repo.ConfirmMany(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryBulkInsert(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	records := []models.Attendance{
		{StudentID: "RW-001", ClassID: "P5A", Status: models.AttendanceStatusPresent},
		{StudentID: "RW-002", ClassID: "P5A", Status: models.AttendanceStatusAbsent},
	}
	require.NoError(t, repo.BulkInsert(context.Background(), records))
	require.NotEmpty(t, records[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
