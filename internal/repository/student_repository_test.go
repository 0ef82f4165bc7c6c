package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/urugendo/student-performance-api/internal/models"
)

func newStudentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() { sqlxDB.Close() }
}

func TestStudentRepositoryCreateIssuesSequentialID(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO classes")).
		WithArgs("P5A", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM students WHERE id LIKE")).
		WithArgs(models.StudentIDPrefix + "%").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("RW-001"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO guardians")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO emergency_contacts")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	student := &models.Student{
		FullName: "Alice Uwase",
		Gender:   "F",
		ClassID:  "P5A",
	}
	guardians := []models.Guardian{{FirstName: "Marie", LastName: "Uwase", Relationship: "mother", Contact: "0788000001"}}
	contacts := []models.EmergencyContact{{FirstName: "Eric", LastName: "Uwase", Relationship: "uncle", Contact: "0788000002"}}

	require.NoError(t, repo.Create(context.Background(), student, guardians, contacts))
	require.Equal(t, "RW-002", student.ID)
	require.Equal(t, "RW-002", guardians[0].StudentID)
	require.NotEmpty(t, guardians[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateFirstStudent(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO classes")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM students WHERE id LIKE")).
		WithArgs(models.StudentIDPrefix + "%").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	student := &models.Student{FullName: "Bob Mugisha", Gender: "M", ClassID: "P5A"}
	require.NoError(t, repo.Create(context.Background(), student, nil, nil))
	require.Equal(t, "RW-001", student.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateBeyondThreeDigits(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO classes")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Under plain string ordering RW-999 would shadow RW-1000 forever, so
	// the lookup must sort by id length before value.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM students WHERE id LIKE $1 ORDER BY length(id) DESC, id DESC LIMIT 1")).
		WithArgs(models.StudentIDPrefix + "%").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("RW-999"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	student := &models.Student{FullName: "Chantal Keza", Gender: "F", ClassID: "P5A"}
	require.NoError(t, repo.Create(context.Background(), student, nil, nil))
	require.Equal(t, "RW-1000", student.ID)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO classes")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM students WHERE id LIKE $1 ORDER BY length(id) DESC, id DESC LIMIT 1")).
		WithArgs(models.StudentIDPrefix + "%").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("RW-1000"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	next := &models.Student{FullName: "Divine Ingabire", Gender: "F", ClassID: "P5A"}
	require.NoError(t, repo.Create(context.Background(), next, nil, nil))
	require.Equal(t, "RW-1001", next.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteRemovesDependents(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	for _, table := range []string{"guardians", "emergency_contacts", "attendance", "assessments", "participation", "behavioral_records"} {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM " + table)).
			WithArgs("RW-001").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students")).
		WithArgs("RW-001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "RW-001"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDLoadsContacts(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT s.id, s.full_name")).
		WithArgs("RW-001").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "gender", "date_of_birth", "enrollment_date", "class_id", "created_at", "updated_at", "class_name"}).
			AddRow("RW-001", "Alice Uwase", "F", now, now, "P5A", now, now, "P5A"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM guardians")).
		WithArgs("RW-001").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "first_name", "last_name", "relationship", "contact"}).
			AddRow("g-1", "RW-001", "Marie", "Uwase", "mother", "0788000001"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM emergency_contacts")).
		WithArgs("RW-001").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "first_name", "last_name", "relationship", "contact"}))

	detail, err := repo.FindByID(context.Background(), "RW-001")
	require.NoError(t, err)
	require.Len(t, detail.Guardians, 1)
	require.NotNil(t, detail.EmergencyContacts)
	require.Empty(t, detail.EmergencyContacts)
	require.NoError(t, mock.ExpectationsWereMet())
}
