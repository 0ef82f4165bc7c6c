package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/urugendo/student-performance-api/internal/models"
)

type mockAttendanceRepo struct {
	records   map[string]models.Attendance
	students  map[string]bool
	inserted  []models.Attendance
	confirmed []string
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error) {
	records := make([]models.Attendance, 0, len(m.records))
	for _, r := range m.records {
		records = append(records, r)
	}
	return records, len(records), nil
}

func (m *mockAttendanceRepo) FindByID(ctx context.Context, id string) (*models.Attendance, error) {
	if r, ok := m.records[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAttendanceRepo) Create(ctx context.Context, record *models.Attendance) error {
	if m.records == nil {
		m.records = make(map[string]models.Attendance)
	}
	if record.ID == "" {
		record.ID = "generated"
	}
	m.records[record.ID] = *record
	return nil
}

func (m *mockAttendanceRepo) BulkInsert(ctx context.Context, records []models.Attendance) error {
	m.inserted = append(m.inserted, records...)
	return nil
}

func (m *mockAttendanceRepo) Update(ctx context.Context, record *models.Attendance) error {
	m.records[record.ID] = *record
	return nil
}

func (m *mockAttendanceRepo) Delete(ctx context.Context, id string) error {
	delete(m.records, id)
	return nil
}

func (m *mockAttendanceRepo) Confirm(ctx context.Context, id string) (string, error) {
	r, ok := m.records[id]
	if !ok {
		return "", sql.ErrNoRows
	}
	previous := r.Status
	if previous != models.AttendanceStatusConfirmed {
		r.Status = models.AttendanceStatusConfirmed
		m.records[id] = r
		m.confirmed = append(m.confirmed, id)
	}
	return previous, nil
}

func (m *mockAttendanceRepo) StatusesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	statuses := make(map[string]string)
	for _, id := range ids {
		if r, ok := m.records[id]; ok {
			statuses[id] = r.Status
		}
	}
	return statuses, nil
}

func (m *mockAttendanceRepo) ConfirmMany(ctx context.Context, ids []string) error {
	for _, id := range ids {
		r := m.records[id]
		r.Status = models.AttendanceStatusConfirmed
		m.records[id] = r
		m.confirmed = append(m.confirmed, id)
	}
	return nil
}

func (m *mockAttendanceRepo) StudentExists(ctx context.Context, studentID string) (bool, error) {
	return m.students[studentID], nil
}

func TestAttendanceLog(t *testing.T) {
	repo := &mockAttendanceRepo{students: map[string]bool{"RW-001": true}}
	svc := NewAttendanceService(repo, validator.New(), zap.NewNop())

	record, err := svc.Log(context.Background(), LogAttendanceRequest{
		StudentID: "RW-001",
		ClassID:   "P1",
		Date:      "2026-03-02",
		Status:    models.AttendanceStatusPresent,
	})
	require.NoError(t, err)
	assert.Equal(t, "RW-001", record.StudentID)
	assert.Equal(t, models.AttendanceStatusPresent, record.Status)
}

func TestAttendanceLogUnknownStudent(t *testing.T) {
	repo := &mockAttendanceRepo{students: map[string]bool{}}
	svc := NewAttendanceService(repo, validator.New(), zap.NewNop())

	_, err := svc.Log(context.Background(), LogAttendanceRequest{
		StudentID: "RW-999",
		ClassID:   "P1",
		Date:      "2026-03-02",
		Status:    models.AttendanceStatusPresent,
	})
	require.Error(t, err)
}

func TestAttendanceLogBatchSkipsInvalid(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, validator.New(), zap.NewNop())

	reqs := []LogAttendanceRequest{
		{StudentID: "RW-001", ClassID: "P1", Date: "2026-03-02", Status: "present"},
		{StudentID: "RW-002", ClassID: "P1", Date: "2026-03-02", Status: "absent"},
		{StudentID: "RW-003", ClassID: "P1", Date: "2026-03-02", Status: "late"},
		{StudentID: "RW-004", ClassID: "P1", Date: "2026-03-02"},
	}
	result, err := svc.LogBatch(context.Background(), reqs)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, repo.inserted, 3)
}

func TestAttendanceConfirmIdempotent(t *testing.T) {
	repo := &mockAttendanceRepo{records: map[string]models.Attendance{
		"a1": {ID: "a1", Status: models.AttendanceStatusPresent},
	}}
	svc := NewAttendanceService(repo, validator.New(), zap.NewNop())

	first, err := svc.Confirm(context.Background(), "a1")
	require.NoError(t, err)
	assert.False(t, first.AlreadyConfirmed)

	second, err := svc.Confirm(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, second.AlreadyConfirmed)
	assert.Len(t, repo.confirmed, 1)
}

func TestAttendanceConfirmNotFound(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, validator.New(), zap.NewNop())

	_, err := svc.Confirm(context.Background(), "missing")
	require.Error(t, err)
}

func TestAttendanceConfirmBatchPartitions(t *testing.T) {
	repo := &mockAttendanceRepo{records: map[string]models.Attendance{
		"a1": {ID: "a1", Status: models.AttendanceStatusPresent},
		"a2": {ID: "a2", Status: models.AttendanceStatusConfirmed},
	}}
	svc := NewAttendanceService(repo, validator.New(), zap.NewNop())

	result, err := svc.ConfirmBatch(context.Background(), ConfirmBatchRequest{
		AttendanceIDs: []string{"a1", "a2", "missing"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Confirmed)
	assert.Equal(t, 1, result.AlreadyConfirmed)
	assert.Equal(t, []string{"missing"}, result.NotFoundIDs)
}
