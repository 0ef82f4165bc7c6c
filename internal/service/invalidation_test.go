package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/urugendo/student-performance-api/internal/models"
)

type recordingInvalidator struct {
	calls int
}

func (r *recordingInvalidator) InvalidateCache(ctx context.Context) {
	r.calls++
}

func TestAssessmentWritesDropAggregates(t *testing.T) {
	repo := &mockAssessmentRepo{students: map[string]bool{"RW-001": true}}
	inv := &recordingInvalidator{}
	svc := NewAssessmentService(repo, validator.New(), zap.NewNop()).WithAggregateInvalidation(inv)

	assessment, err := svc.Create(context.Background(), CreateAssessmentRequest{
		StudentID:      "RW-001",
		Subject:        "Mathematics",
		AssessmentType: "quiz",
		Score:          80,
		MaxScore:       100,
		Date:           "2026-03-02",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inv.calls)

	err = svc.Delete(context.Background(), assessment.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, inv.calls)
}

func TestAssessmentRejectedWriteKeepsAggregates(t *testing.T) {
	repo := &mockAssessmentRepo{students: map[string]bool{"RW-001": true}}
	inv := &recordingInvalidator{}
	svc := NewAssessmentService(repo, validator.New(), zap.NewNop()).WithAggregateInvalidation(inv)

	_, err := svc.Create(context.Background(), CreateAssessmentRequest{
		StudentID:      "RW-001",
		Subject:        "Mathematics",
		AssessmentType: "quiz",
		Score:          110,
		MaxScore:       100,
		Date:           "2026-03-02",
	})
	require.Error(t, err)
	assert.Zero(t, inv.calls)
}

func TestAttendanceWritesDropAggregates(t *testing.T) {
	repo := &mockAttendanceRepo{students: map[string]bool{"RW-001": true}}
	inv := &recordingInvalidator{}
	svc := NewAttendanceService(repo, validator.New(), zap.NewNop()).WithAggregateInvalidation(inv)

	_, err := svc.Log(context.Background(), LogAttendanceRequest{
		StudentID: "RW-001",
		ClassID:   "P1",
		Date:      "2026-03-02",
		Status:    models.AttendanceStatusPresent,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inv.calls)
}

func TestAttendanceConfirmDropsAggregatesOnce(t *testing.T) {
	repo := &mockAttendanceRepo{records: map[string]models.Attendance{
		"a1": {ID: "a1", Status: models.AttendanceStatusPresent},
	}}
	inv := &recordingInvalidator{}
	svc := NewAttendanceService(repo, validator.New(), zap.NewNop()).WithAggregateInvalidation(inv)

	_, err := svc.Confirm(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, 1, inv.calls)

	// Re-confirming changes nothing, so the cache stays put.
	_, err = svc.Confirm(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, 1, inv.calls)
}

func TestStudentWritesDropAggregates(t *testing.T) {
	repo := &mockStudentRepo{}
	inv := &recordingInvalidator{}
	svc := NewStudentService(repo, validator.New(), zap.NewNop()).WithAggregateInvalidation(inv)

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		FullName: "Aline Uwase",
		ClassID:  "P1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inv.calls)

	err = svc.Delete(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, inv.calls)
}
