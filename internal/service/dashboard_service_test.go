package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/urugendo/student-performance-api/internal/dto"
	"github.com/urugendo/student-performance-api/internal/models"
	appErrors "github.com/urugendo/student-performance-api/pkg/errors"
)

type mockAnalyticsRepo struct {
	studentCount      int
	averageScore      float64
	present, total    int
	highPerformers    int
	averages          []models.StudentAverage
	attendanceCounts  []models.StudentAttendanceCount
	misconductCounts  []models.StudentMisconductCount
	subjectAggregates []models.SubjectAggregate
	studentAverage    float64
	studentAttendance models.StudentAttendanceCount
}

func (m *mockAnalyticsRepo) CountStudents(ctx context.Context) (int, error) {
	return m.studentCount, nil
}

func (m *mockAnalyticsRepo) AverageScore(ctx context.Context) (float64, error) {
	return m.averageScore, nil
}

func (m *mockAnalyticsRepo) AttendanceCounts(ctx context.Context) (int, int, error) {
	return m.present, m.total, nil
}

func (m *mockAnalyticsRepo) HighPerformerCount(ctx context.Context, threshold float64) (int, error) {
	return m.highPerformers, nil
}

func (m *mockAnalyticsRepo) StudentAverages(ctx context.Context) ([]models.StudentAverage, error) {
	return m.averages, nil
}

func (m *mockAnalyticsRepo) StudentAverage(ctx context.Context, studentID string) (float64, error) {
	return m.studentAverage, nil
}

func (m *mockAnalyticsRepo) StudentAttendanceCount(ctx context.Context, studentID string) (*models.StudentAttendanceCount, error) {
	c := m.studentAttendance
	c.StudentID = studentID
	return &c, nil
}

func (m *mockAnalyticsRepo) StudentAttendanceCounts(ctx context.Context) ([]models.StudentAttendanceCount, error) {
	return m.attendanceCounts, nil
}

func (m *mockAnalyticsRepo) StudentMisconductCounts(ctx context.Context) ([]models.StudentMisconductCount, error) {
	return m.misconductCounts, nil
}

func (m *mockAnalyticsRepo) SubjectAggregates(ctx context.Context) ([]models.SubjectAggregate, error) {
	return m.subjectAggregates, nil
}

type mockCache struct {
	values map[string][]byte
	sets   int
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.values == nil {
		m.values = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	m.sets++
	return nil
}

func (m *mockCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.values = nil
	return nil
}

func TestDashboardSummary(t *testing.T) {
	repo := &mockAnalyticsRepo{
		studentCount:   40,
		averageScore:   72.5,
		present:        90,
		total:          100,
		highPerformers: 6,
	}
	svc := NewDashboardService(repo, nil, DashboardConfig{}, zap.NewNop())

	summary, fromCache, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 40, summary.TotalStudents)
	assert.Equal(t, 72.5, summary.AverageScore)
	assert.Equal(t, 90.0, summary.AttendanceRate)
	assert.Equal(t, 6, summary.HighPerformers)
}

func TestDashboardSummaryCacheRoundTrip(t *testing.T) {
	repo := &mockAnalyticsRepo{studentCount: 10, present: 5, total: 10}
	cache := &mockCache{}
	svc := NewDashboardService(repo, cache, DashboardConfig{}, zap.NewNop())

	_, fromCache, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, 1, cache.sets)

	cached, fromCache, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, 10, cached.TotalStudents)

	svc.InvalidateCache(context.Background())
	_, fromCache, err = svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, fromCache)
}

func TestDashboardStudentPerformance(t *testing.T) {
	repo := &mockAnalyticsRepo{
		studentAverage:    70.0,
		studentAttendance: models.StudentAttendanceCount{Present: 8, Total: 10},
	}
	svc := NewDashboardService(repo, nil, DashboardConfig{}, zap.NewNop())

	performance, err := svc.StudentPerformance(context.Background(), "RW-001")
	require.NoError(t, err)
	assert.Equal(t, 70.0, performance.AverageScore)
	assert.Equal(t, 80.0, performance.AttendanceRate)
	assert.False(t, performance.IsHighPerformer)
}

func TestDashboardTopPerformers(t *testing.T) {
	repo := &mockAnalyticsRepo{averages: []models.StudentAverage{
		{StudentID: "RW-002", FullName: "B", AveragePercentage: 95},
		{StudentID: "RW-001", FullName: "A", AveragePercentage: 90},
		{StudentID: "RW-003", FullName: "C", AveragePercentage: 85},
	}}
	svc := NewDashboardService(repo, nil, DashboardConfig{}, zap.NewNop())

	performers, err := svc.TopPerformers(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, performers, 2)
	assert.Equal(t, 1, performers[0].Rank)
	assert.Equal(t, "RW-002", performers[0].StudentID)
	assert.Equal(t, 2, performers[1].Rank)
}

func TestDashboardAlerts(t *testing.T) {
	repo := &mockAnalyticsRepo{
		averages: []models.StudentAverage{
			{StudentID: "RW-001", FullName: "Low Score", AveragePercentage: 42},
			{StudentID: "RW-002", FullName: "Truant", AveragePercentage: 75},
			{StudentID: "RW-003", FullName: "Trouble", AveragePercentage: 88},
			{StudentID: "RW-004", FullName: "Fine", AveragePercentage: 90},
		},
		attendanceCounts: []models.StudentAttendanceCount{
			{StudentID: "RW-002", Present: 3, Total: 10},
			{StudentID: "RW-004", Present: 9, Total: 10},
		},
		misconductCounts: []models.StudentMisconductCount{
			{StudentID: "RW-003", Count: 2},
		},
	}
	svc := NewDashboardService(repo, nil, DashboardConfig{}, zap.NewNop())

	alerts, err := svc.Alerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 3)

	byID := make(map[string]dto.UnderperformanceAlert)
	for _, a := range alerts {
		byID[a.StudentID] = a
	}
	assert.Len(t, byID["RW-001"].Reasons, 1)
	assert.Equal(t, 30.0, byID["RW-002"].AttendanceRate)
	assert.Equal(t, 2, byID["RW-003"].MisconductCount)
	_, flagged := byID["RW-004"]
	assert.False(t, flagged)
}
