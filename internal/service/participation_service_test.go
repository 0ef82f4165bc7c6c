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

type mockParticipationRepo struct {
	entries  map[string]models.Participation
	statuses []string
}

func (m *mockParticipationRepo) List(ctx context.Context, filter models.ParticipationFilter) ([]models.Participation, int, error) {
	out := make([]models.Participation, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (m *mockParticipationRepo) FindByID(ctx context.Context, id string) (*models.Participation, error) {
	if e, ok := m.entries[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockParticipationRepo) Create(ctx context.Context, entry *models.Participation) error {
	if m.entries == nil {
		m.entries = make(map[string]models.Participation)
	}
	if entry.ID == "" {
		entry.ID = "generated"
	}
	m.entries[entry.ID] = *entry
	return nil
}

func (m *mockParticipationRepo) Update(ctx context.Context, entry *models.Participation) error {
	m.entries[entry.ID] = *entry
	return nil
}

func (m *mockParticipationRepo) Delete(ctx context.Context, id string) error {
	delete(m.entries, id)
	return nil
}

func (m *mockParticipationRepo) StatusesByStudent(ctx context.Context, studentID string) ([]string, error) {
	return m.statuses, nil
}

func TestParticipationSummaryIgnoresUnknownStatuses(t *testing.T) {
	repo := &mockParticipationRepo{statuses: []string{"Excellent", "Good", "Unknown"}}
	svc := NewParticipationService(repo, validator.New(), zap.NewNop())

	summary, err := svc.Summary(context.Background(), "RW-001")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Entries)
	assert.Equal(t, 2, summary.Rated)
	assert.Equal(t, 4.5, summary.AverageRating)
}

func TestParticipationSummaryNoRatedEntries(t *testing.T) {
	repo := &mockParticipationRepo{statuses: []string{"Unknown", "whatever"}}
	svc := NewParticipationService(repo, validator.New(), zap.NewNop())

	summary, err := svc.Summary(context.Background(), "RW-001")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Rated)
	assert.Zero(t, summary.AverageRating)
}

func TestParticipationLogAcceptsFreeTextStatus(t *testing.T) {
	repo := &mockParticipationRepo{}
	svc := NewParticipationService(repo, validator.New(), zap.NewNop())

	entry, err := svc.Log(context.Background(), LogParticipationRequest{
		StudentID: "RW-001",
		ClassID:   "P1",
		Date:      "2026-03-02",
		Status:    "enthusiastic",
	})
	require.NoError(t, err)
	assert.Equal(t, "enthusiastic", entry.Status)
}

func TestRatingForStatusCaseInsensitive(t *testing.T) {
	rating, ok := models.RatingForStatus("EXCELLENT")
	require.True(t, ok)
	assert.Equal(t, 5, rating)

	_, ok = models.RatingForStatus("mediocre")
	assert.False(t, ok)
}
