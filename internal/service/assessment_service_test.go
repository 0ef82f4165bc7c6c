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

type mockAssessmentRepo struct {
	assessments map[string]models.Assessment
	students    map[string]bool
	stats       *models.AssessmentStatistics
}

func (m *mockAssessmentRepo) List(ctx context.Context, filter models.AssessmentFilter) ([]models.Assessment, int, error) {
	out := make([]models.Assessment, 0, len(m.assessments))
	for _, a := range m.assessments {
		out = append(out, a)
	}
	return out, len(out), nil
}

func (m *mockAssessmentRepo) FindByID(ctx context.Context, id string) (*models.Assessment, error) {
	if a, ok := m.assessments[id]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssessmentRepo) Create(ctx context.Context, assessment *models.Assessment) error {
	if m.assessments == nil {
		m.assessments = make(map[string]models.Assessment)
	}
	if assessment.ID == "" {
		assessment.ID = "generated"
	}
	m.assessments[assessment.ID] = *assessment
	return nil
}

func (m *mockAssessmentRepo) Update(ctx context.Context, assessment *models.Assessment) error {
	m.assessments[assessment.ID] = *assessment
	return nil
}

func (m *mockAssessmentRepo) Delete(ctx context.Context, id string) error {
	delete(m.assessments, id)
	return nil
}

func (m *mockAssessmentRepo) Statistics(ctx context.Context, filter models.AssessmentFilter) (*models.AssessmentStatistics, error) {
	return m.stats, nil
}

func (m *mockAssessmentRepo) StudentExists(ctx context.Context, studentID string) (bool, error) {
	return m.students[studentID], nil
}

func TestAssessmentCreate(t *testing.T) {
	repo := &mockAssessmentRepo{students: map[string]bool{"RW-001": true}}
	svc := NewAssessmentService(repo, validator.New(), zap.NewNop())

	assessment, err := svc.Create(context.Background(), CreateAssessmentRequest{
		StudentID:      "RW-001",
		Subject:        "Mathematics",
		AssessmentType: "quiz",
		Score:          80,
		MaxScore:       100,
		Date:           "2026-03-02",
	})
	require.NoError(t, err)
	assert.Equal(t, 80.0, assessment.Percentage())
}

func TestAssessmentCreateScoreAboveMax(t *testing.T) {
	repo := &mockAssessmentRepo{students: map[string]bool{"RW-001": true}}
	svc := NewAssessmentService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateAssessmentRequest{
		StudentID:      "RW-001",
		Subject:        "Mathematics",
		AssessmentType: "quiz",
		Score:          110,
		MaxScore:       100,
		Date:           "2026-03-02",
	})
	require.Error(t, err)
	assert.Empty(t, repo.assessments)
}

func TestAssessmentCreateUnknownStudent(t *testing.T) {
	repo := &mockAssessmentRepo{students: map[string]bool{}}
	svc := NewAssessmentService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateAssessmentRequest{
		StudentID:      "RW-404",
		Subject:        "Mathematics",
		AssessmentType: "quiz",
		Score:          50,
		MaxScore:       100,
		Date:           "2026-03-02",
	})
	require.Error(t, err)
}

func TestAssessmentUpdateRechecksBound(t *testing.T) {
	repo := &mockAssessmentRepo{assessments: map[string]models.Assessment{
		"as1": {ID: "as1", StudentID: "RW-001", Subject: "Science", Score: 40, MaxScore: 50},
	}}
	svc := NewAssessmentService(repo, validator.New(), zap.NewNop())

	score := 60.0
	_, err := svc.Update(context.Background(), "as1", UpdateAssessmentRequest{Score: &score})
	require.Error(t, err)

	maxScore := 80.0
	updated, err := svc.Update(context.Background(), "as1", UpdateAssessmentRequest{Score: &score, MaxScore: &maxScore})
	require.NoError(t, err)
	assert.Equal(t, 75.0, updated.Percentage())
}
