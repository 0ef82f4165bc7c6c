package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/urugendo/student-performance-api/internal/models"
)

type mockStudentRepo struct {
	students  map[string]models.Student
	guardians map[string][]models.Guardian
	contacts  map[string][]models.EmergencyContact
	deleted   []string
	nextNum   int
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentSummary, int, error) {
	summaries := make([]models.StudentSummary, 0, len(m.students))
	for _, s := range m.students {
		summaries = append(summaries, models.StudentSummary{ID: s.ID, FullName: s.FullName, ClassID: s.ClassID})
	}
	return summaries, len(summaries), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.StudentDetail{
		Student:           s,
		Guardians:         m.guardians[id],
		EmergencyContacts: m.contacts[id],
	}, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student, guardians []models.Guardian, contacts []models.EmergencyContact) error {
	if m.students == nil {
		m.students = make(map[string]models.Student)
		m.guardians = make(map[string][]models.Guardian)
		m.contacts = make(map[string][]models.EmergencyContact)
	}
	m.nextNum++
	student.ID = fmt.Sprintf("%s%03d", models.StudentIDPrefix, m.nextNum)
	m.students[student.ID] = *student
	m.guardians[student.ID] = guardians
	m.contacts[student.ID] = contacts
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	delete(m.students, id)
	delete(m.guardians, id)
	delete(m.contacts, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func TestStudentCreateWithContacts(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		FullName: "Aline Uwase",
		Gender:   "F",
		ClassID:  "P1",
		Guardians: []ContactRequest{
			{FirstName: "Jean", LastName: "Uwase", Relationship: "father", Contact: "078"},
		},
		EmergencyContacts: []ContactRequest{
			{FirstName: "Claudine", Relationship: "aunt", Contact: "072"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "RW-001", student.ID)
	assert.Len(t, repo.guardians[student.ID], 1)
	assert.Len(t, repo.contacts[student.ID], 1)
}

func TestStudentCreateSequentialIDs(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	first, err := svc.Create(context.Background(), CreateStudentRequest{FullName: "A", ClassID: "P1"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), CreateStudentRequest{FullName: "B", ClassID: "P1"})
	require.NoError(t, err)
	assert.Equal(t, "RW-001", first.ID)
	assert.Equal(t, "RW-002", second.ID)
}

func TestStudentCreateMissingClass(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{FullName: "No Class"})
	require.Error(t, err)
}

func TestStudentUpdatePartial(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"RW-001": {ID: "RW-001", FullName: "Old Name", Gender: "M", ClassID: "P1"},
	}}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	name := "New Name"
	updated, err := svc.Update(context.Background(), "RW-001", UpdateStudentRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.FullName)
	assert.Equal(t, "M", updated.Gender)
	assert.Equal(t, "P1", updated.ClassID)
}

func TestStudentDeleteNotFound(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "RW-404")
	require.Error(t, err)
}
