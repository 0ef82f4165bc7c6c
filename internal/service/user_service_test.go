package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urugendo/student-performance-api/internal/models"
)

func TestGeneratePassword(t *testing.T) {
	password, err := GeneratePassword(12)
	require.NoError(t, err)
	assert.Len(t, password, 12)
	assert.True(t, strings.ContainsAny(password, passwordUpper), "missing uppercase: %s", password)
	assert.True(t, strings.ContainsAny(password, passwordLower), "missing lowercase: %s", password)
	assert.True(t, strings.ContainsAny(password, passwordDigits), "missing digit: %s", password)
	assert.True(t, strings.ContainsAny(password, passwordSymbols), "missing symbol: %s", password)
}

func TestGeneratePasswordClampsLength(t *testing.T) {
	password, err := GeneratePassword(3)
	require.NoError(t, err)
	assert.Len(t, password, 8)
}

func TestUserCreateTeacherReturnsPasswordOnce(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo, nil, nil, 12)

	result, err := svc.CreateTeacher(context.Background(), CreateTeacherRequest{
		Username: "mukamana",
		Email:    "mukamana@school.rw",
		FullName: "Claire Mukamana",
	})
	require.NoError(t, err)
	assert.Len(t, result.Password, 12)
	assert.Equal(t, models.RoleTeacher, result.User.Role)

	stored, ok := repo.users["mukamana"]
	require.True(t, ok)
	assert.NotEqual(t, result.Password, stored.PasswordHash)
	assert.NotContains(t, stored.PasswordHash, result.Password)
}

func TestUserCreateParentDuplicateUsername(t *testing.T) {
	repo := &mockUserRepo{}
	seedUser(t, repo, "parent1", "secret123", models.RoleParent)
	svc := NewUserService(repo, nil, nil, 12)

	_, err := svc.CreateParent(context.Background(), CreateParentRequest{
		Username: "parent1",
		FullName: "Jean Bosco",
	})
	require.Error(t, err)
}

func TestUserResetPassword(t *testing.T) {
	repo := &mockUserRepo{}
	user := seedUser(t, repo, "teacher1", "secret123", models.RoleTeacher)
	svc := NewUserService(repo, nil, nil, 12)

	result, err := svc.ResetPassword(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, result.Password, 12)
	assert.NotEmpty(t, repo.passwords[user.ID])
	assert.NotEqual(t, user.PasswordHash, repo.passwords[user.ID])
}

func TestUserDeleteSelfForbidden(t *testing.T) {
	repo := &mockUserRepo{}
	user := seedUser(t, repo, "admin", "secret123", models.RoleAdmin)
	svc := NewUserService(repo, nil, nil, 12)

	err := svc.Delete(context.Background(), user.ID, user.ID)
	require.Error(t, err)
	_, stillThere := repo.users["admin"]
	assert.True(t, stillThere)
}

func TestUserDelete(t *testing.T) {
	repo := &mockUserRepo{}
	user := seedUser(t, repo, "teacher1", "secret123", models.RoleTeacher)
	admin := seedUser(t, repo, "admin", "secret123", models.RoleAdmin)
	svc := NewUserService(repo, nil, nil, 12)

	err := svc.Delete(context.Background(), user.ID, admin.ID)
	require.NoError(t, err)
	_, stillPresent := repo.users["teacher1"]
	assert.False(t, stillPresent)
}

func TestUserUpdateRole(t *testing.T) {
	repo := &mockUserRepo{}
	user := seedUser(t, repo, "teacher1", "secret123", models.RoleTeacher)
	svc := NewUserService(repo, nil, nil, 12)

	role := "admin"
	updated, err := svc.Update(context.Background(), user.ID, UpdateUserRequest{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	bad := "superuser"
	_, err = svc.Update(context.Background(), user.ID, UpdateUserRequest{Role: &bad})
	require.Error(t, err)
}
