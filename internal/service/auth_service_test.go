package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/urugendo/student-performance-api/internal/models"
)

type mockUserRepo struct {
	users     map[string]models.User
	passwords map[string]string
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := m.users[username]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error) {
	u, ok := m.users[username]
	if !ok {
		return false, nil
	}
	return excludeID == "" || u.ID != excludeID, nil
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email && (excludeID == "" || u.ID != excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = make(map[string]models.User)
	}
	if user.ID == "" {
		user.ID = "generated-" + user.Username
	}
	m.users[user.Username] = *user
	return nil
}

func (m *mockUserRepo) CreateTeacher(ctx context.Context, user *models.User, profile *models.TeacherProfile) error {
	return m.Create(ctx, user)
}

func (m *mockUserRepo) CreateParent(ctx context.Context, user *models.User, profile *models.ParentProfile) error {
	return m.Create(ctx, user)
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	for name, u := range m.users {
		if u.ID == user.ID {
			delete(m.users, name)
			break
		}
	}
	m.users[user.Username] = *user
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.passwords == nil {
		m.passwords = make(map[string]string)
	}
	m.passwords[id] = passwordHash
	for name, u := range m.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
			m.users[name] = u
		}
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	for name, u := range m.users {
		if u.ID == id {
			delete(m.users, name)
			return nil
		}
	}
	return sql.ErrNoRows
}

func seedUser(t *testing.T, repo *mockUserRepo, username, password string, role models.UserRole) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{ID: "u-" + username, Username: username, Email: username + "@school.rw", PasswordHash: string(hash), Role: role}
	if repo.users == nil {
		repo.users = make(map[string]models.User)
	}
	repo.users[username] = user
	return user
}

func newAuthService(repo *mockUserRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		Secret:             "test-secret",
		Expiration:         time.Hour,
		RememberExpiration: 720 * time.Hour,
		Issuer:             "test",
	})
}

func TestAuthLogin(t *testing.T) {
	repo := &mockUserRepo{}
	seedUser(t, repo, "admin", "secret123", models.RoleAdmin)
	svc := newAuthService(repo)

	result, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, int64(3600), result.ExpiresIn)
	assert.Equal(t, models.RoleAdmin, result.User.Role)
}

func TestAuthLoginRememberExtendsExpiry(t *testing.T) {
	repo := &mockUserRepo{}
	seedUser(t, repo, "admin", "secret123", models.RoleAdmin)
	svc := newAuthService(repo)

	result, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret123", Remember: true})
	require.NoError(t, err)
	assert.Equal(t, int64((720 * time.Hour).Seconds()), result.ExpiresIn)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	repo := &mockUserRepo{}
	seedUser(t, repo, "admin", "secret123", models.RoleAdmin)
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "wrong"})
	require.Error(t, err)
}

func TestAuthLoginUnknownUser(t *testing.T) {
	svc := newAuthService(&mockUserRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "whatever"})
	require.Error(t, err)
}

func TestAuthTokenRoundTrip(t *testing.T) {
	repo := &mockUserRepo{}
	user := seedUser(t, repo, "teacher1", "secret123", models.RoleTeacher)
	svc := newAuthService(repo)

	result, err := svc.Login(context.Background(), models.LoginRequest{Username: "teacher1", Password: "secret123"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestAuthValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(&mockUserRepo{})

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
}

func TestAuthSignupDuplicateUsername(t *testing.T) {
	repo := &mockUserRepo{}
	seedUser(t, repo, "admin", "secret123", models.RoleAdmin)
	svc := newAuthService(repo)

	_, err := svc.Signup(context.Background(), models.SignupRequest{Username: "admin", Password: "password1", Role: "teacher"})
	require.Error(t, err)
}

func TestAuthSignupInvalidRole(t *testing.T) {
	svc := newAuthService(&mockUserRepo{})

	_, err := svc.Signup(context.Background(), models.SignupRequest{Username: "newuser", Password: "password1", Role: "superuser"})
	require.Error(t, err)
}

func TestAuthChangePassword(t *testing.T) {
	repo := &mockUserRepo{}
	user := seedUser(t, repo, "parent1", "oldpassword", models.RoleParent)
	svc := newAuthService(repo)

	err := svc.ChangePassword(context.Background(), user.ID, "oldpassword", "newpassword")
	require.NoError(t, err)
	assert.NotEmpty(t, repo.passwords[user.ID])

	err = svc.ChangePassword(context.Background(), user.ID, "oldpassword", "another123")
	require.Error(t, err)
}
