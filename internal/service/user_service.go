package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"math/big"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/urugendo/student-performance-api/internal/models"
	appErrors "github.com/urugendo/student-performance-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	CreateTeacher(ctx context.Context, user *models.User, profile *models.TeacherProfile) error
	CreateParent(ctx context.Context, user *models.User, profile *models.ParentProfile) error
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// CreateTeacherRequest provisions a teacher account with a generated password.
type CreateTeacherRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"omitempty,email"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
}

// CreateParentRequest provisions a parent account with a generated password.
type CreateParentRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"omitempty,email"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// UpdateUserRequest is the partial account update payload.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
}

// ProvisionedUser pairs the created account with its generated password.
// The plain password is returned exactly once and never stored.
type ProvisionedUser struct {
	User     models.UserInfo `json:"user"`
	Password string          `json:"password"`
}

// UserService handles admin-side account management.
type UserService struct {
	repo           userRepository
	validator      *validator.Validate
	logger         *zap.Logger
	passwordLength int
}

// NewUserService constructs the user service.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger, passwordLength int) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if passwordLength < 8 {
		passwordLength = 12
	}
	return &UserService{repo: repo, validator: validate, logger: logger, passwordLength: passwordLength}
}

// List returns accounts and pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	return users, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one account.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// CreateTeacher provisions a teacher account together with its profile.
func (s *UserService) CreateTeacher(ctx context.Context, req CreateTeacherRequest) (*ProvisionedUser, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	if err := s.ensureAvailable(ctx, req.Username, req.Email); err != nil {
		return nil, err
	}

	password, hash, err := s.issuePassword()
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: req.Username, Email: req.Email, PasswordHash: hash, Role: models.RoleTeacher}
	profile := &models.TeacherProfile{FullName: req.FullName, Email: req.Email, Phone: req.Phone}
	if err := s.repo.CreateTeacher(ctx, user, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher account")
	}

	s.logger.Info("teacher account provisioned", zap.String("user_id", user.ID))
	return &ProvisionedUser{
		User:     models.UserInfo{ID: user.ID, Username: user.Username, Email: user.Email, Role: user.Role},
		Password: password,
	}, nil
}

// CreateParent provisions a parent account together with its profile.
func (s *UserService) CreateParent(ctx context.Context, req CreateParentRequest) (*ProvisionedUser, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid parent payload")
	}
	if err := s.ensureAvailable(ctx, req.Username, req.Email); err != nil {
		return nil, err
	}

	password, hash, err := s.issuePassword()
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: req.Username, Email: req.Email, PasswordHash: hash, Role: models.RoleParent}
	profile := &models.ParentProfile{FullName: req.FullName, Phone: req.Phone, Address: req.Address}
	if err := s.repo.CreateParent(ctx, user, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create parent account")
	}

	s.logger.Info("parent account provisioned", zap.String("user_id", user.ID))
	return &ProvisionedUser{
		User:     models.UserInfo{ID: user.ID, Username: user.Username, Email: user.Email, Role: user.Role},
		Password: password,
	}, nil
}

// Update applies the fields present in the payload.
func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if req.Username != nil && *req.Username != user.Username {
		taken, err := s.repo.ExistsByUsername(ctx, *req.Username, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
		}
		user.Username = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		if *req.Email != "" {
			taken, err := s.repo.ExistsByEmail(ctx, *req.Email, id)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
			}
			if taken {
				return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
			}
		}
		user.Email = *req.Email
	}
	if req.Role != nil {
		role := models.UserRole(*req.Role)
		if !role.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "role must be admin, teacher or parent")
		}
		user.Role = role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	return user, nil
}

// ResetPassword issues a fresh generated password for the account.
func (s *UserService) ResetPassword(ctx context.Context, id string) (*ProvisionedUser, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	password, hash, err := s.issuePassword()
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset password")
	}

	s.logger.Info("password reset", zap.String("user_id", id))
	return &ProvisionedUser{
		User:     models.UserInfo{ID: user.ID, Username: user.Username, Email: user.Email, Role: user.Role},
		Password: password,
	}, nil
}

// Delete removes an account. Accounts cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, id, actorID string) error {
	if id == actorID {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot delete your own account")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	return nil
}

func (s *UserService) ensureAvailable(ctx context.Context, username, email string) error {
	taken, err := s.repo.ExistsByUsername(ctx, username, "")
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	if taken {
		return appErrors.Clone(appErrors.ErrConflict, "username already taken")
	}
	if email != "" {
		taken, err = s.repo.ExistsByEmail(ctx, email, "")
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
		}
		if taken {
			return appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
	}
	return nil
}

func (s *UserService) issuePassword() (password, hash string, err error) {
	password, err = GeneratePassword(s.passwordLength)
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate password")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	return password, string(hashed), nil
}

const (
	passwordUpper   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	passwordLower   = "abcdefghijkmnpqrstuvwxyz"
	passwordDigits  = "23456789"
	passwordSymbols = "!@#$%&*+-?"
)

// GeneratePassword builds a random password of the given length containing
// at least one uppercase letter, one lowercase letter, one digit and one
// symbol. Length is clamped to a minimum of 8.
func GeneratePassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}
	classes := []string{passwordUpper, passwordLower, passwordDigits, passwordSymbols}
	all := passwordUpper + passwordLower + passwordDigits + passwordSymbols

	chars := make([]byte, 0, length)
	for _, class := range classes {
		c, err := randomChar(class)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}
	for len(chars) < length {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	// Fisher-Yates so the guaranteed characters are not always leading.
	for i := len(chars) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		j := int(n.Int64())
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars), nil
}

func randomChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[n.Int64()], nil
}
