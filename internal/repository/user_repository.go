package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/urugendo/student-performance-api/internal/models"
)

// UserRepository manages persistence for accounts and their linked
// teacher/parent profiles.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, username, email, password_hash, role, created_at, updated_at"

// FindByID fetches a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user,
		fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns), id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername fetches a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user,
		fmt.Sprintf("SELECT %s FROM users WHERE username = $1", userColumns), username); err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByUsername checks username uniqueness, optionally excluding an id.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error) {
	return r.exists(ctx, "username", username, excludeID)
}

// ExistsByEmail checks email uniqueness, optionally excluding an id.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return r.exists(ctx, "email", email, excludeID)
}

func (r *UserRepository) exists(ctx context.Context, column, value, excludeID string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM users WHERE %s = $1", column)
	args := []interface{}{value}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var one int
	if err := r.db.GetContext(ctx, &one, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check user %s: %w", column, err)
	}
	return true, nil
}

// List returns users matching the filter.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, string(*filter.Role))
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(username) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	whereClause := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM users WHERE %s ORDER BY username ASC LIMIT %d OFFSET %d",
		userColumns, whereClause, size, offset)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM users WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, total, nil
}

// Create inserts a bare account row.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	prepareUser(user)
	if _, err := r.db.NamedExecContext(ctx, insertUserQuery, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

const insertUserQuery = `INSERT INTO users (id, username, email, password_hash, role, created_at, updated_at)
    VALUES (:id, :username, :email, :password_hash, :role, :created_at, :updated_at)`

func prepareUser(user *models.User) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
}

// CreateTeacher inserts the account and its teacher profile in one
// transaction.
func (r *UserRepository) CreateTeacher(ctx context.Context, user *models.User, profile *models.TeacherProfile) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create teacher: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	prepareUser(user)
	if _, err := tx.NamedExecContext(ctx, insertUserQuery, user); err != nil {
		return fmt.Errorf("create teacher user: %w", err)
	}

	profile.ID = uuid.NewString()
	profile.UserID = user.ID
	profile.CreatedAt = user.CreatedAt
	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO teachers (id, user_id, full_name, email, phone, created_at)
         VALUES (:id, :user_id, :full_name, :email, :phone, :created_at)`, profile); err != nil {
		return fmt.Errorf("create teacher profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create teacher: %w", err)
	}
	return nil
}

// CreateParent inserts the account and its parent profile in one
// transaction.
func (r *UserRepository) CreateParent(ctx context.Context, user *models.User, profile *models.ParentProfile) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create parent: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	prepareUser(user)
	if _, err := tx.NamedExecContext(ctx, insertUserQuery, user); err != nil {
		return fmt.Errorf("create parent user: %w", err)
	}

	profile.ID = uuid.NewString()
	profile.UserID = user.ID
	profile.CreatedAt = user.CreatedAt
	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO parents (id, user_id, full_name, phone, address, created_at)
         VALUES (:id, :user_id, :full_name, :phone, :address, :created_at)`, profile); err != nil {
		return fmt.Errorf("create parent profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create parent: %w", err)
	}
	return nil
}

// Update modifies username and email of an account.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET username = :username, email = :email, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1",
		id, passwordHash, time.Now().UTC()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Delete removes the account together with its profile rows.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete user: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM teachers WHERE user_id = $1", id); err != nil {
		return fmt.Errorf("delete teacher profile: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM parents WHERE user_id = $1", id); err != nil {
		return fmt.Errorf("delete parent profile: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete user: %w", err)
	}
	return nil
}
