package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"restaurant_pos_backend/internal/models"

	"github.com/lib/pq"
)

// AuthRepository defines the interface for authentication-related database
// operations.
type AuthRepository interface {
	CreateUser(executor SQLExecutor, user *models.User, hashedPassword string) (int64, error)
	FindUserByUsername(username string) (*models.User, string, error) // Returns User, HashedPassword, Error
	FindUserByID(userID int64) (*models.User, error)
	FindRoleIDByName(name string) (int64, error)
}

type authRepository struct {
	db *sql.DB
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

// CreateUser inserts a new user. IsActive defaults to true.
func (r *authRepository) CreateUser(executor SQLExecutor, user *models.User, hashedPassword string) (int64, error) {
	query := `INSERT INTO users (username, password_hash, email, full_name, role_id, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	currentTime := time.Now()

	var roleID sql.NullInt64
	if user.RoleID != nil {
		roleID = sql.NullInt64{Int64: *user.RoleID, Valid: true}
	}

	var userID int64
	err := executor.QueryRow(
		query,
		user.Username,
		hashedPassword,
		user.Email,
		user.FullName,
		roleID,
		true,
		currentTime,
		currentTime,
	).Scan(&userID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return userID, nil
}

// FindUserByUsername retrieves a user by username along with their hashed
// password and role name.
func (r *authRepository) FindUserByUsername(username string) (*models.User, string, error) {
	user := &models.User{}
	var hashedPassword string
	query := `
		SELECT u.id, u.username, u.password_hash, u.email, u.full_name, u.role_id, u.is_active, u.created_at, u.updated_at,
		       COALESCE(ro.name, '') as role_name
		FROM users u
		LEFT JOIN roles ro ON u.role_id = ro.id
		WHERE u.username = $1`

	var roleName sql.NullString
	var roleID sql.NullInt64

	err := r.db.QueryRow(query, username).Scan(
		&user.ID, &user.Username, &hashedPassword, &user.Email, &user.FullName,
		&roleID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
		&roleName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: finding user by username %s: %v", ErrDatabaseError, username, err)
	}

	if roleID.Valid {
		user.RoleID = &roleID.Int64
		if roleName.Valid {
			user.Role = &models.Role{ID: *user.RoleID, Name: roleName.String}
		}
	}
	return user, hashedPassword, nil
}

// FindUserByID retrieves a user by their ID. The password hash is never
// populated on the returned model.
func (r *authRepository) FindUserByID(userID int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT u.id, u.username, u.email, u.full_name, u.role_id, u.is_active, u.created_at, u.updated_at,
		       COALESCE(ro.name, '') as role_name
		FROM users u
		LEFT JOIN roles ro ON u.role_id = ro.id
		WHERE u.id = $1`

	var roleName sql.NullString
	var roleID sql.NullInt64

	err := r.db.QueryRow(query, userID).Scan(
		&user.ID, &user.Username, &user.Email, &user.FullName,
		&roleID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
		&roleName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by ID %d: %v", ErrDatabaseError, userID, err)
	}

	if roleID.Valid {
		user.RoleID = &roleID.Int64
		if roleName.Valid {
			user.Role = &models.Role{ID: *user.RoleID, Name: roleName.String}
		}
	}
	return user, nil
}

// FindRoleIDByName resolves a role name to its ID, case-insensitively.
func (r *authRepository) FindRoleIDByName(name string) (int64, error) {
	var roleID int64
	err := r.db.QueryRow(`SELECT id FROM roles WHERE LOWER(name) = LOWER($1)`, name).Scan(&roleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: finding role %s: %v", ErrDatabaseError, name, err)
	}
	return roleID, nil
}
