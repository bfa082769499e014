// Package repositories provides database access for users and login events
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wanderhub/auth-service/internal/apperrors"
	"github.com/wanderhub/auth-service/internal/models"
)

// userRepository provides access to the users table
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, first_name, last_name, role)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Role)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)
	return nil
}

// ExistsByEmail checks if a user exists with the given email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM users WHERE email = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// ExistsByUsername checks if a user exists with the given username
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM users WHERE username = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

// GetByEmailWithPassword retrieves a user by email including the password
// hash. This is the only read that exposes the hash; it exists for login.
func (r *userRepository) GetByEmailWithPassword(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, first_name, last_name, role, verified, disabled, last_active, created_at
		FROM users
		WHERE email = ?
	`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.Verified,
		&user.Disabled,
		&user.LastActive,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID without the password hash
func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, username, email, first_name, last_name, role, verified, disabled, last_active, created_at
		FROM users
		WHERE id = ?
	`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.Verified,
		&user.Disabled,
		&user.LastActive,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetAll retrieves all users ordered by creation time
func (r *userRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT id, username, email, first_name, last_name, role, verified, disabled, last_active, created_at
		FROM users
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.FirstName,
			&user.LastName,
			&user.Role,
			&user.Verified,
			&user.Disabled,
			&user.LastActive,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// UpdateRefreshToken stores the user's refresh token. Each user holds a
// single slot: a new login overwrites the previous token, and passing nil
// clears the slot on logout.
//
// The MySQL driver reports rows changed, not rows matched, so a write of
// the value already stored affects 0 rows. Affected-rows cannot tell a
// missing user from a no-change write; callers that need the distinction
// look the user up separately.
func (r *userRepository) UpdateRefreshToken(ctx context.Context, userID int, refreshToken *string) error {
	query := `UPDATE users SET refresh_token = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, refreshToken, userID); err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}

	return nil
}

// GetRefreshToken retrieves the user's stored refresh token, nil if the
// slot is empty
func (r *userRepository) GetRefreshToken(ctx context.Context, userID int) (*string, error) {
	query := `SELECT refresh_token FROM users WHERE id = ?`

	var refreshToken sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&refreshToken)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if !refreshToken.Valid {
		return nil, nil
	}
	return &refreshToken.String, nil
}

// SetDisabled sets the disabled flag on a user account. Setting the flag
// a user already has is a no-change write and still succeeds.
func (r *userRepository) SetDisabled(ctx context.Context, userID int, disabled bool) error {
	query := `UPDATE users SET disabled = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, disabled, userID); err != nil {
		return fmt.Errorf("failed to update disabled flag: %w", err)
	}

	return nil
}

// UpdateRole changes a user's role
func (r *userRepository) UpdateRole(ctx context.Context, userID int, role models.Role) error {
	query := `UPDATE users SET role = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, role, userID); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	return nil
}

// TouchLastActive updates the user's last activity timestamp
func (r *userRepository) TouchLastActive(ctx context.Context, userID int) error {
	query := `UPDATE users SET last_active = NOW() WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to update last active: %w", err)
	}

	return nil
}
