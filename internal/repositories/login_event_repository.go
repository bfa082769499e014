package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wanderhub/auth-service/internal/models"
)

// loginEventRepository provides access to the login_events table
type loginEventRepository struct {
	db *sql.DB
}

// NewLoginEventRepository creates a new login event repository
func NewLoginEventRepository(db *sql.DB) *loginEventRepository {
	return &loginEventRepository{db: db}
}

// Create records an authentication event
func (r *loginEventRepository) Create(ctx context.Context, event *models.LoginEvent) error {
	query := `
		INSERT INTO login_events (user_id, action)
		VALUES (?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, event.UserID, event.Action)
	if err != nil {
		return fmt.Errorf("failed to create login event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	event.ID = int(id)
	return nil
}

// GetByUserID retrieves the most recent events for a user, newest first
func (r *loginEventRepository) GetByUserID(ctx context.Context, userID int, limit int) ([]*models.LoginEvent, error) {
	query := `
		SELECT id, user_id, action, created_at
		FROM login_events
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get login events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.LoginEvent, 0)
	for rows.Next() {
		event := &models.LoginEvent{}
		if err := rows.Scan(&event.ID, &event.UserID, &event.Action, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan login event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate login events: %w", err)
	}

	return events, nil
}
