package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"alpha/internal/domain/message"
	"alpha/pkg/errors"
)

// Compile-time check
var _ message.Repository = (*MessageRepository)(nil)

// MessageRepository implements message.Repository using sqlx
type MessageRepository struct {
	db DBTX
}

// NewMessageRepository creates a new system message repository
func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new system message
func (r *MessageRepository) Create(ctx context.Context, m *message.SystemMessage) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO system_messages (
			id, user_id, message_type, title, content, metadata,
			is_read, read_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.UserID, m.Type, m.Title, m.Content, m.Metadata,
		m.IsRead, m.ReadAt, m.CreatedAt,
	)

	return err
}

// ListUnread retrieves unread messages, newest first
func (r *MessageRepository) ListUnread(ctx context.Context, userID uuid.UUID) ([]message.SystemMessage, error) {
	var messages []message.SystemMessage

	query := `
		SELECT * FROM system_messages
		WHERE user_id = $1 AND NOT is_read
		ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &messages, query, userID); err != nil {
		return nil, err
	}

	return messages, nil
}

// MarkRead flips the read flag
func (r *MessageRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE system_messages
		SET is_read = TRUE, read_at = $2
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.ErrNotFound
	}

	return nil
}
