package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"alpha/internal/domain/preferences"
	"alpha/pkg/errors"
)

// Compile-time check
var _ preferences.Repository = (*PreferencesRepository)(nil)

// PreferencesRepository implements preferences.Repository using sqlx
type PreferencesRepository struct {
	db DBTX
}

// NewPreferencesRepository creates a new user preferences repository
func NewPreferencesRepository(db DBTX) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// GetByUser retrieves the per-user settings singleton
func (r *PreferencesRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*preferences.Preferences, error) {
	var prefs preferences.Preferences

	query := `SELECT * FROM user_preferences WHERE user_id = $1`

	err := r.db.GetContext(ctx, &prefs, query, userID)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &prefs, nil
}

// Upsert inserts or updates the settings row keyed by user_id
func (r *PreferencesRepository) Upsert(ctx context.Context, p *preferences.Preferences) error {
	query := `
		INSERT INTO user_preferences (
			id, user_id, interests, notification_email, notification_enabled,
			summary_time, learning_time, investment_check_time,
			timezone, theme, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		ON CONFLICT (user_id) DO UPDATE SET
			interests = EXCLUDED.interests,
			notification_email = EXCLUDED.notification_email,
			notification_enabled = EXCLUDED.notification_enabled,
			summary_time = EXCLUDED.summary_time,
			learning_time = EXCLUDED.learning_time,
			investment_check_time = EXCLUDED.investment_check_time,
			timezone = EXCLUDED.timezone,
			theme = EXCLUDED.theme,
			updated_at = EXCLUDED.updated_at`

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Interests, p.NotificationEmail, p.NotificationEnabled,
		p.SummaryTime, p.LearningTime, p.InvestmentCheckTime,
		p.Timezone, p.Theme, p.CreatedAt, p.UpdatedAt,
	)

	return err
}
