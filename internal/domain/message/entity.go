package message

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type tags the kind of in-app notification
type Type string

const (
	TypeDailySummary     Type = "daily_summary"
	TypeLearningTask     Type = "learning_task"
	TypeInvestmentSignal Type = "investment_signal"
	TypeAlert            Type = "alert"
)

// SystemMessage is one user-facing in-app notification
type SystemMessage struct {
	ID        uuid.UUID       `db:"id"`
	UserID    uuid.UUID       `db:"user_id"`
	Type      Type            `db:"message_type"`
	Title     string          `db:"title"`
	Content   string          `db:"content"`
	Metadata  json.RawMessage `db:"metadata"`
	IsRead    bool            `db:"is_read"`
	ReadAt    *time.Time      `db:"read_at"`
	CreatedAt time.Time       `db:"created_at"`
}

// SetMetadata encodes an arbitrary metadata blob to JSONB
func (m *SystemMessage) SetMetadata(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.Metadata = data
	return nil
}
