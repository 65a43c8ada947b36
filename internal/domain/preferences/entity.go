package preferences

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DefaultInterests is used when a user never configured any
var DefaultInterests = []string{"AI", "Technology", "Productivity"}

// Preferences is the per-user settings singleton. The per-agent times
// are stored for the UI but no scheduler consumes them; agents run only
// on demand.
type Preferences struct {
	ID                  uuid.UUID       `db:"id"`
	UserID              uuid.UUID       `db:"user_id"`
	Interests           json.RawMessage `db:"interests"`
	NotificationEmail   string          `db:"notification_email"`
	NotificationEnabled bool            `db:"notification_enabled"`
	SummaryTime         string          `db:"summary_time"`
	LearningTime        string          `db:"learning_time"`
	InvestmentCheckTime string          `db:"investment_check_time"`
	Timezone            string          `db:"timezone"`
	Theme               string          `db:"theme"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

// GetInterests parses the JSONB interest list, falling back to defaults
// when unset or empty
func (p *Preferences) GetInterests() []string {
	if p == nil || len(p.Interests) == 0 {
		return DefaultInterests
	}
	var interests []string
	if err := json.Unmarshal(p.Interests, &interests); err != nil || len(interests) == 0 {
		return DefaultInterests
	}
	return interests
}

// SetInterests encodes the interest list to JSONB
func (p *Preferences) SetInterests(interests []string) error {
	data, err := json.Marshal(interests)
	if err != nil {
		return err
	}
	p.Interests = data
	return nil
}
