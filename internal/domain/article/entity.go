package article

import (
	"time"

	"github.com/google/uuid"
)

// Category is the fixed classification enum produced by the model
type Category string

const (
	CategoryAIBreakthrough   Category = "ai_breakthrough"
	CategoryProductivityTool Category = "productivity_tool"
	CategoryInvestment       Category = "investment"
	CategoryOther            Category = "other"
)

// ParseCategory coerces arbitrary model output into the enum.
// Anything unrecognized becomes CategoryOther.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryAIBreakthrough, CategoryProductivityTool, CategoryInvestment, CategoryOther:
		return Category(s)
	default:
		return CategoryOther
	}
}

// Article is one classified item persisted by the information agent.
// Rows are created once and never updated by agents; the UI only flips
// the read/saved flags.
type Article struct {
	ID             uuid.UUID  `db:"id"`
	UserID         uuid.UUID  `db:"user_id"`
	Title          string     `db:"title"`
	Description    string     `db:"description"`
	Content        string     `db:"content"`
	URL            string     `db:"url"`
	ImageURL       string     `db:"image_url"`
	Source         string     `db:"source"`
	Category       Category   `db:"category"`
	RelevanceScore float64    `db:"relevance_score"`
	IsRead         bool       `db:"is_read"`
	IsSaved        bool       `db:"is_saved"`
	PublishedAt    *time.Time `db:"published_at"`
	CreatedAt      time.Time  `db:"created_at"`
}
