package learning

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Category is one of the three rotating learning tracks
type Category string

const (
	CategoryWeb3         Category = "web3"
	CategoryUSStocks     Category = "us_stocks"
	CategoryQuantitative Category = "quantitative"
)

var rotation = []Category{CategoryWeb3, CategoryUSStocks, CategoryQuantitative}

// CategoryForDay selects the track for a day of week (Sunday=0).
// The rotation is a pure function: web3, us_stocks, quantitative, web3, ...
func CategoryForDay(dayOfWeek int) Category {
	return rotation[((dayOfWeek%3)+3)%3]
}

// Resource is one recommended reading/watching item inside a lesson
type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"` // article|video|course
}

// Content is one generated lesson, at most one per (user, date)
type Content struct {
	ID          uuid.UUID       `db:"id"`
	UserID      uuid.UUID       `db:"user_id"`
	Date        string          `db:"date"`
	Topic       string          `db:"topic"`
	Category    Category        `db:"category"`
	Explanation string          `db:"explanation"`
	CaseStudy   string          `db:"case_study"`
	KeyPoints   json.RawMessage `db:"key_points"`
	Resources   json.RawMessage `db:"resources"`
	NextTopic   string          `db:"next_topic"`
	IsCompleted bool            `db:"is_completed"`
	CompletedAt *time.Time      `db:"completed_at"`
	CreatedAt   time.Time       `db:"created_at"`
}

// GetKeyPoints parses the JSONB key point list
func (c *Content) GetKeyPoints() ([]string, error) {
	var points []string
	if len(c.KeyPoints) == 0 {
		return points, nil
	}
	if err := json.Unmarshal(c.KeyPoints, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// SetKeyPoints encodes the key point list to JSONB
func (c *Content) SetKeyPoints(points []string) error {
	data, err := json.Marshal(points)
	if err != nil {
		return err
	}
	c.KeyPoints = data
	return nil
}

// GetResources parses the JSONB resource list
func (c *Content) GetResources() ([]Resource, error) {
	var resources []Resource
	if len(c.Resources) == 0 {
		return resources, nil
	}
	if err := json.Unmarshal(c.Resources, &resources); err != nil {
		return nil, err
	}
	return resources, nil
}

// SetResources encodes the resource list to JSONB
func (c *Content) SetResources(resources []Resource) error {
	data, err := json.Marshal(resources)
	if err != nil {
		return err
	}
	c.Resources = data
	return nil
}
