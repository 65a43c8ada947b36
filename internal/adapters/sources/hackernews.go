package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"alpha/pkg/errors"
	"alpha/pkg/logger"
)

// HackerNewsClient fetches top stories from the public HackerNews API.
// No authentication is required.
type HackerNewsClient struct {
	baseURL    string
	topCount   int
	httpClient *http.Client
	log        *logger.Logger
}

// NewHackerNewsClient creates a HackerNews source client
func NewHackerNewsClient(baseURL string, topCount int, httpClient *http.Client) *HackerNewsClient {
	if topCount <= 0 {
		topCount = 20
	}
	return &HackerNewsClient{
		baseURL:    baseURL,
		topCount:   topCount,
		httpClient: httpClient,
		log:        logger.Get().With("component", "hackernews_client"),
	}
}

type hnStory struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Time  int64  `json:"time"`
}

// FetchTopStories returns up to topCount stories from the top-stories feed.
// A failure fetching one story detail is logged and skipped; only the
// listing call itself is fatal.
func (c *HackerNewsClient) FetchTopStories(ctx context.Context) ([]Item, error) {
	var ids []int64
	if err := c.getJSON(ctx, c.baseURL+"/topstories.json", &ids); err != nil {
		return nil, errors.Wrap(err, "fetch hackernews top stories")
	}

	if len(ids) > c.topCount {
		ids = ids[:c.topCount]
	}

	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		var story hnStory
		if err := c.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", c.baseURL, id), &story); err != nil {
			c.log.Warnw("Failed to fetch story", "id", id, "error", err)
			continue
		}

		// Ask-HN style posts have no URL and are not articles
		if story.Title == "" || story.URL == "" {
			continue
		}

		published := time.Unix(story.Time, 0)
		items = append(items, Item{
			Title:       story.Title,
			URL:         story.URL,
			Source:      "HackerNews",
			PublishedAt: &published,
		})
	}

	return items, nil
}

func (c *HackerNewsClient) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(errors.ErrExternal, "hackernews returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
