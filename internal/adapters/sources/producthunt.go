package sources

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"alpha/pkg/errors"
	"alpha/pkg/logger"
)

// ProductHuntClient fetches recent launches from the Product Hunt API.
// The API requires a bearer token; callers check Configured before use.
type ProductHuntClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

// NewProductHuntClient creates a Product Hunt source client
func NewProductHuntClient(baseURL, token string, httpClient *http.Client) *ProductHuntClient {
	return &ProductHuntClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
		log:        logger.Get().With("component", "producthunt_client"),
	}
}

// Configured reports whether an API token is present
func (c *ProductHuntClient) Configured() bool {
	return c.token != ""
}

type phPost struct {
	Name      string `json:"name"`
	Tagline   string `json:"tagline"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
	Thumbnail struct {
		ImageURL string `json:"image_url"`
	} `json:"thumbnail"`
}

type phResponse struct {
	Data []phPost `json:"data"`
}

// FetchPosts returns the current post listing
func (c *ProductHuntClient) FetchPosts(ctx context.Context) ([]Item, error) {
	if !c.Configured() {
		return nil, errors.Wrap(errors.ErrNotConfigured, "product hunt API key missing")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/posts", nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch product hunt posts")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Wrapf(errors.ErrExternal, "product hunt returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload phResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decode product hunt response")
	}

	items := make([]Item, 0, len(payload.Data))
	for _, post := range payload.Data {
		item := Item{
			Title:       post.Name,
			Description: post.Tagline,
			URL:         post.URL,
			ImageURL:    post.Thumbnail.ImageURL,
			Source:      "ProductHunt",
		}
		if ts, err := time.Parse(time.RFC3339, post.CreatedAt); err == nil {
			item.PublishedAt = &ts
		}
		items = append(items, item)
	}

	return items, nil
}
