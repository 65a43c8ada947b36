package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"alpha/pkg/errors"
	"alpha/pkg/logger"
)

// CoinGeckoClient fetches crypto prices from the public CoinGecko API.
// Symbols are looked up by their lower-cased id.
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewCoinGeckoClient creates a CoinGecko pricing client
func NewCoinGeckoClient(baseURL string, httpClient *http.Client) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        logger.Get().With("component", "coingecko_client"),
	}
}

type cgPrice struct {
	USD          float64 `json:"usd"`
	USD24hChange float64 `json:"usd_24h_change"`
	USDMarketCap float64 `json:"usd_market_cap"`
}

// FetchPrice returns the market snapshot for one symbol.
// ErrNotFound is returned when CoinGecko does not know the id.
func (c *CoinGeckoClient) FetchPrice(ctx context.Context, symbol string) (*Price, error) {
	id := strings.ToLower(symbol)
	url := fmt.Sprintf(
		"%s/simple/price?ids=%s&vs_currencies=usd&include_24hr_change=true&include_market_cap=true",
		c.baseURL, id,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch price for %s", symbol)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrExternal, "coingecko returned status %d", resp.StatusCode)
	}

	var payload map[string]cgPrice
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decode coingecko response")
	}

	data, ok := payload[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no price data for %s", symbol)
	}

	return &Price{
		Symbol:    symbol,
		USD:       data.USD,
		Change24h: data.USD24hChange,
		MarketCap: data.USDMarketCap,
	}, nil
}
