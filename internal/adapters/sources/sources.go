// Package sources contains clients for the public data APIs the agents
// pull from. Each client takes an injectable base URL and HTTP client so
// tests can point them at a local server.
package sources

import "time"

// Item is one raw entry fetched from a data source, before classification
type Item struct {
	Title       string
	Description string
	URL         string
	ImageURL    string
	Source      string
	PublishedAt *time.Time
}

// Price is one symbol's market snapshot
type Price struct {
	Symbol    string
	USD       float64
	Change24h float64
	MarketCap float64
}
