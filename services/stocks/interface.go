package stocks

import "context"

type Service interface {
	// Extract reads a batch analysis file, pulls per-stock opinions out
	// of its chunk analyses, and writes the JSON and text reports.
	Extract(ctx context.Context, inputPath, jsonPath, textPath string) ([]Stock, error)
}

// Opinion is one deduplicated statement about a stock.
type Opinion struct {
	Text  string `json:"text"`
	Chunk int    `json:"chunk"`
}

// Stock groups the opinions found for one company, keyed by ticker when
// one was detected.
type Stock struct {
	Name     string    `json:"name"`
	Ticker   string    `json:"ticker"`
	Opinions []Opinion `json:"opinions"`
}
