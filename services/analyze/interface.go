package analyze

import (
	"context"

	"github.com/rhit-monroeds/youtube-transcripts/models"
)

// Client is the completion API the analyzer talks to. *openrouter.Client
// satisfies it.
type Client interface {
	Complete(ctx context.Context, instructions, text string, maxTokens int, cacheKey string) (string, error)
}

type Service interface {
	// AnalyzeDirectory analyzes every transcript document in dir and,
	// when outputFile is non-empty, writes the combined results there.
	AnalyzeDirectory(ctx context.Context, dir, outputFile string) ([]models.FileAnalysis, error)

	// AnalyzeFile analyzes a single transcript document.
	AnalyzeFile(ctx context.Context, path string) (*models.Analysis, error)
}

type Config struct {
	// ChunkSize is the maximum chunk length in bytes sent per request.
	ChunkSize int

	// ChunkOverlap is how far consecutive chunks overlap.
	ChunkOverlap int

	// MaxConcurrency caps how many transcript files are analyzed at
	// once. Chunks within a file always run concurrently.
	MaxConcurrency int
}
