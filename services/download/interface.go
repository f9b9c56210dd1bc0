package download

import (
	"context"
	"time"

	"github.com/rhit-monroeds/youtube-transcripts/models"
)

type Service interface {
	// Download fetches the audio for a YouTube URL, writes its metadata
	// sidecar, and records the outcome.
	Download(ctx context.Context, url string) (*models.Video, error)
}

type Config struct {
	// WorkDir is where audio files and metadata sidecars land.
	WorkDir string

	// Timeout bounds a single download including retries.
	Timeout time.Duration

	// Force re-downloads audio even when a completed record exists.
	Force bool

	// StaleAge is how long a processing record may sit before it is
	// considered abandoned and retried.
	StaleAge time.Duration
}
