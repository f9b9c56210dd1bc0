package transcribe

import (
	"context"
	"time"

	"github.com/rhit-monroeds/youtube-transcripts/models"
)

type Service interface {
	// Transcribe converts a downloaded audio file into a transcript
	// document and returns it with the path it was written to.
	Transcribe(ctx context.Context, audioPath string) (*models.Transcript, string, error)
}

type Config struct {
	// WorkDir is where transcript documents are written.
	WorkDir string

	// FFmpegPath optionally pins the ffmpeg binary used to convert
	// formats the decoder cannot read directly.
	FFmpegPath string

	// Timeout bounds a single transcription.
	Timeout time.Duration

	// Language forces a recognition language; "auto" detects.
	Language string

	// Threads caps recognition threads; <=0 uses all CPUs.
	Threads int

	// Translate renders non-English speech as English text.
	Translate bool
}
