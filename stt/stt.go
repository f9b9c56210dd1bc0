// Package stt turns downloaded audio into timed text segments with
// whisper.cpp, either in-process through the Go bindings or by running
// an external whisper binary.
package stt

import "context"

type Options struct {
	Language      string // "auto" or an ISO language code
	Translate     bool   // translate non-English speech to English
	Threads       int    // <=0 uses all CPUs
	BeamSize      int    // 0 = greedy decoding
	InitialPrompt string
}

type Segment struct {
	Text     string
	StartSec float64
	EndSec   float64
}

type Result struct {
	Text     string
	Segments []Segment
	Language string // detected or forced
}

// Engine converts an audio file into a transcription result.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string, opts Options) (Result, error)
	Close() error
}

type Config struct {
	ModelPath string
	BinPath   string
}

// NewEngine selects the external whisper binary when one is configured
// and the in-process bindings otherwise.
func NewEngine(config Config) (Engine, error) {
	if config.BinPath != "" {
		return NewCLI(config.BinPath, config.ModelPath), nil
	}
	return NewWhisper(config.ModelPath)
}
