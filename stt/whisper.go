package stt

import (
	"context"
	"io"
	"runtime"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rhit-monroeds/youtube-transcripts/audioconv"
)

// Whisper transcribes through the whisper.cpp Go bindings. The model
// is loaded once and reused across calls.
type Whisper struct {
	model  whisper.Model
	logger *logrus.Logger
}

func NewWhisper(modelPath string) (*Whisper, error) {
	if modelPath == "" {
		return nil, errors.New("whisper model path is empty")
	}
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load whisper model %s", modelPath)
	}
	return &Whisper{
		model:  model,
		logger: logrus.StandardLogger(),
	}, nil
}

func (w *Whisper) Close() error {
	if w.model == nil {
		return nil
	}
	return w.model.Close()
}

func (w *Whisper) Transcribe(ctx context.Context, audioPath string, opts Options) (Result, error) {
	if w.model == nil {
		return Result{}, errors.New("whisper model not loaded")
	}

	samples, err := audioconv.DecodeFile(audioPath)
	if err != nil {
		return Result{}, errors.Wrap(err, "failed to decode audio")
	}
	if len(samples) == 0 {
		return Result{}, errors.New("no audio samples decoded")
	}

	w.logger.WithFields(logrus.Fields{
		"file":    audioPath,
		"seconds": float64(len(samples)) / float64(audioconv.SampleRate),
	}).Info("Starting transcription")

	wctx, err := w.model.NewContext()
	if err != nil {
		return Result{}, errors.Wrap(err, "failed to create whisper context")
	}

	language := opts.Language
	if language == "" {
		language = "auto"
	}
	if err := wctx.SetLanguage(language); err != nil {
		return Result{}, errors.Wrapf(err, "failed to set language %q", language)
	}
	wctx.SetTranslate(opts.Translate)

	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	wctx.SetThreads(uint(threads))

	if opts.BeamSize > 0 {
		wctx.SetBeamSize(opts.BeamSize)
	}
	if opts.InitialPrompt != "" {
		wctx.SetInitialPrompt(opts.InitialPrompt)
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return Result{}, errors.Wrap(err, "whisper processing failed")
	}

	var (
		segments []Segment
		fullText string
	)
	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, errors.Wrap(err, "failed to read segment")
		}
		segments = append(segments, Segment{
			Text:     seg.Text,
			StartSec: seg.Start.Seconds(),
			EndSec:   seg.End.Seconds(),
		})
		if fullText == "" {
			fullText = seg.Text
		} else {
			fullText += " " + seg.Text
		}
	}

	detected := wctx.DetectedLanguage()
	if detected == "" {
		detected = wctx.Language()
	}

	w.logger.WithFields(logrus.Fields{
		"file":     audioPath,
		"segments": len(segments),
		"language": detected,
	}).Info("Transcription completed")

	return Result{
		Text:     fullText,
		Segments: segments,
		Language: detected,
	}, nil
}
