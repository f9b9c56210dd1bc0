package stt

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// segmentPattern matches whisper.cpp's stdout lines:
//
//	[00:00:00.000 --> 00:00:07.520]   And so, my fellow Americans...
var segmentPattern = regexp.MustCompile(`^\[(\d{2,}:\d{2}:\d{2}\.\d{3}) --> (\d{2,}:\d{2}:\d{2}\.\d{3})\]\s*(.*)$`)

// languagePattern matches the auto-detection notice whisper.cpp prints
// on stderr.
var languagePattern = regexp.MustCompile(`auto-detected language:\s*([a-z]{2,3})`)

// CLI transcribes by running an external whisper.cpp binary such as
// whisper-cli. Useful when the bindings are not compiled in or a GPU
// build is available separately.
type CLI struct {
	binPath   string
	modelPath string
	logger    *logrus.Logger

	ExecuteFunc func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)
}

func NewCLI(binPath, modelPath string) *CLI {
	return &CLI{
		binPath:   binPath,
		modelPath: modelPath,
		logger:    logrus.StandardLogger(),
		ExecuteFunc: func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
			cmd := exec.CommandContext(ctx, name, args...)
			var stdout, stderr bytes.Buffer
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr
			if err := cmd.Run(); err != nil {
				return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("whisper execution failed: %v", err)
			}
			return stdout.Bytes(), stderr.Bytes(), nil
		},
	}
}

func (c *CLI) Close() error { return nil }

func (c *CLI) Transcribe(ctx context.Context, audioPath string, opts Options) (Result, error) {
	language := opts.Language
	if language == "" {
		language = "auto"
	}

	args := []string{
		"-m", c.modelPath,
		"-f", audioPath,
		"-l", language,
	}
	if opts.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(opts.Threads))
	}
	if opts.BeamSize > 0 {
		args = append(args, "-bs", strconv.Itoa(opts.BeamSize))
	}
	if opts.Translate {
		args = append(args, "-tr")
	}
	if opts.InitialPrompt != "" {
		args = append(args, "--prompt", opts.InitialPrompt)
	}

	c.logger.WithFields(logrus.Fields{
		"bin":  c.binPath,
		"file": audioPath,
	}).Info("Starting transcription via whisper binary")

	stdout, stderr, err := c.ExecuteFunc(ctx, c.binPath, args...)
	if err != nil {
		return Result{}, errors.Wrapf(err, "stderr: %s", stderr)
	}

	segments := parseSegments(string(stdout))
	if len(segments) == 0 {
		// Some builds print plain text without timestamps.
		text := strings.TrimSpace(string(stdout))
		if text == "" {
			return Result{}, errors.New("whisper binary produced no output")
		}
		segments = []Segment{{Text: text}}
	}

	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		texts = append(texts, seg.Text)
	}

	detected := detectLanguage(string(stderr))
	if detected == "" && language != "auto" {
		detected = language
	}

	c.logger.WithFields(logrus.Fields{
		"file":     audioPath,
		"segments": len(segments),
		"language": detected,
	}).Info("Transcription completed")

	return Result{
		Text:     strings.Join(texts, " "),
		Segments: segments,
		Language: detected,
	}, nil
}

func parseSegments(output string) []Segment {
	var segments []Segment
	for _, line := range strings.Split(output, "\n") {
		matches := segmentPattern.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}
		text := strings.TrimSpace(matches[3])
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Text:     text,
			StartSec: parseClockTime(matches[1]),
			EndSec:   parseClockTime(matches[2]),
		})
	}
	return segments
}

// parseClockTime converts "01:02:03.500" to seconds.
func parseClockTime(s string) float64 {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0
	}
	hours, _ := strconv.ParseFloat(parts[0], 64)
	minutes, _ := strconv.ParseFloat(parts[1], 64)
	seconds, _ := strconv.ParseFloat(parts[2], 64)
	return hours*3600 + minutes*60 + seconds
}

func detectLanguage(stderr string) string {
	matches := languagePattern.FindStringSubmatch(stderr)
	if matches == nil {
		return ""
	}
	return matches[1]
}
