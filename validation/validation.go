package validation

import (
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/rhit-monroeds/youtube-transcripts/errors"
)

// videoIDPattern matches the 11-character video ID after "v=" or the
// last path segment, covering watch, share, shorts, and embed URLs.
var videoIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)

var youtubeDomains = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
	"www.youtu.be":      true,
}

// ValidateURL checks that rawURL is a well-formed YouTube URL with an
// extractable video ID.
func ValidateURL(rawURL string) error {
	const op = "validation.ValidateURL"

	if rawURL == "" {
		return errors.InvalidInput(op, nil, "URL is required")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.InvalidInput(op, err, "invalid URL format")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.InvalidInput(op, nil, "URL scheme must be http or https")
	}
	if !youtubeDomains[strings.ToLower(parsed.Host)] {
		return errors.InvalidInput(op, nil, "URL must be a YouTube URL")
	}
	if _, err := ExtractVideoID(rawURL); err != nil {
		return err
	}
	return nil
}

// ExtractVideoID pulls the 11-character video ID out of a YouTube URL.
func ExtractVideoID(rawURL string) (string, error) {
	const op = "validation.ExtractVideoID"

	matches := videoIDPattern.FindStringSubmatch(rawURL)
	if len(matches) < 2 {
		return "", errors.InvalidInput(op, nil, "invalid YouTube URL")
	}
	return matches[1], nil
}

// ValidateAudioPath checks that path names an existing regular file.
func ValidateAudioPath(path string) error {
	const op = "validation.ValidateAudioPath"

	if path == "" {
		return errors.InvalidInput(op, nil, "audio path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound(op, err, "audio file does not exist")
		}
		return errors.Internal(op, err, "failed to stat audio file")
	}
	if info.IsDir() {
		return errors.InvalidInput(op, nil, "audio path is a directory")
	}
	return nil
}
