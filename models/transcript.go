package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the layout used in artifact filenames and in
// metadata download timestamps.
const TimestampLayout = "20060102_150405"

// VideoMetadata is the sidecar written next to a downloaded audio file
// as <video_id>_metadata.json.
type VideoMetadata struct {
	VideoID           string `json:"video_id"`
	Title             string `json:"title"`
	Uploader          string `json:"uploader"`
	Duration          int64  `json:"duration"`
	DownloadTimestamp string `json:"download_timestamp"`
	AudioFile         string `json:"audio_file"`
}

// TranscriptSegment is one recognized span of speech. Timestamp is the
// segment start in seconds, serialized as a decimal string ("0.0",
// "12.34") so downstream consumers need no float handling.
type TranscriptSegment struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// Transcript is the document written as transcript_<video_id>_<ts>.json.
type Transcript struct {
	Metadata VideoMetadata       `json:"metadata"`
	Segments []TranscriptSegment `json:"transcript"`
}

// NewSegment builds a segment from a start offset in seconds, trimming
// the recognized text.
func NewSegment(startSec float64, text string) TranscriptSegment {
	return TranscriptSegment{
		Timestamp: FormatSeconds(startSec),
		Text:      strings.TrimSpace(text),
	}
}

// FullText joins all segment texts with single spaces.
func (t *Transcript) FullText() string {
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}

// WordCount counts whitespace-separated words across all segments.
func (t *Transcript) WordCount() int {
	return len(strings.Fields(t.FullText()))
}

// FormatSeconds renders a second offset with at least one decimal
// place, so whole seconds come out as "12.0" rather than "12".
func FormatSeconds(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// MetadataFilename returns the sidecar filename for a video ID.
func MetadataFilename(videoID string) string {
	return videoID + "_metadata.json"
}

// TranscriptFilename returns the timestamped transcript filename for a
// video ID.
func TranscriptFilename(videoID string, ts time.Time) string {
	return fmt.Sprintf("transcript_%s_%s.json", videoID, ts.Format(TimestampLayout))
}
