package models

import (
	"testing"
	"time"
)

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{12, "12.0"},
		{3.84, "3.84"},
		{0.5, "0.5"},
		{125.04, "125.04"},
	}

	for _, tt := range tests {
		if got := FormatSeconds(tt.in); got != tt.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewSegmentTrimsText(t *testing.T) {
	seg := NewSegment(1.5, "  hello world \n")
	if seg.Text != "hello world" {
		t.Errorf("Text = %q, want %q", seg.Text, "hello world")
	}
	if seg.Timestamp != "1.5" {
		t.Errorf("Timestamp = %q, want %q", seg.Timestamp, "1.5")
	}
}

func TestFullTextAndWordCount(t *testing.T) {
	tr := &Transcript{
		Segments: []TranscriptSegment{
			{Timestamp: "0.0", Text: "first segment"},
			{Timestamp: "5.0", Text: "second one"},
		},
	}
	if got := tr.FullText(); got != "first segment second one" {
		t.Errorf("FullText() = %q", got)
	}
	if got := tr.WordCount(); got != 4 {
		t.Errorf("WordCount() = %d, want 4", got)
	}

	empty := &Transcript{}
	if got := empty.FullText(); got != "" {
		t.Errorf("FullText() on empty transcript = %q, want empty", got)
	}
}

func TestFilenames(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	if got := TranscriptFilename("dQw4w9WgXcQ", ts); got != "transcript_dQw4w9WgXcQ_20250314_092653.json" {
		t.Errorf("TranscriptFilename() = %q", got)
	}
	if got := MetadataFilename("dQw4w9WgXcQ"); got != "dQw4w9WgXcQ_metadata.json" {
		t.Errorf("MetadataFilename() = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{60, "00:01:00"},
		{3661, "01:01:01"},
		{7325, "02:02:05"},
		{-5, "00:00:00"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVideoInfoFromMetadata(t *testing.T) {
	info := VideoInfoFromMetadata(VideoMetadata{})
	if info.VideoID != "unknown" || info.Title != "unknown" || info.Uploader != "unknown" {
		t.Errorf("empty metadata should map to unknown fields, got %+v", info)
	}
	if info.DurationFormatted != "00:00:00" {
		t.Errorf("DurationFormatted = %q, want 00:00:00", info.DurationFormatted)
	}

	info = VideoInfoFromMetadata(VideoMetadata{
		VideoID:  "abc123def45",
		Title:    "Market Outlook",
		Uploader: "Finance Channel",
		Duration: 3725,
	})
	if info.Title != "Market Outlook" {
		t.Errorf("Title = %q", info.Title)
	}
	if info.DurationFormatted != "01:02:05" {
		t.Errorf("DurationFormatted = %q, want 01:02:05", info.DurationFormatted)
	}
}

func TestVideoStatus(t *testing.T) {
	v := &Video{Status: StatusProcessing, UpdatedAt: time.Now().Add(-time.Hour)}
	if !v.IsProcessing() {
		t.Error("IsProcessing() = false")
	}
	if !v.IsStale(30 * time.Minute) {
		t.Error("IsStale(30m) = false for hour-old processing record")
	}
	if v.IsStale(2 * time.Hour) {
		t.Error("IsStale(2h) = true for hour-old processing record")
	}

	v.Status = StatusCompleted
	if v.IsStale(time.Nanosecond) {
		t.Error("IsStale() = true for completed record")
	}
}
