package models

import (
	"time"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Video is the pipeline record for one YouTube video. ID is a generated
// UUID; VideoID is the 11-character YouTube identifier.
type Video struct {
	ID             string    `json:"id"`
	VideoID        string    `json:"video_id"`
	URL            string    `json:"url"`
	Title          string    `json:"title,omitempty"`
	Uploader       string    `json:"uploader,omitempty"`
	Duration       int64     `json:"duration,omitempty"`
	Status         Status    `json:"status"`
	AudioPath      string    `json:"audio_path,omitempty"`
	TranscriptPath string    `json:"transcript_path,omitempty"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Status check methods
func (v *Video) IsProcessing() bool { return v.Status == StatusProcessing }
func (v *Video) IsCompleted() bool  { return v.Status == StatusCompleted }
func (v *Video) IsFailed() bool     { return v.Status == StatusFailed }

// IsStale checks if the job has been stuck in processing for too long
func (v *Video) IsStale(timeout time.Duration) bool {
	if v.Status != StatusProcessing {
		return false
	}
	return time.Since(v.UpdatedAt) > timeout
}
