package models

import "fmt"

// VideoInfo is the per-video header embedded in analysis results.
type VideoInfo struct {
	VideoID           string `json:"video_id"`
	Title             string `json:"title"`
	Uploader          string `json:"uploader"`
	Duration          int64  `json:"duration"`
	DurationFormatted string `json:"duration_formatted"`
}

// AnalysisStatistics summarizes the transcript that was analyzed.
type AnalysisStatistics struct {
	WordCount         int    `json:"word_count"`
	SegmentCount      int    `json:"segment_count"`
	ChunkCount        int    `json:"chunk_count"`
	AnalysisTimestamp string `json:"analysis_timestamp"`
}

// ChunkAnalysis holds the model output for one transcript chunk, split
// into its opinion and sentiment sections.
type ChunkAnalysis struct {
	ChunkNumber    int    `json:"chunk_number"`
	StockOpinions  string `json:"stock_opinions"`
	StockSentiment string `json:"stock_sentiment"`
}

// Analysis is the full result for one transcript. Either the analysis
// fields or Error is set.
type Analysis struct {
	VideoInfo                 VideoInfo           `json:"video_info"`
	Statistics                *AnalysisStatistics `json:"statistics,omitempty"`
	ChunkAnalyses             []ChunkAnalysis     `json:"chunk_analyses,omitempty"`
	ConsolidatedStockAnalysis string              `json:"consolidated_stock_analysis,omitempty"`
	Error                     string              `json:"error,omitempty"`
}

// FileAnalysis pairs a transcript filename with its analysis outcome in
// the batch output file.
type FileAnalysis struct {
	File     string    `json:"file"`
	Analysis *Analysis `json:"analysis,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// VideoInfoFromMetadata copies transcript metadata into a VideoInfo,
// substituting "unknown" for absent fields.
func VideoInfoFromMetadata(meta VideoMetadata) VideoInfo {
	info := VideoInfo{
		VideoID:           meta.VideoID,
		Title:             meta.Title,
		Uploader:          meta.Uploader,
		Duration:          meta.Duration,
		DurationFormatted: FormatDuration(meta.Duration),
	}
	if info.VideoID == "" {
		info.VideoID = "unknown"
	}
	if info.Title == "" {
		info.Title = "unknown"
	}
	if info.Uploader == "" {
		info.Uploader = "unknown"
	}
	return info
}

// FormatDuration renders a second count as HH:MM:SS.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		return "00:00:00"
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}
