package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rhit-monroeds/youtube-transcripts/models"
)

var downloadLocks sync.Map

type downloadLock struct {
	mu sync.Mutex
}

func getDownloadLock(url string) *downloadLock {
	lock, _ := downloadLocks.LoadOrStore(url, &downloadLock{})
	return lock.(*downloadLock)
}

type DownloaderConfig struct {
	BinPath string
	WorkDir string
}

// Downloader fetches the best audio stream of a video with yt-dlp.
type Downloader struct {
	config DownloaderConfig
	logger *logrus.Logger

	ExecuteFunc func(ctx context.Context, args ...string) ([]byte, []byte, error)
}

func NewDownloader(config DownloaderConfig) *Downloader {
	d := &Downloader{
		config: config,
		logger: logrus.StandardLogger(),
	}
	d.ExecuteFunc = d.runYTDLP
	return d
}

// DownloadResult describes a completed download.
type DownloadResult struct {
	VideoID   string
	AudioPath string
	Metadata  models.VideoMetadata
}

// videoInfo is the subset of yt-dlp's info JSON the pipeline needs.
type videoInfo struct {
	ID       string  `json:"id"`
	Ext      string  `json:"ext"`
	Title    string  `json:"title"`
	Uploader string  `json:"uploader"`
	Duration float64 `json:"duration"`
}

// Download fetches the audio for url into the work directory and
// returns the resulting file path with its metadata. Downloads of the
// same URL are serialized.
func (d *Downloader) Download(ctx context.Context, url string) (*DownloadResult, error) {
	lock := getDownloadLock(url)
	lock.mu.Lock()
	defer lock.mu.Unlock()

	d.logger.WithFields(logrus.Fields{
		"url": url,
	}).Info("Starting audio download")

	stdout, err := d.downloadWithRetry(ctx, url)
	if err != nil {
		return nil, err
	}

	info, err := parseInfoJSON(stdout)
	if err != nil {
		return nil, err
	}

	audioPath := filepath.Join(d.config.WorkDir, info.ID+"."+info.Ext)
	if _, err := os.Stat(audioPath); err != nil {
		// yt-dlp can remux into a different container than the info
		// JSON announces, so fall back to scanning for the ID.
		audioPath, err = findAudioFile(d.config.WorkDir, info.ID)
		if err != nil {
			return nil, err
		}
	}

	metadata := models.VideoMetadata{
		VideoID:           info.ID,
		Title:             info.Title,
		Uploader:          info.Uploader,
		Duration:          int64(info.Duration),
		DownloadTimestamp: time.Now().Format(models.TimestampLayout),
		AudioFile:         filepath.Base(audioPath),
	}
	if metadata.Title == "" {
		metadata.Title = "Unknown"
	}
	if metadata.Uploader == "" {
		metadata.Uploader = "Unknown"
	}

	d.logger.WithFields(logrus.Fields{
		"url":      url,
		"video_id": info.ID,
		"file":     metadata.AudioFile,
	}).Info("Audio download completed")

	return &DownloadResult{
		VideoID:   info.ID,
		AudioPath: audioPath,
		Metadata:  metadata,
	}, nil
}

func (d *Downloader) downloadWithRetry(ctx context.Context, url string) ([]byte, error) {
	const (
		maxRetries     = 3
		initialBackoff = 2 * time.Second
		maxBackoff     = 30 * time.Second
		backoffFactor  = 2.0
	)

	args := []string{
		"--no-playlist",
		"--no-progress",
		"-f", "bestaudio/best",
		"-o", "%(id)s.%(ext)s",
		"--print-json",
		url,
	}

	var (
		stdout []byte
		stderr []byte
		err    error
	)

	for attempt := 1; attempt <= maxRetries; attempt++ {
		stdout, stderr, err = d.ExecuteFunc(ctx, args...)
		if err == nil {
			break
		}

		d.logger.WithFields(logrus.Fields{
			"attempt":    attempt,
			"maxRetries": maxRetries,
			"url":        url,
			"error":      err,
			"stderr":     string(stderr),
		}).Error("yt-dlp failed")

		backoff := time.Duration(float64(initialBackoff) * math.Pow(backoffFactor, float64(attempt-1)))
		if backoff > maxBackoff {
			backoff = maxBackoff
		}

		select {
		case <-time.After(backoff + time.Duration(rand.Int63n(int64(backoff/2)))):
			// Continue to the next retry attempt
		case <-ctx.Done():
			d.logger.WithError(ctx.Err()).WithFields(logrus.Fields{
				"url": url,
			}).Error("Context cancelled during download")
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, fmt.Errorf("error downloading after %d attempts: %v, stderr: %s", maxRetries, err, stderr)
	}

	return stdout, nil
}

func (d *Downloader) runYTDLP(ctx context.Context, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, d.config.BinPath, args...)
	cmd.Dir = d.config.WorkDir
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("yt-dlp execution failed: %v", err)
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

// parseInfoJSON extracts the info document from yt-dlp output. The JSON
// is the last non-empty stdout line when --print-json is set.
func parseInfoJSON(output []byte) (*videoInfo, error) {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		info := &videoInfo{}
		if err := json.Unmarshal([]byte(line), info); err != nil {
			return nil, fmt.Errorf("failed to parse yt-dlp info JSON: %v", err)
		}
		if info.ID == "" {
			return nil, fmt.Errorf("yt-dlp info JSON missing video id")
		}
		return info, nil
	}
	return nil, fmt.Errorf("yt-dlp produced no output")
}

// findAudioFile scans dir for the downloaded file of a video ID,
// ignoring sidecars and partial downloads.
func findAudioFile(dir, videoID string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to scan work directory: %v", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, videoID+".") {
			continue
		}
		if strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".json") {
			continue
		}
		return filepath.Join(dir, name), nil
	}
	return "", fmt.Errorf("downloaded audio file for %s not found", videoID)
}
