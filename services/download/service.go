package download

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rhit-monroeds/youtube-transcripts/errors"
	"github.com/rhit-monroeds/youtube-transcripts/media"
	"github.com/rhit-monroeds/youtube-transcripts/models"
	"github.com/rhit-monroeds/youtube-transcripts/repository"
	"github.com/rhit-monroeds/youtube-transcripts/validation"
)

// Downloader is the media fetcher the service drives.
type Downloader interface {
	Download(ctx context.Context, url string) (*media.DownloadResult, error)
}

type service struct {
	repo       repository.VideoRepository
	downloader Downloader
	config     Config
	logger     *logrus.Logger
}

func NewService(repo repository.VideoRepository, downloader Downloader, config Config) Service {
	if config.StaleAge <= 0 {
		config.StaleAge = time.Hour
	}
	return &service{
		repo:       repo,
		downloader: downloader,
		config:     config,
		logger:     logrus.StandardLogger(),
	}
}

func (s *service) Download(ctx context.Context, url string) (*models.Video, error) {
	const op = "DownloadService.Download"
	logger := s.logger.WithContext(ctx).WithField("url", url)

	if err := validation.ValidateURL(url); err != nil {
		logger.WithError(err).Warn("Invalid URL")
		return nil, err
	}
	videoID, err := validation.ExtractVideoID(url)
	if err != nil {
		return nil, err
	}

	video, err := s.repo.FindByURL(ctx, url)
	if err != nil && !errors.IsNotFound(err) {
		return nil, errors.Internal(op, err, "failed to look up video")
	}

	if video != nil && !s.shouldProcess(video) {
		logger.WithFields(logrus.Fields{
			"video_id": video.VideoID,
			"status":   video.Status,
		}).Info("Reusing existing video record")
		return video, nil
	}

	now := time.Now()
	if video == nil {
		video = &models.Video{
			ID:        uuid.New().String(),
			VideoID:   videoID,
			URL:       url,
			CreatedAt: now,
		}
	}
	video.Status = models.StatusProcessing
	video.Error = ""
	video.UpdatedAt = now
	if err := s.repo.Save(ctx, video); err != nil {
		return nil, err
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	result, err := s.downloader.Download(ctx, url)
	if err != nil {
		s.recordFailure(video, err)
		return nil, errors.Internal(op, err, "download failed")
	}

	if err := s.writeMetadata(result); err != nil {
		s.recordFailure(video, err)
		return nil, err
	}

	video.VideoID = result.VideoID
	video.Title = result.Metadata.Title
	video.Uploader = result.Metadata.Uploader
	video.Duration = result.Metadata.Duration
	video.AudioPath = result.AudioPath
	video.Status = models.StatusCompleted
	video.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, video); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"video_id": video.VideoID,
		"file":     result.AudioPath,
	}).Info("Download recorded")
	return video, nil
}

// shouldProcess decides whether an existing record needs a fresh
// download.
func (s *service) shouldProcess(video *models.Video) bool {
	if s.config.Force {
		return true
	}
	switch video.Status {
	case models.StatusCompleted:
		if video.AudioPath == "" {
			return true
		}
		// Re-download when the recorded file is gone.
		if _, err := os.Stat(video.AudioPath); err != nil {
			return true
		}
		return false
	case models.StatusProcessing:
		return video.IsStale(s.config.StaleAge)
	default:
		return true
	}
}

// recordFailure saves the failed state with a background context so a
// cancelled download still leaves a record.
func (s *service) recordFailure(video *models.Video, cause error) {
	video.Status = models.StatusFailed
	video.Error = cause.Error()
	video.UpdatedAt = time.Now()

	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.Save(saveCtx, video); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"url": video.URL,
		}).Error("Failed to record download failure")
	}
}

func (s *service) writeMetadata(result *media.DownloadResult) error {
	const op = "DownloadService.writeMetadata"

	data, err := json.MarshalIndent(result.Metadata, "", "  ")
	if err != nil {
		return errors.Internal(op, err, "failed to encode metadata")
	}

	path := filepath.Join(s.config.WorkDir, models.MetadataFilename(result.VideoID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Internal(op, err, "failed to write metadata file")
	}
	return nil
}
