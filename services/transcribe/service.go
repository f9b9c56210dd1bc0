package transcribe

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rhit-monroeds/youtube-transcripts/audioconv"
	"github.com/rhit-monroeds/youtube-transcripts/errors"
	"github.com/rhit-monroeds/youtube-transcripts/media"
	"github.com/rhit-monroeds/youtube-transcripts/models"
	"github.com/rhit-monroeds/youtube-transcripts/repository"
	"github.com/rhit-monroeds/youtube-transcripts/stt"
	"github.com/rhit-monroeds/youtube-transcripts/validation"
)

// Archiver uploads finished transcripts to remote storage.
type Archiver interface {
	SaveTranscript(ctx context.Context, videoID string, transcript *models.Transcript) error
}

type service struct {
	repo    repository.VideoRepository
	engine  stt.Engine
	archive Archiver
	config  Config
	logger  *logrus.Logger
}

// NewService wires a transcription service. repo and archive are
// optional; without them status updates and uploads are skipped.
func NewService(repo repository.VideoRepository, engine stt.Engine, archive Archiver, config Config) Service {
	return &service{
		repo:    repo,
		engine:  engine,
		archive: archive,
		config:  config,
		logger:  logrus.StandardLogger(),
	}
}

func (s *service) Transcribe(ctx context.Context, audioPath string) (*models.Transcript, string, error) {
	const op = "TranscribeService.Transcribe"
	logger := s.logger.WithContext(ctx).WithField("file", audioPath)

	if err := validation.ValidateAudioPath(audioPath); err != nil {
		logger.WithError(err).Warn("Invalid audio path")
		return nil, "", err
	}

	meta := s.loadMetadata(audioPath)
	record := s.markProcessing(ctx, meta.VideoID)

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	inputPath, cleanup, err := s.prepareAudio(ctx, audioPath)
	if err != nil {
		s.markFailed(record, err)
		return nil, "", errors.Internal(op, err, "failed to prepare audio")
	}
	defer cleanup()

	result, err := s.engine.Transcribe(ctx, inputPath, stt.Options{
		Language:  s.config.Language,
		Threads:   s.config.Threads,
		Translate: s.config.Translate,
	})
	if err != nil {
		s.markFailed(record, err)
		return nil, "", errors.Internal(op, err, "transcription failed")
	}

	transcript := &models.Transcript{Metadata: meta}
	for _, seg := range result.Segments {
		segment := models.NewSegment(seg.StartSec, seg.Text)
		if segment.Text == "" {
			continue
		}
		transcript.Segments = append(transcript.Segments, segment)
	}

	outputPath := filepath.Join(s.config.WorkDir, models.TranscriptFilename(meta.VideoID, time.Now()))
	if err := s.writeTranscript(outputPath, transcript); err != nil {
		s.markFailed(record, err)
		return nil, "", err
	}

	s.markCompleted(record, outputPath)

	if s.archive != nil {
		if err := s.archive.SaveTranscript(ctx, meta.VideoID, transcript); err != nil {
			logger.WithError(err).Warn("Failed to archive transcript")
		}
	}

	logger.WithFields(logrus.Fields{
		"video_id": meta.VideoID,
		"segments": len(transcript.Segments),
		"language": result.Language,
		"output":   outputPath,
	}).Info("Transcript written")

	return transcript, outputPath, nil
}

// loadMetadata reads the sidecar written by the download step. A
// missing or unreadable sidecar degrades to synthesized metadata, so
// audio files copied in from elsewhere still transcribe.
func (s *service) loadMetadata(audioPath string) models.VideoMetadata {
	base := filepath.Base(audioPath)
	videoID := strings.TrimSuffix(base, filepath.Ext(base))
	sidecar := filepath.Join(filepath.Dir(audioPath), models.MetadataFilename(videoID))

	raw, err := os.ReadFile(sidecar)
	if err == nil {
		var meta models.VideoMetadata
		if err := json.Unmarshal(raw, &meta); err == nil && meta.VideoID != "" {
			return meta
		}
		s.logger.WithFields(logrus.Fields{
			"sidecar": sidecar,
		}).Warn("Metadata sidecar unreadable, synthesizing metadata")
	}

	return models.VideoMetadata{
		VideoID:           videoID,
		Title:             "Unknown",
		Uploader:          "Unknown",
		Duration:          0,
		DownloadTimestamp: time.Now().Format(models.TimestampLayout),
		AudioFile:         base,
	}
}

// prepareAudio returns a path the recognizer can decode, converting
// through ffmpeg when needed. cleanup removes any temporary file.
func (s *service) prepareAudio(ctx context.Context, audioPath string) (string, func(), error) {
	if audioconv.Supported(audioPath) {
		return audioPath, func() {}, nil
	}

	ffmpegPath, err := media.LocateFFmpeg(s.config.FFmpegPath, s.config.WorkDir)
	if err != nil {
		return "", nil, err
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	wavPath := filepath.Join(os.TempDir(), base+"_16k.wav")

	s.logger.WithFields(logrus.Fields{
		"src": audioPath,
		"dst": wavPath,
	}).Info("Converting audio with ffmpeg")

	if err := media.ConvertToWAV(ctx, ffmpegPath, audioPath, wavPath); err != nil {
		return "", nil, err
	}

	cleanup := func() {
		if err := os.Remove(wavPath); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"file": wavPath,
			}).Error("Failed to remove temporary wav file")
		}
	}
	return wavPath, cleanup, nil
}

func (s *service) writeTranscript(path string, transcript *models.Transcript) error {
	const op = "TranscribeService.writeTranscript"

	data, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return errors.Internal(op, err, "failed to encode transcript")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Internal(op, err, "failed to write transcript file")
	}
	return nil
}

// markProcessing flips the download record for this video back to
// processing. Transcription works without a record, so lookups that
// miss are fine.
func (s *service) markProcessing(ctx context.Context, videoID string) *models.Video {
	if s.repo == nil {
		return nil
	}
	video, err := s.repo.FindByVideoID(ctx, videoID)
	if err != nil {
		if !errors.IsNotFound(err) {
			s.logger.WithError(err).Warn("Failed to look up video record")
		}
		return nil
	}

	video.Status = models.StatusProcessing
	video.Error = ""
	video.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, video); err != nil {
		s.logger.WithError(err).Warn("Failed to update video record")
	}
	return video
}

func (s *service) markFailed(video *models.Video, cause error) {
	if video == nil {
		return
	}
	video.Status = models.StatusFailed
	video.Error = cause.Error()
	video.UpdatedAt = time.Now()

	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.Save(saveCtx, video); err != nil {
		s.logger.WithError(err).Error("Failed to record transcription failure")
	}
}

func (s *service) markCompleted(video *models.Video, transcriptPath string) {
	if video == nil {
		return
	}
	video.Status = models.StatusCompleted
	video.TranscriptPath = transcriptPath
	video.UpdatedAt = time.Now()

	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.Save(saveCtx, video); err != nil {
		s.logger.WithError(err).Error("Failed to record transcription completion")
	}
}
