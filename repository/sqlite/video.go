package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rhit-monroeds/youtube-transcripts/errors"
	"github.com/rhit-monroeds/youtube-transcripts/models"
)

type Repository struct {
	db *DB
}

func NewRepository(db *DB) (*Repository, error) {
	return &Repository{db: db}, nil
}

func (r *Repository) Save(ctx context.Context, video *models.Video) error {
	const op = "SQLiteRepository.Save"

	for i := 0; i < 3; i++ { // Simple retry logic
		err := r.save(ctx, video)
		if err == nil {
			return nil
		}
		if !isLockError(err) {
			return errors.Internal(op, err, "failed to save video")
		}
		time.Sleep(time.Second * time.Duration(i+1))
	}
	return errors.Internal(op, nil, "failed after retries")
}

func (r *Repository) save(ctx context.Context, video *models.Video) error {
	_, err := r.db.statements.insert.ExecContext(ctx,
		video.ID,
		video.VideoID,
		video.URL,
		video.Title,
		video.Uploader,
		video.Duration,
		string(video.Status),
		video.AudioPath,
		video.TranscriptPath,
		video.Error,
		video.CreatedAt,
		video.UpdatedAt,
	)
	return err
}

func (r *Repository) Find(ctx context.Context, id string) (*models.Video, error) {
	const op = "SQLiteRepository.Find"
	return scanVideo(op, r.db.statements.get.QueryRowContext(ctx, id))
}

func (r *Repository) FindByURL(ctx context.Context, url string) (*models.Video, error) {
	const op = "SQLiteRepository.FindByURL"
	return scanVideo(op, r.db.statements.getByURL.QueryRowContext(ctx, url))
}

// FindByVideoID returns the most recently updated record for a YouTube
// video ID. The same video can appear under multiple URL forms.
func (r *Repository) FindByVideoID(ctx context.Context, videoID string) (*models.Video, error) {
	const op = "SQLiteRepository.FindByVideoID"
	return scanVideo(op, r.db.statements.getByVideoID.QueryRowContext(ctx, videoID))
}

func scanVideo(op string, row *sql.Row) (*models.Video, error) {
	video := &models.Video{}
	var status string

	err := row.Scan(
		&video.ID,
		&video.VideoID,
		&video.URL,
		&video.Title,
		&video.Uploader,
		&video.Duration,
		&status,
		&video.AudioPath,
		&video.TranscriptPath,
		&video.Error,
		&video.CreatedAt,
		&video.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "video not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "failed to query video")
	}

	video.Status = models.Status(status)
	return video, nil
}

func isLockError(err error) bool {
	return strings.Contains(err.Error(), "database is locked") ||
		strings.Contains(err.Error(), "busy")
}
