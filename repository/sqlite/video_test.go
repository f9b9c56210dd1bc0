package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rhit-monroeds/youtube-transcripts/errors"
	"github.com/rhit-monroeds/youtube-transcripts/models"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := InitDB(filepath.Join(t.TempDir(), "videos.db"))
	if err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	repo, err := NewRepository(db)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	return repo
}

func testVideo(id, videoID, url string) *models.Video {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.Video{
		ID:        id,
		VideoID:   videoID,
		URL:       url,
		Title:     "Test Video",
		Uploader:  "Test Channel",
		Duration:  125,
		Status:    models.StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSaveAndFind(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	video := testVideo("uuid-1", "dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err := repo.Save(ctx, video); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	found, err := repo.Find(ctx, "uuid-1")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if found.VideoID != video.VideoID {
		t.Errorf("VideoID = %q, want %q", found.VideoID, video.VideoID)
	}
	if found.Title != video.Title {
		t.Errorf("Title = %q, want %q", found.Title, video.Title)
	}
	if found.Duration != video.Duration {
		t.Errorf("Duration = %d, want %d", found.Duration, video.Duration)
	}
	if found.Status != models.StatusProcessing {
		t.Errorf("Status = %q, want %q", found.Status, models.StatusProcessing)
	}
	if !found.CreatedAt.Equal(video.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", found.CreatedAt, video.CreatedAt)
	}
}

func TestFindByURL(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	url := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	if err := repo.Save(ctx, testVideo("uuid-1", "dQw4w9WgXcQ", url)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	found, err := repo.FindByURL(ctx, url)
	if err != nil {
		t.Fatalf("FindByURL() error = %v", err)
	}
	if found.ID != "uuid-1" {
		t.Errorf("ID = %q, want uuid-1", found.ID)
	}
}

func TestFindByVideoIDReturnsLatest(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	older := testVideo("uuid-1", "dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	older.UpdatedAt = older.UpdatedAt.Add(-time.Hour)
	if err := repo.Save(ctx, older); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	newer := testVideo("uuid-2", "dQw4w9WgXcQ", "https://youtu.be/dQw4w9WgXcQ")
	newer.Status = models.StatusCompleted
	if err := repo.Save(ctx, newer); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	found, err := repo.FindByVideoID(ctx, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("FindByVideoID() error = %v", err)
	}
	if found.ID != "uuid-2" {
		t.Errorf("ID = %q, want uuid-2 (latest record)", found.ID)
	}
}

func TestFindNotFound(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if _, err := repo.Find(ctx, "missing"); !errors.IsNotFound(err) {
		t.Errorf("Find(missing) error = %v, want not found", err)
	}
	if _, err := repo.FindByURL(ctx, "https://youtu.be/missing00000"); !errors.IsNotFound(err) {
		t.Errorf("FindByURL(missing) error = %v, want not found", err)
	}
	if _, err := repo.FindByVideoID(ctx, "missing00000"); !errors.IsNotFound(err) {
		t.Errorf("FindByVideoID(missing) error = %v, want not found", err)
	}
}

func TestSaveUpsert(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	video := testVideo("uuid-1", "dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err := repo.Save(ctx, video); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	video.Status = models.StatusCompleted
	video.AudioPath = "dQw4w9WgXcQ.webm"
	video.TranscriptPath = "transcript_dQw4w9WgXcQ_20250314_092653.json"
	video.UpdatedAt = video.UpdatedAt.Add(time.Minute)
	if err := repo.Save(ctx, video); err != nil {
		t.Fatalf("Save() second call error = %v", err)
	}

	found, err := repo.Find(ctx, "uuid-1")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if found.Status != models.StatusCompleted {
		t.Errorf("Status = %q, want %q", found.Status, models.StatusCompleted)
	}
	if found.AudioPath != video.AudioPath {
		t.Errorf("AudioPath = %q, want %q", found.AudioPath, video.AudioPath)
	}
	if found.TranscriptPath != video.TranscriptPath {
		t.Errorf("TranscriptPath = %q, want %q", found.TranscriptPath, video.TranscriptPath)
	}

	var count int
	if err := repo.db.QueryRow("SELECT COUNT(*) FROM videos").Scan(&count); err != nil {
		t.Fatalf("count query error = %v", err)
	}
	if count != 1 {
		t.Errorf("row count = %d, want 1 after upsert", count)
	}
}

func TestSaveFailedStatusKeepsError(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	video := testVideo("uuid-1", "dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	video.Status = models.StatusFailed
	video.Error = "download failed: network unreachable"
	if err := repo.Save(ctx, video); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	found, err := repo.Find(ctx, "uuid-1")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if !found.IsFailed() {
		t.Errorf("Status = %q, want failed", found.Status)
	}
	if found.Error != video.Error {
		t.Errorf("Error = %q, want %q", found.Error, video.Error)
	}
}
