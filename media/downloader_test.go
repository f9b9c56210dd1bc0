package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

const testInfoJSON = `{"id": "dQw4w9WgXcQ", "ext": "webm", "title": "Test Video", "uploader": "Test Channel", "duration": 212.5}`

func newTestDownloader(t *testing.T) *Downloader {
	t.Helper()
	return NewDownloader(DownloaderConfig{
		BinPath: "yt-dlp",
		WorkDir: t.TempDir(),
	})
}

func TestDownload(t *testing.T) {
	d := newTestDownloader(t)
	d.ExecuteFunc = func(ctx context.Context, args ...string) ([]byte, []byte, error) {
		path := filepath.Join(d.config.WorkDir, "dQw4w9WgXcQ.webm")
		if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
			t.Fatal(err)
		}
		return []byte(testInfoJSON + "\n"), nil, nil
	}

	result, err := d.Download(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	if result.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("VideoID = %q", result.VideoID)
	}
	if filepath.Base(result.AudioPath) != "dQw4w9WgXcQ.webm" {
		t.Errorf("AudioPath = %q", result.AudioPath)
	}
	if result.Metadata.Title != "Test Video" {
		t.Errorf("Title = %q", result.Metadata.Title)
	}
	if result.Metadata.Uploader != "Test Channel" {
		t.Errorf("Uploader = %q", result.Metadata.Uploader)
	}
	if result.Metadata.Duration != 212 {
		t.Errorf("Duration = %d, want 212", result.Metadata.Duration)
	}
	if result.Metadata.AudioFile != "dQw4w9WgXcQ.webm" {
		t.Errorf("AudioFile = %q", result.Metadata.AudioFile)
	}
	if result.Metadata.DownloadTimestamp == "" {
		t.Error("DownloadTimestamp is empty")
	}
}

func TestDownloadMetadataDefaults(t *testing.T) {
	d := newTestDownloader(t)
	d.ExecuteFunc = func(ctx context.Context, args ...string) ([]byte, []byte, error) {
		path := filepath.Join(d.config.WorkDir, "abc123def45.m4a")
		if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
			t.Fatal(err)
		}
		return []byte(`{"id": "abc123def45", "ext": "m4a"}`), nil, nil
	}

	result, err := d.Download(context.Background(), "https://youtu.be/abc123def45")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if result.Metadata.Title != "Unknown" {
		t.Errorf("Title = %q, want Unknown", result.Metadata.Title)
	}
	if result.Metadata.Uploader != "Unknown" {
		t.Errorf("Uploader = %q, want Unknown", result.Metadata.Uploader)
	}
	if result.Metadata.Duration != 0 {
		t.Errorf("Duration = %d, want 0", result.Metadata.Duration)
	}
}

func TestDownloadScanFallback(t *testing.T) {
	d := newTestDownloader(t)
	// Info JSON announces m4a but the remuxed file lands as opus.
	d.ExecuteFunc = func(ctx context.Context, args ...string) ([]byte, []byte, error) {
		path := filepath.Join(d.config.WorkDir, "dQw4w9WgXcQ.opus")
		if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
			t.Fatal(err)
		}
		return []byte(`{"id": "dQw4w9WgXcQ", "ext": "m4a", "title": "T"}`), nil, nil
	}

	result, err := d.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if filepath.Base(result.AudioPath) != "dQw4w9WgXcQ.opus" {
		t.Errorf("AudioPath = %q, want scan to find dQw4w9WgXcQ.opus", result.AudioPath)
	}
}

func TestDownloadRetriesOnFailure(t *testing.T) {
	d := newTestDownloader(t)
	attempts := 0
	d.ExecuteFunc = func(ctx context.Context, args ...string) ([]byte, []byte, error) {
		attempts++
		if attempts == 1 {
			return nil, []byte("ERROR: timeout"), fmt.Errorf("exit status 1")
		}
		path := filepath.Join(d.config.WorkDir, "dQw4w9WgXcQ.webm")
		if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
			t.Fatal(err)
		}
		return []byte(testInfoJSON), nil, nil
	}

	if _, err := d.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ"); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestDownloadCancelledContext(t *testing.T) {
	d := newTestDownloader(t)
	d.ExecuteFunc = func(ctx context.Context, args ...string) ([]byte, []byte, error) {
		return nil, []byte("ERROR"), fmt.Errorf("exit status 1")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.Download(ctx, "https://youtu.be/dQw4w9WgXcQ"); err == nil {
		t.Fatal("Download() error = nil, want context error")
	}
}

func TestParseInfoJSON(t *testing.T) {
	t.Run("last line wins", func(t *testing.T) {
		output := "[download] Destination: dQw4w9WgXcQ.webm\n" + testInfoJSON + "\n"
		info, err := parseInfoJSON([]byte(output))
		if err != nil {
			t.Fatalf("parseInfoJSON() error = %v", err)
		}
		if info.ID != "dQw4w9WgXcQ" || info.Ext != "webm" {
			t.Errorf("info = %+v", info)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		if _, err := parseInfoJSON([]byte("not json")); err == nil {
			t.Error("parseInfoJSON() error = nil, want parse error")
		}
	})

	t.Run("empty output", func(t *testing.T) {
		if _, err := parseInfoJSON([]byte("  \n ")); err == nil {
			t.Error("parseInfoJSON() error = nil, want no-output error")
		}
	})

	t.Run("missing id", func(t *testing.T) {
		if _, err := parseInfoJSON([]byte(`{"ext": "webm"}`)); err == nil {
			t.Error("parseInfoJSON() error = nil, want missing-id error")
		}
	})
}

func TestFindAudioFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"dQw4w9WgXcQ.webm.part",
		"dQw4w9WgXcQ.info.json",
		"dQw4w9WgXcQ_metadata.json",
		"otherVideo12.webm",
		"dQw4w9WgXcQ.webm",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	path, err := findAudioFile(dir, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("findAudioFile() error = %v", err)
	}
	if filepath.Base(path) != "dQw4w9WgXcQ.webm" {
		t.Errorf("findAudioFile() = %q, want dQw4w9WgXcQ.webm", path)
	}

	if _, err := findAudioFile(dir, "missingVideo"); err == nil {
		t.Error("findAudioFile(missing) error = nil, want not-found error")
	}
}
