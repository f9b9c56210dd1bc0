package media

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// LocateFFmpeg finds a usable ffmpeg binary. An explicitly configured
// path wins, then PATH, then bundled distributions under workDir.
func LocateFFmpeg(explicit, workDir string) (string, error) {
	if explicit != "" {
		path, err := exec.LookPath(explicit)
		if err != nil {
			return "", errors.Wrapf(err, "configured ffmpeg %q not usable", explicit)
		}
		return path, nil
	}

	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return path, nil
	}

	if path, ok := findBundled(workDir); ok {
		logrus.WithFields(logrus.Fields{
			"path": path,
		}).Info("Using bundled ffmpeg")
		return path, nil
	}

	return "", errors.New("ffmpeg not found in PATH or bundled locations")
}

// findBundled checks the distribution layouts ffmpeg ships under when
// unpacked next to the working directory.
func findBundled(root string) (string, bool) {
	dirs := []string{
		filepath.Join(root, "ffmpeg", "bin"),
		filepath.Join(root, "ffmpeg-master-latest-win64-gpl", "bin"),
		filepath.Join(root, "ffmpeg-linux"),
	}
	for _, dir := range dirs {
		for _, name := range []string{"ffmpeg", "ffmpeg.exe"} {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}
	}
	return "", false
}

// ConvertToWAV transcodes src into a mono 16 kHz wav file at dst,
// stripping any video stream.
func ConvertToWAV(ctx context.Context, ffmpegPath, src, dst string) error {
	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-y",
		"-i", src,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		dst,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "ffmpeg conversion failed (stderr: %s)", stderr.String())
	}
	return nil
}
