package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Environment string
	WorkDir     string
	LogDir      string
	LogLevel    string

	Database   DatabaseConfig
	Download   DownloadConfig
	Whisper    WhisperConfig
	OpenRouter OpenRouterConfig
	Analysis   AnalysisConfig
	Spaces     SpacesConfig
}

type DatabaseConfig struct {
	Path string
}

type DownloadConfig struct {
	YTDLPPath  string
	FFmpegPath string
	Timeout    time.Duration
}

type WhisperConfig struct {
	ModelPath string
	BinPath   string
	Language  string
	Threads   int
	Timeout   time.Duration
}

type OpenRouterConfig struct {
	APIKey            string
	Model             string
	BaseURL           string
	RequestTimeout    time.Duration
	RateLimit         int
	RateLimitInterval time.Duration
}

type AnalysisConfig struct {
	ChunkSize      int
	ChunkOverlap   int
	MaxConcurrency int
	Timeout        time.Duration
}

type SpacesConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Load reads the configuration from the environment and validates it.
// Values that fail to parse fall back to their defaults with a warning.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENV", "development"),
		WorkDir:     getEnv("WORK_DIR", "."),
		LogDir:      getEnv("LOG_DIR", "logs"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", filepath.Join("data", "videos.db")),
		},
		Download: DownloadConfig{
			YTDLPPath:  getEnv("YTDLP_PATH", "yt-dlp"),
			FFmpegPath: getEnv("FFMPEG_PATH", ""),
			Timeout:    getEnvAsDuration("DOWNLOAD_TIMEOUT", 15*time.Minute),
		},
		Whisper: WhisperConfig{
			ModelPath: getEnv("WHISPER_MODEL", filepath.Join("models", "ggml-base.bin")),
			BinPath:   getEnv("WHISPER_BIN", ""),
			Language:  getEnv("WHISPER_LANGUAGE", "auto"),
			Threads:   getEnvAsInt("WHISPER_THREADS", 0),
			Timeout:   getEnvAsDuration("TRANSCRIBE_TIMEOUT", 30*time.Minute),
		},
		OpenRouter: OpenRouterConfig{
			APIKey:            getEnv("OPENROUTER_API_KEY", ""),
			Model:             getEnv("OPENROUTER_MODEL", "google/gemini-2.0-flash-001"),
			BaseURL:           getEnv("OPENROUTER_URL", "https://openrouter.ai/api/v1/chat/completions"),
			RequestTimeout:    getEnvAsDuration("REQUEST_TIMEOUT", 2*time.Minute),
			RateLimit:         getEnvAsInt("RATE_LIMIT", 5),
			RateLimitInterval: getEnvAsDuration("RATE_LIMIT_INTERVAL", time.Second),
		},
		Analysis: AnalysisConfig{
			ChunkSize:      getEnvAsInt("CHUNK_SIZE", 7000),
			ChunkOverlap:   getEnvAsInt("CHUNK_OVERLAP", 500),
			MaxConcurrency: getEnvAsInt("MAX_CONCURRENCY", 3),
			Timeout:        getEnvAsDuration("ANALYZE_TIMEOUT", 30*time.Minute),
		},
		Spaces: SpacesConfig{
			Enabled:   getEnvAsBool("SPACES_ENABLED", false),
			Endpoint:  getEnv("SPACES_ENDPOINT", ""),
			Region:    getEnv("SPACES_REGION", "nyc3"),
			Bucket:    getEnv("SPACES_BUCKET", ""),
			AccessKey: getEnv("SPACES_ACCESS_KEY", ""),
			SecretKey: getEnv("SPACES_SECRET_KEY", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.WorkDir == "" {
		return errors.New("work directory is required")
	}
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Download.YTDLPPath == "" {
		return errors.New("yt-dlp path is required")
	}
	if c.Whisper.ModelPath == "" && c.Whisper.BinPath == "" {
		return errors.New("whisper model path is required")
	}
	if c.Download.Timeout <= 0 {
		return errors.New("download timeout must be greater than 0")
	}
	if c.Whisper.Timeout <= 0 {
		return errors.New("transcribe timeout must be greater than 0")
	}
	if c.Analysis.Timeout <= 0 {
		return errors.New("analyze timeout must be greater than 0")
	}
	if c.OpenRouter.RequestTimeout <= 0 {
		return errors.New("request timeout must be greater than 0")
	}
	if c.Analysis.ChunkSize <= 0 {
		return errors.New("chunk size must be greater than 0")
	}
	if c.Analysis.ChunkOverlap < 0 || c.Analysis.ChunkOverlap >= c.Analysis.ChunkSize {
		return errors.New("chunk overlap must be non-negative and smaller than chunk size")
	}
	if c.Analysis.MaxConcurrency <= 0 {
		return errors.New("max concurrency must be greater than 0")
	}
	if c.OpenRouter.RateLimit <= 0 {
		return errors.New("rate limit must be greater than 0")
	}
	if c.Spaces.Enabled {
		if c.Spaces.Endpoint == "" || c.Spaces.Bucket == "" {
			return errors.New("spaces endpoint and bucket are required when spaces is enabled")
		}
		if c.Spaces.AccessKey == "" || c.Spaces.SecretKey == "" {
			return errors.New("spaces credentials are required when spaces is enabled")
		}
	}

	return c.ensureDirectories()
}

func (c *Config) ensureDirectories() error {
	dirs := []struct {
		path string
		name string
	}{
		{c.WorkDir, "work"},
		{c.LogDir, "log"},
		{filepath.Dir(c.Database.Path), "database"},
	}
	for _, dir := range dirs {
		if dir.path == "" || dir.path == "." {
			continue
		}
		if err := os.MkdirAll(dir.path, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create %s directory", dir.name)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid boolean, using default")
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid duration, using default")
	}
	return defaultValue
}
