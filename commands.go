package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	cli "github.com/spf13/pflag"

	"github.com/rhit-monroeds/youtube-transcripts/config"
	"github.com/rhit-monroeds/youtube-transcripts/media"
	"github.com/rhit-monroeds/youtube-transcripts/models"
	"github.com/rhit-monroeds/youtube-transcripts/openrouter"
	"github.com/rhit-monroeds/youtube-transcripts/repository"
	"github.com/rhit-monroeds/youtube-transcripts/repository/sqlite"
	"github.com/rhit-monroeds/youtube-transcripts/services/analyze"
	"github.com/rhit-monroeds/youtube-transcripts/services/download"
	"github.com/rhit-monroeds/youtube-transcripts/services/stocks"
	"github.com/rhit-monroeds/youtube-transcripts/services/transcribe"
	"github.com/rhit-monroeds/youtube-transcripts/storage"
	"github.com/rhit-monroeds/youtube-transcripts/stt"
)

func runDownload(ctx context.Context, cfg *config.Config, args []string) error {
	flags := cli.NewFlagSet("download", cli.ExitOnError)
	force := flags.Bool("force", false, "Re-download even when a completed record exists")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: download [--force] <youtube_url>")
	}

	db, repo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	service := newDownloadService(cfg, repo, *force)

	video, err := service.Download(ctx, flags.Arg(0))
	if err != nil {
		return err
	}

	fmt.Printf("Downloaded %s (%s)\n", video.Title, video.VideoID)
	fmt.Printf("Audio: %s\n", video.AudioPath)
	return nil
}

func runTranscribe(ctx context.Context, cfg *config.Config, args []string) error {
	flags := cli.NewFlagSet("transcribe", cli.ExitOnError)
	modelPath := flags.String("model", cfg.Whisper.ModelPath, "Whisper model file")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: transcribe [--model PATH] <audio_file>")
	}

	db, repo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	service, engine, err := newTranscribeService(cfg, repo, *modelPath)
	if err != nil {
		return err
	}
	defer engine.Close()

	transcript, outputPath, err := service.Transcribe(ctx, flags.Arg(0))
	if err != nil {
		return err
	}

	fmt.Printf("Transcribed %d segments (%d words)\n", len(transcript.Segments), transcript.WordCount())
	fmt.Printf("Transcript: %s\n", outputPath)
	return nil
}

func runAnalyze(ctx context.Context, cfg *config.Config, args []string) error {
	flags := cli.NewFlagSet("analyze", cli.ExitOnError)
	directory := flags.String("directory", cfg.WorkDir, "Directory containing transcript files")
	output := flags.String("output", "transcript_analysis.json", "Output file for analysis results")
	maxConcurrency := flags.Int("max-concurrency", cfg.Analysis.MaxConcurrency, "Maximum concurrent transcript analyses")
	apiKey := flags.String("api-key", "", "OpenRouter API key (defaults to OPENROUTER_API_KEY)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	service, err := newAnalyzeService(cfg, *apiKey, *maxConcurrency)
	if err != nil {
		return err
	}

	outputFile := *output
	if !filepath.IsAbs(outputFile) {
		outputFile = filepath.Join(*directory, outputFile)
	}

	results, err := service.AnalyzeDirectory(ctx, *directory, outputFile)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Printf("No transcript files found in %s\n", *directory)
		return nil
	}

	fmt.Printf("Analyzed %d transcript files\n", len(results))
	fmt.Printf("Results: %s\n", outputFile)

	uploadAnalysis(ctx, cfg, filepath.Base(outputFile), results)
	return nil
}

func runExtract(ctx context.Context, cfg *config.Config, args []string) error {
	flags := cli.NewFlagSet("extract", cli.ExitOnError)
	directory := flags.String("directory", cfg.WorkDir, "Directory containing the analysis file")
	if err := flags.Parse(args); err != nil {
		return err
	}

	textPath := filepath.Join(*directory, "stock_opinions.txt")
	service := stocks.NewService()
	result, err := service.Extract(ctx,
		filepath.Join(*directory, "transcript_analysis.json"),
		filepath.Join(*directory, "stock_opinions.json"),
		textPath,
	)
	if err != nil {
		return err
	}

	fmt.Printf("Extracted opinions for %d stocks\n", len(result))
	fmt.Printf("Report: %s\n", textPath)
	return nil
}

// runPipeline chains download, transcribe, and analyze for one URL.
func runPipeline(ctx context.Context, cfg *config.Config, args []string) error {
	flags := cli.NewFlagSet("run", cli.ExitOnError)
	force := flags.Bool("force", false, "Re-download even when a completed record exists")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: run [--force] <youtube_url>")
	}

	// A missing API key should surface before the download starts.
	analyzeService, err := newAnalyzeService(cfg, "", cfg.Analysis.MaxConcurrency)
	if err != nil {
		return err
	}

	db, repo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	downloadService := newDownloadService(cfg, repo, *force)
	video, err := downloadService.Download(ctx, flags.Arg(0))
	if err != nil {
		return err
	}
	fmt.Printf("Downloaded %s (%s)\n", video.Title, video.VideoID)

	transcribeService, engine, err := newTranscribeService(cfg, repo, cfg.Whisper.ModelPath)
	if err != nil {
		return err
	}
	defer engine.Close()

	transcript, transcriptPath, err := transcribeService.Transcribe(ctx, video.AudioPath)
	if err != nil {
		return err
	}
	fmt.Printf("Transcribed %d segments (%d words)\n", len(transcript.Segments), transcript.WordCount())

	analysis, err := analyzeService.AnalyzeFile(ctx, transcriptPath)
	if err != nil {
		return err
	}

	results := []models.FileAnalysis{{File: filepath.Base(transcriptPath), Analysis: analysis}}
	outputFile := filepath.Join(cfg.WorkDir, "transcript_analysis.json")
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputFile, data, 0o644); err != nil {
		return err
	}

	fmt.Printf("Analysis: %s\n", outputFile)
	if analysis.ConsolidatedStockAnalysis != "" {
		fmt.Println()
		fmt.Println(analysis.ConsolidatedStockAnalysis)
	}

	uploadAnalysis(ctx, cfg, filepath.Base(outputFile), results)
	return nil
}

func openRepository(cfg *config.Config) (*sqlite.DB, repository.VideoRepository, error) {
	db, err := sqlite.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	repo, err := sqlite.NewRepository(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, repo, nil
}

func newDownloadService(cfg *config.Config, repo repository.VideoRepository, force bool) download.Service {
	downloader := media.NewDownloader(media.DownloaderConfig{
		BinPath: cfg.Download.YTDLPPath,
		WorkDir: cfg.WorkDir,
	})
	return download.NewService(repo, downloader, download.Config{
		WorkDir: cfg.WorkDir,
		Timeout: cfg.Download.Timeout,
		Force:   force,
	})
}

func newTranscribeService(cfg *config.Config, repo repository.VideoRepository, modelPath string) (transcribe.Service, stt.Engine, error) {
	engine, err := stt.NewEngine(stt.Config{
		ModelPath: modelPath,
		BinPath:   cfg.Whisper.BinPath,
	})
	if err != nil {
		return nil, nil, err
	}

	archive, err := newArchiver(cfg)
	if err != nil {
		engine.Close()
		return nil, nil, err
	}

	service := transcribe.NewService(repo, engine, archive, transcribe.Config{
		WorkDir:    cfg.WorkDir,
		FFmpegPath: cfg.Download.FFmpegPath,
		Timeout:    cfg.Whisper.Timeout,
		Language:   cfg.Whisper.Language,
		Threads:    cfg.Whisper.Threads,
	})
	return service, engine, nil
}

func newAnalyzeService(cfg *config.Config, apiKey string, maxConcurrency int) (analyze.Service, error) {
	if apiKey == "" {
		apiKey = cfg.OpenRouter.APIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenRouter API key is required; provide --api-key or set OPENROUTER_API_KEY")
	}

	client := openrouter.NewClient(openrouter.Config{
		APIKey:            apiKey,
		Model:             cfg.OpenRouter.Model,
		BaseURL:           cfg.OpenRouter.BaseURL,
		RequestTimeout:    cfg.OpenRouter.RequestTimeout,
		RateLimit:         cfg.OpenRouter.RateLimit,
		RateLimitInterval: cfg.OpenRouter.RateLimitInterval,
	})

	return analyze.NewService(client, analyze.Config{
		ChunkSize:      cfg.Analysis.ChunkSize,
		ChunkOverlap:   cfg.Analysis.ChunkOverlap,
		MaxConcurrency: maxConcurrency,
	}), nil
}

func newArchiver(cfg *config.Config) (transcribe.Archiver, error) {
	if !cfg.Spaces.Enabled {
		return nil, nil
	}
	client, err := storage.NewSpacesClient(storage.SpacesConfig{
		AccessKey: cfg.Spaces.AccessKey,
		SecretKey: cfg.Spaces.SecretKey,
		Region:    cfg.Spaces.Region,
		Endpoint:  cfg.Spaces.Endpoint,
		Bucket:    cfg.Spaces.Bucket,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// uploadAnalysis archives batch results when Spaces is enabled. The
// local file stays the source of truth, so failures are logged only.
func uploadAnalysis(ctx context.Context, cfg *config.Config, name string, results []models.FileAnalysis) {
	if !cfg.Spaces.Enabled {
		return
	}
	client, err := storage.NewSpacesClient(storage.SpacesConfig{
		AccessKey: cfg.Spaces.AccessKey,
		SecretKey: cfg.Spaces.SecretKey,
		Region:    cfg.Spaces.Region,
		Endpoint:  cfg.Spaces.Endpoint,
		Bucket:    cfg.Spaces.Bucket,
	})
	if err != nil {
		logrus.WithError(err).Warn("Failed to create storage client")
		return
	}
	if err := client.SaveAnalysis(ctx, name, results); err != nil {
		logrus.WithError(err).Warn("Failed to archive analysis results")
	}
}
