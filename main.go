package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	cli "github.com/spf13/pflag"

	"github.com/rhit-monroeds/youtube-transcripts/config"
	"github.com/rhit-monroeds/youtube-transcripts/logger"
)

const usage = `yt-transcripts turns YouTube videos into stock-opinion reports:
audio is downloaded with yt-dlp, transcribed locally with whisper.cpp,
and the transcripts are analyzed through OpenRouter.

Usage:
  yt-transcripts [flags] <command> [command flags] [args]

Commands:
  download    <youtube_url>  Fetch the audio track and metadata for a video
  transcribe  <audio_file>   Transcribe a downloaded audio file
  analyze                    Analyze transcripts for stock opinions
  extract                    Write per-stock opinion reports from an analysis
  run         <youtube_url>  Download, transcribe, and analyze in one go

Flags:
`

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	workDir := cli.StringP("work-dir", "w", "", "Working directory for audio and transcripts")
	logLevel := cli.StringP("log-level", "l", "", "Log level (debug, info, warn, error)")
	cli.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		cli.PrintDefaults()
	}
	cli.CommandLine.SetInterspersed(false)
	cli.Parse()

	args := cli.Args()
	if len(args) == 0 {
		cli.Usage()
		os.Exit(2)
	}

	godotenv.Load(*envFile)

	if *workDir != "" {
		os.Setenv("WORK_DIR", *workDir)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	if err := logger.Init(cfg.LogDir, cfg.LogLevel, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dispatch(ctx, cfg, args[0], args[1:]); err != nil {
		logrus.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, cfg *config.Config, command string, args []string) error {
	switch command {
	case "download":
		return runDownload(ctx, cfg, args)
	case "transcribe":
		return runTranscribe(ctx, cfg, args)
	case "analyze":
		return runAnalyze(ctx, cfg, args)
	case "extract":
		return runExtract(ctx, cfg, args)
	case "run":
		return runPipeline(ctx, cfg, args)
	default:
		cli.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}
