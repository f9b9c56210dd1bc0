package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rhit-monroeds/youtube-transcripts/errors"
	"github.com/rhit-monroeds/youtube-transcripts/models"
	"github.com/rhit-monroeds/youtube-transcripts/openrouter"
)

const (
	chunkPrompt = "Analyze the following transcript and provide TWO sections:\n\n" +
		"SECTION 1 - STOCK OPINIONS:\n" +
		"Focus ONLY on opinions about stocks, companies, or market sectors mentioned. " +
		"Identify specific stock recommendations, predictions, or investment opinions. " +
		"Include the stock ticker symbol when mentioned or when you can confidently infer it. " +
		"If no stock opinions are found, state that clearly.\n\n" +
		"SECTION 2 - SENTIMENT ANALYSIS:\n" +
		"For each stock or company mentioned, analyze the sentiment (bullish, bearish, or neutral). " +
		"Consider price targets, time horizons, and confidence levels when mentioned. " +
		"If no stock opinions are present, simply state that no stock sentiment could be analyzed."

	consolidationPrompt = "Provide a comprehensive and organized summary of all stock opinions from the transcript. " +
		"Group opinions by company/stock and highlight any conflicting views or repeated mentions across different sections. " +
		"Focus only on stocks and investing information. Ignore everything else."

	opinionsMarker  = "SECTION 1 - STOCK OPINIONS:"
	sentimentMarker = "SECTION 2 - SENTIMENT ANALYSIS:"

	chunkMaxTokens         = 2000
	consolidationMaxTokens = 1000
)

type service struct {
	client Client
	config Config
	logger *logrus.Logger
}

// NewService wires a transcript analyzer over a completion client.
func NewService(client Client, config Config) Service {
	if config.ChunkSize <= 0 {
		config.ChunkSize = 7000
	}
	if config.ChunkOverlap <= 0 {
		config.ChunkOverlap = 500
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 3
	}
	return &service{
		client: client,
		config: config,
		logger: logrus.StandardLogger(),
	}
}

func (s *service) AnalyzeDirectory(ctx context.Context, dir, outputFile string) ([]models.FileAnalysis, error) {
	const op = "AnalyzeService.AnalyzeDirectory"

	files, err := s.transcriptFiles(dir)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"directory": dir,
		"files":     len(files),
	}).Info("Found transcript files")
	if len(files) == 0 {
		return nil, nil
	}

	results := make([]models.FileAnalysis, len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.config.MaxConcurrency)
	for i, path := range files {
		group.Go(func() error {
			logger := s.logger.WithField("file", filepath.Base(path))
			logger.Info("Analyzing transcript")

			analysis, err := s.AnalyzeFile(groupCtx, path)
			if err != nil {
				// A cancelled batch stops; a single bad file does not.
				if groupCtx.Err() != nil {
					return groupCtx.Err()
				}
				logger.WithError(err).Error("Analysis failed")
				results[i] = models.FileAnalysis{File: filepath.Base(path), Error: err.Error()}
				return nil
			}

			results[i] = models.FileAnalysis{File: filepath.Base(path), Analysis: analysis}
			logger.Info("Analysis complete")
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, errors.Internal(op, err, "analysis batch aborted")
	}

	if outputFile != "" {
		if err := s.writeResults(outputFile, results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (s *service) AnalyzeFile(ctx context.Context, path string) (*models.Analysis, error) {
	const op = "AnalyzeService.AnalyzeFile"

	transcript, err := s.loadTranscript(path)
	if err != nil {
		return nil, err
	}

	info := models.VideoInfoFromMetadata(transcript.Metadata)
	fullText := transcript.FullText()
	if fullText == "" {
		return &models.Analysis{VideoInfo: info, Error: "No transcript text found"}, nil
	}

	s.logger.WithFields(logrus.Fields{
		"title": info.Title,
	}).Info("Analyzing transcript for stock opinions")

	chunks := ChunkText(fullText, s.config.ChunkSize, s.config.ChunkOverlap)
	s.logger.WithFields(logrus.Fields{
		"chunks": len(chunks),
	}).Info("Split transcript for analysis")

	chunkAnalyses := make([]models.ChunkAnalysis, len(chunks))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		group.Go(func() error {
			analysis, err := s.analyzeChunk(groupCtx, chunk, i+1, len(chunks))
			if err != nil {
				return err
			}
			chunkAnalyses[i] = analysis
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, errors.Unavailable(op, err, "chunk analysis failed")
	}

	consolidated, err := s.consolidate(ctx, chunkAnalyses)
	if err != nil {
		return nil, errors.Unavailable(op, err, "consolidation failed")
	}

	return &models.Analysis{
		VideoInfo: info,
		Statistics: &models.AnalysisStatistics{
			WordCount:         len(strings.Fields(fullText)),
			SegmentCount:      len(transcript.Segments),
			ChunkCount:        len(chunks),
			AnalysisTimestamp: time.Now().Format(time.RFC3339),
		},
		ChunkAnalyses:             chunkAnalyses,
		ConsolidatedStockAnalysis: consolidated,
	}, nil
}

func (s *service) analyzeChunk(ctx context.Context, text string, number, total int) (models.ChunkAnalysis, error) {
	s.logger.WithFields(logrus.Fields{
		"chunk": number,
		"total": total,
	}).Info("Extracting stock opinions and sentiment")

	reply, err := s.client.Complete(ctx, chunkPrompt, text, chunkMaxTokens, openrouter.CacheKey("stock_analysis", text))
	if err != nil {
		return models.ChunkAnalysis{}, err
	}

	opinions, sentiment := splitSections(reply)
	return models.ChunkAnalysis{
		ChunkNumber:    number,
		StockOpinions:  opinions,
		StockSentiment: sentiment,
	}, nil
}

// splitSections divides a model reply into its opinion and sentiment
// sections. A reply without exactly one sentiment marker keeps the full
// text as opinions and records the extraction failure.
func splitSections(reply string) (opinions, sentiment string) {
	parts := strings.Split(reply, sentimentMarker)
	if len(parts) != 2 {
		return reply, "Failed to extract sentiment section."
	}
	opinions = strings.TrimSpace(strings.Replace(parts[0], opinionsMarker, "", 1))
	sentiment = strings.TrimSpace(parts[1])
	return opinions, sentiment
}

func (s *service) consolidate(ctx context.Context, analyses []models.ChunkAnalysis) (string, error) {
	blocks := make([]string, 0, len(analyses))
	for _, ca := range analyses {
		blocks = append(blocks, fmt.Sprintf("CHUNK %d:\n%s", ca.ChunkNumber, ca.StockOpinions))
	}
	allOpinions := strings.Join(blocks, "\n\n")

	s.logger.Info("Creating consolidated stock analysis")
	return s.client.Complete(ctx, consolidationPrompt, allOpinions, consolidationMaxTokens, openrouter.CacheKey("consolidated", allOpinions))
}

// transcriptFiles finds transcript documents in dir: any JSON named
// like a transcript, plus any other JSON whose body carries a
// transcript array. Unreadable candidates are skipped.
func (s *service) transcriptFiles(dir string) ([]string, error) {
	const op = "AnalyzeService.transcriptFiles"

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, errors.InvalidInput(op, err, "bad transcript directory")
	}

	var files []string
	for _, path := range paths {
		if strings.Contains(strings.ToLower(filepath.Base(path)), "transcript") {
			files = append(files, path)
			continue
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var doc struct {
			Transcript []json.RawMessage `json:"transcript"`
		}
		if err := json.Unmarshal(raw, &doc); err == nil && doc.Transcript != nil {
			files = append(files, path)
		}
	}
	return files, nil
}

func (s *service) loadTranscript(path string) (*models.Transcript, error) {
	const op = "AnalyzeService.loadTranscript"

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(op, err, "transcript file not found")
		}
		return nil, errors.Internal(op, err, "failed to read transcript file")
	}

	var transcript models.Transcript
	if err := json.Unmarshal(raw, &transcript); err != nil {
		return nil, errors.InvalidInput(op, err, "malformed transcript file")
	}
	return &transcript, nil
}

func (s *service) writeResults(path string, results []models.FileAnalysis) error {
	const op = "AnalyzeService.writeResults"

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return errors.Internal(op, err, "failed to encode analysis results")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Internal(op, err, "failed to write analysis results")
	}

	s.logger.WithFields(logrus.Fields{
		"output": path,
	}).Info("Analysis results saved")
	return nil
}
