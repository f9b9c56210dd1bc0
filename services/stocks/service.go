package stocks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/rhit-monroeds/youtube-transcripts/errors"
	"github.com/rhit-monroeds/youtube-transcripts/models"
)

const reportHeader = "STOCK OPINIONS ANALYSIS\n======================\n\n"

type service struct {
	logger *logrus.Logger
}

func NewService() Service {
	return &service{logger: logrus.StandardLogger()}
}

func (s *service) Extract(ctx context.Context, inputPath, jsonPath, textPath string) ([]Stock, error) {
	results, err := s.loadAnalyses(inputPath)
	if err != nil {
		return nil, err
	}

	stocks := collectStocks(results)

	if err := s.writeJSON(jsonPath, stocks); err != nil {
		return nil, err
	}
	if err := s.writeReport(textPath, stocks); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"stocks": len(stocks),
		"json":   jsonPath,
		"report": textPath,
	}).Info("Stock opinions extracted")

	return stocks, nil
}

// collectStocks scans the opinion and sentiment text of every chunk
// analysis for bulleted stock lines, grouping by ticker (name when no
// ticker was detected) and deduplicating repeated opinion text. Stocks
// come back in first-seen order.
func collectStocks(results []models.FileAnalysis) []Stock {
	byKey := make(map[string]*Stock)
	var order []string

	for _, result := range results {
		if result.Analysis == nil {
			continue
		}
		for _, chunk := range result.Analysis.ChunkAnalyses {
			for _, section := range []string{chunk.StockOpinions, chunk.StockSentiment} {
				for _, line := range strings.Split(section, "\n") {
					if !strings.Contains(line, "*") || !strings.Contains(line, ":") {
						continue
					}
					name, ticker, opinion := parseOpinionLine(line)
					if name == "" || opinion == "" {
						continue
					}

					key := ticker
					if key == "" {
						key = name
					}
					stock, ok := byKey[key]
					if !ok {
						stock = &Stock{Name: name, Ticker: ticker, Opinions: []Opinion{}}
						byKey[key] = stock
						order = append(order, key)
					}
					if hasOpinion(stock, opinion) {
						continue
					}
					stock.Opinions = append(stock.Opinions, Opinion{Text: opinion, Chunk: chunk.ChunkNumber})
				}
			}
		}
	}

	stocks := make([]Stock, 0, len(order))
	for _, key := range order {
		stocks = append(stocks, *byKey[key])
	}
	return stocks
}

// parseOpinionLine pulls the company name, optional ticker, and opinion
// out of a bulleted line like "* Acme Corp (ACME): strong buy". The
// ticker form needs a closing paren after the opening one and a colon
// after that; otherwise the line splits plainly on its first colon.
func parseOpinionLine(line string) (name, ticker, opinion string) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(line, "*", ""))

	if open := strings.Index(cleaned, "("); open != -1 && strings.Contains(cleaned[open:], ")") {
		name = strings.TrimSpace(cleaned[:open])

		rest := strings.SplitN(cleaned[open+1:], ")", 2)
		ticker = strings.TrimSpace(rest[0])

		if idx := strings.Index(rest[1], ":"); idx != -1 {
			opinion = strings.TrimSpace(rest[1][idx+1:])
		}
		return name, ticker, opinion
	}

	parts := strings.SplitN(cleaned, ":", 2)
	name = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		opinion = strings.TrimSpace(parts[1])
	}
	return name, ticker, opinion
}

func hasOpinion(stock *Stock, text string) bool {
	for _, opinion := range stock.Opinions {
		if opinion.Text == text {
			return true
		}
	}
	return false
}

func (s *service) loadAnalyses(path string) ([]models.FileAnalysis, error) {
	const op = "StockService.loadAnalyses"

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(op, err, "analysis file not found")
		}
		return nil, errors.Internal(op, err, "failed to read analysis file")
	}

	var results []models.FileAnalysis
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, errors.InvalidInput(op, err, "malformed analysis file")
	}
	return results, nil
}

func (s *service) writeJSON(path string, stocks []Stock) error {
	const op = "StockService.writeJSON"

	data, err := json.MarshalIndent(stocks, "", "  ")
	if err != nil {
		return errors.Internal(op, err, "failed to encode stock opinions")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Internal(op, err, "failed to write stock opinions")
	}
	return nil
}

// writeReport renders the plain-text report: stocks sorted by name,
// each under a dash underline, one bullet per opinion with its chunk
// number.
func (s *service) writeReport(path string, stocks []Stock) error {
	const op = "StockService.writeReport"

	sorted := make([]Stock, len(stocks))
	copy(sorted, stocks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	b.WriteString(reportHeader)

	for _, stock := range sorted {
		heading := stock.Name + " "
		if stock.Ticker != "" {
			heading += "(" + stock.Ticker + ")"
		}
		b.WriteString(heading + "\n")
		b.WriteString(strings.Repeat("-", utf8.RuneCountInString(heading)) + "\n")
		for _, opinion := range stock.Opinions {
			fmt.Fprintf(&b, "• %s (Chunk %d)\n", opinion.Text, opinion.Chunk)
		}
		b.WriteString("\n\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return errors.Internal(op, err, "failed to write stock report")
	}
	return nil
}
