package stocks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rhit-monroeds/youtube-transcripts/errors"
	"github.com/rhit-monroeds/youtube-transcripts/models"
)

func TestParseOpinionLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want [3]string
	}{
		{
			name: "ticker form",
			line: "* Acme Corp (ACME): strong buy",
			want: [3]string{"Acme Corp", "ACME", "strong buy"},
		},
		{
			name: "bold markers",
			line: "**Tesla (TSLA)**: bearish short term",
			want: [3]string{"Tesla", "TSLA", "bearish short term"},
		},
		{
			name: "no ticker",
			line: "* Microsoft: cloud growth continues",
			want: [3]string{"Microsoft", "", "cloud growth continues"},
		},
		{
			name: "ticker but no colon",
			line: "* Acme (ACME) looks great",
			want: [3]string{"Acme", "ACME", ""},
		},
		{
			name: "closing paren before opening",
			line: "* a) b (c: x",
			want: [3]string{"a) b (c", "", "x"},
		},
		{
			name: "padded ticker",
			line: "* Alphabet ( GOOGL ): buy",
			want: [3]string{"Alphabet", "GOOGL", "buy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ticker, opinion := parseOpinionLine(tt.line)
			if name != tt.want[0] || ticker != tt.want[1] || opinion != tt.want[2] {
				t.Errorf("parseOpinionLine(%q) = (%q, %q, %q), want (%q, %q, %q)",
					tt.line, name, ticker, opinion, tt.want[0], tt.want[1], tt.want[2])
			}
		})
	}
}

func testAnalyses() []models.FileAnalysis {
	return []models.FileAnalysis{
		{
			File: "transcript_dQw4w9WgXcQ_20240101_120000.json",
			Analysis: &models.Analysis{
				ChunkAnalyses: []models.ChunkAnalysis{
					{
						ChunkNumber:    1,
						StockOpinions:  "* Acme Corp (ACME): strong buy\nNo other opinions here.",
						StockSentiment: "* Acme Corp (ACME): strong buy\n* Beta Industries: cautious optimism",
					},
					{
						ChunkNumber:   2,
						StockOpinions: "* Acme (ACME): raising price target",
					},
				},
			},
		},
		{File: "transcript_broken.json", Error: "malformed transcript file"},
	}
}

func TestCollectStocks(t *testing.T) {
	stocks := collectStocks(testAnalyses())
	if len(stocks) != 2 {
		t.Fatalf("expected 2 stocks, got %d: %+v", len(stocks), stocks)
	}

	acme := stocks[0]
	if acme.Name != "Acme Corp" || acme.Ticker != "ACME" {
		t.Errorf("unexpected first stock %+v", acme)
	}
	if len(acme.Opinions) != 2 {
		t.Fatalf("expected 2 deduplicated opinions for ACME, got %+v", acme.Opinions)
	}
	if acme.Opinions[0].Text != "strong buy" || acme.Opinions[0].Chunk != 1 {
		t.Errorf("unexpected first opinion %+v", acme.Opinions[0])
	}
	if acme.Opinions[1].Text != "raising price target" || acme.Opinions[1].Chunk != 2 {
		t.Errorf("unexpected second opinion %+v", acme.Opinions[1])
	}

	beta := stocks[1]
	if beta.Name != "Beta Industries" || beta.Ticker != "" {
		t.Errorf("unexpected second stock %+v", beta)
	}
	if len(beta.Opinions) != 1 || beta.Opinions[0].Text != "cautious optimism" {
		t.Errorf("unexpected opinions %+v", beta.Opinions)
	}
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "transcript_analysis.json")
	jsonPath := filepath.Join(dir, "stock_opinions.json")
	textPath := filepath.Join(dir, "stock_opinions.txt")

	data, err := json.MarshalIndent(testAnalyses(), "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(inputPath, data, 0o644); err != nil {
		t.Fatal(err)
	}

	service := NewService()
	stocks, err := service.Extract(context.Background(), inputPath, jsonPath, textPath)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(stocks) != 2 {
		t.Fatalf("expected 2 stocks, got %d", len(stocks))
	}

	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read json output: %v", err)
	}
	var written []Stock
	if err := json.Unmarshal(raw, &written); err != nil {
		t.Fatalf("parse json output: %v", err)
	}
	if len(written) != 2 || written[0].Ticker != "ACME" {
		t.Errorf("unexpected json output %+v", written)
	}

	report, err := os.ReadFile(textPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	want := "STOCK OPINIONS ANALYSIS\n" +
		"======================\n\n" +
		"Acme Corp (ACME)\n" +
		"----------------\n" +
		"• strong buy (Chunk 1)\n" +
		"• raising price target (Chunk 2)\n" +
		"\n\n" +
		"Beta Industries \n" +
		"----------------\n" +
		"• cautious optimism (Chunk 1)\n" +
		"\n\n"
	if string(report) != want {
		t.Errorf("unexpected report:\n%s\nwant:\n%s", report, want)
	}
}

func TestExtractEmptyAnalyses(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "transcript_analysis.json")
	if err := os.WriteFile(inputPath, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	service := NewService()
	stocks, err := service.Extract(context.Background(), inputPath,
		filepath.Join(dir, "stock_opinions.json"), filepath.Join(dir, "stock_opinions.txt"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(stocks) != 0 {
		t.Errorf("expected no stocks, got %+v", stocks)
	}

	report, err := os.ReadFile(filepath.Join(dir, "stock_opinions.txt"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.HasPrefix(string(report), "STOCK OPINIONS ANALYSIS\n") {
		t.Errorf("expected report header, got %q", report)
	}
}

func TestExtractMissingInput(t *testing.T) {
	dir := t.TempDir()
	service := NewService()

	_, err := service.Extract(context.Background(), filepath.Join(dir, "missing.json"),
		filepath.Join(dir, "out.json"), filepath.Join(dir, "out.txt"))
	if !errors.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestExtractMalformedInput(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "transcript_analysis.json")
	if err := os.WriteFile(inputPath, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	service := NewService()
	_, err := service.Extract(context.Background(), inputPath,
		filepath.Join(dir, "out.json"), filepath.Join(dir, "out.txt"))
	if !errors.IsInvalidInput(err) {
		t.Fatalf("expected invalid-input error, got %v", err)
	}
}
