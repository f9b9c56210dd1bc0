package analyze

import (
	"strings"
	"testing"
)

func TestChunkTextShortText(t *testing.T) {
	text := "One sentence. Another sentence."
	chunks := ChunkText(text, 7000, 500)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("expected chunk to equal input, got %q", chunks[0])
	}
}

func TestChunkTextSentenceBoundaries(t *testing.T) {
	text := "Aaaa bbbb. Cccc dddd. Eeee ffff. Gggg hhhh."
	chunks := ChunkText(text, 25, 5)

	want := []string{
		"Aaaa bbbb. Cccc dddd. ",
		"ddd. Eeee ffff. ",
		"fff. Gggg hhhh.",
	}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %q", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestChunkTextHardCutsWithoutSentences(t *testing.T) {
	chunks := ChunkText(strings.Repeat("a", 10), 4, 1)
	want := []string{"aaaa", "aaaa", "aaaa"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %q", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestChunkTextBoundaryWindow(t *testing.T) {
	// A sentence end well before the window is ignored.
	far := strings.Repeat("a", 6000) + ". " + strings.Repeat("b", 2000)
	chunks := ChunkText(far, 7000, 500)
	if len(chunks[0]) != 7000 {
		t.Errorf("expected hard cut at 7000, got %d", len(chunks[0]))
	}

	// One inside the window moves the cut to just after it.
	near := strings.Repeat("a", 6800) + ". " + strings.Repeat("b", 1200)
	chunks = ChunkText(near, 7000, 500)
	if len(chunks[0]) != 6802 {
		t.Errorf("expected cut after the sentence end, got %d", len(chunks[0]))
	}
	if !strings.HasSuffix(chunks[0], ". ") {
		t.Errorf("expected first chunk to end at a sentence boundary, got %q", chunks[0][len(chunks[0])-10:])
	}
}

func TestChunkTextCoversToEnd(t *testing.T) {
	text := strings.Repeat("a", 1000)
	chunks := ChunkText(text, 400, 100)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 400 {
			t.Errorf("chunk %d exceeds size: %d", i, len(chunk))
		}
	}
	if chunks[2] != text[600:] {
		t.Errorf("expected final chunk to run to the end of the text")
	}
}
