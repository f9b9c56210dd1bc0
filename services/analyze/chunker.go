package analyze

import "strings"

// sentenceWindow is how far back from the end of a window ChunkText
// looks for a sentence boundary to cut on.
const sentenceWindow = 500

// ChunkText splits text into windows of at most size bytes, each
// starting overlap bytes before the end of the previous one so context
// carries across the cut. Cuts prefer a sentence end near the window
// boundary; the final window always runs to the end of the text.
func ChunkText(text string, size, overlap int) []string {
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}

		from := end - sentenceWindow
		if from < start {
			from = start
		}
		if cut := lastSentenceEnd(text[from:end]); cut != -1 {
			// Keep the punctuation and the following space in this chunk.
			end = from + cut + 2
		}

		chunks = append(chunks, text[start:end])

		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// lastSentenceEnd returns the offset of the last sentence-ending mark
// in s, or -1 when s contains none.
func lastSentenceEnd(s string) int {
	best := -1
	for _, mark := range []string{". ", "! ", "? "} {
		if idx := strings.LastIndex(s, mark); idx > best {
			best = idx
		}
	}
	return best
}
