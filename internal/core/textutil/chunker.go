package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// One-or-more consecutive terminators count as a single sentence boundary.
var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// Chunk splits text into chunks of roughly maxChunkSize runes along sentence
// boundaries. The input is sanitized first, so callers may pass raw
// extractor output.
//
// Sentences are accumulated greedily and joined with ". ". When the next
// sentence would overflow a non-empty buffer, the buffer is flushed and the
// sentence starts the next chunk whole — a chunk may exceed maxChunkSize by
// that sentence-boundary slack. A sentence that overflows an empty buffer is
// cut at exactly maxChunkSize runes and the remainder seeds the next buffer.
//
// Pure function: empty input yields no chunks, identical input yields
// identical output, and every emitted chunk is sanitized.
func Chunk(text string, maxChunkSize int) []string {
	text = Sanitize(text)
	if text == "" || maxChunkSize <= 0 {
		return nil
	}

	var fragments []string
	for _, part := range sentenceBoundary.Split(text, -1) {
		if part = strings.TrimSpace(part); part != "" {
			fragments = append(fragments, part)
		}
	}

	var chunks []string
	var buf string
	bufLen := 0

	for _, frag := range fragments {
		fragLen := utf8.RuneCountInString(frag)
		switch {
		case bufLen+fragLen <= maxChunkSize:
			if buf == "" {
				buf = frag
				bufLen = fragLen
			} else {
				buf += ". " + frag
				bufLen += 2 + fragLen
			}
		case buf != "":
			chunks = append(chunks, Sanitize(buf))
			buf = frag
			bufLen = fragLen
		default:
			// Oversized sentence against an empty buffer: hard cut at the
			// limit, carry the rest forward unchecked.
			r := []rune(frag)
			chunks = append(chunks, Sanitize(string(r[:maxChunkSize])))
			buf = string(r[maxChunkSize:])
			bufLen = fragLen - maxChunkSize
		}
	}

	if strings.TrimSpace(buf) != "" {
		chunks = append(chunks, Sanitize(buf))
	}
	return chunks
}
