package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sanitize normalizes raw extracted text for chunking and storage.
//
// NUL bytes are removed outright. Other C0 control characters and DEL are
// replaced with a space so they keep separating words. Invalid UTF-8 bytes
// and characters above U+FFFF are dropped: extraction output only needs the
// Basic Multilingual Plane, so emoji and supplementary-plane CJK are lost.
// Known limitation, kept for compatibility with stored chunks.
//
// Whitespace runs collapse to a single ASCII space and the result is
// trimmed. Sanitize(Sanitize(s)) == Sanitize(s) for every input.
func Sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	pendingSpace := false
	for i, r := range raw {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(raw[i:]); size <= 1 {
				continue // invalid byte sequence
			}
		}
		switch {
		case r == 0:
			// NUL never leaves a separator behind.
		case r > 0xFFFF:
			// Outside the BMP.
		case r < 0x20 || r == 0x7F || unicode.IsSpace(r):
			pendingSpace = true
		default:
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
