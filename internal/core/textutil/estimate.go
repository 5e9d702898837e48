package textutil

import "unicode/utf8"

// EstimateTokens approximates the token count of s as ceil(runes / 4).
// It is a deterministic heuristic for quota accounting and context-window
// budgeting, not real tokenizer output; callers must never treat it as
// billing truth. Recompute it wherever a token count is needed instead of
// caching a different value.
func EstimateTokens(s string) int {
	n := utf8.RuneCountInString(s)
	if n <= 0 {
		return 0
	}
	return (n + 3) / 4
}

// EstimatePages approximates page count assuming 5 characters per word and
// 500 words per page, rounding up. Empty text is 0 pages; any non-empty
// text is at least 1.
func EstimatePages(s string) int {
	n := utf8.RuneCountInString(s)
	if n <= 0 {
		return 0
	}
	return (n + 2499) / 2500
}
