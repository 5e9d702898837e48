package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize_RemovesNullBytes(t *testing.T) {
	assert.Equal(t, "HelloWorldTest", Sanitize("Hello\x00World\x00Test"))
}

func TestSanitize_ControlCharactersBecomeSpaces(t *testing.T) {
	assert.Equal(t, "a b", Sanitize("a\x01b"))
	assert.Equal(t, "a b", Sanitize("a\x1fb"))
	assert.Equal(t, "a b", Sanitize("a\x7fb"))
	// A control run collapses to a single separating space.
	assert.Equal(t, "a b", Sanitize("a\x02\x03\x04b"))
}

func TestSanitize_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "one two three", Sanitize("one \n\t two\r\n   three"))
	assert.Equal(t, "trimmed", Sanitize("   trimmed \n "))
}

func TestSanitize_DropsCharactersOutsideBMP(t *testing.T) {
	// Emoji and supplementary-plane characters are dropped, BMP text kept.
	assert.Equal(t, "hi there", Sanitize("hi \U0001F600 there"))
	assert.Equal(t, "ok", Sanitize("\U0001F680ok\U0001F680"))
	// BMP non-ASCII survives.
	assert.Equal(t, "naïve 東京", Sanitize("naïve 東京"))
}

func TestSanitize_DropsInvalidUTF8Bytes(t *testing.T) {
	assert.Equal(t, "ab", Sanitize(string([]byte{'a', 0xff, 'b'})))
	// Truncated multi-byte sequence.
	assert.Equal(t, "ab", Sanitize(string([]byte{'a', 0xc3, 'b'})))
}

func TestSanitize_KeepsLiteralReplacementChar(t *testing.T) {
	// U+FFFD encoded as valid UTF-8 is a normal BMP character.
	assert.Equal(t, "a � b", Sanitize("a � b"))
}

func TestSanitize_Empty(t *testing.T) {
	assert.Equal(t, "", Sanitize(""))
	assert.Equal(t, "", Sanitize(" \n\t\x00\x01 "))
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"Hello\x00World",
		"a\x01b\x02c",
		"  spaced \n out  ",
		"emoji \U0001F600 inside",
		string([]byte{0xff, 0xfe, 'x'}),
		"mixed\tws\r\nand\x0bcontrols\x0c!",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "not idempotent for %q", in)
	}
}

func TestSanitize_NoForbiddenBytes(t *testing.T) {
	inputs := []string{
		"a\x00b\x01c\x02d\x7fe",
		"line1\nline2\tline3",
		string([]byte{0x80, 0x81, 'o', 'k'}),
	}
	for _, in := range inputs {
		out := Sanitize(in)
		assert.NotContains(t, out, "\x00")
		for _, r := range out {
			if r < 0x20 || r == 0x7f {
				t.Errorf("Sanitize(%q) kept control character %U", in, r)
			}
		}
		assert.False(t, strings.Contains(out, "  "), "double space in %q", out)
	}
}
