package util

import (
	"strings"
	"unicode/utf8"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// CapRunes bounds s to n runes. Posting text is partly Amharic, so cutting
// on bytes would split a rune and corrupt the string.
func CapRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// TruncateWords bounds s to maxWords words, appending "..." when anything was
// cut. maxChars is a hard safety cap applied after the word cut (some postings
// paste whole documents into a single unbroken "word").
func TruncateWords(s string, maxWords, maxChars int) string {
	words := strings.Fields(s)
	truncated := false
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
		truncated = true
	}
	out := strings.Join(words, " ")
	if capped := strings.TrimSpace(CapRunes(out, maxChars)); capped != out {
		out = capped
		truncated = true
	}
	if truncated {
		out += "..."
	}
	return out
}
