package util

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanTextCollapsesWhitespace(t *testing.T) {
	in := "  Senior Accountant \n\t III  "
	if got := CleanText(in); got != "Senior Accountant III" {
		t.Fatalf("unexpected clean text: %q", got)
	}
}

func TestTruncateWordsBound(t *testing.T) {
	words := make([]string, 100)
	for i := range words {
		words[i] = "word"
	}
	in := strings.Join(words, " ")

	got := TruncateWords(in, 20, 0)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis marker, got %q", got)
	}
	if n := len(strings.Fields(got)); n > 20 {
		t.Fatalf("expected at most 20 words, got %d", n)
	}
}

func TestTruncateWordsShortInputUntouched(t *testing.T) {
	if got := TruncateWords("just five words right here", 20, 0); got != "just five words right here" {
		t.Fatalf("short input should be untouched, got %q", got)
	}
}

func TestTruncateWordsHardCharCap(t *testing.T) {
	in := strings.Repeat("x", 1000) // one giant "word"
	got := TruncateWords(in, 20, 100)
	if len(got) > 103 { // cap + "..."
		t.Fatalf("char cap not applied, len=%d", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis after char cap, got tail %q", got[len(got)-10:])
	}
}

func TestTruncateWordsCharCapKeepsRuneBoundaries(t *testing.T) {
	in := strings.Repeat("የ", 400) // one unbroken word of 3-byte runes
	got := TruncateWords(in, 20, 100)
	if !utf8.ValidString(got) {
		t.Fatalf("char cap produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(strings.TrimSuffix(got, "...")); n > 100 {
		t.Fatalf("expected at most 100 chars, got %d", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis marker, got %q", got)
	}
}

func TestCapRunes(t *testing.T) {
	if got := CapRunes("አዲስ አበባ", 4); got != "አዲስ " {
		t.Fatalf("cap = %q", got)
	}
	if got := CapRunes("short", 10); got != "short" {
		t.Fatalf("short input changed: %q", got)
	}
	if got := CapRunes("anything", 0); got != "anything" {
		t.Fatalf("zero cap should be a no-op, got %q", got)
	}
}
