package scrape

import (
	"net/url"
	"testing"
)

func TestCanonicalizeURLStripsTrackingAndFragment(t *testing.T) {
	cases := map[string]string{
		"https://Site.example/jobs/123?ref=x":           "https://site.example/jobs/123",
		"https://site.example/jobs/123#apply":           "https://site.example/jobs/123",
		"https://site.example/jobs/123?utm_source=tg":   "https://site.example/jobs/123",
		"https://site.example/jobs/123?page=2&utm_id=9": "https://site.example/jobs/123?page=2",
	}
	for in, want := range cases {
		if got := CanonicalizeURL(in); got != want {
			t.Fatalf("CanonicalizeURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonicalizeURLSameIdentity(t *testing.T) {
	a := CanonicalizeURL("https://site.example/jobs/1")
	b := CanonicalizeURL("https://site.example/jobs/1?ref=x")
	if a != b {
		t.Fatalf("expected same identity, got %q vs %q", a, b)
	}
}

func TestResolveHref(t *testing.T) {
	base, _ := url.Parse("https://site.example")
	if got := ResolveHref(base, "/jobs/42"); got != "https://site.example/jobs/42" {
		t.Fatalf("relative href not resolved: %q", got)
	}
	if got := ResolveHref(base, "https://other.example/j/1"); got != "https://other.example/j/1" {
		t.Fatalf("absolute href mangled: %q", got)
	}
}

func TestExtractJobID(t *testing.T) {
	if got := ExtractJobID("https://site.example/jobs/4711/senior-dev"); got != "#4711" {
		t.Fatalf("job id = %q, want #4711", got)
	}
	if got := ExtractJobID("https://site.example/about"); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
}
