package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"jobrelay/internal/domain"
	"jobrelay/internal/scrape/util"
)

func testExtractor(requireFields bool) *Extractor {
	return NewExtractor("test-agent", 20, 600, requireFields, util.NewLimiter(1000, 100), zerolog.Nop())
}

func serveHTML(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const detailFixture = `
<html><body>
<h1 id="jobTitle">Senior Accountant</h1>
<h5><strong>Employment:</strong> Full time</h5>
<h5><strong>Place of Work:</strong> Addis Ababa</h5>
<h5><strong>Deadline:</strong> Dec 31, 2026</h5>
<div class="job-description">
  <p>Navigation chrome before the first heading is ignored.</p>
  <h3>Responsibilities</h3>
  <p>one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen seventeen eighteen nineteen twenty twentyone twentytwo twentythree twentyfour twentyfive</p>
  <h3>Requirements</h3>
  <p>Degree in accounting and two years of experience.</p>
</div>
</body></html>`

func TestExtractStructuredFields(t *testing.T) {
	srv := serveHTML(t, detailFixture)

	out := testExtractor(false).Extract(context.Background(), srv.URL+"/jobs/4711")
	if !out.OK() {
		t.Fatalf("extract failed: %v (%s)", out.Err, out.Reason)
	}
	p := out.Posting

	if p.Title != "Senior Accountant" {
		t.Fatalf("title = %q", p.Title)
	}
	if p.Employment != "Full time" {
		t.Fatalf("employment = %q", p.Employment)
	}
	if p.Location != "Addis Ababa" {
		t.Fatalf("location = %q", p.Location)
	}
	if p.Deadline != "Dec 31, 2026" {
		t.Fatalf("deadline = %q", p.Deadline)
	}
	if p.JobID != "#4711" {
		t.Fatalf("job id = %q", p.JobID)
	}

	if len(p.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d: %+v", len(p.Sections), p.Sections)
	}
	if p.Sections[0].Heading != "Responsibilities" || p.Sections[1].Heading != "Requirements" {
		t.Fatalf("unexpected section headings: %+v", p.Sections)
	}
	if !strings.HasSuffix(p.Sections[0].Text, "...") {
		t.Fatalf("long section not truncated: %q", p.Sections[0].Text)
	}
	if n := len(strings.Fields(p.Sections[0].Text)); n > 20 {
		t.Fatalf("section exceeds word bound: %d words", n)
	}
}

func TestExtractFallbackParagraphs(t *testing.T) {
	srv := serveHTML(t, `
<html><body>
<h1 id="jobTitle">Driver</h1>
<div class="job-description">
  <p>We are looking for an experienced driver for our Addis Ababa office fleet.</p>
  <p>How to apply: send your CV to the address below before the deadline.</p>
  <p>short</p>
</div>
</body></html>`)

	out := testExtractor(false).Extract(context.Background(), srv.URL+"/jobs/1")
	if !out.OK() {
		t.Fatalf("extract failed: %v", out.Err)
	}
	secs := out.Posting.Sections
	if len(secs) != 1 || secs[0].Heading != "Job Description" {
		t.Fatalf("expected one synthetic section, got %+v", secs)
	}
	if strings.Contains(strings.ToLower(secs[0].Text), "how to apply") {
		t.Fatalf("boilerplate not filtered: %q", secs[0].Text)
	}
}

func TestExtractPlaceholderWhenNoBody(t *testing.T) {
	srv := serveHTML(t, `<html><body><h1 id="jobTitle">Guard</h1></body></html>`)

	out := testExtractor(false).Extract(context.Background(), srv.URL+"/jobs/2")
	if !out.OK() {
		t.Fatalf("extract failed: %v", out.Err)
	}
	if len(out.Posting.Sections) != 1 {
		t.Fatalf("expected placeholder section, got %+v", out.Posting.Sections)
	}
	if out.Posting.Sections[0].Text == "" {
		t.Fatal("placeholder section has empty text")
	}
}

func TestExtractMissingMarkupDegradesToSentinels(t *testing.T) {
	srv := serveHTML(t, `<html><body><p>nothing recognizable here</p></body></html>`)

	out := testExtractor(false).Extract(context.Background(), srv.URL+"/x")
	if !out.OK() {
		t.Fatalf("degraded page must still extract, got %v", out.Err)
	}
	p := out.Posting
	if p.Title != "N/A" || p.Employment != "N/A" || p.Location != "N/A" || p.Deadline != "N/A" {
		t.Fatalf("expected sentinels, got %+v", p)
	}
}

func TestExtractRequireFieldsRejects(t *testing.T) {
	srv := serveHTML(t, `<html><body><p>nothing recognizable here</p></body></html>`)

	out := testExtractor(true).Extract(context.Background(), srv.URL+"/x")
	if out.OK() {
		t.Fatal("expected rejection under require_fields")
	}
	if out.Reason != domain.FailInvalid {
		t.Fatalf("reason = %s, want %s", out.Reason, domain.FailInvalid)
	}
}

func TestExtractRetriesTransientFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, detailFixture)
	}))
	t.Cleanup(srv.Close)

	out := testExtractor(false).Extract(context.Background(), srv.URL+"/jobs/9")
	if !out.OK() {
		t.Fatalf("expected success after retries, got %v", out.Err)
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestExtractAmharicBodyStaysValidUTF8(t *testing.T) {
	body := strings.Repeat("የ", 700) // one unbroken word of 3-byte runes
	srv := serveHTML(t, `<html><body><h1 id="jobTitle">ጸሐፊ</h1>
<div class="job-description"><p>`+body+`</p></div></body></html>`)

	out := testExtractor(false).Extract(context.Background(), srv.URL+"/jobs/7")
	if !out.OK() {
		t.Fatalf("extract failed: %v", out.Err)
	}
	for _, sec := range out.Posting.Sections {
		if !utf8.ValidString(sec.Text) {
			t.Fatalf("section %q text is not valid UTF-8: %q", sec.Heading, sec.Text)
		}
	}
}

func TestExtractTruncatedBodyIsParseFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// promise a body, deliver a fragment, hang up
		conn, buf, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Errorf("hijack: %v", err)
			return
		}
		buf.WriteString("HTTP/1.1 200 OK\r\nContent-Length: 500\r\n\r\n<html>")
		buf.Flush()
		conn.Close()
	}))
	t.Cleanup(srv.Close)

	out := testExtractor(false).Extract(context.Background(), srv.URL+"/jobs/3")
	if out.OK() {
		t.Fatal("expected failure on truncated body")
	}
	if out.Reason != domain.FailParse {
		t.Fatalf("reason = %s, want %s", out.Reason, domain.FailParse)
	}
}

func TestExtractFetchErrorOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	out := testExtractor(false).Extract(context.Background(), srv.URL+"/gone")
	if out.OK() {
		t.Fatal("expected fetch failure")
	}
	if out.Reason != domain.FailFetch {
		t.Fatalf("reason = %s, want %s", out.Reason, domain.FailFetch)
	}
}
