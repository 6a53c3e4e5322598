package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"jobrelay/internal/domain"
	"jobrelay/internal/scrape/util"
)

const sentinel = "N/A"

// placeholder body used when a page yields no usable sections at all; a
// posting is never published with an empty body.
var noDetails = domain.Section{Heading: fallbackHeading, Text: "No details available."}

// Extractor fetches one posting detail page and produces a structured record,
// degrading missing markup to sentinel values instead of failing.
type Extractor struct {
	UserAgent string

	// selectors / label markers of the source site
	TitleSel    string // default "h1#jobTitle"
	ContentSels []string

	MaxSectionWords int
	MaxSectionChars int

	// RequireFields rejects records whose title, employment type or location
	// are all missing, instead of publishing a half-empty message.
	RequireFields bool

	hc      *http.Client
	limiter *util.Limiter
	log     zerolog.Logger
}

func NewExtractor(userAgent string, maxWords, maxChars int, requireFields bool, limiter *util.Limiter, log zerolog.Logger) *Extractor {
	if maxWords <= 0 {
		maxWords = 20
	}
	return &Extractor{
		UserAgent:       userAgent,
		TitleSel:        "h1#jobTitle",
		ContentSels:     []string{"div.job-description", "article", "main"},
		MaxSectionWords: maxWords,
		MaxSectionChars: maxChars,
		RequireFields:   requireFields,
		hc:              &http.Client{Timeout: 15 * time.Second},
		limiter:         limiter,
		log:             log.With().Str("component", "extractor").Logger(),
	}
}

// Extract fetches identity and parses it into a FetchOutcome. Only the fetch
// itself is retried; parse problems degrade to sentinels.
func (e *Extractor) Extract(ctx context.Context, identity string) domain.FetchOutcome {
	doc, err := e.fetch(ctx, identity)
	if err != nil {
		reason := domain.FailFetch
		if errors.Is(err, errBadHTML) {
			reason = domain.FailParse
		}
		e.log.Warn().Str("url", identity).Err(err).Msg("fetch failed")
		return domain.Failure(identity, reason, err)
	}

	p := &domain.Posting{
		Identity:   identity,
		JobID:      ExtractJobID(identity),
		Title:      sentinel,
		Employment: sentinel,
		Location:   sentinel,
		Deadline:   sentinel,
		FetchedAt:  time.Now().UTC(),
	}

	if t := util.CleanText(doc.Find(e.TitleSel).First().Text()); t != "" {
		p.Title = t
	}

	e.labeledFields(doc, p)

	content := e.contentRegion(doc)
	p.Sections = Sections(content, e.MaxSectionWords, e.MaxSectionChars)
	if len(p.Sections) == 0 {
		p.Sections = []domain.Section{noDetails}
	}

	if e.RequireFields && p.Title == sentinel && p.Employment == sentinel && p.Location == sentinel {
		return domain.Failure(identity, domain.FailInvalid, fmt.Errorf("no usable fields on page"))
	}

	e.log.Debug().Str("url", identity).Str("title", p.Title).Int("sections", len(p.Sections)).Msg("extracted")
	return domain.Success(p)
}

const (
	fetchAttempts = 3
	fetchBackoff  = 500 * time.Millisecond
)

// errBadHTML marks a body that came back 2xx but could not be parsed, so the
// outcome is tagged as a parse failure rather than a fetch failure.
var errBadHTML = errors.New("unparseable detail html")

func (e *Extractor) fetch(ctx context.Context, u string) (*goquery.Document, error) {
	var lastErr error
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		req.Header.Set("User-Agent", e.UserAgent)

		res, err := e.hc.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("get detail: %w", err)
		} else {
			if res.StatusCode < 400 {
				doc, perr := goquery.NewDocumentFromReader(res.Body)
				res.Body.Close()
				if perr != nil {
					return nil, fmt.Errorf("%w: %v", errBadHTML, perr)
				}
				return doc, nil
			}
			res.Body.Close()
			lastErr = fmt.Errorf("detail status %d", res.StatusCode)
		}

		if attempt < fetchAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * fetchBackoff):
			}
		}
	}
	return nil, lastErr
}

// labeledFields scans the info rows (h5 with a strong label) for the fixed
// label strings the site uses.
func (e *Extractor) labeledFields(doc *goquery.Document, p *domain.Posting) {
	doc.Find("h5").Each(func(_ int, h *goquery.Selection) {
		label := util.CleanText(h.Find("strong").First().Text())
		if label == "" {
			return
		}
		value := func(marker string) string {
			v := strings.Replace(util.CleanText(h.Text()), marker, "", 1)
			return strings.TrimSpace(v)
		}
		switch {
		case strings.Contains(label, "Employment:"):
			if v := value("Employment:"); v != "" {
				p.Employment = v
			}
		case strings.Contains(label, "Place of Work:"):
			if v := value("Place of Work:"); v != "" {
				p.Location = v
			}
		case strings.Contains(label, "Deadline:"):
			if v := value("Deadline:"); v != "" {
				p.Deadline = v
			}
		}
	})
}

func (e *Extractor) contentRegion(doc *goquery.Document) *goquery.Selection {
	for _, sel := range e.ContentSels {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return nil
}
