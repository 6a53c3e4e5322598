package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"jobrelay/internal/scrape/util"
)

// Lister produces the ordered, deduplicated set of posting identities
// currently advertised on the source index page. The site marks posting
// links with an anchor class; if the markup convention changes this silently
// finds fewer (or zero) candidates, which is data quality, not a crash.
type Lister struct {
	IndexURL  string
	LinkClass string // anchor class marking posting links
	UserAgent string

	base    *url.URL
	hc      *http.Client
	limiter *util.Limiter
	log     zerolog.Logger
}

func NewLister(indexURL, baseURL, linkClass, userAgent string, limiter *util.Limiter, log zerolog.Logger) (*Lister, error) {
	b, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if linkClass == "" {
		linkClass = "color-green"
	}
	return &Lister{
		IndexURL:  indexURL,
		LinkClass: linkClass,
		UserAgent: userAgent,
		base:      b,
		hc:        &http.Client{Timeout: 15 * time.Second},
		limiter:   limiter,
		log:       log.With().Str("component", "lister").Logger(),
	}, nil
}

// List fetches the index page and returns candidate identities in page order.
func (l *Lister) List(ctx context.Context) ([]string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, l.IndexURL, nil)
	req.Header.Set("User-Agent", l.UserAgent)

	res, err := l.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get index: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("index status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse index html: %w", err)
	}

	seen := map[string]bool{}
	var ids []string
	doc.Find("a." + l.LinkClass).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		abs := ResolveHref(l.base, href)
		if abs == "" {
			return
		}
		id := CanonicalizeURL(abs)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	})

	l.log.Debug().Int("found", len(ids)).Msg("index scan done")
	return ids, nil
}
