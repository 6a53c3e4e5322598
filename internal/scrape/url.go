package scrape

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// CanonicalizeURL normalizes a posting URL into the identity used as the
// ledger key. Two hrefs that differ only in scheme/host casing, fragment or
// tracking params collapse to the same identity.
func CanonicalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	// drop common tracking params
	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "ref" || lk == "gclid" || lk == "fbclid" || lk == "msclkid" {
			q.Del(k)
		}
	}

	// deterministic query
	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ResolveHref turns a (possibly relative) index-page href into an absolute
// URL against base. Empty string when it cannot be resolved.
func ResolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

var jobIDRe = regexp.MustCompile(`/(\d+)`)

// ExtractJobID pulls the first numeric path segment out of a posting URL,
// e.g. "https://site/jobs/4711/title" -> "#4711". Display only.
func ExtractJobID(u string) string {
	m := jobIDRe.FindStringSubmatch(u)
	if m == nil {
		return ""
	}
	return "#" + m[1]
}
