package domain

import "time"

// Section is one heading-delimited chunk of a posting body.
type Section struct {
	Heading string
	Text    string
}

// Posting is one extracted job posting. Identity is the canonical absolute
// URL of the detail page and doubles as the ledger/dedupe key.
type Posting struct {
	Identity   string
	JobID      string // "#1234" derived from the URL path, display only
	Title      string
	Employment string
	Location   string
	Deadline   string
	Sections   []Section
	FetchedAt  time.Time
}

type FailReason string

const (
	FailFetch   FailReason = "fetch_error"
	FailParse   FailReason = "parse_error"
	FailInvalid FailReason = "invalid"
)

// FetchOutcome is the tagged result of extracting one identity.
// Posting is nil on failure; Reason/Err say why.
type FetchOutcome struct {
	Identity string
	Posting  *Posting
	Reason   FailReason
	Err      error
}

func (o FetchOutcome) OK() bool { return o.Posting != nil }

func Success(p *Posting) FetchOutcome {
	return FetchOutcome{Identity: p.Identity, Posting: p}
}

func Failure(identity string, reason FailReason, err error) FetchOutcome {
	return FetchOutcome{Identity: identity, Reason: reason, Err: err}
}
