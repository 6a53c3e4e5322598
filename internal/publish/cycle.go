package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"jobrelay/internal/domain"
	"jobrelay/internal/scrape"
)

// Summary is the per-cycle accounting surfaced to logs and the status
// endpoint. Failed counts both failed extractions and failed sends; partial
// failure never aborts a cycle.
type Summary struct {
	Listed    int `json:"listed"`
	New       int `json:"new"`
	Published int `json:"published"`
	Failed    int `json:"failed"`
}

// Runner orchestrates one list -> fetch -> publish cycle. Publishing is
// strictly sequential: it keeps the commit-after-send invariant simple and
// respects the sink's rate limits.
type Runner struct {
	Lister  Lister
	Fetcher scrape.Fetcher
	Ledger  Ledger
	Sink    Sink

	MaxCandidates int           // cap on raw lister output, before the ledger filter
	MaxBatch      int           // cap on identities handed to the pool
	Workers       int
	PostDelay     time.Duration // pacing between sends

	Log zerolog.Logger

	// sleep is swappable in tests
	sleep func(ctx context.Context, d time.Duration)
}

// RunCycle runs one complete cycle. Only a total inability to list candidates
// is cycle-fatal; everything else degrades to counts.
func (r *Runner) RunCycle(ctx context.Context) (Summary, error) {
	log := r.Log.With().Str("component", "cycle").Logger()
	var sum Summary

	snap := r.Ledger.Load(ctx)

	ids, err := r.Lister.List(ctx)
	if err != nil {
		return sum, fmt.Errorf("list candidates: %w", err)
	}
	sum.Listed = len(ids)

	// cap the raw listing first so remote-call volume per cycle stays bounded
	// no matter how much of the page is already published
	if r.MaxCandidates > 0 && len(ids) > r.MaxCandidates {
		ids = ids[:r.MaxCandidates]
	}

	var fresh []string
	for _, id := range ids {
		if snap.Has(id) {
			log.Debug().Str("url", id).Msg("skipping already posted")
			continue
		}
		fresh = append(fresh, id)
	}
	sum.New = len(fresh)

	if len(fresh) == 0 {
		log.Info().Int("listed", sum.Listed).Msg("no new postings")
		return sum, nil
	}

	outcomes := scrape.RunBatch(ctx, r.Fetcher, fresh, r.Workers, r.MaxBatch)

	extracted := make(map[string]*domain.Posting, len(outcomes))
	for _, o := range outcomes {
		if o.OK() {
			extracted[o.Identity] = o.Posting
			continue
		}
		sum.Failed++
		log.Warn().Str("url", o.Identity).Str("reason", string(o.Reason)).Err(o.Err).Msg("extract failed")
	}

	// second filter against a fresh snapshot: another process may have
	// published some of these while we were fetching. Narrows the race, does
	// not eliminate it.
	recheck := r.Ledger.Load(ctx)

	// restore lister order; the pool returns completion order
	var queue []*domain.Posting
	for _, id := range fresh {
		p, ok := extracted[id]
		if !ok {
			continue
		}
		if recheck.Has(id) {
			log.Info().Str("url", id).Msg("published elsewhere during fetch, skipping")
			continue
		}
		queue = append(queue, p)
	}

	for i, p := range queue {
		if _, err := r.Sink.Send(ctx, *p); err != nil {
			sum.Failed++
			log.Warn().Str("url", p.Identity).Err(err).Msg("send failed, will retry next cycle")
		} else {
			sum.Published++
			if !r.Ledger.CommitOne(ctx, p.Identity, time.Now().UTC()) {
				// the send went out but the ledger write did not; next cycle
				// may duplicate this item, which self-heals once a save lands
				log.Warn().Str("url", p.Identity).Msg("ledger commit failed after send")
			}
		}

		if i < len(queue)-1 && r.PostDelay > 0 {
			r.doSleep(ctx, r.PostDelay)
		}
		if ctx.Err() != nil {
			break
		}
	}

	log.Info().
		Int("listed", sum.Listed).
		Int("new", sum.New).
		Int("published", sum.Published).
		Int("failed", sum.Failed).
		Msg("cycle done")
	return sum, nil
}

func (r *Runner) doSleep(ctx context.Context, d time.Duration) {
	if r.sleep != nil {
		r.sleep(ctx, d)
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
