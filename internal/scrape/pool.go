package scrape

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"jobrelay/internal/domain"
)

// Fetcher extracts one identity. Satisfied by *Extractor; tests substitute
// fakes.
type Fetcher interface {
	Extract(ctx context.Context, identity string) domain.FetchOutcome
}

// RunBatch maps f over identities with a fixed-size worker pool. The input is
// first capped to maxBatch to bound cycle duration and remote-call volume.
// Results come back in completion order, not submission order. A failed
// extraction never cancels sibling work.
func RunBatch(ctx context.Context, f Fetcher, identities []string, workers, maxBatch int) []domain.FetchOutcome {
	if maxBatch > 0 && len(identities) > maxBatch {
		identities = identities[:maxBatch]
	}
	if len(identities) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = 3
	}
	if workers > len(identities) {
		workers = len(identities)
	}

	workCh := make(chan string)
	outCh := make(chan domain.FetchOutcome, len(identities))

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for id := range workCh {
				outCh <- f.Extract(ctx, id)
			}
			return nil
		})
	}

	var feed sync.WaitGroup
	feed.Add(1)
	go func() {
		defer feed.Done()
		defer close(workCh)
		for _, id := range identities {
			select {
			case <-ctx.Done():
				return
			case workCh <- id:
			}
		}
	}()

	_ = g.Wait()
	feed.Wait()
	close(outCh)

	out := make([]domain.FetchOutcome, 0, len(identities))
	for o := range outCh {
		out = append(out, o)
	}
	return out
}
