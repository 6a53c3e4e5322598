package publish

import (
	"context"
	"time"

	"jobrelay/internal/domain"
	"jobrelay/internal/ledger"
)

// Sink delivers one formatted posting to the notification channel, returning
// a message identifier on success.
type Sink interface {
	Send(ctx context.Context, p domain.Posting) (string, error)
}

// Lister yields the ordered candidate identities currently advertised.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// Ledger is the dedupe authority. Load never errors (fail-soft by contract);
// CommitOne reports whether the durable write went through.
type Ledger interface {
	Load(ctx context.Context) ledger.Snapshot
	CommitOne(ctx context.Context, identity string, publishedAt time.Time) bool
}
