package ledger

import (
	"encoding/json"
	"time"
)

// Snapshot is one loaded view of the ledger: identity -> time of publish.
// Presence of a key means "do not republish". Snapshots are short-lived and
// passed through the cycle call chain; the remote document stays the single
// source of truth.
type Snapshot map[string]time.Time

func (s Snapshot) Has(identity string) bool {
	_, ok := s[identity]
	return ok
}

func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Prune returns a view without entries older than retention. The underlying
// document is only rewritten on the next Save.
func (s Snapshot) Prune(now time.Time, retention time.Duration) Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		if now.Sub(v) < retention {
			out[k] = v
		}
	}
	return out
}

func parseSnapshot(content []byte) (Snapshot, error) {
	raw := map[string]string{}
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, err
	}
	out := make(Snapshot, len(raw))
	now := time.Now().UTC()
	for k, v := range raw {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			// keep entries with mangled timestamps rather than re-publishing
			t = now
		}
		out[k] = t
	}
	return out, nil
}

func (s Snapshot) marshal() ([]byte, error) {
	raw := make(map[string]string, len(s))
	for k, v := range s {
		raw[k] = v.UTC().Format(time.RFC3339)
	}
	return json.MarshalIndent(raw, "", "  ")
}
