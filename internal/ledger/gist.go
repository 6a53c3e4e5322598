package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const DefaultFile = "posted_jobs.json"

// Config for the gist-backed ledger store. The gist may hold unrelated files;
// only File is ever written.
type Config struct {
	APIBase   string // default https://api.github.com, overridable for tests
	GistID    string
	Token     string
	File      string
	Retention time.Duration // default 7 days
}

// Store keeps the durable "already published" map in a GitHub gist. It is
// shared across process instances with no lock, so callers mitigate the race
// by reloading right before commit and committing right after each send.
// Load fails soft: durability of "already posted" outranks availability of
// "know what's new".
type Store struct {
	cfg Config
	hc  *http.Client
	log zerolog.Logger

	// cache persists the last good view locally so a restart during a gist
	// outage still dedupes. Optional.
	cache *Cache

	mu            sync.Mutex
	last          Snapshot
	haveLast      bool
	lastUpdatedAt string
}

func NewStore(cfg Config, cache *Cache, log zerolog.Logger) *Store {
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.github.com"
	}
	if cfg.File == "" {
		cfg.File = DefaultFile
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}
	return &Store{
		cfg:   cfg,
		hc:    &http.Client{Timeout: 15 * time.Second},
		cache: cache,
		log:   log.With().Str("component", "ledger").Logger(),
	}
}

// Load returns the current pruned ledger view. On remote failure it falls
// back to the last good in-memory snapshot, then the local cache, then an
// empty map; it never surfaces transient unavailability to the caller.
func (s *Store) Load(ctx context.Context) Snapshot {
	snap, updatedAt, err := s.loadRemote(ctx)
	if err == nil {
		pruned := snap.Prune(time.Now().UTC(), s.cfg.Retention)

		s.mu.Lock()
		s.last = pruned.Clone()
		s.haveLast = true
		s.lastUpdatedAt = updatedAt
		s.mu.Unlock()

		if s.cache != nil {
			if cerr := s.cache.Put(ctx, pruned); cerr != nil {
				s.log.Warn().Err(cerr).Msg("local snapshot cache write failed")
			}
		}
		s.log.Debug().Int("entries", len(pruned)).Msg("ledger loaded")
		return pruned
	}

	s.log.Warn().Err(err).Msg("ledger load failed, using best-available snapshot")

	s.mu.Lock()
	if s.haveLast {
		out := s.last.Clone()
		s.mu.Unlock()
		return out
	}
	s.mu.Unlock()

	if s.cache != nil {
		if cached, cerr := s.cache.Get(ctx); cerr == nil && cached != nil {
			return cached.Prune(time.Now().UTC(), s.cfg.Retention)
		}
	}
	return Snapshot{}
}

// Save overwrites the ledger file in the gist, leaving co-located files
// untouched. Returns false on failure; the caller decides whether to retry.
func (s *Store) Save(ctx context.Context, snap Snapshot) bool {
	// re-read first: cheap reachability check, and lets us notice another
	// process having written since our load
	_, updatedAt, err := s.loadRemote(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("ledger pre-save read failed")
		return false
	}
	s.mu.Lock()
	if s.lastUpdatedAt != "" && updatedAt != s.lastUpdatedAt {
		s.log.Warn().
			Str("loaded", s.lastUpdatedAt).
			Str("current", updatedAt).
			Msg("ledger document changed since load; a concurrent run may have published")
	}
	s.mu.Unlock()

	content, err := snap.marshal()
	if err != nil {
		s.log.Error().Err(err).Msg("ledger marshal failed")
		return false
	}

	body, _ := json.Marshal(map[string]any{
		"files": map[string]any{
			s.cfg.File: map[string]string{"content": string(content)},
		},
	})

	req, _ := http.NewRequestWithContext(ctx, http.MethodPatch,
		fmt.Sprintf("%s/gists/%s", s.cfg.APIBase, s.cfg.GistID), bytes.NewReader(body))
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	res, err := s.hc.Do(req)
	if err != nil {
		s.log.Warn().Err(err).Msg("ledger save failed")
		return false
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		s.log.Warn().Int("status", res.StatusCode).Msg("ledger save rejected")
		return false
	}

	var doc gistDoc
	if err := json.NewDecoder(res.Body).Decode(&doc); err == nil && doc.UpdatedAt != "" {
		s.mu.Lock()
		s.lastUpdatedAt = doc.UpdatedAt
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.last = snap.Clone()
	s.haveLast = true
	s.mu.Unlock()

	if s.cache != nil {
		if cerr := s.cache.Put(ctx, snap); cerr != nil {
			s.log.Warn().Err(cerr).Msg("local snapshot cache write failed")
		}
	}

	s.log.Debug().Int("entries", len(snap)).Msg("ledger saved")
	return true
}

// CommitOne records a single confirmed publish: fresh load (bypassing any
// cached view), insert, save. Called immediately after each send to shrink
// the window in which a concurrent run could duplicate-publish. Best effort,
// not a lock.
func (s *Store) CommitOne(ctx context.Context, identity string, publishedAt time.Time) bool {
	snap, updatedAt, err := s.loadRemote(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("url", identity).Msg("commit reload failed, using last snapshot")
		s.mu.Lock()
		snap = s.last.Clone()
		s.mu.Unlock()
	} else {
		snap = snap.Prune(time.Now().UTC(), s.cfg.Retention)
		s.mu.Lock()
		s.lastUpdatedAt = updatedAt
		s.mu.Unlock()
	}

	snap[identity] = publishedAt.UTC()

	// remember locally even if the remote save fails: within this process the
	// identity must not be re-sent this cycle
	s.mu.Lock()
	if s.last == nil {
		s.last = Snapshot{}
	}
	s.last[identity] = publishedAt.UTC()
	s.haveLast = true
	s.mu.Unlock()

	return s.Save(ctx, snap)
}

type gistFile struct {
	Content string `json:"content"`
}

type gistDoc struct {
	UpdatedAt string              `json:"updated_at"`
	Files     map[string]gistFile `json:"files"`
}

func (s *Store) loadRemote(ctx context.Context) (Snapshot, string, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/gists/%s", s.cfg.APIBase, s.cfg.GistID), nil)
	s.setHeaders(req)

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("get gist: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		io.Copy(io.Discard, res.Body)
		return nil, "", fmt.Errorf("gist status %d", res.StatusCode)
	}

	var doc gistDoc
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, "", fmt.Errorf("decode gist: %w", err)
	}

	f, ok := doc.Files[s.cfg.File]
	if !ok || f.Content == "" {
		// file not created yet: an empty ledger, not an error
		return Snapshot{}, doc.UpdatedAt, nil
	}
	snap, err := parseSnapshot([]byte(f.Content))
	if err != nil {
		return nil, "", fmt.Errorf("parse ledger content: %w", err)
	}
	return snap, doc.UpdatedAt, nil
}

func (s *Store) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "token "+s.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}
