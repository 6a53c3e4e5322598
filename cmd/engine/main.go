package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"jobrelay/internal/config"
	"jobrelay/internal/httpapi"
	"jobrelay/internal/ledger"
	"jobrelay/internal/publish"
	"jobrelay/internal/scheduler"
	"jobrelay/internal/scrape"
	"jobrelay/internal/scrape/util"
	"jobrelay/internal/secrets"
)

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit (non-zero when any publish failed)")
	dataFlag := flag.String("data", "", "data directory (overrides JOBRELAY_DATA_DIR)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	dataDir := *dataFlag
	if dataDir == "" {
		dataDir = os.Getenv("JOBRELAY_DATA_DIR")
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("create data dir")
	}

	// one local instance per data dir; concurrent runs on other machines are
	// tolerated by the ledger design, two on the same dir are just waste
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	held, err := lock.TryLock()
	if err != nil {
		log.Fatal().Err(err).Msg("instance lock")
	}
	if !held {
		log.Fatal().Str("dir", dataDir).Msg("another instance is already running")
	}
	defer lock.Unlock()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config bootstrap failed")
	}

	raw, err := config.Load(userCfgPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", userCfgPath).Msg("config load failed")
	}
	cfg, v := config.NormalizeAndValidate(raw)
	for _, w := range v.Warnings {
		log.Warn().Msg(w)
	}
	if !v.OK() {
		log.Fatal().Strs("errors", v.Errors).Msg("config invalid")
	}

	if lvl, err := zerolog.ParseLevel(cfg.App.LogLevel); err == nil {
		log = log.Level(lvl)
	}

	var cfgVal atomic.Value // config.Config
	cfgVal.Store(cfg)

	// credentials: startup-fatal when missing, nothing durable could happen
	botToken, err := secrets.Get(cfg.Telegram.TokenEnv, cfg.Telegram.KeyringAccount)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram token missing")
	}
	gistToken, err := secrets.Get(cfg.Ledger.TokenEnv, cfg.Ledger.KeyringAccount)
	if err != nil {
		log.Fatal().Err(err).Msg("gist token missing")
	}

	// sink creation round-trips to Telegram, so this is the connectivity check
	sink, err := publish.NewTelegramSink(botToken, cfg.Telegram.Channel, log)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram sink init failed")
	}

	cache, err := ledger.OpenCache(filepath.Join(dataDir, "ledger_cache.db"))
	if err != nil {
		log.Warn().Err(err).Msg("local snapshot cache unavailable, continuing without")
		cache = nil
	} else {
		defer cache.Close()
	}

	store := ledger.NewStore(ledger.Config{
		GistID:    cfg.Ledger.GistID,
		Token:     gistToken,
		File:      cfg.Ledger.File,
		Retention: cfg.Retention(),
	}, cache, log)

	// probe the ledger once; an outage here is degraded mode, not fatal
	probeCtx, cancelProbe := context.WithTimeout(context.Background(), 20*time.Second)
	probe := store.Load(probeCtx)
	cancelProbe()
	log.Info().Int("entries", len(probe)).Str("channel", cfg.Telegram.Channel).Msg("starting")

	limiter := util.NewLimiter(cfg.Source.RatePerSec, 1)

	var status atomic.Value // httpapi.CycleStatus

	runCycle := func(ctx context.Context) (publish.Summary, error) {
		c := cfgVal.Load().(config.Config)
		limiter.SetRate(c.Source.RatePerSec)

		lister, err := scrape.NewLister(c.Source.IndexURL, c.Source.BaseURL, c.Source.LinkClass, c.Source.UserAgent, limiter, log)
		if err != nil {
			return publish.Summary{}, fmt.Errorf("lister init: %w", err)
		}
		extractor := scrape.NewExtractor(c.Source.UserAgent, c.Pipeline.MaxSectionWords, c.Pipeline.MaxSectionChars, c.Filters.RequireFields, limiter, log)

		runner := &publish.Runner{
			Lister:        lister,
			Fetcher:       extractor,
			Ledger:        store,
			Sink:          sink,
			MaxCandidates: c.Pipeline.MaxCandidates,
			MaxBatch:      c.Pipeline.MaxBatch,
			Workers:       c.Pipeline.Workers,
			PostDelay:     c.PostDelay(),
			Log:           log,
		}

		st := loadStatus(&status)
		st.Running = true
		st.LastRunAt = time.Now().Format(time.RFC3339)
		status.Store(st)

		sum, err := runner.RunCycle(ctx)

		st = loadStatus(&status)
		st.Running = false
		st.LastListed = sum.Listed
		st.LastNew = sum.New
		st.LastPublished = sum.Published
		st.LastFailed = sum.Failed
		if err != nil {
			st.LastError = err.Error()
		} else {
			st.LastError = ""
			st.LastOkAt = time.Now().Format(time.RFC3339)
		}
		status.Store(st)

		return sum, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.App.HTTPAddr != "" {
		go func() {
			if err := httpapi.Start(cfg.App.HTTPAddr, httpapi.Routes(&status)); err != nil {
				log.Warn().Err(err).Msg("status server stopped")
			}
		}()
	}

	go func() {
		err := config.Watch(ctx, userCfgPath, log, func(c config.Config) {
			cfgVal.Store(c)
		})
		if err != nil {
			log.Warn().Err(err).Msg("config watcher unavailable")
		}
	}()

	if *once {
		sum, err := runCycle(ctx)
		if err != nil {
			log.Error().Err(err).Msg("cycle failed")
			os.Exit(1)
		}
		if sum.Failed > 0 {
			os.Exit(1)
		}
		return
	}

	err = scheduler.Run(ctx, cfg.Pipeline.Schedule, "publish", func(ctx context.Context) error {
		_, err := runCycle(ctx)
		return err
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler failed")
	}
}

func loadStatus(v *atomic.Value) httpapi.CycleStatus {
	if s := v.Load(); s != nil {
		return s.(httpapi.CycleStatus)
	}
	return httpapi.CycleStatus{}
}
