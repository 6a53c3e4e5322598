package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watch reloads the config file whenever it changes on disk and hands the
// result to onChange. Editors often write via rename, so the watch is on the
// directory, filtered to our file. Blocks until ctx is done.
func Watch(ctx context.Context, path string, log zerolog.Logger, onChange func(Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return err
	}

	log = log.With().Str("component", "config").Logger()

	// debounce: editors fire several events per save
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(250 * time.Millisecond)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("config watcher error")
		case <-pending:
			pending = nil
			cfg, err := Load(path)
			if err != nil {
				log.Warn().Err(err).Msg("config reload failed, keeping previous")
				continue
			}
			norm, v := NormalizeAndValidate(cfg)
			if !v.OK() {
				log.Warn().Strs("errors", v.Errors).Msg("config reload invalid, keeping previous")
				continue
			}
			for _, warn := range v.Warnings {
				log.Warn().Msg(warn)
			}
			log.Info().Msg("config reloaded")
			onChange(norm)
		}
	}
}
