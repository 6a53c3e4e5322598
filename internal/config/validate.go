package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate fills defaults and returns a normalized copy plus the
// validation result. Missing credentials are checked at startup (secrets
// package), not here; this only covers the file-backed surface.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	// ---- defaults ----
	if strings.TrimSpace(out.App.DataDir) == "" {
		out.App.DataDir = "."
	}
	if strings.TrimSpace(out.App.LogLevel) == "" {
		out.App.LogLevel = "info"
	}
	if strings.TrimSpace(out.Source.LinkClass) == "" {
		out.Source.LinkClass = "color-green"
	}
	if strings.TrimSpace(out.Source.UserAgent) == "" {
		out.Source.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if out.Source.RatePerSec <= 0 {
		out.Source.RatePerSec = 2
	}
	if strings.TrimSpace(out.Telegram.TokenEnv) == "" {
		out.Telegram.TokenEnv = "JOBRELAY_TELEGRAM_TOKEN"
	}
	if strings.TrimSpace(out.Ledger.TokenEnv) == "" {
		out.Ledger.TokenEnv = "JOBRELAY_GIST_TOKEN"
	}
	if strings.TrimSpace(out.Ledger.File) == "" {
		out.Ledger.File = "posted_jobs.json"
	}
	if out.Ledger.RetentionDays <= 0 {
		out.Ledger.RetentionDays = 7
	}
	if strings.TrimSpace(out.Pipeline.Schedule) == "" {
		out.Pipeline.Schedule = "@every 30s"
	}
	if out.Pipeline.PostDelaySeconds <= 0 {
		out.Pipeline.PostDelaySeconds = 1
	}
	if out.Pipeline.MaxCandidates <= 0 {
		out.Pipeline.MaxCandidates = 15
	}
	if out.Pipeline.MaxBatch <= 0 {
		out.Pipeline.MaxBatch = 10
	}
	if out.Pipeline.Workers <= 0 {
		out.Pipeline.Workers = 3
	}
	if out.Pipeline.MaxSectionWords <= 0 {
		out.Pipeline.MaxSectionWords = 20
	}
	if out.Pipeline.MaxSectionChars <= 0 {
		out.Pipeline.MaxSectionChars = 600
	}

	// ---- validation rules ----
	if strings.TrimSpace(out.Source.IndexURL) == "" {
		res.addErr("source.index_url is required")
	}
	if strings.TrimSpace(out.Source.BaseURL) == "" {
		res.addErr("source.base_url is required")
	}
	if strings.TrimSpace(out.Telegram.Channel) == "" {
		res.addErr("telegram.channel is required")
	}
	if strings.TrimSpace(out.Ledger.GistID) == "" {
		res.addErr("ledger.gist_id is required")
	}

	if out.Pipeline.MaxBatch > out.Pipeline.MaxCandidates {
		res.addWarn("pipeline.max_batch (%d) exceeds max_candidates (%d); the extra headroom is unused",
			out.Pipeline.MaxBatch, out.Pipeline.MaxCandidates)
	}
	if out.Pipeline.Workers > 10 {
		res.addWarn("pipeline.workers is high (%d); the source site may throttle or block", out.Pipeline.Workers)
	}
	if out.Ledger.RetentionDays < 2 {
		res.addWarn("ledger.retention_days is very low (%d); recently posted items may repeat", out.Ledger.RetentionDays)
	}

	return out, res
}
