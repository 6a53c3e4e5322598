package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		DataDir  string `yaml:"data_dir"`
		HTTPAddr string `yaml:"http_addr"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Source struct {
		BaseURL    string  `yaml:"base_url"`
		IndexURL   string  `yaml:"index_url"`
		LinkClass  string  `yaml:"link_class"`
		UserAgent  string  `yaml:"user_agent"`
		RatePerSec float64 `yaml:"rate_per_sec"`
	} `yaml:"source"`

	Telegram struct {
		Channel        string `yaml:"channel"`
		TokenEnv       string `yaml:"token_env"`
		KeyringAccount string `yaml:"keyring_account"`
	} `yaml:"telegram"`

	Ledger struct {
		GistID         string `yaml:"gist_id"`
		File           string `yaml:"file"`
		TokenEnv       string `yaml:"token_env"`
		KeyringAccount string `yaml:"keyring_account"`
		RetentionDays  int    `yaml:"retention_days"`
	} `yaml:"ledger"`

	Pipeline struct {
		Schedule         string `yaml:"schedule"`
		PostDelaySeconds int    `yaml:"post_delay_seconds"`
		MaxCandidates    int    `yaml:"max_candidates"`
		MaxBatch         int    `yaml:"max_batch"`
		Workers          int    `yaml:"workers"`
		MaxSectionWords  int    `yaml:"max_section_words"`
		MaxSectionChars  int    `yaml:"max_section_chars"`
	} `yaml:"pipeline"`

	Filters struct {
		RequireFields bool `yaml:"require_fields"`
	} `yaml:"filters"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func (c Config) PostDelay() time.Duration {
	return time.Duration(c.Pipeline.PostDelaySeconds) * time.Second
}

func (c Config) Retention() time.Duration {
	return time.Duration(c.Ledger.RetentionDays) * 24 * time.Hour
}
