package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Feed struct {
		// Column headers of the submission feed. The reference deployment
		// uses Google Forms zh-TW exports, so those are the defaults.
		TimestampColumn   string `yaml:"timestamp_column"`
		ParticipantColumn string `yaml:"participant_column"`
		AnswerColumn      string `yaml:"answer_column"`
		CacheTTL          string `yaml:"cache_ttl"`
	} `yaml:"feed"`
	Scoring struct {
		BasePoints int `yaml:"base_points"`
		Decay      int `yaml:"decay"`
		FloorPoint int `yaml:"floor_points"`
	} `yaml:"scoring"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
}

// Load reads YAML config from path and fills defaults for anything unset.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Feed.TimestampColumn == "" {
		c.Feed.TimestampColumn = "時間戳記"
	}
	if c.Feed.ParticipantColumn == "" {
		c.Feed.ParticipantColumn = "您的員工編號"
	}
	if c.Feed.AnswerColumn == "" {
		c.Feed.AnswerColumn = "本題答案"
	}
	if c.Scoring.BasePoints == 0 {
		c.Scoring.BasePoints = 130
	}
	if c.Scoring.Decay == 0 {
		c.Scoring.Decay = 2
	}
	if c.Scoring.FloorPoint == 0 {
		c.Scoring.FloorPoint = 100
	}
}

// TTLDuration parses a duration string or returns the fallback if empty or
// invalid.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
