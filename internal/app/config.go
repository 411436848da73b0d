package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration constants
const (
	DefaultListenAddr = ":8080"
	DefaultLogLevel   = "info"
	DefaultTrackTTL   = Duration(5 * time.Minute)
)

// Duration wraps time.Duration so config files can say "90s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds application configuration. Every field can come from the
// YAML config file; the serve command layers flag overrides on top.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	SAC        uint8  `yaml:"sac"`
	SIC        uint8  `yaml:"sic"`

	LogLevel      string `yaml:"log_level"`
	LogFile       string `yaml:"log_file"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	LogMaxAgeDays int    `yaml:"log_max_age_days"`

	ArchivePath string `yaml:"archive_path"`

	NATSURL     string `yaml:"nats_url"`
	NATSSubject string `yaml:"nats_subject"`

	TrackCacheTTL Duration `yaml:"track_cache_ttl"`
}

// DefaultConfig returns the configuration used when no file or flags are
// given: listen on :8080, log at info level, no archive, no NATS.
func DefaultConfig() Config {
	return Config{
		ListenAddr:    DefaultListenAddr,
		SAC:           0,
		SIC:           1,
		LogLevel:      DefaultLogLevel,
		TrackCacheTTL: DefaultTrackTTL,
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if config.TrackCacheTTL <= 0 {
		config.TrackCacheTTL = DefaultTrackTTL
	}
	return config, nil
}
