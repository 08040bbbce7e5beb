package config

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the settings file read when HUECMD_CONFIG is unset
const DefaultPath = "appsettings.json"

// ${NAME} or ${NAME:fallback}
var placeholder = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// Config represents the application configuration
type Config struct {
	Hue       HueConfig       `yaml:"hue"`
	Queue     QueueConfig     `yaml:"queue"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Discovery DiscoveryConfig `yaml:"discovery"`

	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// HueConfig contains Hue bridge connection settings
type HueConfig struct {
	BaseURL      string   `yaml:"baseUrl"`
	Username     string   `yaml:"username"`
	Queue        string   `yaml:"queue"`          // Name of the queue polled for light commands
	Timeout      Duration `yaml:"timeout"`        // HTTP timeout for bridge requests
	RateLimitRPS float64  `yaml:"rate_limit_rps"` // Bridge request budget (default: 10)
}

// QueueConfig contains queue backend settings
type QueueConfig struct {
	Driver            string   `yaml:"driver"`   // "sqs" or "spool"
	Region            string   `yaml:"region"`   // AWS region for sqs
	Endpoint          string   `yaml:"endpoint"` // Optional sqs endpoint override
	Path              string   `yaml:"path"`     // SQLite file for spool
	MaxMessages       int      `yaml:"max_messages"`
	WaitTime          Duration `yaml:"wait_time"`
	PollInterval      Duration `yaml:"poll_interval"`
	VisibilityTimeout Duration `yaml:"visibility_timeout"` // spool only
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Colors bool   `yaml:"colors"`
	JSON   bool   `yaml:"json"`
}

// MetricsConfig contains the metrics/health server settings used in queue mode
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// DiscoveryConfig contains bridge discovery settings
type DiscoveryConfig struct {
	Timeout Duration `yaml:"timeout"`
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Path returns the settings file location, honouring HUECMD_CONFIG
func Path() string {
	if p := os.Getenv("HUECMD_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads and parses the configuration file.
// The file is optional: a missing file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		// JSON settings files are valid YAML
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, err
		}
	}

	if level := os.Getenv("HUECMD_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	// Hue defaults
	if cfg.Hue.Timeout == 0 {
		cfg.Hue.Timeout = Duration(30 * time.Second)
	}
	if cfg.Hue.RateLimitRPS == 0 {
		cfg.Hue.RateLimitRPS = 10.0
	}
	cfg.Hue.BaseURL = strings.TrimRight(cfg.Hue.BaseURL, "/")

	// Queue defaults
	if cfg.Queue.Driver == "" {
		cfg.Queue.Driver = "sqs"
	}
	if cfg.Queue.Region == "" {
		cfg.Queue.Region = "us-west-2"
	}
	if cfg.Queue.Path == "" {
		cfg.Queue.Path = "./huecmd-queue.sqlite"
	}
	if cfg.Queue.MaxMessages <= 0 {
		cfg.Queue.MaxMessages = 10
	}
	if cfg.Queue.WaitTime == 0 {
		cfg.Queue.WaitTime = Duration(10 * time.Second)
	}
	if cfg.Queue.PollInterval == 0 {
		cfg.Queue.PollInterval = Duration(5 * time.Second)
	}
	if cfg.Queue.VisibilityTimeout == 0 {
		cfg.Queue.VisibilityTimeout = Duration(30 * time.Second)
	}

	// Metrics defaults
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "0.0.0.0"
	}

	if cfg.Discovery.Timeout == 0 {
		cfg.Discovery.Timeout = Duration(5 * time.Second)
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = Duration(5 * time.Second)
	}
}

// expandEnvVars substitutes ${NAME} placeholders; unset or empty
// variables take the fallback after the colon, or "".
func expandEnvVars(input string) string {
	return placeholder.ReplaceAllStringFunc(input, func(match string) string {
		m := placeholder.FindStringSubmatch(match)
		if val := os.Getenv(m[1]); val != "" {
			return val
		}
		return m[2]
	})
}
