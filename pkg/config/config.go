package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/dd0wney/cluso-pockets/pkg/topology"
	"github.com/dd0wney/cluso-pockets/pkg/validation"
	"gopkg.in/yaml.v3"
)

// Config is the pocketd configuration file
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Server  ServerConfig  `yaml:"server"`
	Notify  NotifyConfig  `yaml:"notify"`
	Logging LoggingConfig `yaml:"logging"`
}

// ModelConfig locates and interprets the topology dump
type ModelConfig struct {
	Dir             string `yaml:"dir"`
	Delimiter       string `yaml:"delimiter"`
	StrictNeighbors bool   `yaml:"strict_neighbors"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigin      string        `yaml:"cors_origin"`
	// ReloadPerMinute throttles POST /api/v1/reload per client; 0 disables the limit.
	ReloadPerMinute int `yaml:"reload_per_minute"`
	// MaxBodyBytes caps request bodies, mainly GraphQL queries.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// NotifyConfig configures model-loaded notifications. Empty Addr disables them.
type NotifyConfig struct {
	Addr string `yaml:"addr"`
	// QueueLen is the per-subscriber send buffer; slow subscribers drop messages past it.
	QueueLen int `yaml:"queue_len"`
}

// LoggingConfig sets the log level
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Dir:       "./data_dump",
			Delimiter: topology.DefaultDelimiter,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigin:      "*",
			ReloadPerMinute: 6,
			MaxBodyBytes:    1 << 20,
		},
		Notify: NotifyConfig{
			QueueLen: 16,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from POCKETS_* variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("POCKETS_MODEL_DIR"); ok {
		c.Model.Dir = v
	}
	if v, ok := lookup("POCKETS_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := lookup("POCKETS_NOTIFY_ADDR"); ok {
		c.Notify.Addr = v
	}
	if v, ok := lookup("POCKETS_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := lookup("POCKETS_STRICT_NEIGHBORS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("POCKETS_STRICT_NEIGHBORS: %w", err)
		}
		c.Model.StrictNeighbors = b
	}
	return nil
}

// Validate checks every section and reports all problems at once
func (c *Config) Validate() error {
	model := validation.NewConfigValidator("model").
		Required("dir", c.Model.Dir).
		Required("delimiter", c.Model.Delimiter)

	server := validation.NewConfigValidator("server").
		Required("addr", c.Server.Addr).
		Custom("addr", func() error {
			_, _, err := net.SplitHostPort(c.Server.Addr)
			return err
		}).
		MinDuration("read_timeout", c.Server.ReadTimeout, time.Millisecond).
		MinDuration("write_timeout", c.Server.WriteTimeout, time.Millisecond).
		MinDuration("shutdown_timeout", c.Server.ShutdownTimeout, time.Millisecond).
		RangeInt("reload_per_minute", c.Server.ReloadPerMinute, 0, 600).
		Custom("max_body_bytes", func() error {
			if c.Server.MaxBodyBytes < 1024 {
				return fmt.Errorf("must be at least 1024, got %d", c.Server.MaxBodyBytes)
			}
			return nil
		})

	notify := validation.NewConfigValidator("notify").
		When(c.Notify.Addr != "", func(cv *validation.ConfigValidator) {
			cv.RangeInt("queue_len", c.Notify.QueueLen, 1, 4096)
		})

	logging := validation.NewConfigValidator("logging").
		OneOf("level", c.Logging.Level, []string{"debug", "info", "warn", "error", "DEBUG", "INFO", "WARN", "ERROR"})

	return errors.Join(model.Validate(), server.Validate(), notify.Validate(), logging.Validate())
}
