// Package config loads agent configuration from a YAML file and the environment and
// turns it into client StartSettings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"

	"github.com/observiq/opamp-client-go/client/types"
	"github.com/observiq/opamp-client-go/logging"
)

// EnvPrefix prefixes environment overrides. A double underscore separates nested keys:
// OPAMP_RETRY__MAX_INTERVAL sets retry.max_interval.
const EnvPrefix = "OPAMP_"

// Config is the root agent configuration.
type Config struct {
	// Endpoint is the OpAMP Server URL. http, https, ws and wss are supported.
	Endpoint string `koanf:"endpoint"`
	// InstanceUid in hex or ULID form. A new one is generated when empty.
	InstanceUid string            `koanf:"instance_uid"`
	Headers     map[string]string `koanf:"headers"`
	TLS         TLSConfig         `koanf:"tls"`

	EnableHTTP2       bool `koanf:"enable_http2"`
	EnableCompression bool `koanf:"enable_compression"`

	HeartbeatInterval   time.Duration `koanf:"heartbeat_interval"`
	RequestTimeout      time.Duration `koanf:"request_timeout"`
	ShutdownGracePeriod time.Duration `koanf:"shutdown_grace_period"`
	ReportDisconnect    bool          `koanf:"report_disconnect"`
	Retry               RetryConfig   `koanf:"retry"`

	// Capabilities lists AgentCapabilities names, e.g. ReportsHealth.
	Capabilities []string `koanf:"capabilities"`

	Agent   AgentConfig    `koanf:"agent"`
	Log     logging.Config `koanf:"log"`
	Metrics MetricsConfig  `koanf:"metrics"`
}

type TLSConfig struct {
	Insecure bool   `koanf:"insecure"`
	CAFile   string `koanf:"ca_file"`
	CertFile string `koanf:"cert_file"`
	KeyFile  string `koanf:"key_file"`
}

type RetryConfig struct {
	InitialInterval time.Duration `koanf:"initial_interval"`
	MaxInterval     time.Duration `koanf:"max_interval"`
	MaxElapsedTime  time.Duration `koanf:"max_elapsed_time"`
}

// AgentConfig describes the agent to the Server.
type AgentConfig struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`
	// Attributes are reported as non-identifying attributes.
	Attributes map[string]string `koanf:"attributes"`
	// HostAttributes adds host name, OS and architecture to the description.
	HostAttributes bool `koanf:"host_attributes"`
}

// MetricsConfig configures the export of client metrics over OTLP/HTTP. Metrics are
// not exported when Endpoint is empty.
type MetricsConfig struct {
	Endpoint string        `koanf:"endpoint"`
	Insecure bool          `koanf:"insecure"`
	Interval time.Duration `koanf:"interval"`
}

var (
	ErrMissingEndpoint = errors.New("endpoint must be set")
	ErrMissingName     = errors.New("agent.name must be set")
	ErrInvalidDuration = errors.New("duration must not be negative")
)

// Default returns a Config populated with the client defaults.
func Default() *Config {
	return &Config{
		HeartbeatInterval:   types.DefaultHeartbeatInterval,
		RequestTimeout:      types.DefaultRequestTimeout,
		ShutdownGracePeriod: types.DefaultShutdownGracePeriod,
		Retry: RetryConfig{
			InitialInterval: types.DefaultRetryInitialInterval,
			MaxInterval:     types.DefaultRetryMaxInterval,
		},
		Capabilities: []string{"ReportsHealth"},
		Agent:        AgentConfig{HostAttributes: true},
		Log:          logging.DefaultConfig(),
		Metrics:      MetricsConfig{Interval: time.Minute},
	}
}

// Load reads defaults, then the YAML file at path if path is not empty, then
// environment variables prefixed with EnvPrefix. Later sources win.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("cannot load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("cannot load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("cannot load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("cannot decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// defaults flattens Default() into koanf keys.
func defaults() map[string]interface{} {
	d := Default()
	return map[string]interface{}{
		"heartbeat_interval":        d.HeartbeatInterval.String(),
		"request_timeout":           d.RequestTimeout.String(),
		"shutdown_grace_period":     d.ShutdownGracePeriod.String(),
		"retry.initial_interval":    d.Retry.InitialInterval.String(),
		"retry.max_interval":        d.Retry.MaxInterval.String(),
		"capabilities":              d.Capabilities,
		"agent.host_attributes":     d.Agent.HostAttributes,
		"log.level":                 d.Log.Level,
		"log.format":                d.Log.Format,
		"log.outputs":               d.Log.Outputs,
		"log.rotation.max_size_mb":  d.Log.Rotation.MaxSizeMB,
		"log.rotation.max_backups":  d.Log.Rotation.MaxBackups,
		"log.rotation.max_age_days": d.Log.Rotation.MaxAgeDays,
		"metrics.interval":          d.Metrics.Interval.String(),
	}
}

// Validate checks the configuration without touching the network or the filesystem.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return ErrMissingEndpoint
	}
	if _, err := url.Parse(c.Endpoint); err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if c.Agent.Name == "" {
		return ErrMissingName
	}
	if c.InstanceUid != "" {
		if _, err := types.ParseInstanceUid(c.InstanceUid); err != nil {
			return err
		}
	}
	for name, d := range map[string]time.Duration{
		"heartbeat_interval":     c.HeartbeatInterval,
		"request_timeout":        c.RequestTimeout,
		"shutdown_grace_period":  c.ShutdownGracePeriod,
		"retry.initial_interval": c.Retry.InitialInterval,
		"retry.max_interval":     c.Retry.MaxInterval,
		"retry.max_elapsed_time": c.Retry.MaxElapsedTime,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s is %s", ErrInvalidDuration, name, d)
		}
	}
	if _, err := ParseCapabilities(c.Capabilities); err != nil {
		return err
	}
	return nil
}
