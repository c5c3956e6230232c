package config

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/observiq/opamp-client-go/client/types"
	"github.com/observiq/opamp-client-go/description"
	"github.com/observiq/opamp-client-go/protobufs"
)

var ErrUnknownCapability = errors.New("unknown capability")

// ParseCapabilities ORs together the named AgentCapabilities. Names are matched
// without regard to case.
func ParseCapabilities(names []string) (protobufs.AgentCapabilities, error) {
	var caps protobufs.AgentCapabilities
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		found := false
		for c, known := range protobufs.AgentCapabilities_name {
			if strings.EqualFold(known, name) {
				caps |= c
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: %q", ErrUnknownCapability, name)
		}
	}
	return caps, nil
}

// StartSettings converts c into client start settings. Callbacks and MeterProvider
// are left for the caller to fill in.
func (c *Config) StartSettings(ctx context.Context) (types.StartSettings, error) {
	uid := types.NewInstanceUid()
	if c.InstanceUid != "" {
		var err error
		if uid, err = types.ParseInstanceUid(c.InstanceUid); err != nil {
			return types.StartSettings{}, err
		}
	}

	caps, err := ParseCapabilities(c.Capabilities)
	if err != nil {
		return types.StartSettings{}, err
	}

	descr, err := c.Agent.Description(ctx)
	if err != nil {
		return types.StartSettings{}, err
	}

	tlsConfig, err := c.TLS.Load()
	if err != nil {
		return types.StartSettings{}, err
	}

	settings := types.StartSettings{
		OpAMPServerURL:    c.Endpoint,
		TLSConfig:         tlsConfig,
		EnableHTTP2:       c.EnableHTTP2,
		EnableCompression: c.EnableCompression,
		Agent: types.Agent{
			InstanceUid:      uid,
			AgentDescription: descr,
			Capabilities:     caps,
		},
		RequestTimeout:       c.RequestTimeout,
		RetryInitialInterval: c.Retry.InitialInterval,
		RetryMaxInterval:     c.Retry.MaxInterval,
		RetryMaxElapsedTime:  c.Retry.MaxElapsedTime,
		ShutdownGracePeriod:  c.ShutdownGracePeriod,
		ReportDisconnect:     c.ReportDisconnect,
	}
	if c.HeartbeatInterval > 0 {
		interval := c.HeartbeatInterval
		settings.HeartbeatInterval = &interval
	}
	if len(c.Headers) > 0 {
		settings.Header = http.Header{}
		for k, v := range c.Headers {
			settings.Header.Set(k, v)
		}
	}
	return settings, nil
}

// Description builds the AgentDescription. Name and Version are identifying.
func (a AgentConfig) Description(ctx context.Context) (*protobufs.AgentDescription, error) {
	identifying := map[string]interface{}{
		description.KeyServiceName: a.Name,
	}
	if a.Version != "" {
		identifying[description.KeyServiceVersion] = a.Version
	}

	nonIdentifying := map[string]interface{}{}
	if a.HostAttributes {
		host, err := description.HostAttributes(ctx)
		if err != nil {
			return nil, err
		}
		for k, v := range host {
			nonIdentifying[k] = v
		}
	}
	for k, v := range a.Attributes {
		nonIdentifying[k] = v
	}
	return description.New(identifying, nonIdentifying)
}

// Load returns nil when no TLS option is set so the transport default applies.
func (t TLSConfig) Load() (*tls.Config, error) {
	if !t.Insecure && t.CAFile == "" && t.CertFile == "" && t.KeyFile == "" {
		return nil, nil
	}
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: t.Insecure, //nolint:gosec
	}
	if t.CAFile != "" {
		pem, err := os.ReadFile(t.CAFile)
		if err != nil {
			return nil, fmt.Errorf("cannot read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", t.CAFile)
		}
		cfg.RootCAs = pool
	}
	if t.CertFile != "" || t.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(t.CertFile, t.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("cannot load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}
