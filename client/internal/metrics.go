package internal

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/observiq/opamp-client-go/client"

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Kinds of directives the client ignores.
const (
	ignoredCommand             = "command"
	ignoredRemoteConfig        = "remote_config"
	ignoredConnectionSettings  = "connection_settings"
	ignoredPackagesAvailable   = "packages_available"
	ignoredAgentIdentification = "agent_identification"
	ignoredUnknownField        = "unknown_field"
	ignoredHeartbeatInterval   = "heartbeat_interval"
)

type clientMetrics struct {
	messagesSent      metric.Int64Counter
	directivesIgnored metric.Int64Counter
}

func newClientMetrics(mp metric.MeterProvider) (*clientMetrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	sent, err := meter.Int64Counter(
		"opamp.client.messages.sent",
		metric.WithDescription("AgentToServer send attempts by outcome"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create messages counter: %w", err)
	}
	ignored, err := meter.Int64Counter(
		"opamp.client.directives.ignored",
		metric.WithDescription("Server directives ignored by kind"),
		metric.WithUnit("{directive}"),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create directives counter: %w", err)
	}
	return &clientMetrics{messagesSent: sent, directivesIgnored: ignored}, nil
}

func (m *clientMetrics) messageSent(ctx context.Context, outcome string) {
	m.messagesSent.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *clientMetrics) directiveIgnored(ctx context.Context, kind string) {
	m.directivesIgnored.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
