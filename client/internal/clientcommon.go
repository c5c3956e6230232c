package internal

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/observiq/opamp-client-go/client/types"
	"github.com/observiq/opamp-client-go/description"
	sharedinternal "github.com/observiq/opamp-client-go/internal"
	"github.com/observiq/opamp-client-go/protobufs"
)

// ClientCommon contains the OpAMP logic shared by the client constructors.
type ClientCommon struct {
	Logger    types.Logger
	Callbacks types.Callbacks

	lifecycle lifecycle

	// Created in NewClientCommon so getters work in every state. Seeded by Start.
	report *PendingReport

	poller              *Poller
	transport           types.Transport
	cancel              context.CancelFunc
	shutdownGracePeriod time.Duration
}

// NewClientCommon creates a new ClientCommon.
func NewClientCommon(logger types.Logger) *ClientCommon {
	if logger == nil {
		logger = &sharedinternal.NopLogger{}
	}
	return &ClientCommon{
		Logger: logger,
		report: NewPendingReport(types.InstanceUid{}, protobufs.AgentCapabilities_ReportsStatus),
	}
}

// State returns the lifecycle state of the client.
func (c *ClientCommon) State() SessionState {
	return c.lifecycle.State()
}

// Start validates settings, seeds the pending report and starts polling. The first
// message is sent right away.
func (c *ClientCommon) Start(ctx context.Context, settings types.StartSettings) error {
	return c.lifecycle.start(func() error {
		if err := c.prepare(settings); err != nil {
			return err
		}
		runCtx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		c.poller.ScheduleSend()
		c.poller.Start(runCtx)
		c.Logger.Debugf(ctx, "Client started, polling %s every %s", settings.OpAMPServerURL, c.poller.PollingInterval())
		return nil
	})
}

func (c *ClientCommon) prepare(settings types.StartSettings) error {
	interval, err := heartbeatInterval(settings.HeartbeatInterval)
	if err != nil {
		return err
	}
	retry, err := retrySettings(settings)
	if err != nil {
		return err
	}

	agent := settings.Agent
	if agent.InstanceUid.IsZero() {
		return ErrInvalidInstanceUid
	}
	if err := description.Validate(agent.AgentDescription); err != nil {
		return err
	}
	capabilities := agent.Capabilities | protobufs.AgentCapabilities_ReportsStatus
	if err := validateInitialState(agent, capabilities); err != nil {
		return err
	}

	transport := settings.Transport
	if transport == nil {
		if transport, err = newTransport(settings, c.Logger); err != nil {
			return err
		}
	}
	codec := settings.Codec
	if codec == nil {
		codec = sharedinternal.ProtobufCodec{}
	}
	metrics, err := newClientMetrics(settings.MeterProvider)
	if err != nil {
		return err
	}

	c.Callbacks = settings.Callbacks
	if c.Callbacks == nil {
		c.Callbacks = types.CallbacksStruct{}
	}

	report := c.report
	report.SetInstanceUid(agent.InstanceUid)
	report.setCapabilities(capabilities)
	report.SetAgentDescription(agent.AgentDescription.Clone())
	if agent.Health != nil {
		report.SetHealth(agent.Health.Clone())
	}
	if agent.RemoteConfigStatus != nil {
		report.SetRemoteConfigStatus(agent.RemoteConfigStatus.Clone())
	}
	if agent.PackageStatuses != nil {
		report.SetPackageStatuses(agent.PackageStatuses.Clone())
	}
	if agent.CustomCapabilities != nil {
		report.SetCustomCapabilities(agent.CustomCapabilities.Clone())
	}

	requestTimeout := settings.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = types.DefaultRequestTimeout
	}
	c.shutdownGracePeriod = settings.ShutdownGracePeriod
	if c.shutdownGracePeriod <= 0 {
		c.shutdownGracePeriod = types.DefaultShutdownGracePeriod
	}

	c.transport = transport
	c.poller = NewPoller(PollerSettings{
		Logger:           c.Logger,
		Callbacks:        c.Callbacks,
		Transport:        transport,
		Codec:            codec,
		Report:           report,
		Metrics:          metrics,
		PollingInterval:  interval,
		RequestTimeout:   requestTimeout,
		Retry:            retry,
		ReportDisconnect: settings.ReportDisconnect,
	})
	return nil
}

func heartbeatInterval(d *time.Duration) (time.Duration, error) {
	if d == nil {
		return types.DefaultHeartbeatInterval, nil
	}
	if *d <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidHeartbeatInterval, *d)
	}
	return *d, nil
}

func retrySettings(settings types.StartSettings) (RetrySettings, error) {
	retry := RetrySettings{
		InitialInterval: settings.RetryInitialInterval,
		MaxInterval:     settings.RetryMaxInterval,
		MaxElapsedTime:  settings.RetryMaxElapsedTime,
	}
	if retry.InitialInterval < 0 || retry.MaxInterval < 0 || retry.MaxElapsedTime < 0 {
		return retry, fmt.Errorf("%w: durations must not be negative", ErrInvalidRetrySettings)
	}
	if retry.InitialInterval == 0 {
		retry.InitialInterval = types.DefaultRetryInitialInterval
	}
	if retry.MaxInterval == 0 {
		retry.MaxInterval = types.DefaultRetryMaxInterval
	}
	if retry.MaxInterval < retry.InitialInterval {
		return retry, fmt.Errorf("%w: max interval %s is below initial interval %s",
			ErrInvalidRetrySettings, retry.MaxInterval, retry.InitialInterval)
	}
	return retry, nil
}

func validateInitialState(agent types.Agent, capabilities protobufs.AgentCapabilities) error {
	if agent.Health != nil {
		if err := validateHealth(agent.Health); err != nil {
			return err
		}
	}
	if agent.RemoteConfigStatus != nil {
		if err := validateRemoteConfigStatus(agent.RemoteConfigStatus, capabilities); err != nil {
			return err
		}
	}
	if agent.PackageStatuses != nil {
		if err := validatePackageStatuses(agent.PackageStatuses, capabilities); err != nil {
			return err
		}
	}
	if agent.CustomCapabilities != nil {
		if err := validateCustomCapabilities(agent.CustomCapabilities); err != nil {
			return err
		}
	}
	return nil
}

// newTransport picks the transport from the scheme of the server URL.
func newTransport(settings types.StartSettings, logger types.Logger) (types.Transport, error) {
	if settings.OpAMPServerURL == "" {
		return nil, ErrMissingServerURL
	}
	u, err := url.Parse(settings.OpAMPServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid OpAMPServerURL: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		client := settings.HTTPClient
		if client == nil {
			client = NewHTTPClient(settings.TLSConfig, settings.EnableHTTP2, u.Scheme == "http")
		}
		codec := settings.Codec
		if codec == nil {
			codec = sharedinternal.ProtobufCodec{}
		}
		return NewHTTPTransport(HTTPTransportSettings{
			URL:               settings.OpAMPServerURL,
			Client:            client,
			ContentType:       codec.ContentType(),
			Header:            settings.Header,
			HeaderFunc:        settings.HeaderFunc,
			EnableCompression: settings.EnableCompression,
		}), nil
	case "ws", "wss":
		return NewWSTransport(WSTransportSettings{
			URL:               settings.OpAMPServerURL,
			Logger:            logger,
			Header:            settings.Header,
			HeaderFunc:        settings.HeaderFunc,
			TLSConfig:         settings.TLSConfig,
			EnableCompression: settings.EnableCompression,
		}), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
}

// Stop stops polling. The cycle in flight gets the shutdown grace period to finish and
// is cancelled after that, or when ctx is done. When called from a callback Stop
// returns once stopping has begun and the client reaches Stopped after the callback
// returns.
func (c *ClientCommon) Stop(ctx context.Context) error {
	if err := c.lifecycle.transition(Stopping); err != nil {
		return err
	}

	c.poller.Stop()
	if c.poller.InCallback() {
		// The poller cannot finish while it waits on this callback.
		go c.finishStop(context.WithoutCancel(ctx))
		return nil
	}
	return c.finishStop(ctx)
}

func (c *ClientCommon) finishStop(ctx context.Context) error {
	grace := time.NewTimer(c.shutdownGracePeriod)
	defer grace.Stop()
	select {
	case <-c.poller.IsStopped():
	case <-grace.C:
		c.Logger.Debugf(ctx, "Shutdown grace period elapsed, cancelling the request in flight")
	case <-ctx.Done():
	}
	c.cancel()
	<-c.poller.IsStopped()

	if closer, ok := c.transport.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			c.Logger.Errorf(ctx, "Cannot close transport: %v", err)
		}
	}
	return c.lifecycle.transition(Stopped)
}

// AgentDescription returns the last description set by the Agent.
func (c *ClientCommon) AgentDescription() *protobufs.AgentDescription {
	return c.report.AgentDescription()
}

// InstanceUid returns the instance uid the client currently reports.
func (c *ClientCommon) InstanceUid() types.InstanceUid {
	return c.report.InstanceUid()
}

// SetAgentDescription replaces the description and sends it promptly.
func (c *ClientCommon) SetAgentDescription(descr *protobufs.AgentDescription) error {
	return c.lifecycle.whileRunning(func() error {
		if err := description.Validate(descr); err != nil {
			return err
		}
		c.report.SetAgentDescription(descr.Clone())
		c.poller.ScheduleSend()
		return nil
	})
}

// SetHealth replaces the health and sends it promptly.
func (c *ClientCommon) SetHealth(health *protobufs.ComponentHealth) error {
	return c.lifecycle.whileRunning(func() error {
		if err := validateHealth(health); err != nil {
			return err
		}
		c.report.SetHealth(health.Clone())
		c.poller.ScheduleSend()
		return nil
	})
}

// UpdateEffectiveConfig fetches the effective config through the GetEffectiveConfig
// callback and sends it promptly.
func (c *ClientCommon) UpdateEffectiveConfig(ctx context.Context) error {
	if err := c.lifecycle.whileRunning(func() error {
		if !c.report.Capabilities().Has(protobufs.AgentCapabilities_ReportsEffectiveConfig) {
			return ErrReportsEffectiveConfigNotSet
		}
		return nil
	}); err != nil {
		return err
	}

	// The callback runs outside of the lifecycle lock so it may call back into the client.
	cfg, err := c.Callbacks.GetEffectiveConfig(ctx)
	if err != nil {
		return fmt.Errorf("GetEffectiveConfig failed: %w", err)
	}
	if cfg == nil {
		return nil
	}

	return c.lifecycle.whileRunning(func() error {
		c.report.SetEffectiveConfig(cfg.Clone())
		c.poller.ScheduleSend()
		return nil
	})
}

// SetRemoteConfigStatus replaces the remote config status and sends it promptly.
func (c *ClientCommon) SetRemoteConfigStatus(status *protobufs.RemoteConfigStatus) error {
	return c.lifecycle.whileRunning(func() error {
		if err := validateRemoteConfigStatus(status, c.report.Capabilities()); err != nil {
			return err
		}
		c.report.SetRemoteConfigStatus(status.Clone())
		c.poller.ScheduleSend()
		return nil
	})
}

// SetPackageStatuses replaces the package statuses and sends them promptly.
func (c *ClientCommon) SetPackageStatuses(statuses *protobufs.PackageStatuses) error {
	return c.lifecycle.whileRunning(func() error {
		if err := validatePackageStatuses(statuses, c.report.Capabilities()); err != nil {
			return err
		}
		c.report.SetPackageStatuses(statuses.Clone())
		c.poller.ScheduleSend()
		return nil
	})
}

// SetCustomCapabilities replaces the custom capabilities and sends them promptly.
func (c *ClientCommon) SetCustomCapabilities(customCapabilities *protobufs.CustomCapabilities) error {
	return c.lifecycle.whileRunning(func() error {
		if err := validateCustomCapabilities(customCapabilities); err != nil {
			return err
		}
		c.report.SetCustomCapabilities(customCapabilities.Clone())
		c.poller.ScheduleSend()
		return nil
	})
}

// SetPollingInterval changes the polling interval of the running client.
func (c *ClientCommon) SetPollingInterval(d time.Duration) error {
	return c.lifecycle.whileRunning(func() error {
		if d <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidHeartbeatInterval, d)
		}
		c.poller.SetPollingInterval(d)
		return nil
	})
}

// Health is part of status reporting, so ReportsStatus (always set) is enough.
func validateHealth(health *protobufs.ComponentHealth) error {
	if health == nil {
		return ErrHealthMissing
	}
	for name, component := range health.ComponentHealthMap {
		if component == nil {
			return fmt.Errorf("%w: component %q", ErrHealthMissing, name)
		}
	}
	return nil
}

func validateRemoteConfigStatus(status *protobufs.RemoteConfigStatus, capabilities protobufs.AgentCapabilities) error {
	if !capabilities.Has(protobufs.AgentCapabilities_ReportsRemoteConfig) {
		return ErrReportsRemoteConfigNotSet
	}
	if status == nil {
		return ErrRemoteConfigStatusMissing
	}
	if _, ok := protobufs.RemoteConfigStatuses_name[int32(status.Status)]; !ok {
		return fmt.Errorf("%w: remote config status %d", ErrInvalidStatus, status.Status)
	}
	return nil
}

func validatePackageStatuses(statuses *protobufs.PackageStatuses, capabilities protobufs.AgentCapabilities) error {
	if !capabilities.Has(protobufs.AgentCapabilities_ReportsPackageStatuses) {
		return ErrReportsPackageStatusesNotSet
	}
	if statuses == nil {
		return ErrPackageStatusesMissing
	}
	for name, status := range statuses.Packages {
		if status == nil {
			return fmt.Errorf("%w: package %q", ErrPackageStatusesMissing, name)
		}
		if _, ok := protobufs.PackageStatusEnum_name[int32(status.Status)]; !ok {
			return fmt.Errorf("%w: package %q status %d", ErrInvalidStatus, name, status.Status)
		}
	}
	return nil
}

func validateCustomCapabilities(c *protobufs.CustomCapabilities) error {
	if c == nil {
		return ErrCustomCapabilitiesMissing
	}
	for i, name := range c.Capabilities {
		if name == "" {
			return fmt.Errorf("%w: capability %d is empty", ErrCustomCapabilitiesMissing, i)
		}
	}
	return nil
}
