package client

import (
	"context"
	"time"

	"github.com/observiq/opamp-client-go/client/internal"
	"github.com/observiq/opamp-client-go/client/types"
	"github.com/observiq/opamp-client-go/protobufs"
)

// Errors returned by OpAMPClient methods.
var (
	ErrAlreadyStarted    = internal.ErrAlreadyStarted
	ErrAlreadyStopped    = internal.ErrAlreadyStopped
	ErrNotRunning        = internal.ErrNotRunning
	ErrMissingServerURL  = internal.ErrMissingServerURL
	ErrUnsupportedScheme = internal.ErrUnsupportedScheme

	ErrInvalidInstanceUid           = internal.ErrInvalidInstanceUid
	ErrInvalidHeartbeatInterval     = internal.ErrInvalidHeartbeatInterval
	ErrInvalidRetrySettings         = internal.ErrInvalidRetrySettings
	ErrHealthMissing                = internal.ErrHealthMissing
	ErrReportsEffectiveConfigNotSet = internal.ErrReportsEffectiveConfigNotSet
	ErrReportsRemoteConfigNotSet    = internal.ErrReportsRemoteConfigNotSet
	ErrReportsPackageStatusesNotSet = internal.ErrReportsPackageStatusesNotSet
	ErrRemoteConfigStatusMissing    = internal.ErrRemoteConfigStatusMissing
	ErrPackageStatusesMissing       = internal.ErrPackageStatusesMissing
	ErrCustomCapabilitiesMissing    = internal.ErrCustomCapabilitiesMissing
	ErrInvalidStatus                = internal.ErrInvalidStatus
)

// httpClient is an OpAMP Client implementation that polls the Server over a
// request/reply transport.
type httpClient struct {
	common *internal.ClientCommon
}

var _ OpAMPClient = (*httpClient)(nil)

// NewHTTP creates a new OpAMP Client that polls the Server. The transport is chosen
// by the scheme of StartSettings.OpAMPServerURL unless StartSettings.Transport is set.
func NewHTTP(logger types.Logger) *httpClient {
	return &httpClient{common: internal.NewClientCommon(logger)}
}

// Start implements OpAMPClient.Start.
func (c *httpClient) Start(ctx context.Context, settings types.StartSettings) error {
	return c.common.Start(ctx, settings)
}

// Stop implements OpAMPClient.Stop.
func (c *httpClient) Stop(ctx context.Context) error {
	return c.common.Stop(ctx)
}

// AgentDescription implements OpAMPClient.AgentDescription.
func (c *httpClient) AgentDescription() *protobufs.AgentDescription {
	return c.common.AgentDescription()
}

// SetAgentDescription implements OpAMPClient.SetAgentDescription.
func (c *httpClient) SetAgentDescription(descr *protobufs.AgentDescription) error {
	return c.common.SetAgentDescription(descr)
}

// SetHealth implements OpAMPClient.SetHealth.
func (c *httpClient) SetHealth(health *protobufs.ComponentHealth) error {
	return c.common.SetHealth(health)
}

// UpdateEffectiveConfig implements OpAMPClient.UpdateEffectiveConfig.
func (c *httpClient) UpdateEffectiveConfig(ctx context.Context) error {
	return c.common.UpdateEffectiveConfig(ctx)
}

// SetRemoteConfigStatus implements OpAMPClient.SetRemoteConfigStatus.
func (c *httpClient) SetRemoteConfigStatus(status *protobufs.RemoteConfigStatus) error {
	return c.common.SetRemoteConfigStatus(status)
}

// SetPackageStatuses implements OpAMPClient.SetPackageStatuses.
func (c *httpClient) SetPackageStatuses(statuses *protobufs.PackageStatuses) error {
	return c.common.SetPackageStatuses(statuses)
}

// SetCustomCapabilities implements OpAMPClient.SetCustomCapabilities.
func (c *httpClient) SetCustomCapabilities(customCapabilities *protobufs.CustomCapabilities) error {
	return c.common.SetCustomCapabilities(customCapabilities)
}

// SetPollingInterval implements OpAMPClient.SetPollingInterval.
func (c *httpClient) SetPollingInterval(d time.Duration) error {
	return c.common.SetPollingInterval(d)
}

// InstanceUid implements OpAMPClient.InstanceUid.
func (c *httpClient) InstanceUid() types.InstanceUid {
	return c.common.InstanceUid()
}
