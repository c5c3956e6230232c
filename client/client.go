package client

import (
	"context"
	"time"

	"github.com/observiq/opamp-client-go/client/types"
	"github.com/observiq/opamp-client-go/protobufs"
)

// OpAMPClient is an interface representing the client side of the OpAMP protocol.
type OpAMPClient interface {
	// Start the client and begin attempts to connect to the Server. Once connection
	// is established the client will attempt to maintain it by reconnecting if
	// the connection is lost. All failed connection attempts will be reported via
	// OnConnectFailed callback.
	//
	// Start does not wait until the connection to the Server is established and will
	// likely return before the connection attempts are even made.
	//
	// Start may be called only once. After Stop the client cannot be started again.
	Start(ctx context.Context, settings types.StartSettings) error

	// Stop the client. May be called only after Start() returns successfully.
	// May be called only once.
	// After this call returns successfully it is guaranteed that no
	// callbacks will be called. Stop() will cancel the send cycle in flight once
	// the shutdown grace period elapses or ctx is done, whichever comes first.
	//
	// Stop may also be called from a callback. It then returns without waiting and
	// the client finishes stopping once the callback returns.
	//
	// Once stopped, the client cannot be started again.
	Stop(ctx context.Context) error

	// SetAgentDescription sets attributes of the Agent. The attributes will be included
	// in the next status report sent to the Server. MUST be called only after Start.
	// The description MUST carry at least one identifying attribute.
	SetAgentDescription(descr *protobufs.AgentDescription) error

	// AgentDescription returns the last value successfully set by SetAgentDescription()
	// or by the settings passed to Start.
	AgentDescription() *protobufs.AgentDescription

	// SetHealth sets the health status of the Agent. The health will be included
	// in the next status report sent to the Server.
	SetHealth(health *protobufs.ComponentHealth) error

	// UpdateEffectiveConfig fetches the current local effective config using
	// GetEffectiveConfig callback and sends it to the Server.
	UpdateEffectiveConfig(ctx context.Context) error

	// SetRemoteConfigStatus sets the current RemoteConfigStatus.
	// LastRemoteConfigHash field must be non-nil or it is filled with the hash of the
	// last remote config received from the Server.
	// Requires the ReportsRemoteConfig capability.
	SetRemoteConfigStatus(status *protobufs.RemoteConfigStatus) error

	// SetPackageStatuses sets the current PackageStatuses.
	// Requires the ReportsPackageStatuses capability.
	SetPackageStatuses(statuses *protobufs.PackageStatuses) error

	// SetCustomCapabilities sets the custom capabilities the Agent supports.
	SetCustomCapabilities(customCapabilities *protobufs.CustomCapabilities) error

	// SetPollingInterval changes how often the client polls the Server when there is
	// nothing to report.
	SetPollingInterval(d time.Duration) error

	// InstanceUid returns the instance uid currently reported. The Server may replace it.
	InstanceUid() types.InstanceUid
}
