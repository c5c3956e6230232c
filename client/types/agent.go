package types

import "github.com/observiq/opamp-client-go/protobufs"

type Agent struct {
	// Agent information.
	InstanceUid InstanceUid

	// MUST carry at least one identifying attribute.
	AgentDescription *protobufs.AgentDescription

	// Defines the capabilities of the Agent. AgentCapabilities_ReportsStatus bit does not need to
	// be set in this field, it will be set automatically since it is required by OpAMP protocol.
	// Capabilities are fixed for the lifetime of the client.
	Capabilities protobufs.AgentCapabilities

	// Previously saved state. These will be reported to the Server in the first
	// message after Start.

	// The remote config status. If nil is passed it will force
	// the Server to send a remote config back.
	RemoteConfigStatus *protobufs.RemoteConfigStatus

	Health *protobufs.ComponentHealth

	// Requires the ReportsPackageStatuses capability.
	PackageStatuses *protobufs.PackageStatuses

	CustomCapabilities *protobufs.CustomCapabilities
}
