package types

import (
	"context"

	"github.com/observiq/opamp-client-go/protobufs"
)

// MessageData holds the directives of a ServerToAgent message that are handed to the
// Agent as they are.
type MessageData struct {
	// Requires the AcceptsPackages capability.
	PackagesAvailable *protobufs.PackagesAvailable

	// Set when the Server assigned a new instance uid. The client already uses it.
	AgentIdentification *protobufs.AgentIdentification

	CustomCapabilities *protobufs.CustomCapabilities
	CustomMessage      *protobufs.CustomMessage
}

// Callbacks is the interface through which the client hands Server directives to the
// Agent. Callbacks run on the polling goroutine and must not block for long.
type Callbacks interface {
	// OnConnect is called after the first successful exchange and after every
	// success that follows a failure.
	OnConnect(ctx context.Context)

	// OnConnectFailed is called when a send cycle fails, including replies that
	// cannot be decoded.
	OnConnectFailed(ctx context.Context, err error)

	// OnError is called when the Server replies with an error response.
	OnError(ctx context.Context, err *protobufs.ServerErrorResponse)

	// OnRemoteConfig is called when the Server offers a remote configuration.
	// The Agent reports the outcome with SetRemoteConfigStatus.
	OnRemoteConfig(ctx context.Context, remoteConfig *protobufs.AgentRemoteConfig)

	// OnConnectionSettings is called with the connection settings the Agent has
	// capabilities for.
	OnConnectionSettings(ctx context.Context, settings *protobufs.ConnectionSettingsOffers) error

	// OnCommand is called when the Server sends a command.
	OnCommand(ctx context.Context, command *protobufs.ServerToAgentCommand) error

	OnMessage(ctx context.Context, msg *MessageData)

	// GetEffectiveConfig returns the current effective config. It is used when the
	// Server asks for the full state. Returning nil leaves the last reported value.
	GetEffectiveConfig(ctx context.Context) (*protobufs.EffectiveConfig, error)
}

// CallbacksStruct is a Callbacks implementation built from optional functions.
// A nil function is a no-op.
type CallbacksStruct struct {
	OnConnectFunc            func(ctx context.Context)
	OnConnectFailedFunc      func(ctx context.Context, err error)
	OnErrorFunc              func(ctx context.Context, err *protobufs.ServerErrorResponse)
	OnRemoteConfigFunc       func(ctx context.Context, remoteConfig *protobufs.AgentRemoteConfig)
	OnConnectionSettingsFunc func(ctx context.Context, settings *protobufs.ConnectionSettingsOffers) error
	OnCommandFunc            func(ctx context.Context, command *protobufs.ServerToAgentCommand) error
	OnMessageFunc            func(ctx context.Context, msg *MessageData)
	GetEffectiveConfigFunc   func(ctx context.Context) (*protobufs.EffectiveConfig, error)
}

var _ Callbacks = (*CallbacksStruct)(nil)

func (c CallbacksStruct) OnConnect(ctx context.Context) {
	if c.OnConnectFunc != nil {
		c.OnConnectFunc(ctx)
	}
}

func (c CallbacksStruct) OnConnectFailed(ctx context.Context, err error) {
	if c.OnConnectFailedFunc != nil {
		c.OnConnectFailedFunc(ctx, err)
	}
}

func (c CallbacksStruct) OnError(ctx context.Context, err *protobufs.ServerErrorResponse) {
	if c.OnErrorFunc != nil {
		c.OnErrorFunc(ctx, err)
	}
}

func (c CallbacksStruct) OnRemoteConfig(ctx context.Context, remoteConfig *protobufs.AgentRemoteConfig) {
	if c.OnRemoteConfigFunc != nil {
		c.OnRemoteConfigFunc(ctx, remoteConfig)
	}
}

func (c CallbacksStruct) OnConnectionSettings(ctx context.Context, settings *protobufs.ConnectionSettingsOffers) error {
	if c.OnConnectionSettingsFunc != nil {
		return c.OnConnectionSettingsFunc(ctx, settings)
	}
	return nil
}

func (c CallbacksStruct) OnCommand(ctx context.Context, command *protobufs.ServerToAgentCommand) error {
	if c.OnCommandFunc != nil {
		return c.OnCommandFunc(ctx, command)
	}
	return nil
}

func (c CallbacksStruct) OnMessage(ctx context.Context, msg *MessageData) {
	if c.OnMessageFunc != nil {
		c.OnMessageFunc(ctx, msg)
	}
}

func (c CallbacksStruct) GetEffectiveConfig(ctx context.Context) (*protobufs.EffectiveConfig, error) {
	if c.GetEffectiveConfigFunc != nil {
		return c.GetEffectiveConfigFunc(ctx)
	}
	return nil, nil
}
