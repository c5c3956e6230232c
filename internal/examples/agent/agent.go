package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/observiq/opamp-client-go/client"
	"github.com/observiq/opamp-client-go/client/types"
	"github.com/observiq/opamp-client-go/protobufs"
)

// Agent is a toy agent that applies whatever configuration the Server offers and
// reports it back as its effective config.
type Agent struct {
	logger types.Logger
	client client.OpAMPClient

	mux             sync.Mutex
	effectiveConfig map[string]*protobufs.AgentConfigFile
	startTime       time.Time
}

func newAgent(logger types.Logger, opampClient client.OpAMPClient) *Agent {
	return &Agent{
		logger:          logger,
		client:          opampClient,
		effectiveConfig: map[string]*protobufs.AgentConfigFile{},
		startTime:       time.Now(),
	}
}

func (a *Agent) callbacks() types.Callbacks {
	return types.CallbacksStruct{
		OnConnectFunc: func(ctx context.Context) {
			a.logger.Debugf(ctx, "Connected to the server")
		},
		OnConnectFailedFunc: func(ctx context.Context, err error) {
			a.logger.Errorf(ctx, "Failed to connect to the server: %v", err)
		},
		OnErrorFunc: func(ctx context.Context, err *protobufs.ServerErrorResponse) {
			a.logger.Errorf(ctx, "Server returned an error response: %s %s", err.Type, err.ErrorMessage)
		},
		OnRemoteConfigFunc:       a.onRemoteConfig,
		GetEffectiveConfigFunc:   a.getEffectiveConfig,
		OnConnectionSettingsFunc: a.onConnectionSettings,
		OnMessageFunc: func(ctx context.Context, msg *types.MessageData) {
			if msg.CustomMessage != nil {
				a.logger.Debugf(ctx, "Custom message %s/%s received", msg.CustomMessage.Capability, msg.CustomMessage.Type)
			}
		},
	}
}

func (a *Agent) onRemoteConfig(ctx context.Context, remoteConfig *protobufs.AgentRemoteConfig) {
	a.mux.Lock()
	a.effectiveConfig = map[string]*protobufs.AgentConfigFile{}
	if remoteConfig.Config != nil {
		for name, file := range remoteConfig.Config.ConfigMap {
			a.effectiveConfig[name] = file
		}
	}
	files := len(a.effectiveConfig)
	a.mux.Unlock()
	a.logger.Debugf(ctx, "Applied remote config with %d files", files)

	status := &protobufs.RemoteConfigStatus{
		LastRemoteConfigHash: remoteConfig.ConfigHash,
		Status:               protobufs.RemoteConfigStatuses_APPLIED,
	}
	if err := a.client.SetRemoteConfigStatus(status); err != nil {
		a.logger.Errorf(ctx, "Cannot report remote config status: %v", err)
	}
	if err := a.client.UpdateEffectiveConfig(ctx); err != nil {
		a.logger.Errorf(ctx, "Cannot report effective config: %v", err)
	}
}

func (a *Agent) getEffectiveConfig(ctx context.Context) (*protobufs.EffectiveConfig, error) {
	a.mux.Lock()
	defer a.mux.Unlock()
	configMap := make(map[string]*protobufs.AgentConfigFile, len(a.effectiveConfig))
	for name, file := range a.effectiveConfig {
		configMap[name] = file
	}
	return &protobufs.EffectiveConfig{ConfigMap: &protobufs.AgentConfigMap{ConfigMap: configMap}}, nil
}

func (a *Agent) onConnectionSettings(ctx context.Context, settings *protobufs.ConnectionSettingsOffers) error {
	if settings.OwnMetrics != nil {
		a.logger.Debugf(ctx, "Server offered own metrics destination %s", settings.OwnMetrics.DestinationEndpoint)
	}
	return nil
}

// reportHealth reports the agent healthy since it started.
func (a *Agent) reportHealth() error {
	err := a.client.SetHealth(&protobufs.ComponentHealth{
		Healthy:            true,
		StartTimeUnixNano:  uint64(a.startTime.UnixNano()),
		Status:             "running",
		StatusTimeUnixNano: uint64(time.Now().UnixNano()),
	})
	if err != nil {
		return fmt.Errorf("cannot report health: %w", err)
	}
	return nil
}
