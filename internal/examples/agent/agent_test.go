package main

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/observiq/opamp-client-go/client"
	sharedinternal "github.com/observiq/opamp-client-go/internal"
	"github.com/observiq/opamp-client-go/protobufs"
)

// recordingClient records the status the agent reports. Methods the agent does not
// call panic through the nil embedded interface.
type recordingClient struct {
	client.OpAMPClient
	agent *Agent

	mux             sync.Mutex
	status          *protobufs.RemoteConfigStatus
	effectiveConfig *protobufs.EffectiveConfig
	health          *protobufs.ComponentHealth
}

func (c *recordingClient) SetRemoteConfigStatus(status *protobufs.RemoteConfigStatus) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.status = status
	return nil
}

func (c *recordingClient) UpdateEffectiveConfig(ctx context.Context) error {
	cfg, err := c.agent.getEffectiveConfig(ctx)
	if err != nil {
		return err
	}
	c.mux.Lock()
	defer c.mux.Unlock()
	c.effectiveConfig = cfg
	return nil
}

func (c *recordingClient) SetHealth(health *protobufs.ComponentHealth) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.health = health
	return nil
}

func TestAgentAppliesRemoteConfig(t *testing.T) {
	rc := &recordingClient{}
	agent := newAgent(&sharedinternal.NopLogger{}, rc)
	rc.agent = agent

	remote := &protobufs.AgentRemoteConfig{
		Config: &protobufs.AgentConfigMap{ConfigMap: map[string]*protobufs.AgentConfigFile{
			"collector.yaml": {Body: []byte("receivers: {}"), ContentType: "text/yaml"},
		}},
		ConfigHash: []byte{1, 2, 3},
	}
	agent.callbacks().OnRemoteConfig(context.Background(), remote)

	require.NotNil(t, rc.status)
	assert.Equal(t, protobufs.RemoteConfigStatuses_APPLIED, rc.status.Status)
	assert.Equal(t, []byte{1, 2, 3}, rc.status.LastRemoteConfigHash)
	require.NotNil(t, rc.effectiveConfig)
	assert.Equal(t, remote.Config.ConfigMap, rc.effectiveConfig.ConfigMap.ConfigMap)
}

func TestAgentReportsHealth(t *testing.T) {
	rc := &recordingClient{}
	agent := newAgent(&sharedinternal.NopLogger{}, rc)
	rc.agent = agent

	require.NoError(t, agent.reportHealth())
	assert.True(t, rc.health.Healthy)
	assert.Equal(t, uint64(agent.startTime.UnixNano()), rc.health.StartTimeUnixNano)
}

func TestRootCommandRequiresConfig(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", "/nonexistent/agent.yaml"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	assert.Error(t, cmd.Execute())
}
