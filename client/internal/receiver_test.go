package internal

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/observiq/opamp-client-go/client/types"
	"github.com/observiq/opamp-client-go/protobufs"
)

func newTestProcessor(t *testing.T, callbacks types.Callbacks, capabilities protobufs.AgentCapabilities) (receivedProcessor, *PendingReport, *fakePolling, *sdkmetric.ManualReader) {
	report := NewPendingReport(testUid, capabilities|protobufs.AgentCapabilities_ReportsStatus)
	polling := &fakePolling{}
	metrics, reader := testMetrics(t)
	return newReceivedProcessor(TestLogger{t}, callbacks, report, polling, metrics), report, polling, reader
}

func ignoredCount(t *testing.T, reader *sdkmetric.ManualReader, kind string) int64 {
	return counterValue(t, reader, "opamp.client.directives.ignored", attribute.String("kind", kind))
}

func TestRequestRestart(t *testing.T) {
	called := false
	remoteConfigCalled := false

	callbacks := types.CallbacksStruct{
		OnCommandFunc: func(ctx context.Context, command *protobufs.ServerToAgentCommand) error {
			called = true
			return nil
		},
		OnRemoteConfigFunc: func(ctx context.Context, remoteConfig *protobufs.AgentRemoteConfig) {
			remoteConfigCalled = true
		},
	}
	processor, _, _, _ := newTestProcessor(t, callbacks,
		protobufs.AgentCapabilities_AcceptsRestartCommand|protobufs.AgentCapabilities_AcceptsRemoteConfig)
	err := processor.ProcessReceivedMessage(context.Background(), &protobufs.ServerToAgent{
		Command:      &protobufs.ServerToAgentCommand{Type: protobufs.CommandType_Restart},
		RemoteConfig: &protobufs.AgentRemoteConfig{},
	})
	require.NoError(t, err)
	assert.Equal(t, true, called, "restart command should trigger the OnCommand callback")
	assert.Equal(t, false, remoteConfigCalled, "a command message carries no other directive")
}

func TestNoRequestRestart(t *testing.T) {
	called := false
	callbacks := types.CallbacksStruct{
		OnCommandFunc: func(ctx context.Context, command *protobufs.ServerToAgentCommand) error {
			called = true
			return nil
		},
	}
	processor, _, _, reader := newTestProcessor(t, callbacks, protobufs.AgentCapabilities_ReportsStatus)
	err := processor.ProcessReceivedMessage(context.Background(), &protobufs.ServerToAgent{
		Command: &protobufs.ServerToAgentCommand{Type: protobufs.CommandType_Restart},
	})
	require.NoError(t, err)
	assert.Equal(t, false, called, "without AcceptsRestartCommand, do not trigger the OnCommand callback")
	assert.Equal(t, int64(1), ignoredCount(t, reader, ignoredCommand))
}

func TestRemoteConfigDelivered(t *testing.T) {
	var received *protobufs.AgentRemoteConfig
	callbacks := types.CallbacksStruct{
		OnRemoteConfigFunc: func(ctx context.Context, remoteConfig *protobufs.AgentRemoteConfig) {
			received = remoteConfig
		},
	}
	processor, report, _, _ := newTestProcessor(t, callbacks, protobufs.AgentCapabilities_AcceptsRemoteConfig)
	remoteConfig := &protobufs.AgentRemoteConfig{ConfigHash: []byte{1, 2, 3}}
	require.NoError(t, processor.ProcessReceivedMessage(context.Background(), &protobufs.ServerToAgent{RemoteConfig: remoteConfig}))
	assert.Equal(t, remoteConfig, received)

	// The dispatcher only delivers; the status is reported by the Agent.
	assert.False(t, report.Dirty())
	report.SetRemoteConfigStatus(&protobufs.RemoteConfigStatus{Status: protobufs.RemoteConfigStatuses_APPLIED})
	assert.Equal(t, []byte{1, 2, 3}, report.Next().Message.RemoteConfigStatus.LastRemoteConfigHash)
}

func TestRemoteConfigIgnoredWithoutCapability(t *testing.T) {
	called := false
	callbacks := types.CallbacksStruct{
		OnRemoteConfigFunc: func(ctx context.Context, remoteConfig *protobufs.AgentRemoteConfig) {
			called = true
		},
	}
	processor, _, _, reader := newTestProcessor(t, callbacks, 0)
	require.NoError(t, processor.ProcessReceivedMessage(context.Background(), &protobufs.ServerToAgent{
		RemoteConfig: &protobufs.AgentRemoteConfig{},
	}))
	assert.False(t, called)
	assert.Equal(t, int64(1), ignoredCount(t, reader, ignoredRemoteConfig))
}

func TestUnavailableErrorResponse(t *testing.T) {
	var received *protobufs.ServerErrorResponse
	callbacks := types.CallbacksStruct{
		OnErrorFunc: func(ctx context.Context, err *protobufs.ServerErrorResponse) {
			received = err
		},
	}
	processor, _, _, _ := newTestProcessor(t, callbacks, 0)
	errResp := &protobufs.ServerErrorResponse{
		Type:         protobufs.ServerErrorResponseType_Unavailable,
		ErrorMessage: "overloaded",
		RetryInfo:    &protobufs.RetryInfo{RetryAfterNanoseconds: uint64(3 * time.Second)},
	}
	err := processor.ProcessReceivedMessage(context.Background(), &protobufs.ServerToAgent{ErrorResponse: errResp})

	var unavailable *ServerUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, 3*time.Second, unavailable.RetryAfter)
	assert.Equal(t, 3*time.Second, retryAfter(err))
	assert.Equal(t, errResp, received)
}

func TestBadRequestErrorResponse(t *testing.T) {
	called := false
	callbacks := types.CallbacksStruct{
		OnErrorFunc: func(ctx context.Context, err *protobufs.ServerErrorResponse) {
			called = true
		},
	}
	processor, _, _, _ := newTestProcessor(t, callbacks, 0)
	err := processor.ProcessReceivedMessage(context.Background(), &protobufs.ServerToAgent{
		ErrorResponse: &protobufs.ServerErrorResponse{Type: protobufs.ServerErrorResponseType_BadRequest},
	})
	assert.NoError(t, err)
	assert.True(t, called)
}

func TestConnectionSettingsFiltered(t *testing.T) {
	var received *protobufs.ConnectionSettingsOffers
	callbacks := types.CallbacksStruct{
		OnConnectionSettingsFunc: func(ctx context.Context, settings *protobufs.ConnectionSettingsOffers) error {
			received = settings
			return nil
		},
	}
	processor, _, polling, reader := newTestProcessor(t, callbacks, protobufs.AgentCapabilities_ReportsOwnMetrics)
	metrics := &protobufs.TelemetryConnectionSettings{DestinationEndpoint: "https://metrics"}
	require.NoError(t, processor.ProcessReceivedMessage(context.Background(), &protobufs.ServerToAgent{
		ConnectionSettings: &protobufs.ConnectionSettingsOffers{
			Hash:       []byte{7},
			Opamp:      &protobufs.OpAMPConnectionSettings{DestinationEndpoint: "https://opamp", HeartbeatIntervalSeconds: 10},
			OwnMetrics: metrics,
			OwnTraces:  &protobufs.TelemetryConnectionSettings{DestinationEndpoint: "https://traces"},
		},
	}))

	assert.Equal(t, &protobufs.ConnectionSettingsOffers{Hash: []byte{7}, OwnMetrics: metrics}, received)
	assert.Equal(t, 10*time.Second, polling.interval)
	assert.Equal(t, int64(2), ignoredCount(t, reader, ignoredConnectionSettings))
}

func TestConnectionSettingsNothingAccepted(t *testing.T) {
	called := false
	callbacks := types.CallbacksStruct{
		OnConnectionSettingsFunc: func(ctx context.Context, settings *protobufs.ConnectionSettingsOffers) error {
			called = true
			return nil
		},
	}
	processor, _, polling, reader := newTestProcessor(t, callbacks, 0)
	require.NoError(t, processor.ProcessReceivedMessage(context.Background(), &protobufs.ServerToAgent{
		ConnectionSettings: &protobufs.ConnectionSettingsOffers{
			Opamp: &protobufs.OpAMPConnectionSettings{HeartbeatIntervalSeconds: 5},
		},
	}))
	assert.False(t, called)
	assert.Equal(t, 5*time.Second, polling.interval)
	// The heartbeat was applied, so nothing in the offer was ignored.
	assert.Equal(t, int64(0), ignoredCount(t, reader, ignoredConnectionSettings))
}

func TestHeartbeatIntervalOutOfRange(t *testing.T) {
	processor, _, polling, reader := newTestProcessor(t, types.CallbacksStruct{}, 0)
	offer := func(seconds uint64) {
		require.NoError(t, processor.ProcessReceivedMessage(context.Background(), &protobufs.ServerToAgent{
			ConnectionSettings: &protobufs.ConnectionSettingsOffers{
				Opamp: &protobufs.OpAMPConnectionSettings{HeartbeatIntervalSeconds: seconds},
			},
		}))
	}

	offer(30)
	offer(9223372037)
	offer(math.MaxUint64)
	assert.Equal(t, 30*time.Second, polling.interval)
	assert.Equal(t, int64(2), ignoredCount(t, reader, ignoredHeartbeatInterval))

	offer(9223372036)
	assert.Equal(t, 9223372036*time.Second, polling.interval)
	assert.Positive(t, polling.interval)
}

func TestAgentIdentification(t *testing.T) {
	var received *types.MessageData
	callbacks := types.CallbacksStruct{
		OnMessageFunc: func(ctx context.Context, msg *types.MessageData) {
			received = msg
		},
	}
	processor, report, _, reader := newTestProcessor(t, callbacks, 0)

	newUid := []byte("fedcba9876543210")
	require.NoError(t, processor.ProcessReceivedMessage(context.Background(), &protobufs.ServerToAgent{
		AgentIdentification: &protobufs.AgentIdentification{NewInstanceUid: newUid},
	}))
	require.NotNil(t, received)
	assert.Equal(t, newUid, received.AgentIdentification.NewInstanceUid)
	assert.Equal(t, newUid, report.InstanceUid().Bytes())

	received = nil
	require.NoError(t, processor.ProcessReceivedMessage(context.Background(), &protobufs.ServerToAgent{
		AgentIdentification: &protobufs.AgentIdentification{NewInstanceUid: []byte{1, 2}},
	}))
	assert.Nil(t, received)
	assert.Equal(t, newUid, report.InstanceUid().Bytes())
	assert.Equal(t, int64(1), ignoredCount(t, reader, ignoredAgentIdentification))
}

func TestMessageDataGating(t *testing.T) {
	var received *types.MessageData
	callbacks := types.CallbacksStruct{
		OnMessageFunc: func(ctx context.Context, msg *types.MessageData) {
			received = msg
		},
	}
	processor, _, _, reader := newTestProcessor(t, callbacks, 0)
	custom := &protobufs.CustomMessage{Capability: "io.example", Type: "ping"}
	require.NoError(t, processor.ProcessReceivedMessage(context.Background(), &protobufs.ServerToAgent{
		PackagesAvailable: &protobufs.PackagesAvailable{},
		CustomMessage:     custom,
	}))
	require.NotNil(t, received)
	assert.Nil(t, received.PackagesAvailable)
	assert.Equal(t, custom, received.CustomMessage)
	assert.Equal(t, int64(1), ignoredCount(t, reader, ignoredPackagesAvailable))
}

func TestReportFullState(t *testing.T) {
	effective := &protobufs.EffectiveConfig{ConfigMap: &protobufs.AgentConfigMap{
		ConfigMap: map[string]*protobufs.AgentConfigFile{"config.yaml": {Body: []byte("receivers: {}")}},
	}}
	callbacks := types.CallbacksStruct{
		GetEffectiveConfigFunc: func(ctx context.Context) (*protobufs.EffectiveConfig, error) {
			return effective, nil
		},
	}
	processor, report, polling, _ := newTestProcessor(t, callbacks, protobufs.AgentCapabilities_ReportsEffectiveConfig)
	report.SetAgentDescription(testDescription("agent"))
	report.Delivered(report.Next())

	require.NoError(t, processor.ProcessReceivedMessage(context.Background(), &protobufs.ServerToAgent{
		Flags: uint64(protobufs.ServerToAgentFlags_ReportFullState),
	}))
	assert.Equal(t, 1, polling.scheduled)

	out := report.Next()
	assert.Equal(t, testDescription("agent"), out.Message.AgentDescription)
	assert.Equal(t, effective, out.Message.EffectiveConfig)
}

func TestUnknownFieldsCounted(t *testing.T) {
	processor, _, _, reader := newTestProcessor(t, types.CallbacksStruct{}, 0)
	require.NoError(t, processor.ProcessReceivedMessage(context.Background(), &protobufs.ServerToAgent{
		UnknownFields: []protowire.Number{42, 43},
	}))
	assert.Equal(t, int64(2), ignoredCount(t, reader, ignoredUnknownField))
}
