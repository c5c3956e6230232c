package protobufs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestAgentToServerOmitsUnsetFields(t *testing.T) {
	msg := &AgentToServer{
		InstanceUid:  []byte{1, 2, 3},
		SequenceNum:  1,
		Capabilities: uint64(AgentCapabilities_ReportsStatus),
	}
	b, err := msg.Marshal()
	require.NoError(t, err)

	var nums []protowire.Number
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		require.Greater(t, n, 0)
		b = b[n:]
		n = protowire.ConsumeFieldValue(num, typ, b)
		require.Greater(t, n, 0)
		b = b[n:]
		nums = append(nums, num)
	}
	assert.Equal(t, []protowire.Number{1, 2, 4}, nums)
}

func TestAgentToServerDecodesWhatItEncodes(t *testing.T) {
	msg := &AgentToServer{
		InstanceUid:  []byte("0123456789abcdef"),
		SequenceNum:  42,
		Capabilities: uint64(AgentCapabilities_ReportsStatus | AgentCapabilities_ReportsHealth),
		AgentDescription: &AgentDescription{
			IdentifyingAttributes: []*KeyValue{
				{Key: "service.name", Value: &AnyValue{Value: &AnyValue_StringValue{StringValue: "collector"}}},
			},
			NonIdentifyingAttributes: []*KeyValue{
				{Key: "pid", Value: &AnyValue{Value: &AnyValue_IntValue{IntValue: -1}}},
				{Key: "ratio", Value: &AnyValue{Value: &AnyValue_DoubleValue{DoubleValue: 0.25}}},
				{Key: "enabled", Value: &AnyValue{Value: &AnyValue_BoolValue{BoolValue: false}}},
			},
		},
		Health: &ComponentHealth{
			Healthy:           true,
			StartTimeUnixNano: 1234,
			ComponentHealthMap: map[string]*ComponentHealth{
				"receiver": {LastError: "boom"},
			},
		},
		RemoteConfigStatus: &RemoteConfigStatus{
			LastRemoteConfigHash: []byte{9},
			Status:               RemoteConfigStatuses_FAILED,
			ErrorMessage:         "bad config",
		},
		AgentDisconnect:    &AgentDisconnect{},
		CustomCapabilities: &CustomCapabilities{Capabilities: []string{"io.example.a", "io.example.b"}},
	}
	b, err := msg.Marshal()
	require.NoError(t, err)

	var decoded AgentToServer
	require.NoError(t, decoded.Unmarshal(b))
	assert.Equal(t, msg, &decoded)
}

func TestServerToAgentRecordsUnknownFields(t *testing.T) {
	b := protowire.AppendTag(nil, 6, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(ServerToAgentFlags_ReportFullState))
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendString(b, "from the future")

	var msg ServerToAgent
	require.NoError(t, msg.Unmarshal(b))
	assert.Equal(t, uint64(ServerToAgentFlags_ReportFullState), msg.Flags)
	assert.Equal(t, []protowire.Number{99}, msg.UnknownFields)
}

func TestServerToAgentDecodesDirectives(t *testing.T) {
	msg := &ServerToAgent{
		InstanceUid: []byte("0123456789abcdef"),
		ErrorResponse: &ServerErrorResponse{
			Type:      ServerErrorResponseType_Unavailable,
			RetryInfo: &RetryInfo{RetryAfterNanoseconds: 5e9},
		},
		RemoteConfig: &AgentRemoteConfig{
			Config: &AgentConfigMap{ConfigMap: map[string]*AgentConfigFile{
				"b.yaml": {Body: []byte("b: 2"), ContentType: "text/yaml"},
				"a.yaml": {Body: []byte("a: 1")},
			}},
			ConfigHash: []byte{1, 2},
		},
		ConnectionSettings: &ConnectionSettingsOffers{
			Hash:  []byte{3},
			Opamp: &OpAMPConnectionSettings{HeartbeatIntervalSeconds: 10},
			OtherConnections: map[string]*OtherConnectionSettings{
				"gateway": {DestinationEndpoint: "https://gw", OtherSettings: map[string]string{"k": "v"}},
			},
		},
		PackagesAvailable: &PackagesAvailable{
			Packages: map[string]*PackageAvailable{
				"plugin": {Type: PackageType_Addon, Version: "1.0", File: &DownloadableFile{DownloadUrl: "https://pkg"}},
			},
		},
		AgentIdentification: &AgentIdentification{NewInstanceUid: []byte("fedcba9876543210")},
		CustomMessage:       &CustomMessage{Capability: "io.example.a", Type: "ping", Data: []byte{0}},
	}
	b, err := msg.Marshal()
	require.NoError(t, err)

	var decoded ServerToAgent
	require.NoError(t, decoded.Unmarshal(b))
	assert.Equal(t, msg, &decoded)
}

func TestMarshalIsDeterministic(t *testing.T) {
	msg := &AgentToServer{
		EffectiveConfig: &EffectiveConfig{ConfigMap: &AgentConfigMap{ConfigMap: map[string]*AgentConfigFile{
			"z": {Body: []byte("z")},
			"a": {Body: []byte("a")},
			"m": {Body: []byte("m")},
		}}},
	}
	first, err := msg.Marshal()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := msg.Marshal()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestUnmarshalRejectsTruncatedInput(t *testing.T) {
	msg := &ServerToAgent{RemoteConfig: &AgentRemoteConfig{ConfigHash: []byte("hash")}}
	b, err := msg.Marshal()
	require.NoError(t, err)

	var decoded ServerToAgent
	assert.Error(t, decoded.Unmarshal(b[:len(b)-2]))
	assert.Error(t, decoded.Unmarshal([]byte{0xff}))
}

func TestUnmarshalRejectsInvalidUTF8(t *testing.T) {
	msg := &ServerToAgent{ErrorResponse: &ServerErrorResponse{ErrorMessage: "bad \xff\xfe"}}
	b, err := msg.Marshal()
	require.NoError(t, err)

	var decoded ServerToAgent
	assert.ErrorIs(t, decoded.Unmarshal(b), errInvalidUTF8)

	msg = &ServerToAgent{RemoteConfig: &AgentRemoteConfig{Config: &AgentConfigMap{
		ConfigMap: map[string]*AgentConfigFile{"\xc3": {Body: []byte("x")}},
	}}}
	b, err = msg.Marshal()
	require.NoError(t, err)
	assert.ErrorIs(t, decoded.Unmarshal(b), errInvalidUTF8)
}

func TestUnmarshalResetsMessage(t *testing.T) {
	msg := ServerToAgent{Flags: 1, UnknownFields: []protowire.Number{50}}
	require.NoError(t, msg.Unmarshal(nil))
	assert.Equal(t, ServerToAgent{}, msg)
}

func TestAgentCapabilitiesHas(t *testing.T) {
	caps := AgentCapabilities_ReportsStatus | AgentCapabilities_AcceptsRemoteConfig
	assert.True(t, caps.Has(AgentCapabilities_AcceptsRemoteConfig))
	assert.False(t, caps.Has(AgentCapabilities_ReportsHealth))
	assert.Equal(t, "ReportsHealth", AgentCapabilities_ReportsHealth.String())
	assert.Equal(t, "UNAVAILABLE", ServerErrorResponseType_Unavailable.String())
	assert.Equal(t, "7", RemoteConfigStatuses(7).String())
}

func TestCloneIsDeep(t *testing.T) {
	orig := &AgentDescription{IdentifyingAttributes: []*KeyValue{
		{Key: "service.name", Value: &AnyValue{Value: &AnyValue_StringValue{StringValue: "a"}}},
	}}
	cp := orig.Clone()
	require.Equal(t, orig, cp)

	orig.IdentifyingAttributes[0].Key = "changed"
	assert.Equal(t, "service.name", cp.IdentifyingAttributes[0].Key)

	var nilHealth *ComponentHealth
	assert.Nil(t, nilHealth.Clone())
}
