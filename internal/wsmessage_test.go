package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/observiq/opamp-client-go/protobufs"
)

func TestWSMessageHeader(t *testing.T) {
	msg := &protobufs.AgentToServer{SequenceNum: 7, InstanceUid: []byte("abc")}
	data, err := msg.Marshal()
	require.NoError(t, err)
	frame := AppendWSHeader(data)
	assert.Equal(t, byte(0), frame[0])

	stripped, err := StripWSHeader(frame)
	require.NoError(t, err)
	var decoded protobufs.AgentToServer
	require.NoError(t, decoded.Unmarshal(stripped))
	assert.Equal(t, msg, &decoded)
}

func TestStripWSHeaderWithoutHeader(t *testing.T) {
	msg := &protobufs.ServerToAgent{Flags: uint64(protobufs.ServerToAgentFlags_ReportFullState)}
	data, err := msg.Marshal()
	require.NoError(t, err)

	stripped, err := StripWSHeader(data)
	require.NoError(t, err)
	assert.Equal(t, data, stripped)
}

func TestStripWSHeaderGarbage(t *testing.T) {
	stripped, err := StripWSHeader([]byte{0, 0x0a, 0x05, 0x01})
	require.NoError(t, err)
	var decoded protobufs.ServerToAgent
	assert.Error(t, decoded.Unmarshal(stripped))
}

func TestProtobufCodec(t *testing.T) {
	var codec ProtobufCodec
	assert.Equal(t, "application/x-protobuf", codec.ContentType())

	data, err := codec.Encode(&protobufs.AgentToServer{SequenceNum: 3})
	require.NoError(t, err)
	var reply protobufs.ServerToAgent
	// Field 2 of AgentToServer is an unknown varint field of ServerToAgent.
	require.NoError(t, codec.Decode(data, &reply))
	assert.Len(t, reply.UnknownFields, 1)
}
