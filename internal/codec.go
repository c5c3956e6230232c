package internal

import "github.com/observiq/opamp-client-go/protobufs"

// ProtobufContentType is the media type of OpAMP messages carried over plain HTTP.
const ProtobufContentType = "application/x-protobuf"

// ProtobufCodec encodes OpAMP messages in the Protocol Buffers binary format.
type ProtobufCodec struct{}

func (ProtobufCodec) ContentType() string {
	return ProtobufContentType
}

func (ProtobufCodec) Encode(msg *protobufs.AgentToServer) ([]byte, error) {
	return msg.Marshal()
}

func (ProtobufCodec) Decode(data []byte, msg *protobufs.ServerToAgent) error {
	return msg.Unmarshal(data)
}
