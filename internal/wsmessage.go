package internal

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"
)

// wsMsgHeader is the varint header that precedes every OpAMP message sent over WebSocket.
const wsMsgHeader = 0

// AppendWSHeader returns a WebSocket frame payload carrying the encoded message data.
func AppendWSHeader(data []byte) []byte {
	out := protowire.AppendVarint(make([]byte, 0, len(data)+1), wsMsgHeader)
	return append(out, data...)
}

// StripWSHeader returns the encoded message carried by a WebSocket frame payload.
func StripWSHeader(frame []byte) ([]byte, error) {
	// The header is optional for servers that predate it.
	if len(frame) == 0 || frame[0] != wsMsgHeader {
		return frame, nil
	}
	header, n := protowire.ConsumeVarint(frame)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	if header != wsMsgHeader {
		return nil, errors.New("unexpected non-zero header")
	}
	return frame[n:], nil
}
