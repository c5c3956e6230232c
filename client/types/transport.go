package types

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/observiq/opamp-client-go/protobufs"
)

// Transport delivers one encoded AgentToServer message and returns the encoded reply.
// It must honour ctx cancellation where it can; the client does not wait for a call
// that ignores it once Stop gives up.
type Transport interface {
	Send(ctx context.Context, payload []byte) ([]byte, error)
}

// HTTPClient executes HTTP requests. *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Codec converts OpAMP messages to and from their wire form.
type Codec interface {
	ContentType() string
	Encode(msg *protobufs.AgentToServer) ([]byte, error)
	Decode(data []byte, msg *protobufs.ServerToAgent) error
}

// TransportError is returned by transports when the Server answers with a non-success
// status. RetryAfter is zero unless the Server asked for a delay.
type TransportError struct {
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unsuccessful response, status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("unsuccessful response, status %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
