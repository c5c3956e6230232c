package types

import (
	"crypto/tls"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Defaults applied by the client when the corresponding StartSettings field is unset.
const (
	DefaultHeartbeatInterval    = 30 * time.Second
	DefaultRequestTimeout       = 30 * time.Second
	DefaultRetryInitialInterval = time.Second
	DefaultRetryMaxInterval     = 5 * time.Minute
	DefaultShutdownGracePeriod  = 5 * time.Second
)

// StartSettings defines the parameters for starting the OpAMP Client.
type StartSettings struct {
	// Connection parameters.

	// Server URL. MUST be set unless Transport is set. The scheme selects the
	// transport: http and https poll over HTTP, ws and wss use a WebSocket.
	OpAMPServerURL string

	// Optional additional HTTP headers to send with all HTTP requests.
	Header http.Header

	// Optional function that can be used to modify the HTTP headers
	// before each HTTP request.
	// Can modify and return the argument or return the argument without modifying.
	HeaderFunc func(http.Header) http.Header

	// Optional TLS config for HTTP connection.
	TLSConfig *tls.Config

	// Optional HTTP executor. Defaults to an http.Client built from TLSConfig, or to an
	// HTTP/2 client when EnableHTTP2 is set.
	HTTPClient HTTPClient

	// EnableHTTP2 selects an HTTP/2 executor for the default HTTP transport.
	EnableHTTP2 bool

	// Optional pluggable transport. When set OpAMPServerURL, Header, HeaderFunc,
	// TLSConfig, HTTPClient and EnableCompression are not used.
	Transport Transport

	// Optional wire codec. Defaults to the Protocol Buffers binary codec.
	Codec Codec

	// Callbacks that the client will call after Start() returns nil.
	Callbacks Callbacks

	// Agent is the agent that the client reports for.
	Agent Agent

	// EnableCompression can be set to true to enable gzip compression of request
	// bodies. Compressed responses are always accepted.
	EnableCompression bool

	// Optional HeartbeatInterval to configure the polling interval for the client.
	// If nil, the default interval (30s) will be used. Zero or negative is invalid.
	//
	// The Server may change the interval later through the heartbeat interval of
	// the OpAMP connection settings it offers.
	HeartbeatInterval *time.Duration

	// Maximum time a single request may take. Defaults to 30s.
	RequestTimeout time.Duration

	// Retry policy of failed send cycles. The delay grows exponentially from
	// RetryInitialInterval up to RetryMaxInterval. A RetryMaxElapsedTime of zero keeps
	// retrying until a send succeeds or the client is stopped; otherwise the cycle is
	// abandoned once it elapses and the content is sent again on the next wake.
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMaxElapsedTime  time.Duration

	// Time Stop waits for an in-flight send before cancelling it. Defaults to 5s.
	ShutdownGracePeriod time.Duration

	// ReportDisconnect makes Stop send one last message telling the Server the
	// agent is disconnecting.
	ReportDisconnect bool

	// Optional meter provider for client metrics. The global provider is used if nil.
	MeterProvider metric.MeterProvider
}
