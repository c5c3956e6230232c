package internal

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/observiq/opamp-client-go/client/types"
	sharedinternal "github.com/observiq/opamp-client-go/internal"
)

const wsHandshakeTimeout = 45 * time.Second

var errConnectionClosed = errors.New("websocket connection closed")

// WSTransportSettings configures a WSTransport.
type WSTransportSettings struct {
	URL               string
	Logger            types.Logger
	Header            http.Header
	HeaderFunc        func(http.Header) http.Header
	TLSConfig         *tls.Config
	EnableCompression bool
}

// WSTransport exchanges messages over a WebSocket connection with request/reply
// semantics: each Send writes one frame and waits for the next frame from the Server.
// The connection is dialed on first use and again after it fails.
type WSTransport struct {
	url        string
	logger     types.Logger
	header     http.Header
	headerFunc func(http.Header) http.Header
	dialer     *websocket.Dialer

	mux      sync.Mutex
	conn     *websocket.Conn
	receiver *WSReceiver
	cancel   context.CancelFunc
}

var _ types.Transport = (*WSTransport)(nil)

func NewWSTransport(settings WSTransportSettings) *WSTransport {
	return &WSTransport{
		url:        settings.URL,
		logger:     settings.Logger,
		header:     settings.Header,
		headerFunc: settings.HeaderFunc,
		dialer: &websocket.Dialer{
			Proxy:             http.ProxyFromEnvironment,
			HandshakeTimeout:  wsHandshakeTimeout,
			TLSClientConfig:   settings.TLSConfig,
			EnableCompression: settings.EnableCompression,
		},
	}
}

func (t *WSTransport) Send(ctx context.Context, payload []byte) ([]byte, error) {
	t.mux.Lock()
	defer t.mux.Unlock()

	if err := t.connectLocked(ctx); err != nil {
		return nil, err
	}

	// Drop frames the Server sent outside of an exchange.
	for drained := false; !drained; {
		select {
		case <-t.receiver.Frames():
			t.logger.Debugf(ctx, "Dropping unsolicited frame")
		default:
			drained = true
		}
	}

	if err := t.conn.WriteMessage(websocket.BinaryMessage, sharedinternal.AppendWSHeader(payload)); err != nil {
		t.closeLocked()
		return nil, fmt.Errorf("cannot write frame: %w", err)
	}

	select {
	case frame := <-t.receiver.Frames():
		return sharedinternal.StripWSHeader(frame)
	case <-t.receiver.IsStopped():
		err := t.receiver.Err()
		t.closeLocked()
		return nil, fmt.Errorf("%w: %v", errConnectionClosed, err)
	case <-ctx.Done():
		// The reply may still arrive; it is dropped before the next write.
		return nil, ctx.Err()
	}
}

func (t *WSTransport) connectLocked(ctx context.Context) error {
	if t.conn != nil {
		return nil
	}
	header := t.header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if t.headerFunc != nil {
		header = t.headerFunc(header)
	}
	conn, resp, err := t.dialer.DialContext(ctx, t.url, header)
	if err != nil {
		if resp != nil {
			return &types.TransportError{
				StatusCode: resp.StatusCode,
				RetryAfter: sharedinternal.ExtractRetryAfterHeader(resp).Duration,
				Err:        err,
			}
		}
		return fmt.Errorf("cannot dial %s: %w", t.url, err)
	}

	recvCtx, cancel := context.WithCancel(context.Background())
	t.conn = conn
	t.cancel = cancel
	t.receiver = NewWSReceiver(t.logger, conn)
	t.receiver.Start(recvCtx)
	return nil
}

func (t *WSTransport) closeLocked() error {
	if t.conn == nil {
		return nil
	}
	t.cancel()
	_ = t.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	err := t.conn.Close()
	<-t.receiver.IsStopped()
	t.conn, t.receiver, t.cancel = nil, nil, nil
	return err
}

// Close closes the connection. A later Send dials again.
func (t *WSTransport) Close() error {
	t.mux.Lock()
	defer t.mux.Unlock()
	return t.closeLocked()
}
