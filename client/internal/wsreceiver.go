package internal

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/observiq/opamp-client-go/client/types"
)

// WSReceiver reads the frames the Server sends on a WebSocket connection and hands
// them to the WSTransport waiting for a reply.
type WSReceiver struct {
	conn   *websocket.Conn
	logger types.Logger
	frames chan []byte

	// Set before stopped is closed.
	err error

	// Indicates that the receiver has fully stopped.
	stopped chan struct{}
}

// NewWSReceiver creates a new Receiver that uses WebSocket to receive
// messages from the server.
func NewWSReceiver(logger types.Logger, conn *websocket.Conn) *WSReceiver {
	return &WSReceiver{
		conn:    conn,
		logger:  logger,
		frames:  make(chan []byte, 1),
		stopped: make(chan struct{}),
	}
}

// Start starts the receiver loop.
func (r *WSReceiver) Start(ctx context.Context) {
	go r.ReceiverLoop(ctx)
}

// IsStopped returns a channel that's closed when the receiver is stopped.
func (r *WSReceiver) IsStopped() <-chan struct{} {
	return r.stopped
}

// Frames returns the channel the received frames are delivered on.
func (r *WSReceiver) Frames() <-chan []byte {
	return r.frames
}

// Err returns the error that stopped the receiver. Only valid once IsStopped is closed.
func (r *WSReceiver) Err() error {
	return r.err
}

// ReceiverLoop runs the receiver loop.
// To stop the receiver cancel the context and close the websocket connection
func (r *WSReceiver) ReceiverLoop(ctx context.Context) {
	type receivedFrame struct {
		data []byte
		err  error
	}

	defer func() { close(r.stopped) }()

	for {
		select {
		case <-ctx.Done():
			r.err = ctx.Err()
			return
		default:
			result := make(chan receivedFrame, 1)

			// To stop this goroutine, close the websocket connection
			go func() {
				_, data, err := r.conn.ReadMessage()
				result <- receivedFrame{data, err}
			}()

			select {
			case <-ctx.Done():
				r.err = ctx.Err()
				return
			case res := <-result:
				if res.err != nil {
					if !websocket.IsCloseError(res.err, websocket.CloseNormalClosure) {
						r.logger.Errorf(ctx, "Unexpected error while receiving: %v", res.err)
					}
					r.err = res.err
					return
				}
				select {
				case r.frames <- res.data:
				case <-ctx.Done():
					r.err = ctx.Err()
					return
				}
			}
		}
	}
}
