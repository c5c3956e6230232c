package internal

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/observiq/opamp-client-go/client/types"
	"github.com/observiq/opamp-client-go/protobufs"
)

// RetrySettings configures how failed send cycles are retried.
type RetrySettings struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// Zero retries until success or stop.
	MaxElapsedTime time.Duration
}

// PollerSettings holds everything a Poller needs.
type PollerSettings struct {
	Logger           types.Logger
	Callbacks        types.Callbacks
	Transport        types.Transport
	Codec            types.Codec
	Report           *PendingReport
	Metrics          *clientMetrics
	PollingInterval  time.Duration
	RequestTimeout   time.Duration
	Retry            RetrySettings
	ReportDisconnect bool
}

// Poller runs the send/receive cycle. It wakes when the polling interval elapses or a
// send is scheduled, sends one message built from the pending report and hands the
// reply to the received processor. Only one exchange is ever in flight.
type Poller struct {
	logger           types.Logger
	callbacks        types.Callbacks
	transport        types.Transport
	codec            types.Codec
	report           *PendingReport
	metrics          *clientMetrics
	processor        receivedProcessor
	requestTimeout   time.Duration
	reportDisconnect bool
	backOff          *backoff.ExponentialBackOff

	interval        atomic.Int64
	intervalChanged chan struct{}
	sendNow         chan struct{}
	stopRequested   chan struct{}

	// connected is only accessed by the polling goroutine.
	connected bool

	// Set while the polling goroutine runs Agent callbacks.
	inCallback atomic.Bool

	// Indicates that the poller has fully stopped.
	stopped chan struct{}
}

func NewPoller(settings PollerSettings) *Poller {
	p := &Poller{
		logger:           settings.Logger,
		callbacks:        settings.Callbacks,
		transport:        settings.Transport,
		codec:            settings.Codec,
		report:           settings.Report,
		metrics:          settings.Metrics,
		requestTimeout:   settings.RequestTimeout,
		reportDisconnect: settings.ReportDisconnect,
		backOff: backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(settings.Retry.InitialInterval),
			backoff.WithMaxInterval(settings.Retry.MaxInterval),
			backoff.WithMaxElapsedTime(settings.Retry.MaxElapsedTime),
		),
		intervalChanged: make(chan struct{}, 1),
		sendNow:         make(chan struct{}, 1),
		stopRequested:   make(chan struct{}),
		stopped:         make(chan struct{}),
	}
	p.interval.Store(int64(settings.PollingInterval))
	p.processor = newReceivedProcessor(settings.Logger, settings.Callbacks, settings.Report, p, settings.Metrics)
	return p
}

// ScheduleSend wakes the poller for an immediate send. Calls made before the poller
// wakes coalesce into a single send.
func (p *Poller) ScheduleSend() {
	select {
	case p.sendNow <- struct{}{}:
	default:
	}
}

// SetPollingInterval changes the interval between sends. It takes effect right away.
// Non-positive intervals are ignored.
func (p *Poller) SetPollingInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	p.interval.Store(int64(d))
	select {
	case p.intervalChanged <- struct{}{}:
	default:
	}
}

func (p *Poller) PollingInterval() time.Duration {
	return time.Duration(p.interval.Load())
}

// Start starts the polling loop. Cancelling ctx abandons the exchange in flight.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

// Stop asks the polling loop to exit once the current cycle ends. The loop does not
// start a new cycle after Stop.
func (p *Poller) Stop() {
	close(p.stopRequested)
}

// InCallback reports whether the polling goroutine is running an Agent callback.
func (p *Poller) InCallback() bool {
	return p.inCallback.Load()
}

func (p *Poller) dispatch(fn func()) {
	p.inCallback.Store(true)
	defer p.inCallback.Store(false)
	fn()
}

// IsStopped returns a channel that's closed when the poller is stopped.
func (p *Poller) IsStopped() <-chan struct{} {
	return p.stopped
}

func (p *Poller) stopping() bool {
	select {
	case <-p.stopRequested:
		return true
	default:
		return false
	}
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.stopped)

	timer := time.NewTimer(p.PollingInterval())
	defer timer.Stop()

	for {
		if p.stopping() {
			p.sendDisconnect(ctx)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-p.stopRequested:
			continue
		case <-p.intervalChanged:
			resetTimer(timer, p.PollingInterval())
			continue
		case <-timer.C:
		case <-p.sendNow:
		}
		p.cycle(ctx)
		resetTimer(timer, p.PollingInterval())
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

// cycle sends the pending content until it is delivered, the retry policy gives up or
// the poller stops. Every attempt carries a fresh sequence number.
func (p *Poller) cycle(ctx context.Context) {
	out := p.report.Next()
	// Elapsed time for MaxElapsedTime counts from the start of the cycle.
	p.backOff.Reset()
	for {
		err := p.attempt(ctx, out)
		if err == nil {
			return
		}
		if ctx.Err() != nil || p.stopping() {
			return
		}
		p.dispatch(func() { p.callbacks.OnConnectFailed(ctx, err) })

		delay := p.backOff.NextBackOff()
		if delay == backoff.Stop {
			p.logger.Errorf(ctx, "Giving up on message %d after retries: %v", out.Message.SequenceNum, err)
			return
		}
		if hint := retryAfter(err); hint > delay {
			delay = hint
		}
		p.logger.Debugf(ctx, "Send failed, retrying in %s: %v", delay, err)
		if !p.wait(ctx, delay) {
			return
		}
		p.report.Resequence(out)
	}
}

// attempt performs one exchange of out and applies the reply.
func (p *Poller) attempt(ctx context.Context, out *OutboundMessage) error {
	reply, err := p.exchange(ctx, out.Message)
	if err == nil && p.stopping() {
		// The message reached the Server but the session is ending, so the reply
		// is not dispatched.
		p.report.Delivered(out)
		p.metrics.messageSent(ctx, outcomeSuccess)
		return nil
	}
	if err == nil {
		p.dispatch(func() { err = p.processor.ProcessReceivedMessage(ctx, reply) })
	}
	if err != nil {
		p.connected = false
		p.metrics.messageSent(ctx, outcomeFailure)
		return err
	}
	p.report.Delivered(out)
	p.metrics.messageSent(ctx, outcomeSuccess)
	if !p.connected {
		p.connected = true
		p.dispatch(func() { p.callbacks.OnConnect(ctx) })
	}
	return nil
}

// exchange encodes msg, sends it and decodes the reply. The transport runs in its own
// goroutine so a transport that ignores ctx cannot hold up the poller.
func (p *Poller) exchange(ctx context.Context, msg *protobufs.AgentToServer) (*protobufs.ServerToAgent, error) {
	payload, err := p.codec.Encode(msg)
	if err != nil {
		return nil, fmt.Errorf("cannot encode message: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	type result struct {
		body []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, err := p.transport.Send(reqCtx, payload)
		done <- result{body, err}
	}()

	var res result
	select {
	case <-reqCtx.Done():
		return nil, fmt.Errorf("send abandoned: %w", reqCtx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return nil, res.err
	}

	reply := &protobufs.ServerToAgent{}
	if err := p.codec.Decode(res.body, reply); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return reply, nil
}

// wait sleeps for d. It returns false if the poller is stopped or ctx is done first.
func (p *Poller) wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-p.stopRequested:
		return false
	case <-ctx.Done():
		return false
	}
}

// sendDisconnect makes one attempt to tell the Server the Agent is going away.
func (p *Poller) sendDisconnect(ctx context.Context) {
	if !p.reportDisconnect || ctx.Err() != nil {
		return
	}
	out := p.report.Next()
	out.Message.AgentDisconnect = &protobufs.AgentDisconnect{}
	if _, err := p.exchange(ctx, out.Message); err != nil {
		p.metrics.messageSent(ctx, outcomeFailure)
		p.logger.Errorf(ctx, "Cannot report disconnect: %v", err)
		return
	}
	p.report.Delivered(out)
	p.metrics.messageSent(ctx, outcomeSuccess)
}

// retryAfter returns the delay the Server asked for, if any.
func retryAfter(err error) time.Duration {
	var transportErr *types.TransportError
	if errors.As(err, &transportErr) {
		return transportErr.RetryAfter
	}
	var unavailable *ServerUnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.RetryAfter
	}
	return 0
}
