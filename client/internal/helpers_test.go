package internal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/observiq/opamp-client-go/protobufs"
)

type TestLogger struct {
	*testing.T
}

func (logger TestLogger) Debugf(ctx context.Context, format string, v ...interface{}) {
	logger.Logf(format, v...)
}

func (logger TestLogger) Errorf(ctx context.Context, format string, v ...interface{}) {
	logger.Logf(format, v...)
}

func testMetrics(t *testing.T) (*clientMetrics, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := newClientMetrics(provider)
	require.NoError(t, err)
	return m, reader
}

// counterValue returns the value of the data point of counter name carrying attr.
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string, attr attribute.KeyValue) int64 {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attr.Key); ok && v.Emit() == attr.Value.Emit() {
					return dp.Value
				}
			}
		}
	}
	return 0
}

// fakeTransport decodes every request and answers with reply.
type fakeTransport struct {
	t        *testing.T
	mux      sync.Mutex
	reply    func(ctx context.Context, msg *protobufs.AgentToServer) ([]byte, error)
	received chan *protobufs.AgentToServer
}

func newFakeTransport(t *testing.T) *fakeTransport {
	return &fakeTransport{t: t, received: make(chan *protobufs.AgentToServer, 100)}
}

func (f *fakeTransport) setReply(reply func(ctx context.Context, msg *protobufs.AgentToServer) ([]byte, error)) {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.reply = reply
}

func (f *fakeTransport) Send(ctx context.Context, payload []byte) ([]byte, error) {
	msg := &protobufs.AgentToServer{}
	if err := msg.Unmarshal(payload); err != nil {
		return nil, err
	}
	f.received <- msg
	f.mux.Lock()
	reply := f.reply
	f.mux.Unlock()
	if reply == nil {
		return nil, nil
	}
	return reply(ctx, msg)
}

func (f *fakeTransport) next(t *testing.T) *protobufs.AgentToServer {
	t.Helper()
	select {
	case msg := <-f.received:
		return msg
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for a message")
		return nil
	}
}

func (f *fakeTransport) assertNoMessage(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case msg := <-f.received:
		require.FailNowf(t, "unexpected message", "sequence number %d", msg.SequenceNum)
	case <-time.After(d):
	}
}

func encodeReply(t *testing.T, msg *protobufs.ServerToAgent) []byte {
	data, err := msg.Marshal()
	require.NoError(t, err)
	return data
}

type fakePolling struct {
	mux       sync.Mutex
	scheduled int
	interval  time.Duration
}

func (f *fakePolling) ScheduleSend() {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.scheduled++
}

func (f *fakePolling) SetPollingInterval(d time.Duration) {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.interval = d
}
