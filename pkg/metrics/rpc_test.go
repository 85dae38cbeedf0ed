package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeRPCMetrics records calls for assertion without touching Prometheus.
type fakeRPCMetrics struct {
	requests  int
	invokes   int
	errCodes  []uint32
	channels  int
	arenaSize int64
	blobs     int
}

func (f *fakeRPCMetrics) ObserveRequest(method, status string, duration time.Duration) { f.requests++ }
func (f *fakeRPCMetrics) ObserveInvoke(method, status string, duration time.Duration)  { f.invokes++ }
func (f *fakeRPCMetrics) RecordErrorCode(code uint32)                                  { f.errCodes = append(f.errCodes, code) }
func (f *fakeRPCMetrics) SetActiveChannels(count int)                                  { f.channels = count }
func (f *fakeRPCMetrics) SetArenaBytesInUse(bytes int64)                               { f.arenaSize = bytes }
func (f *fakeRPCMetrics) SetSharedBlobCount(count int)                                 { f.blobs = count }

func TestForwarders_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		ObserveRequest(nil, "frt.rpc.ping", "ok", time.Millisecond)
		ObserveInvoke(nil, "frt.rpc.ping", "ok", time.Millisecond)
		RecordErrorCode(nil, 103)
		SetActiveChannels(nil, 1)
		SetArenaBytesInUse(nil, 1024)
		SetSharedBlobCount(nil, 1)
	})
}

func TestForwarders_DelegateToBackend(t *testing.T) {
	f := &fakeRPCMetrics{}

	ObserveRequest(f, "frt.rpc.echo", "ok", time.Millisecond)
	ObserveInvoke(f, "frt.rpc.echo", "ok", time.Millisecond)
	RecordErrorCode(f, 106)
	SetActiveChannels(f, 3)
	SetArenaBytesInUse(f, 2048)
	SetSharedBlobCount(f, 2)

	assert.Equal(t, 1, f.requests)
	assert.Equal(t, 1, f.invokes)
	assert.Equal(t, []uint32{106}, f.errCodes)
	assert.Equal(t, 3, f.channels)
	assert.Equal(t, int64(2048), f.arenaSize)
	assert.Equal(t, 2, f.blobs)
}

func TestNewRPCMetrics_DisabledReturnsNil(t *testing.T) {
	Reset()
	defer Reset()

	assert.Nil(t, NewRPCMetrics())
}
