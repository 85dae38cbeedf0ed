package prometheus

import (
	"testing"
	"time"

	"github.com/marmos91/frtrpc/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRPCMetrics_RegistersCollectors(t *testing.T) {
	metrics.Reset()
	defer metrics.Reset()
	metrics.InitRegistry()

	m := metrics.NewRPCMetrics()
	require.NotNil(t, m)

	assert.NotPanics(t, func() {
		m.ObserveRequest("frt.rpc.ping", "ok", time.Millisecond)
		m.ObserveInvoke("frt.rpc.ping", "ok", time.Millisecond)
		m.RecordErrorCode(103)
		m.SetActiveChannels(2)
		m.SetArenaBytesInUse(4096)
		m.SetSharedBlobCount(1)
	})
}

func TestRPCMetrics_NilReceiverIsNoOp(t *testing.T) {
	var m *rpcMetrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("frt.rpc.ping", "ok", time.Millisecond)
		m.ObserveInvoke("frt.rpc.ping", "ok", time.Millisecond)
		m.RecordErrorCode(103)
		m.SetActiveChannels(2)
		m.SetArenaBytesInUse(4096)
		m.SetSharedBlobCount(1)
	})
}
