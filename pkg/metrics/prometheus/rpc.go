// Package prometheus is the Prometheus-backed implementation of the
// metrics.RPCMetrics interface.
package prometheus

import (
	"strconv"
	"time"

	"github.com/marmos91/frtrpc/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterRPCMetricsConstructor(func() metrics.RPCMetrics {
		return newRPCMetrics()
	})
}

// rpcMetrics is the Prometheus implementation of metrics.RPCMetrics.
type rpcMetrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	invokesTotal     *prometheus.CounterVec
	invokeDuration   *prometheus.HistogramVec
	errorCodesTotal  *prometheus.CounterVec
	activeChannels   prometheus.Gauge
	arenaBytesInUse  prometheus.Gauge
	sharedBlobCount  prometheus.Gauge
}

// durationBuckets covers sub-millisecond local calls up to multi-second
// calls that crossed a slow network or blocked on a detached handler.
var durationBuckets = []float64{
	0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10,
}

// newRPCMetrics constructs all collectors against the process-wide registry.
func newRPCMetrics() metrics.RPCMetrics {
	reg := metrics.GetRegistry()

	return &rpcMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "frt_requests_total",
				Help: "Total number of server-side RPC dispatches by method and status",
			},
			[]string{"method", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "frt_request_duration_seconds",
				Help:    "Server-side dispatch latency in seconds, by method",
				Buckets: durationBuckets,
			},
			[]string{"method"},
		),
		invokesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "frt_client_invokes_total",
				Help: "Total number of client-side RPC invocations by method and status",
			},
			[]string{"method", "status"},
		),
		invokeDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "frt_client_invoke_duration_seconds",
				Help:    "Client-side invocation latency in seconds, by method",
				Buckets: durationBuckets,
			},
			[]string{"method"},
		),
		errorCodesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "frt_error_codes_total",
				Help: "Total number of RPC error codes returned to callers",
			},
			[]string{"code"},
		),
		activeChannels: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "frt_active_channels",
				Help: "Current number of live channels tracked by the supervisor",
			},
		),
		arenaBytesInUse: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "frt_arena_bytes_in_use",
				Help: "Arena bytes in use by the most recently completed request dispatch",
			},
		),
		sharedBlobCount: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "frt_shared_blob_count",
				Help: "Current process-wide number of live SharedBlob instances",
			},
		),
	}
}

func (m *rpcMetrics) ObserveRequest(method, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, status).Inc()
	m.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (m *rpcMetrics) ObserveInvoke(method, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.invokesTotal.WithLabelValues(method, status).Inc()
	m.invokeDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (m *rpcMetrics) RecordErrorCode(code uint32) {
	if m == nil {
		return
	}
	m.errorCodesTotal.WithLabelValues(strconv.FormatUint(uint64(code), 10)).Inc()
}

func (m *rpcMetrics) SetActiveChannels(count int) {
	if m == nil {
		return
	}
	m.activeChannels.Set(float64(count))
}

func (m *rpcMetrics) SetArenaBytesInUse(bytes int64) {
	if m == nil {
		return
	}
	m.arenaBytesInUse.Set(float64(bytes))
}

func (m *rpcMetrics) SetSharedBlobCount(count int) {
	if m == nil {
		return
	}
	m.sharedBlobCount.Set(float64(count))
}
