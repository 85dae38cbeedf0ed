package metrics

import "time"

// RPCMetrics records runtime counters and histograms for the frt supervisor,
// invoker, and client adapter. A nil RPCMetrics is valid to pass to the
// package-level forwarders below (ObserveRequest, RecordErrorCode, ...),
// which do nothing for it, so instrumentation can be compiled in
// unconditionally. Calling a method directly on a nil RPCMetrics panics.
type RPCMetrics interface {
	// ObserveRequest records a completed server-side dispatch: the method
	// name, the resulting status ("ok" or an frterr code name), and how
	// long the dispatch took end to end.
	ObserveRequest(method, status string, duration time.Duration)

	// ObserveInvoke records a completed client-side invocation.
	ObserveInvoke(method, status string, duration time.Duration)

	// RecordErrorCode tallies an RPC error code returned to a caller.
	RecordErrorCode(code uint32)

	// SetActiveChannels reports the current number of live channels
	// tracked by a supervisor.
	SetActiveChannels(count int)

	// SetArenaBytesInUse reports a completed request's arena usage,
	// sampled by the invoker on every HandleDone.
	SetArenaBytesInUse(bytes int64)

	// SetSharedBlobCount reports the process-wide number of live
	// SharedBlob instances, sampled by the invoker on every HandleDone.
	SetSharedBlobCount(count int)
}

// newPrometheusRPCMetrics is supplied by pkg/metrics/prometheus during its
// package initialization. Indirection through a package variable avoids an
// import cycle between metrics and metrics/prometheus.
var newPrometheusRPCMetrics func() RPCMetrics

// RegisterRPCMetricsConstructor registers the Prometheus-backed constructor.
// Called from pkg/metrics/prometheus's init.
func RegisterRPCMetricsConstructor(constructor func() RPCMetrics) {
	newPrometheusRPCMetrics = constructor
}

// NewRPCMetrics returns a Prometheus-backed RPCMetrics, or nil if metrics
// are disabled (InitRegistry was never called) or no backend registered
// itself.
func NewRPCMetrics() RPCMetrics {
	if !IsEnabled() || newPrometheusRPCMetrics == nil {
		return nil
	}
	return newPrometheusRPCMetrics()
}

// ObserveRequest forwards to m, tolerating a nil m.
func ObserveRequest(m RPCMetrics, method, status string, duration time.Duration) {
	if m != nil {
		m.ObserveRequest(method, status, duration)
	}
}

// ObserveInvoke forwards to m, tolerating a nil m.
func ObserveInvoke(m RPCMetrics, method, status string, duration time.Duration) {
	if m != nil {
		m.ObserveInvoke(method, status, duration)
	}
}

// RecordErrorCode forwards to m, tolerating a nil m.
func RecordErrorCode(m RPCMetrics, code uint32) {
	if m != nil {
		m.RecordErrorCode(code)
	}
}

// SetActiveChannels forwards to m, tolerating a nil m.
func SetActiveChannels(m RPCMetrics, count int) {
	if m != nil {
		m.SetActiveChannels(count)
	}
}

// SetArenaBytesInUse forwards to m, tolerating a nil m.
func SetArenaBytesInUse(m RPCMetrics, bytes int64) {
	if m != nil {
		m.SetArenaBytesInUse(bytes)
	}
}

// SetSharedBlobCount forwards to m, tolerating a nil m.
func SetSharedBlobCount(m RPCMetrics, count int) {
	if m != nil {
		m.SetSharedBlobCount(count)
	}
}
