package logger

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Standard field keys for structured logging across the frt runtime: the
// supervisor, invoker, client adapter, and reflection layers all log with
// these keys so log aggregation and querying stay consistent regardless of
// which component emitted the line.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// RPC Method & Dispatch
	// ========================================================================
	KeyMethod     = "method"      // RPC method name, e.g. "frt.rpc.echo"
	KeyParamSpec  = "param_spec"  // Request parameter type-string, e.g. "is"
	KeyReturnSpec = "return_spec" // Request return type-string, e.g. "d"
	KeyDetached   = "detached"    // Whether the handler detached the request
	KeyNoReply    = "no_reply"    // Whether the request carried the NOREPLY flag

	// ========================================================================
	// Channel & Connection
	// ========================================================================
	KeyChannel     = "channel"      // Channel identifier
	KeyPeerAddr    = "peer_addr"    // Remote peer network address
	KeyLocalAddr   = "local_addr"   // Local listen address
	KeyConnID      = "connection_id"
	KeyLittleEndian = "little_endian" // Whether the connection negotiated little-endian wire order

	// ========================================================================
	// Request & Completion
	// ========================================================================
	KeyRequestID     = "request_id"     // Completion-token-scoped request identifier
	KeyErrorCode     = "error_code"     // Numeric frt error code
	KeyErrorMsg      = "error_message"  // frt error message text
	KeyCapability    = "capability"     // Capability name checked by an access filter
	KeyCapabilitySet = "capability_set" // Full capability set attached to a connection

	// ========================================================================
	// Arena & Blob
	// ========================================================================
	KeyArenaBytes   = "arena_bytes"   // Bytes currently allocated from a request arena
	KeyBlobBytes    = "blob_bytes"    // SharedBlob payload size
	KeyBlobRefCount = "blob_refcount" // SharedBlob reference count

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyAttempt    = "attempt"     // Retry attempt number
)

// ----------------------------------------------------------------------------
// Distributed Tracing
// ----------------------------------------------------------------------------

// TraceID returns a slog.Attr for the OpenTelemetry trace ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for the OpenTelemetry span ID.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// ----------------------------------------------------------------------------
// RPC Method & Dispatch
// ----------------------------------------------------------------------------

// Method returns a slog.Attr for the RPC method name.
func Method(name string) slog.Attr {
	return slog.String(KeyMethod, name)
}

// ParamSpec returns a slog.Attr for a request's parameter type-string.
func ParamSpec(spec string) slog.Attr {
	return slog.String(KeyParamSpec, spec)
}

// ReturnSpec returns a slog.Attr for a request's return type-string.
func ReturnSpec(spec string) slog.Attr {
	return slog.String(KeyReturnSpec, spec)
}

// Detached returns a slog.Attr recording whether a handler detached the request.
func Detached(detached bool) slog.Attr {
	return slog.Bool(KeyDetached, detached)
}

// NoReply returns a slog.Attr recording the NOREPLY packet flag.
func NoReply(noReply bool) slog.Attr {
	return slog.Bool(KeyNoReply, noReply)
}

// ----------------------------------------------------------------------------
// Channel & Connection
// ----------------------------------------------------------------------------

// Channel returns a slog.Attr identifying the channel a request arrived on.
func Channel(id string) slog.Attr {
	return slog.String(KeyChannel, id)
}

// PeerAddr returns a slog.Attr for the remote peer's network address.
func PeerAddr(addr string) slog.Attr {
	return slog.String(KeyPeerAddr, addr)
}

// LocalAddr returns a slog.Attr for the local listen address.
func LocalAddr(addr string) slog.Attr {
	return slog.String(KeyLocalAddr, addr)
}

// ConnectionID returns a slog.Attr for a connection identifier.
func ConnectionID(id string) slog.Attr {
	return slog.String(KeyConnID, id)
}

// LittleEndian returns a slog.Attr recording a connection's negotiated byte order.
func LittleEndian(little bool) slog.Attr {
	return slog.Bool(KeyLittleEndian, little)
}

// ----------------------------------------------------------------------------
// Request & Completion
// ----------------------------------------------------------------------------

// RequestID returns a slog.Attr for a request's completion-token-scoped ID.
func RequestID(id uint64) slog.Attr {
	return slog.Uint64(KeyRequestID, id)
}

// ErrorCode returns a slog.Attr for a numeric frt error code.
func ErrorCode(code uint32) slog.Attr {
	return slog.Any(KeyErrorCode, code)
}

// ErrorMsg returns a slog.Attr for an frt error message.
func ErrorMsg(msg string) slog.Attr {
	return slog.String(KeyErrorMsg, msg)
}

// Capability returns a slog.Attr for a single capability name.
func Capability(name string) slog.Attr {
	return slog.String(KeyCapability, name)
}

// CapabilitySet returns a slog.Attr for a full capability set, rendered as a
// sorted, comma-joined string.
func CapabilitySet(names []string) slog.Attr {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return slog.String(KeyCapabilitySet, strings.Join(sorted, ","))
}

// ----------------------------------------------------------------------------
// Arena & Blob
// ----------------------------------------------------------------------------

// ArenaBytes returns a slog.Attr for bytes allocated from a request arena.
func ArenaBytes(n int) slog.Attr {
	return slog.Int(KeyArenaBytes, n)
}

// BlobBytes returns a slog.Attr for a SharedBlob's payload size.
func BlobBytes(n int) slog.Attr {
	return slog.Int(KeyBlobBytes, n)
}

// BlobRefCount returns a slog.Attr for a SharedBlob's current reference count.
func BlobRefCount(n int32) slog.Attr {
	return slog.Int(KeyBlobRefCount, int(n))
}

// ----------------------------------------------------------------------------
// Operation Metadata
// ----------------------------------------------------------------------------

// DurationMs returns a slog.Attr for duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error, or an empty attr if err is nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Attempt returns a slog.Attr for a retry attempt number.
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// Hex formats an arbitrary byte slice as a lowercase hex string, used for
// opaque context/blob identifiers that show up in log output.
func Hex(b []byte) string {
	return fmt.Sprintf("%x", b)
}
