package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for RPC operations. These follow OpenTelemetry semantic
// conventions where applicable and are attached to the span carried by
// every rpcrequest.Request (see internal/frt/rpcrequest).
const (
	AttrPeerAddr     = "rpc.peer.address"
	AttrChannel      = "rpc.channel"
	AttrMethod       = "rpc.method"
	AttrParamSpec    = "rpc.param_spec"
	AttrReturnSpec   = "rpc.return_spec"
	AttrErrorCode    = "rpc.error_code"
	AttrErrorMsg     = "rpc.error_message"
	AttrDetached     = "rpc.detached"
	AttrNoReply      = "rpc.no_reply"
	AttrLittleEndian = "rpc.little_endian"
)

// Span names for frt operations.
const (
	SpanInvoke     = "frt.invoke"
	SpanDispatch   = "frt.dispatch"
	SpanClientCall = "frt.client.call"
)

// PeerAddr returns an attribute for the remote peer address.
func PeerAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrPeerAddr, addr)
}

// Channel returns an attribute identifying the channel a request arrived on.
func Channel(id string) attribute.KeyValue {
	return attribute.String(AttrChannel, id)
}

// Method returns an attribute for the RPC method name.
func Method(name string) attribute.KeyValue {
	return attribute.String(AttrMethod, name)
}

// ParamSpec returns an attribute for the request's parameter type-string.
func ParamSpec(spec string) attribute.KeyValue {
	return attribute.String(AttrParamSpec, spec)
}

// ReturnSpec returns an attribute for the request's return type-string.
func ReturnSpec(spec string) attribute.KeyValue {
	return attribute.String(AttrReturnSpec, spec)
}

// ErrorCode returns an attribute for an RPC error code.
func ErrorCode(code uint32) attribute.KeyValue {
	return attribute.Int64(AttrErrorCode, int64(code))
}

// Detached returns an attribute recording whether a handler detached.
func Detached(detached bool) attribute.KeyValue {
	return attribute.Bool(AttrDetached, detached)
}

// NoReply returns an attribute recording the NOREPLY packet flag.
func NoReply(noReply bool) attribute.KeyValue {
	return attribute.Bool(AttrNoReply, noReply)
}

// StartInvokeSpan starts the root span for server-side dispatch of a method.
func StartInvokeSpan(ctx context.Context, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{Method(method)}, attrs...)
	return StartSpan(ctx, SpanInvoke, trace.WithAttributes(allAttrs...))
}

// FormatSpanAttr renders an arbitrary byte slice as a hex attribute value,
// used for opaque context/blob identifiers that show up in trace output.
func FormatSpanAttr(b []byte) string {
	return fmt.Sprintf("%x", b)
}
