// Package invoker implements the server-side dispatch state machine:
// resolve the target method, validate parameter types, run the method's
// access filter, call the handler, and produce a reply (or drop the
// request silently for NOREPLY/BAD_REQUEST).
package invoker

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/marmos91/frtrpc/internal/frt/frterr"
	"github.com/marmos91/frtrpc/internal/frt/reflection"
	"github.com/marmos91/frtrpc/internal/frt/rpcrequest"
	"github.com/marmos91/frtrpc/internal/frt/value"
	"github.com/marmos91/frtrpc/internal/frt/wire"
	"github.com/marmos91/frtrpc/internal/logger"
	"github.com/marmos91/frtrpc/internal/telemetry"
	"github.com/marmos91/frtrpc/pkg/metrics"
)

// Channel is the minimal surface of a transport channel the invoker needs:
// somewhere to send the reply packet, something to free once it's sent,
// and the connection it belongs to (exposed through Request.Connection).
type Channel interface {
	Send(p wire.Packet)
	Free()
	Connection() rpcrequest.Connection
}

// Invoker drives one request through resolution, dispatch, and reply. It
// installs itself as the request's return handler so a detached handler
// can complete the request later from another goroutine.
type Invoker struct {
	req     *rpcrequest.Request
	method  *reflection.Method
	channel Channel
	noReply bool
	metrics metrics.RPCMetrics
	start   time.Time
	logCtx  context.Context
}

// New resolves req's method against manager and validates it: unknown
// method, parameter type mismatch, and access filter denial are all
// reported by setting req's error and leaving method nil or unusable, the
// same way they would surface from a failed Invoke. Invoke may still be
// called on such an invoker: it skips the handler and HandleDone sends the
// error reply (or drops it, for NOREPLY and BAD_REQUEST).
func New(manager *reflection.Manager, req *rpcrequest.Request, channel Channel, noReply bool, m metrics.RPCMetrics) *Invoker {
	lc := logger.NewLogContext(channel.Connection().RemoteAddr()).WithMethod(req.MethodName())
	logCtx := logger.WithContext(context.Background(), lc)

	inv := &Invoker{
		req:     req,
		channel: channel,
		noReply: noReply,
		metrics: m,
		start:   time.Now(),
		logCtx:  logCtx,
	}

	logger.DebugCtx(logCtx, "invoke(server) init")

	// The request <-> connection link goes through the return handler, so
	// it must be set before the access filter runs (a filter may need
	// req.Connection()).
	req.SetReturnHandler(inv)

	_, span := telemetry.StartInvokeSpan(context.Background(), req.MethodName(),
		telemetry.PeerAddr(channel.Connection().RemoteAddr()), telemetry.ParamSpec(req.ParamSpec()))
	req.SetSpan(span)

	method := manager.LookupMethod(req.MethodName())
	switch {
	case method == nil:
		if !req.IsError() { // may already be BAD_REQUEST from the decoder
			req.SetErrorDefault(frterr.NoSuchMethod)
		}
	case !value.CheckTypes(method.ParamSpec(), req.ParamSpec()):
		req.SetErrorDefault(frterr.WrongParams)
	case method.AccessFilter() != nil && !method.AccessFilter().CheckAccess(req):
		req.SetErrorDefault(frterr.PermissionDenied)
	default:
		inv.method = method
	}

	return inv
}

// Invoke calls the resolved method's handler, unless resolution already
// failed. It returns true if the request completed synchronously (a reply
// was produced or the request was dropped), or false if the handler
// detached the request for later completion via HandleReturn.
func (inv *Invoker) Invoke() bool {
	detached := false
	inv.req.SetDetachedPT(&detached)

	if inv.method != nil {
		inv.method.Handler()(inv.req)
	}

	if detached {
		return false
	}
	inv.HandleDone(false)
	return true
}

// HandleDone validates the return types (if no error is already set),
// records metrics, and either sends a reply packet or drops the request
// without replying (NOREPLY requests, and BAD_REQUEST which predates
// method resolution). freeChannel frees the channel afterward; used when
// HandleDone runs from HandleReturn (detached completion) rather than
// from the synchronous Invoke path, where the caller still owns the
// channel.
func (inv *Invoker) HandleDone(freeChannel bool) {
	if !inv.req.IsError() && inv.method != nil && !value.CheckTypes(inv.method.ReturnSpec(), inv.req.ReturnSpec()) {
		inv.req.SetErrorDefault(frterr.WrongReturn)
	}

	status := "ok"
	if inv.req.IsError() {
		status = frterr.Code(inv.req.ErrorCode()).Name()
	}
	logger.DebugCtx(inv.logCtx, "invoke(server) done", "status", status)
	metrics.ObserveRequest(inv.metrics, inv.req.MethodName(), status, time.Since(inv.start))
	if inv.req.IsError() {
		metrics.RecordErrorCode(inv.metrics, inv.req.ErrorCode())
	}
	metrics.SetArenaBytesInUse(inv.metrics, int64(inv.req.Arena().BytesInUse()))
	metrics.SetSharedBlobCount(inv.metrics, value.LiveSharedBlobCount())

	if span := inv.req.Span(); span != nil {
		span.SetAttributes(telemetry.ReturnSpec(inv.req.ReturnSpec()), telemetry.NoReply(inv.noReply))
		if inv.req.IsError() {
			span.SetAttributes(telemetry.ErrorCode(inv.req.ErrorCode()))
			span.SetStatus(codes.Error, inv.req.ErrorMessage())
		}
		span.End()
	}

	if inv.noReply || frterr.Code(inv.req.ErrorCode()) == frterr.BadRequest {
		inv.req.SubRef()
	} else {
		inv.channel.Send(inv.req.CreateReplyPacket())
	}

	if freeChannel {
		inv.channel.Free()
	}
}

// HandleReturn implements rpcrequest.ReturnHandler, invoked by a detached
// handler once it's ready to complete the request.
func (inv *Invoker) HandleReturn() {
	inv.HandleDone(true)
}

// Connection implements rpcrequest.ReturnHandler.
func (inv *Invoker) Connection() rpcrequest.Connection {
	return inv.channel.Connection()
}
