package client

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/marmos91/frtrpc/internal/frt/frterr"
	"github.com/marmos91/frtrpc/internal/frt/rpcrequest"
	"github.com/marmos91/frtrpc/internal/frt/wire"
	"github.com/marmos91/frtrpc/internal/logger"
	"github.com/marmos91/frtrpc/internal/telemetry"
	"github.com/marmos91/frtrpc/pkg/metrics"
)

// Channel is the minimal surface of a transport channel an outstanding
// client call needs: somewhere to send the request packet, a blocking
// receive for the matching reply, and a way to tear the channel down on
// abort/timeout/loss.
type Channel interface {
	Send(p wire.Packet)
	// Recv blocks until a reply or error packet for req arrives, decoding
	// it directly into req, or until the channel is torn down by a
	// concurrent CloseAndFree. The caller (Target) runs this on its own
	// goroutine and feeds the outcome to the Adapter racing to complete
	// req.
	Recv(req *rpcrequest.Request) PacketOutcome
	CloseAndFree()
	Connection() rpcrequest.Connection
}

// PacketOutcome classifies a packet delivered to an Adapter while its
// request is still pending.
type PacketOutcome int

const (
	// PacketRegular is an ordinary Reply or Error packet; the channel has
	// already decoded it into the request before calling HandlePacket.
	PacketRegular PacketOutcome = iota
	// PacketChannelLost means the connection the channel was on died.
	PacketChannelLost
	// PacketBadPacket means a malformed, non-framing-conformant reply
	// arrived.
	PacketBadPacket
)

// Adapter is created per outstanding call. It holds the request, the
// channel it was sent on, and (once scheduled) the timeout timer, and
// arbitrates among the three terminal events a pending call can race on:
// reply delivery, timeout, and abort.
type Adapter struct {
	req     *rpcrequest.Request
	channel Channel
	waiter  RequestWaiter
	timer   *time.Timer

	metrics metrics.RPCMetrics
	start   time.Time
	logCtx  context.Context
}

// newAdapter wires req's abort handler to a, so a caller-initiated Abort()
// on the request routes into this call's completion race.
func newAdapter(req *rpcrequest.Request, channel Channel, waiter RequestWaiter, m metrics.RPCMetrics) *Adapter {
	lc := logger.NewLogContext(channel.Connection().RemoteAddr()).WithMethod(req.MethodName())
	logCtx := logger.WithContext(context.Background(), lc)

	a := &Adapter{
		req:     req,
		channel: channel,
		waiter:  waiter,
		metrics: m,
		start:   time.Now(),
		logCtx:  logCtx,
	}
	req.SetAbortHandler(a)
	logger.DebugCtx(logCtx, "invoke(client) init")
	return a
}

// scheduleTimeout arms the timeout timer. Only called for InvokeAsync/
// InvokeSync calls with a finite, positive timeout.
func (a *Adapter) scheduleTimeout(timeout time.Duration) {
	a.timer = time.AfterFunc(timeout, a.onTimeout)
}

func (a *Adapter) onTimeout() {
	if !a.req.GetCompletionToken() { // too late, reply or abort already won
		return
	}
	a.channel.CloseAndFree()
	if !a.req.IsError() {
		a.req.SetErrorDefault(frterr.Timeout)
	}
	a.complete()
}

// HandleAbort implements rpcrequest.AbortHandler.
func (a *Adapter) HandleAbort() bool {
	if !a.req.GetCompletionToken() {
		return false
	}
	a.stopTimer()
	a.channel.CloseAndFree()
	a.req.SetErrorDefault(frterr.Abort)
	a.complete()
	return true
}

// HandlePacket completes the call with whatever outcome the channel
// observed. For PacketRegular the channel has already decoded the Reply
// or Error packet's contents into the request; PacketChannelLost and
// PacketBadPacket instead record a transport-level error.
func (a *Adapter) HandlePacket(outcome PacketOutcome) {
	if !a.req.GetCompletionToken() { // too late
		return
	}
	a.stopTimer()
	switch outcome {
	case PacketChannelLost:
		a.req.SetErrorDefault(frterr.Connection)
	case PacketBadPacket:
		a.req.SetErrorDefault(frterr.BadReply)
	}
	a.complete()
}

func (a *Adapter) stopTimer() {
	if a.timer != nil {
		a.timer.Stop()
	}
}

func (a *Adapter) complete() {
	status := "ok"
	if a.req.IsError() {
		status = frterr.Code(a.req.ErrorCode()).Name()
	}
	logger.DebugCtx(a.logCtx, "invoke(client) done", "status", status)
	metrics.ObserveInvoke(a.metrics, a.req.MethodName(), status, time.Since(a.start))
	if a.req.IsError() {
		metrics.RecordErrorCode(a.metrics, a.req.ErrorCode())
	}
	if span := a.req.Span(); span != nil {
		span.SetAttributes(telemetry.ReturnSpec(a.req.ReturnSpec()))
		if a.req.IsError() {
			span.SetAttributes(telemetry.ErrorCode(a.req.ErrorCode()))
			span.SetStatus(codes.Error, a.req.ErrorMessage())
		}
		span.End()
	}
	a.waiter.RequestDone(a.req)
}
