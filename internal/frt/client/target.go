// Package client implements the client side of an RPC call: the Adapter
// that arbitrates a pending call's completion race (reply, timeout,
// abort), and Target, a reference-counted handle to a remote endpoint
// exposing InvokeSync/InvokeAsync/InvokeVoid.
package client

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/marmos91/frtrpc/internal/frt/frterr"
	"github.com/marmos91/frtrpc/internal/frt/rpcrequest"
	"github.com/marmos91/frtrpc/internal/telemetry"
	"github.com/marmos91/frtrpc/pkg/metrics"
)

// oneYear bounds InvokeAsync/InvokeSync's timeout argument: only a
// 0 < timeout < oneYear schedules a timeout task, matching the "effectively
// infinite" convention for a timeout that's deliberately left huge.
const oneYear = 365 * 24 * time.Hour

// ChannelOpener opens a fresh transport channel to a Target's remote
// endpoint for one outstanding call, and reports whether the underlying
// connection is still usable.
type ChannelOpener interface {
	OpenChannel() (Channel, error)
	Valid() bool
}

// Target is a reference-counted client-side handle to a remote endpoint:
// a channel opener plus the metrics sink shared by every call made through
// it.
type Target struct {
	refs   atomic.Int32
	opener ChannelOpener

	metrics metrics.RPCMetrics

	mu   sync.Mutex
	live map[*rpcrequest.Request]*Adapter
}

// NewTarget returns a Target with one outstanding reference.
func NewTarget(opener ChannelOpener, m metrics.RPCMetrics) *Target {
	t := &Target{opener: opener, metrics: m, live: make(map[*rpcrequest.Request]*Adapter)}
	t.refs.Store(1)
	return t
}

// AddRef increments the reference count and returns the same Target.
func (t *Target) AddRef() *Target {
	t.refs.Add(1)
	return t
}

// SubRef decrements the reference count, closing the underlying connection
// once it reaches zero if the opener supports it.
func (t *Target) SubRef() {
	if t.refs.Add(-1) == 0 {
		if closer, ok := t.opener.(io.Closer); ok {
			closer.Close()
		}
	}
}

// RefCount returns the current reference count.
func (t *Target) RefCount() int32 { return t.refs.Load() }

// IsValid reports whether the target's connection is still usable.
func (t *Target) IsValid() bool { return t.opener.Valid() }

// InvokeAsync sends req, schedules a timeout if 0 < timeout < oneYear, and
// returns immediately; waiter.RequestDone is called later, from whichever
// goroutine wins the completion race.
//
// req carries its own span (Request.Span/SetSpan): if the caller already
// attached a parent span to req (e.g. a server handler forwarding the
// span of the request it's currently dispatching, to trace a nested
// call), the call's span is opened as that span's child; otherwise it's a
// new root span. Either way the span set here replaces whatever was
// there, and is ended, with the final error status attached, once the
// call completes (see Adapter.complete).
func (t *Target) InvokeAsync(req *rpcrequest.Request, timeout time.Duration, waiter RequestWaiter) error {
	spanCtx := context.Background()
	if parent := req.Span(); parent != nil {
		spanCtx = trace.ContextWithSpan(spanCtx, parent)
	}
	_, span := telemetry.StartSpan(spanCtx, telemetry.SpanClientCall, trace.WithAttributes(telemetry.Method(req.MethodName())))
	req.SetSpan(span)

	ch, err := t.opener.OpenChannel()
	if err != nil {
		req.SetErrorDefault(frterr.Connection)
		span.SetAttributes(telemetry.ErrorCode(req.ErrorCode()))
		span.SetStatus(codes.Error, req.ErrorMessage())
		span.End()
		waiter.RequestDone(req)
		return err
	}

	wrapped := WaiterFunc(func(r *rpcrequest.Request) {
		t.untrack(r)
		waiter.RequestDone(r)
	})
	a := newAdapter(req, ch, wrapped, t.metrics)
	t.track(req, a)

	pkt := req.CreateRequestPacket(true)
	ch.Send(pkt)
	if timeout > 0 && timeout < oneYear {
		a.scheduleTimeout(timeout)
	}
	go func() { a.HandlePacket(ch.Recv(req)) }()
	return nil
}

// InvokeSync blocks the caller until req completes (by reply, timeout, or
// abort) and returns it.
func (t *Target) InvokeSync(req *rpcrequest.Request, timeout time.Duration) *rpcrequest.Request {
	waiter := NewSingleRequestWaiter()
	if err := t.InvokeAsync(req, timeout, waiter); err != nil {
		return req
	}
	return waiter.Wait()
}

// InvokeVoid sends req with the NOREPLY flag set and immediately drops the
// caller's reference: no timeout is scheduled and no waiter is notified.
//
// There's no reply to hang a completion span on, so the span covers only
// the send itself (parent linkage via Request.Span still applies).
func (t *Target) InvokeVoid(req *rpcrequest.Request) error {
	spanCtx := context.Background()
	if parent := req.Span(); parent != nil {
		spanCtx = trace.ContextWithSpan(spanCtx, parent)
	}
	_, span := telemetry.StartSpan(spanCtx, telemetry.SpanClientCall,
		trace.WithAttributes(telemetry.Method(req.MethodName()), telemetry.NoReply(true)))

	ch, err := t.opener.OpenChannel()
	if err != nil {
		req.SetErrorDefault(frterr.Connection)
		span.SetAttributes(telemetry.ErrorCode(req.ErrorCode()))
		span.SetStatus(codes.Error, req.ErrorMessage())
		span.End()
		req.SubRef()
		return err
	}
	pkt := req.CreateRequestPacket(false)
	ch.Send(pkt)
	span.End()
	req.SubRef()
	return nil
}

// track registers a as a live call keyed by its request, so Close can
// reach it.
func (t *Target) track(req *rpcrequest.Request, a *Adapter) {
	t.mu.Lock()
	t.live[req] = a
	t.mu.Unlock()
}

func (t *Target) untrack(req *rpcrequest.Request) {
	t.mu.Lock()
	delete(t.live, req)
	t.mu.Unlock()
}

// Close aborts every call still pending on this target and waits for them
// to finish completing (each abort still has to race the timeout/reply
// path it might be losing to), or for ctx to expire. The abort of each
// pending call runs on its own goroutine via errgroup, since a call whose
// HandleAbort loses the race still needs its already-in-flight completion
// path (timeout firing concurrently, or a reply landing concurrently) to
// finish without Close waiting on them serially.
func (t *Target) Close(ctx context.Context) error {
	t.mu.Lock()
	adapters := make([]*Adapter, 0, len(t.live))
	for _, a := range t.live {
		adapters = append(adapters, a)
	}
	t.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	for _, a := range adapters {
		g.Go(func() error {
			a.HandleAbort()
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
