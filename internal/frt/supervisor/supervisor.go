// Package supervisor ties the reflection manager, server invoker, client
// adapter, and TCP transport together into the one object an application
// installs per local RPC endpoint: it owns method registration, accepts
// inbound connections and dispatches their requests, and hands out
// reference-counted Targets for outbound calls.
package supervisor

import (
	"context"
	"errors"
	"time"

	"github.com/marmos91/frtrpc/internal/frt/client"
	"github.com/marmos91/frtrpc/internal/frt/frterr"
	"github.com/marmos91/frtrpc/internal/frt/invoker"
	"github.com/marmos91/frtrpc/internal/frt/reflection"
	"github.com/marmos91/frtrpc/internal/frt/rpcrequest"
	"github.com/marmos91/frtrpc/internal/frt/transport"
	"github.com/marmos91/frtrpc/internal/frt/wire"
	"github.com/marmos91/frtrpc/internal/logger"
	"github.com/marmos91/frtrpc/pkg/metrics"
)

// DefaultMaxFrameBytes is used when a Supervisor is constructed without an
// explicit frame size limit.
const DefaultMaxFrameBytes = 64 << 20

// Supervisor is the single per-endpoint owner of method registration and
// connection handling. Its reflection manager is safe for concurrent
// lookup once built: methods are expected to be registered during
// start-up, before Listen is called.
type Supervisor struct {
	manager       *reflection.Manager
	builder       *reflection.Builder
	metrics       metrics.RPCMetrics
	maxFrameBytes uint32

	listener *transport.Listener
}

// New returns a Supervisor with the four frt.rpc.* introspection methods
// already installed. maxFrameBytes of 0 uses DefaultMaxFrameBytes.
func New(maxFrameBytes uint32, m metrics.RPCMetrics) *Supervisor {
	if maxFrameBytes == 0 {
		maxFrameBytes = DefaultMaxFrameBytes
	}
	manager := reflection.NewManager()
	builder := reflection.NewBuilder(manager)
	reflection.InstallBuiltins(builder, manager)

	return &Supervisor{
		manager:       manager,
		builder:       builder,
		metrics:       m,
		maxFrameBytes: maxFrameBytes,
	}
}

// Builder returns the reflection builder applications register their own
// methods against, e.g. sup.Builder().DefineMethod(...). Callers must call
// Builder().Close() (or let a final DefineMethod of their own flush it)
// once done registering, before Listen starts serving traffic.
func (s *Supervisor) Builder() *reflection.Builder { return s.builder }

// AllocRPCRequest attempts to recycle tradein for reuse (nil tradein, or
// one that fails to recycle, falls back to a freshly allocated Request).
func (s *Supervisor) AllocRPCRequest(tradein *rpcrequest.Request) *rpcrequest.Request {
	if tradein != nil && tradein.Recycle() {
		return tradein
	}
	return rpcrequest.New()
}

// Listen opens a TCP listener on network/address and returns immediately;
// call Serve to run the accept loop. Listen fails if this Supervisor is
// already listening.
func (s *Supervisor) Listen(network, address string) error {
	if s.listener != nil {
		return errAlreadyListening
	}
	ln, err := transport.Listen(network, address, s, s.maxFrameBytes, s.metrics)
	if err != nil {
		return err
	}
	s.listener = ln
	return nil
}

// Addr returns the bound listen address. Only valid after a successful
// Listen.
func (s *Supervisor) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve runs the accept loop until ctx is cancelled. Only valid after a
// successful Listen.
func (s *Supervisor) Serve(ctx context.Context) error {
	return s.listener.Serve(ctx)
}

// Close stops accepting new connections.
func (s *Supervisor) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// GetTarget resolves an outbound target at address, dialing a fresh
// connection per call.
func (s *Supervisor) GetTarget(network, address string, dialTimeout time.Duration) *client.Target {
	dialer := transport.NewDialer(network, address, dialTimeout)
	return client.NewTarget(dialer, s.metrics)
}

// Get2WayTarget resolves an outbound target the same way as GetTarget.
// The original's two-way mode let the callee invoke methods back on the
// caller's own reflection manager over the same physical connection; this
// transport dials one connection per call rather than multiplexing several
// concurrent calls over one persistent connection (see DESIGN.md's
// "Transport" entry), so there is no shared backchannel to expose a
// context over. Kept as a distinct method for API parity with the
// original surface.
func (s *Supervisor) Get2WayTarget(network, address string, dialTimeout time.Duration) *client.Target {
	return s.GetTarget(network, address, dialTimeout)
}

// HandlePacket implements transport.Handler: the transport listener's
// RPC-range check on the packet code has already passed by the time this
// runs. It decodes the Request packet
// body into a fresh Request, builds an invoker against this Supervisor's
// reflection manager, and runs it. A framing error sets BAD_REQUEST on the
// request before the invoker ever sees it; invoker.New leaves an
// already-set error alone and HandleDone drops a BAD_REQUEST request
// without replying, exactly as it does for a NOREPLY request.
func (s *Supervisor) HandlePacket(channel *transport.ServerChannel, pcode uint32, body []byte) {
	req := s.AllocRPCRequest(nil)
	shape, flags := wire.SplitCode(pcode)

	pkt, ok := wire.NewPacket(pcode, req)
	if !ok || shape != wire.ShapeRequest || !pkt.Decode(body) {
		logCtx := logger.WithContext(context.Background(), logger.NewLogContext(channel.Connection().RemoteAddr()))
		logger.DebugCtx(logCtx, "supervisor: malformed request")
		req.SetErrorDefault(frterr.BadRequest)
	}

	inv := invoker.New(s.manager, req, channel, flags.NoReply(), s.metrics)
	inv.Invoke()
}

var errAlreadyListening = errors.New("supervisor: already listening")
