package transport

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/marmos91/frtrpc/internal/frt/rpcrequest"
	"github.com/marmos91/frtrpc/internal/frt/wire"
	"github.com/marmos91/frtrpc/internal/logger"
	"github.com/marmos91/frtrpc/pkg/metrics"
)

// Handler is notified of a decoded request packet arriving on a freshly
// accepted connection. Implemented by internal/frt/supervisor.Supervisor;
// living here as a local interface (rather than importing supervisor)
// keeps the transport package decoupled from dispatch/reflection, the
// same trick used by invoker.Channel and client.Channel.
type Handler interface {
	HandlePacket(channel *ServerChannel, pcode uint32, body []byte)
}

// Listener accepts one connection per RPC call, reads exactly one Request
// frame from it, and hands the decoded packet to a Handler. A request that
// detaches keeps the connection open until its invoker completes it later.
type Listener struct {
	ln            net.Listener
	handler       Handler
	maxFrameBytes uint32
	metrics       metrics.RPCMetrics

	mu     sync.Mutex
	active int
}

// Listen opens network/address and returns a Listener bound to handler.
// maxFrameBytes of 0 falls back to defaultMaxFrameBytes.
func Listen(network, address string, handler Handler, maxFrameBytes uint32, m metrics.RPCMetrics) (*Listener, error) {
	ln, err := net.Listen(network, address)
	if err != nil {
		return nil, err
	}
	if maxFrameBytes == 0 {
		maxFrameBytes = defaultMaxFrameBytes
	}
	return &Listener{ln: ln, handler: handler, maxFrameBytes: maxFrameBytes, metrics: m}, nil
}

// Addr returns the listener's bound address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Close stops accepting new connections.
func (l *Listener) Close() error { return l.ln.Close() }

// Serve runs the accept loop until ctx is cancelled or Accept fails. Each
// accepted connection is handled on its own goroutine tracked by an
// errgroup, generalizing the per-connection-goroutine-plus-WaitGroup
// accept loop pattern to a context-cancellable group: cancelling ctx
// closes the listener, which unblocks Accept with an error Serve treats as
// a clean shutdown.
func (l *Listener) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return l.ln.Close()
	})

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return g.Wait()
			default:
				return errors.Join(err, g.Wait())
			}
		}
		l.trackActive(1)
		g.Go(func() error {
			defer l.trackActive(-1)
			l.serveConn(conn)
			return nil
		})
	}
}

func (l *Listener) trackActive(delta int) {
	l.mu.Lock()
	l.active += delta
	n := l.active
	l.mu.Unlock()
	metrics.SetActiveChannels(l.metrics, n)
}

func (l *Listener) serveConn(conn net.Conn) {
	reqID := uuid.NewString()

	pcode, body, err := readFrame(conn, l.maxFrameBytes)
	if err != nil {
		logger.Debug("transport: failed to read request frame", "req_id", reqID, "peer", conn.RemoteAddr().String(), "error", err)
		conn.Close()
		return
	}

	shape, flags := wire.SplitCode(pcode)
	if shape < wire.RPCFirst || shape > wire.RPCLast {
		logger.Warn("transport: rejecting packet code outside RPC range", "req_id", reqID, "peer", conn.RemoteAddr().String(), "pcode", pcode)
		conn.Close()
		return
	}

	channel := &ServerChannel{conn: conn, reqID: reqID}
	logger.Debug("transport: accepted request", "req_id", reqID, "peer", conn.RemoteAddr().String(), "shape", shape, "little_endian", flags.LittleEndian())
	l.handler.HandlePacket(channel, pcode, body)
}

// ServerChannel is the server-side transport.Channel: one accepted
// connection, used to send exactly one reply (or error) packet and then
// close. reqID correlates its log lines; it never crosses the wire.
type ServerChannel struct {
	conn  net.Conn
	reqID string
}

// Send implements invoker.Channel.
func (c *ServerChannel) Send(p wire.Packet) {
	body := p.Encode(make([]byte, 0, p.Length()))
	if err := writeFrame(c.conn, p.PCode(), body); err != nil {
		logger.Warn("transport: failed to write reply frame", "req_id", c.reqID, "peer", c.conn.RemoteAddr().String(), "error", err)
	}
}

// Free implements invoker.Channel.
func (c *ServerChannel) Free() { c.conn.Close() }

// Connection implements invoker.Channel.
func (c *ServerChannel) Connection() rpcrequest.Connection {
	return connAddr(c.conn.RemoteAddr().String())
}
