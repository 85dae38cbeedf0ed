package transport

import (
	"net"
	"sync"
	"time"

	"github.com/marmos91/frtrpc/internal/frt/client"
	"github.com/marmos91/frtrpc/internal/frt/rpcrequest"
	"github.com/marmos91/frtrpc/internal/frt/wire"
	"github.com/marmos91/frtrpc/internal/logger"
)

// Dialer implements client.ChannelOpener over TCP: every OpenChannel call
// dials a fresh connection, used for exactly one outstanding call and then
// torn down, matching the wire format's lack of a per-call correlation
// field.
type Dialer struct {
	network     string
	address     string
	dialTimeout time.Duration

	mu      sync.Mutex
	lastErr error
}

// NewDialer returns a Dialer targeting network/address. dialTimeout of 0
// disables the connect deadline.
func NewDialer(network, address string, dialTimeout time.Duration) *Dialer {
	return &Dialer{network: network, address: address, dialTimeout: dialTimeout}
}

// OpenChannel implements client.ChannelOpener.
func (d *Dialer) OpenChannel() (client.Channel, error) {
	conn, err := net.DialTimeout(d.network, d.address, d.dialTimeout)
	d.mu.Lock()
	d.lastErr = err
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &ClientChannel{conn: conn}, nil
}

// Valid implements client.ChannelOpener: it reports whether the most
// recent dial attempt succeeded. A Dialer with no dial history yet is
// considered valid (optimistic, matching the spec's "IsValid" convention
// of reporting the target usable until proven otherwise).
func (d *Dialer) Valid() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr == nil
}

// Close implements io.Closer so Target.SubRef can tear down the dialer
// once its last reference drops; a Dialer holds no persistent resources of
// its own (each call owns its own connection), so this is a no-op kept for
// interface symmetry.
func (d *Dialer) Close() error { return nil }

// ClientChannel is the client-side transport.Channel: one dialed
// connection used for exactly one outstanding call.
type ClientChannel struct {
	conn      net.Conn
	closeOnce sync.Once
}

// Send implements client.Channel.
func (c *ClientChannel) Send(p wire.Packet) {
	body := p.Encode(make([]byte, 0, p.Length()))
	if err := writeFrame(c.conn, p.PCode(), body); err != nil {
		logger.Warn("transport: failed to write request frame", "peer", c.conn.RemoteAddr().String(), "error", err)
	}
}

// Recv implements client.Channel: it blocks for the matching reply or
// error frame and decodes it directly into req.
func (c *ClientChannel) Recv(req *rpcrequest.Request) client.PacketOutcome {
	pcode, body, err := readFrame(c.conn, defaultMaxFrameBytes)
	if err != nil {
		return client.PacketChannelLost
	}
	pkt, ok := wire.NewPacket(pcode, req)
	if !ok || !pkt.Decode(body) {
		return client.PacketBadPacket
	}
	return client.PacketRegular
}

// CloseAndFree implements client.Channel.
func (c *ClientChannel) CloseAndFree() {
	c.closeOnce.Do(func() { c.conn.Close() })
}

// Connection implements client.Channel.
func (c *ClientChannel) Connection() rpcrequest.Connection {
	return connAddr(c.conn.RemoteAddr().String())
}
