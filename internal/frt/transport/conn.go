// Package transport implements frt's TCP binding: the outer length+pcode
// framing the spec leaves unspecified, a server-side Listener that accepts
// one connection per request/reply round trip, and a client-side Dialer
// that opens one connection per outstanding call. Neither direction
// multiplexes several concurrent requests over one connection, matching
// the wire format's lack of any per-call correlation field (see
// DESIGN.md's "Transport" entry for the reasoning).
package transport

// connAddr is the minimal rpcrequest.Connection/client Connection
// implementation for a TCP peer: just its remote address string. It does
// not implement filter.CapabilityConnection, so any method guarded by a
// RequireCapabilities filter is denied by default over this transport
// unless a caller wraps the connection with its own capability source.
type connAddr string

func (c connAddr) RemoteAddr() string { return string(c) }
