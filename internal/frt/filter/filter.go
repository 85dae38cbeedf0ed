// Package filter implements RPC access filters: a capability set and a
// concrete filter that denies a request unless its connection carries every
// required capability.
package filter

import (
	"sort"
	"strings"

	"github.com/marmos91/frtrpc/internal/logger"
	"github.com/marmos91/frtrpc/internal/frt/rpcrequest"
)

// Capability names a single permission a connection may carry. The set of
// valid names is defined by the application wiring the supervisor, not by
// this package.
type Capability string

// CapabilitySet is an immutable set of capabilities, deliberately backed by
// a plain map rather than a bitset: the capability vocabulary is
// application-defined and open-ended, unlike a fixed enum.
type CapabilitySet struct {
	caps map[Capability]struct{}
}

// NewCapabilitySet returns a CapabilitySet containing caps.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	s := CapabilitySet{caps: make(map[Capability]struct{}, len(caps))}
	for _, c := range caps {
		s.caps[c] = struct{}{}
	}
	return s
}

// Contains reports whether s carries c.
func (s CapabilitySet) Contains(c Capability) bool {
	_, ok := s.caps[c]
	return ok
}

// ContainsAll reports whether s carries every capability in required.
func (s CapabilitySet) ContainsAll(required CapabilitySet) bool {
	for c := range required.caps {
		if !s.Contains(c) {
			return false
		}
	}
	return true
}

// String renders the set as a sorted, comma-separated list, for logging.
func (s CapabilitySet) String() string {
	names := make([]string, 0, len(s.caps))
	for c := range s.caps {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// CapabilityConnection is implemented by a transport connection that can
// report the capability set negotiated for it (e.g. from a TLS peer
// certificate). A connection that doesn't implement this interface is
// treated as carrying no capabilities.
type CapabilityConnection interface {
	Capabilities() CapabilitySet
}

// RequireCapabilities denies a request unless its connection implements
// CapabilityConnection and carries every one of required.
type RequireCapabilities struct {
	required CapabilitySet
}

// Require returns a filter that denies any request whose connection lacks
// one or more of caps.
func Require(caps ...Capability) *RequireCapabilities {
	return &RequireCapabilities{required: NewCapabilitySet(caps...)}
}

// CheckAccess implements reflection.AccessFilter.
func (f *RequireCapabilities) CheckAccess(req *rpcrequest.Request) bool {
	conn := req.Connection()
	capConn, ok := conn.(CapabilityConnection)
	if !ok {
		logger.Warn("permission denied: connection does not report capabilities",
			"method", req.MethodName(), "required", f.required.String())
		return false
	}

	granted := capConn.Capabilities()
	allowed := granted.ContainsAll(f.required)
	if !allowed {
		peer := ""
		if conn != nil {
			peer = conn.RemoteAddr()
		}
		logger.Warn("permission denied for RPC method",
			"method", req.MethodName(), "peer", peer,
			"required", f.required.String(), "granted", granted.String())
	}
	return allowed
}
