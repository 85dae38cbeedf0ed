// Package rpcrequest implements the RPC Request: the unit of work that
// flows through the invoker on the server side and the client adapter on
// the client side, carrying its own arena, parameter/return Values,
// completion token, error state, and handover hooks for detached
// handlers.
package rpcrequest

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"

	"github.com/marmos91/frtrpc/internal/frt/frterr"
	"github.com/marmos91/frtrpc/internal/frt/value"
	"github.com/marmos91/frtrpc/internal/frt/wire"
)

// hostLittleEndian reports the host's native byte order, without unsafe:
// encode the value 1 as a native uint16 and look at its first byte.
var hostLittleEndian = func() bool {
	buf := make([]byte, 2)
	binary.NativeEndian.PutUint16(buf, 1)
	return buf[0] == 1
}()

// Connection is the minimal surface of a transport connection a Request
// needs to expose to its return handler: something a client adapter can
// use to identify which channel a reply arrived on.
type Connection interface {
	RemoteAddr() string
}

// AbortHandler is notified when a Request is aborted by its caller.
type AbortHandler interface {
	HandleAbort() bool
}

// ReturnHandler is notified when a detached handler is ready to complete
// its Request, and exposes the connection the request arrived on.
type ReturnHandler interface {
	HandleReturn()
	Connection() Connection
}

// Request is the RPC unit of work. It is reference-counted: AddRef/SubRef
// model the "enable-refcounted base" from the spec, letting a Request
// outlive the call that created it (e.g. while a reply packet referencing
// it is still queued for write).
type Request struct {
	arena  *value.Arena
	params *value.Values
	ret    *value.Values

	context any

	completed atomic.Int32
	refs      atomic.Int32

	errorCode    frterr.Code
	errorMessage string
	methodName   string

	detachedPT    *bool
	abortHandler  AbortHandler
	returnHandler ReturnHandler

	span trace.Span
}

// New returns a fresh Request with one outstanding reference.
func New() *Request {
	r := &Request{arena: value.NewArena()}
	r.params = value.NewValues(r.arena)
	r.ret = value.NewValues(r.arena)
	r.refs.Store(1)
	return r
}

// Arena returns the request's owning allocator.
func (r *Request) Arena() *value.Arena { return r.arena }

// Params returns the parameter Values container.
func (r *Request) Params() *value.Values { return r.params }

// SetParams replaces the parameter Values container, used when a Request
// packet is decoded into this request.
func (r *Request) SetParams(v *value.Values) { r.params = v }

// Return returns the return-value Values container.
func (r *Request) Return() *value.Values { return r.ret }

// SetReturn replaces the return Values container, used when a Reply
// packet is decoded into this request.
func (r *Request) SetReturn(v *value.Values) { r.ret = v }

// ParamSpec returns the parameter type-string ("" if no parameters).
func (r *Request) ParamSpec() string { return r.params.TypeString() }

// ReturnSpec returns the return type-string ("" if no return values).
func (r *Request) ReturnSpec() string { return r.ret.TypeString() }

// SetContext stores an opaque value associating this request with a
// transport object (e.g. the channel it arrived on).
func (r *Request) SetContext(ctx any) { r.context = ctx }

// Context returns the value set by SetContext.
func (r *Request) Context() any { return r.context }

// Span returns the OpenTelemetry span tracking this request's lifetime,
// or nil if tracing isn't active for this request.
func (r *Request) Span() trace.Span { return r.span }

// SetSpan attaches the span tracking this request's lifetime.
func (r *Request) SetSpan(span trace.Span) { r.span = span }

// GetCompletionToken is an atomic test-and-set: it returns true to
// exactly one caller across all concurrent callers (normal return,
// timeout, abort, channel loss, packet delivery). Every completion path
// must call this before producing a reply or delivering a result; the
// first call to return true wins, every other call is a no-op for the
// caller.
func (r *Request) GetCompletionToken() bool {
	return r.completed.Add(1) == 1
}

// SetError stores a numeric error code and an arena-independent message
// (kept as an ordinary Go string; see the Arena doc comment on why string
// storage isn't bump-allocated). Subsequent calls overwrite prior error
// state, per the spec invariant that error state persists until Reset.
// The code is a plain uint32, matching wire.Request, so a decoded Error
// packet's on-the-wire code (possibly an application-defined code above
// the reserved RPC range) can be stored without truncation or a failed
// conversion.
func (r *Request) SetError(code uint32, message string) {
	r.errorCode = frterr.Code(code)
	r.errorMessage = message
}

// SetErrorDefault stores code with its canonical default message.
func (r *Request) SetErrorDefault(code frterr.Code) {
	r.SetError(uint32(code), code.DefaultMessage())
}

// IsError reports whether an error has been set on this request.
func (r *Request) IsError() bool { return r.errorCode != frterr.NoError }

// ErrorCode returns the numeric error code (0 if unset).
func (r *Request) ErrorCode() uint32 { return uint32(r.errorCode) }

// ErrorMessage returns the error message (empty if unset).
func (r *Request) ErrorMessage() string { return r.errorMessage }

// CheckReturnTypes reports whether the request's actual return type-string
// matches spec. Returns false (without changing an already-set error) if
// the request is already errored; on a mismatch, sets WrongReturn.
func (r *Request) CheckReturnTypes(spec string) bool {
	if r.IsError() {
		return false
	}
	if !value.CheckTypes(spec, r.ReturnSpec()) {
		r.SetErrorDefault(frterr.WrongReturn)
		return false
	}
	return true
}

// MethodName returns the request's method name.
func (r *Request) MethodName() string { return r.methodName }

// SetMethodName sets the request's method name.
func (r *Request) SetMethodName(name string) { r.methodName = name }

// SetDetachedPT installs the flag pointer a handler sets to indicate
// deferred completion.
func (r *Request) SetDetachedPT(p *bool) { r.detachedPT = p }

// Detach marks the request as detached (the reply will be produced later)
// and returns the same Request, so a handler can write
// `req = req.Detach()` inline.
func (r *Request) Detach() *Request {
	if r.detachedPT != nil {
		*r.detachedPT = true
	}
	return r
}

// SetAbortHandler installs the handler invoked by Abort.
func (r *Request) SetAbortHandler(h AbortHandler) { r.abortHandler = h }

// SetReturnHandler installs the handler invoked by Return, and is also
// consulted by Connection.
func (r *Request) SetReturnHandler(h ReturnHandler) { r.returnHandler = h }

// Abort forwards to the abort handler if one is registered; returns false
// if there is none.
func (r *Request) Abort() bool {
	if r.abortHandler == nil {
		return false
	}
	return r.abortHandler.HandleAbort()
}

// NotifyReturn forwards to the return handler, used by a detached handler
// to signal that it's ready to complete the request.
func (r *Request) NotifyReturn() {
	if r.returnHandler != nil {
		r.returnHandler.HandleReturn()
	}
}

// Connection returns the connection the return handler is associated
// with, or nil if there is no return handler.
func (r *Request) Connection() Connection {
	if r.returnHandler == nil {
		return nil
	}
	return r.returnHandler.Connection()
}

// AddRef increments the reference count and returns the same request, so
// it can be used inline where a new holder takes a reference.
func (r *Request) AddRef() *Request {
	r.refs.Add(1)
	return r
}

// SubRef decrements the reference count.
func (r *Request) SubRef() {
	r.refs.Add(-1)
}

// RefCount returns the current reference count.
func (r *Request) RefCount() int32 { return r.refs.Load() }

// Reset clears all request state, releasing the arena and any blob
// references held by its Values containers, so the Request can be
// recycled for a new call.
func (r *Request) Reset() {
	r.context = nil
	r.params.Reset()
	r.ret.Reset()
	r.arena.Reset()
	r.errorCode = frterr.NoError
	r.errorMessage = ""
	r.methodName = ""
	r.detachedPT = nil
	r.completed.Store(0)
	r.abortHandler = nil
	r.returnHandler = nil
	r.span = nil
}

// Recycle attempts to revive this request for reuse: it only succeeds if
// there is exactly one outstanding reference and no error is set,
// otherwise the caller must allocate a fresh Request instead.
func (r *Request) Recycle() bool {
	if r.RefCount() > 1 || r.IsError() {
		return false
	}
	r.Reset()
	return true
}

// CreateRequestPacket produces a Request packet carrying the current
// method name and parameters. If wantReply is true the request is
// reference-bumped (the packet holds a reference until it's written and
// freed); otherwise the NOREPLY flag is set and no reply is expected.
func (r *Request) CreateRequestPacket(wantReply bool) wire.Packet {
	flags := hostEndianFlag()
	if wantReply {
		r.AddRef()
	} else {
		flags |= wire.FlagNoReply
	}
	p, _ := wire.NewPacket(wire.Code(wire.ShapeRequest, flags), r)
	return p
}

// CreateReplyPacket returns a Reply packet if no error is set, else an
// Error packet carrying the request's error code and message.
func (r *Request) CreateReplyPacket() wire.Packet {
	flags := hostEndianFlag()
	shape := wire.ShapeReply
	if r.IsError() {
		shape = wire.ShapeError
	}
	p, _ := wire.NewPacket(wire.Code(shape, flags), r)
	return p
}

func hostEndianFlag() wire.Flags {
	if hostLittleEndian {
		return wire.FlagLittleEndian
	}
	return 0
}

// Print renders the request in human-readable form for diagnostics.
func (r *Request) Print(indent int) string {
	pad := make([]byte, indent)
	for i := range pad {
		pad[i] = ' '
	}
	msg := r.errorMessage
	if msg == "" {
		msg = r.errorCode.DefaultMessage()
	}
	s := fmt.Sprintf("%sRequest {\n%s  method: %s\n%s  error(%d): %s\n%s  params:\n",
		pad, pad, r.methodName, pad, r.errorCode, msg, pad)
	s += r.params.Print(indent + 4)
	s += fmt.Sprintf("%s  return:\n", pad)
	s += r.ret.Print(indent + 4)
	s += fmt.Sprintf("%s}\n", pad)
	return s
}
