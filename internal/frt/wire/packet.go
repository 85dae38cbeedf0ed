// Package wire implements the frt packet codec: the three RPC packet
// shapes (Request, Reply, Error), their shared header, and the factory
// that turns a decoded header and body into the right packet type.
package wire

import (
	"fmt"

	"github.com/marmos91/frtrpc/internal/frt/value"
)

// Shape identifies which of the three RPC packet kinds a packet is. The
// numeric values are the low 16 bits of the packet code on the wire.
type Shape uint16

const (
	ShapeRequest Shape = 100
	ShapeReply   Shape = 101
	ShapeError   Shape = 102

	// RPCFirst and RPCLast bound the packet-code range reserved for this
	// protocol; a transport channel rejects any other code.
	RPCFirst = 100
	RPCLast  = 199
)

// Flags are carried in the high 16 bits of the packet code.
type Flags uint16

const (
	FlagLittleEndian Flags = 0x0001
	FlagNoReply      Flags = 0x0002

	// flagSupportedMask is every flag bit this runtime understands. A
	// decoded packet with any other bit set is a framing error.
	flagSupportedMask = FlagLittleEndian | FlagNoReply
)

func (f Flags) LittleEndian() bool { return f&FlagLittleEndian != 0 }
func (f Flags) NoReply() bool      { return f&FlagNoReply != 0 }

// endian returns the value.Endian a packet with these flags should encode
// or decode its body with.
func (f Flags) endian() value.Endian {
	if f.LittleEndian() {
		return value.EndianLittle
	}
	return value.EndianBig
}

// Code packs a shape and flags into the 32-bit packet code used on the
// wire: low 16 bits shape, high 16 bits flags.
func Code(shape Shape, flags Flags) uint32 {
	return uint32(flags)<<16 | uint32(shape)
}

// SplitCode unpacks a wire packet code into its shape and flags.
func SplitCode(code uint32) (Shape, Flags) {
	return Shape(code & 0xffff), Flags((code >> 16) & 0xffff)
}

// Request is the subset of internal/frt/rpcrequest.Request the packet
// codec needs: method name, parameters/return values, error state, and
// the arena new Values are decoded into. Living in this package as an
// interface (rather than importing rpcrequest directly) keeps the codec
// decoupled from request lifecycle/refcounting concerns.
type Request interface {
	MethodName() string
	SetMethodName(name string)
	Params() *value.Values
	SetParams(v *value.Values)
	Return() *value.Values
	SetReturn(v *value.Values)
	ErrorCode() uint32
	ErrorMessage() string
	SetError(code uint32, msg string)
	Arena() *value.Arena
}

// Packet is a decoded or about-to-be-encoded frt RPC packet bound to a
// Request.
type Packet interface {
	Shape() Shape
	Flags() Flags
	// PCode returns the 32-bit wire packet code for this packet.
	PCode() uint32
	// Length returns the encoded body length in bytes, not counting any
	// outer transport framing.
	Length() uint32
	// Encode appends the packet body (not the code/length framing, which
	// the transport supplies) to dst and returns the extended slice.
	Encode(dst []byte) []byte
	// Decode parses a packet body of the given shape out of body,
	// populating req. Returns false on any framing error.
	Decode(body []byte) bool
	// Print renders the packet in human-readable form for diagnostics.
	Print(indent int) string
}

// NewPacket constructs a packet of the given pcode (code | flags<<16, as
// received from the transport) bound to req. It fails if flags outside
// flagSupportedMask are set, or if the shape bits don't name one of the
// three RPC packet shapes.
func NewPacket(pcode uint32, req Request) (Packet, bool) {
	shape, flags := SplitCode(pcode)
	if flags&^flagSupportedMask != 0 {
		return nil, false
	}

	switch shape {
	case ShapeRequest:
		return &RequestPacket{req: req, flags: flags}, true
	case ShapeReply:
		return &ReplyPacket{req: req, flags: flags}, true
	case ShapeError:
		return &ErrorPacket{req: req, flags: flags}, true
	default:
		return nil, false
	}
}

// RequestPacket carries a method name and parameter Values.
type RequestPacket struct {
	req   Request
	flags Flags
}

func (p *RequestPacket) Shape() Shape { return ShapeRequest }
func (p *RequestPacket) Flags() Flags { return p.flags }
func (p *RequestPacket) PCode() uint32 {
	return Code(ShapeRequest, p.flags)
}

func (p *RequestPacket) Length() uint32 {
	return 4 + uint32(len(p.req.MethodName())) + p.req.Params().GetLength()
}

func (p *RequestPacket) Encode(dst []byte) []byte {
	name := p.req.MethodName()

	var lenBuf [4]byte
	p.flags.endian().ByteOrder().PutUint32(lenBuf[:], uint32(len(name)))
	dst = append(dst, lenBuf[:]...)
	dst = append(dst, name...)
	return p.req.Params().Encode(dst, p.flags.endian())
}

func (p *RequestPacket) Decode(body []byte) bool {
	order := p.flags.endian().ByteOrder()
	if len(body) < 4 {
		return false
	}
	nameLen := order.Uint32(body[:4])
	body = body[4:]
	if uint32(len(body)) < nameLen {
		return false
	}
	name := string(body[:nameLen])
	body = body[nameLen:]

	params, ok := value.Decode(body, p.req.Arena(), p.flags.endian())
	if !ok {
		return false
	}
	p.req.SetMethodName(name)
	p.req.SetParams(params)
	return true
}

func (p *RequestPacket) Print(indent int) string {
	pad := indentStr(indent)
	s := fmt.Sprintf("%sRequestPacket {\n%s  method: %s\n%s  params:\n", pad, pad, p.req.MethodName(), pad)
	s += p.req.Params().Print(indent + 4)
	s += fmt.Sprintf("%s}\n", pad)
	return s
}

// ReplyPacket carries return Values.
type ReplyPacket struct {
	req   Request
	flags Flags
}

func (p *ReplyPacket) Shape() Shape   { return ShapeReply }
func (p *ReplyPacket) Flags() Flags   { return p.flags }
func (p *ReplyPacket) PCode() uint32  { return Code(ShapeReply, p.flags) }
func (p *ReplyPacket) Length() uint32 { return p.req.Return().GetLength() }

func (p *ReplyPacket) Encode(dst []byte) []byte {
	return p.req.Return().Encode(dst, p.flags.endian())
}

func (p *ReplyPacket) Decode(body []byte) bool {
	ret, ok := value.Decode(body, p.req.Arena(), p.flags.endian())
	if !ok {
		return false
	}
	p.req.SetReturn(ret)
	return true
}

func (p *ReplyPacket) Print(indent int) string {
	pad := indentStr(indent)
	s := fmt.Sprintf("%sReplyPacket {\n%s  return:\n", pad, pad)
	s += p.req.Return().Print(indent + 4)
	s += fmt.Sprintf("%s}\n", pad)
	return s
}

// ErrorPacket carries a numeric error code and message.
type ErrorPacket struct {
	req   Request
	flags Flags
}

func (p *ErrorPacket) Shape() Shape  { return ShapeError }
func (p *ErrorPacket) Flags() Flags  { return p.flags }
func (p *ErrorPacket) PCode() uint32 { return Code(ShapeError, p.flags) }
func (p *ErrorPacket) Length() uint32 {
	return 8 + uint32(len(p.req.ErrorMessage()))
}

func (p *ErrorPacket) Encode(dst []byte) []byte {
	order := p.flags.endian().ByteOrder()
	var buf [4]byte

	order.PutUint32(buf[:], p.req.ErrorCode())
	dst = append(dst, buf[:]...)
	order.PutUint32(buf[:], uint32(len(p.req.ErrorMessage())))
	dst = append(dst, buf[:]...)
	dst = append(dst, p.req.ErrorMessage()...)
	return dst
}

func (p *ErrorPacket) Decode(body []byte) bool {
	order := p.flags.endian().ByteOrder()
	if len(body) < 8 {
		return false
	}
	code := order.Uint32(body[:4])
	msgLen := order.Uint32(body[4:8])
	body = body[8:]
	if uint32(len(body)) != msgLen {
		return false
	}
	p.req.SetError(code, string(body))
	return true
}

func (p *ErrorPacket) Print(indent int) string {
	pad := indentStr(indent)
	return fmt.Sprintf("%sErrorPacket {\n%s  code: %d\n%s  message: %q\n%s}\n",
		pad, pad, p.req.ErrorCode(), pad, p.req.ErrorMessage(), pad)
}

func indentStr(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
