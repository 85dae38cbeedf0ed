// Package frterr defines the numeric RPC error code space transmitted in
// Error packets, their canonical names and default messages, and an error
// type that lets Go call sites wrap/unwrap them with errors.Is/As.
package frterr

import "fmt"

// Code is a 32-bit error code as carried in an Error packet. Zero means no
// error. Codes 100-199 are reserved for this protocol; anything above
// 0xffff is treated as application-defined.
type Code uint32

const (
	NoError Code = 0

	GeneralError     Code = 100
	NotImplemented   Code = 101
	Abort            Code = 102
	Timeout          Code = 103
	Connection       Code = 104
	BadRequest       Code = 105
	NoSuchMethod     Code = 106
	WrongParams      Code = 107
	Overload         Code = 108
	WrongReturn      Code = 109
	BadReply         Code = 110
	MethodFailed     Code = 111
	PermissionDenied Code = 112

	rpcFirst = 100
	rpcLast  = 199
)

var codeNames = map[Code]string{
	GeneralError:     "FRTE_RPC_GENERAL_ERROR",
	NotImplemented:   "FRTE_RPC_NOT_IMPLEMENTED",
	Abort:            "FRTE_RPC_ABORT",
	Timeout:          "FRTE_RPC_TIMEOUT",
	Connection:       "FRTE_RPC_CONNECTION",
	BadRequest:       "FRTE_RPC_BAD_REQUEST",
	NoSuchMethod:     "FRTE_RPC_NO_SUCH_METHOD",
	WrongParams:      "FRTE_RPC_WRONG_PARAMS",
	Overload:         "FRTE_RPC_OVERLOAD",
	WrongReturn:      "FRTE_RPC_WRONG_RETURN",
	BadReply:         "FRTE_RPC_BAD_REPLY",
	MethodFailed:     "FRTE_RPC_METHOD_FAILED",
	PermissionDenied: "FRTE_RPC_PERMISSION_DENIED",
}

var defaultMessages = map[Code]string{
	GeneralError:     "(RPC) General error",
	NotImplemented:   "(RPC) Not implemented",
	Abort:            "(RPC) Invocation aborted",
	Timeout:          "(RPC) Invocation timed out",
	Connection:       "(RPC) Connection error",
	BadRequest:       "(RPC) Bad request packet",
	NoSuchMethod:     "(RPC) No such method",
	WrongParams:      "(RPC) Illegal parameters",
	Overload:         "(RPC) Request dropped due to server overload",
	WrongReturn:      "(RPC) Illegal return values",
	BadReply:         "(RPC) Bad reply packet",
	MethodFailed:     "(RPC) Method failed",
	PermissionDenied: "(RPC) Permission denied",
}

// Name returns the canonical constant name for code, e.g.
// "FRTE_RPC_TIMEOUT". Unknown codes in the RPC range return
// "[UNKNOWN RPC ERROR]"; codes above 0xffff are application errors; code 0
// is "FRTE_NO_ERROR".
func (c Code) Name() string {
	switch {
	case c == NoError:
		return "FRTE_NO_ERROR"
	case c > 0xffff:
		return "[APPLICATION ERROR]"
	case c >= rpcFirst && c <= rpcLast:
		if name, ok := codeNames[c]; ok {
			return name
		}
		return "[UNKNOWN RPC ERROR]"
	default:
		return "[UNKNOWN ERROR]"
	}
}

// Error returns code's canonical name. It makes Code an error type, so a
// *Code can be the target of errors.As (see (*Error).As).
func (c Code) Error() string {
	return c.Name()
}

// DefaultMessage returns the default human-readable message for code,
// used when a caller sets an error code without supplying its own
// message.
func (c Code) DefaultMessage() string {
	switch {
	case c == NoError:
		return "No error"
	case c > 0xffff:
		return "[APPLICATION ERROR]"
	case c >= rpcFirst && c <= rpcLast:
		if msg, ok := defaultMessages[c]; ok {
			return msg
		}
		return "[UNKNOWN RPC ERROR]"
	default:
		return "[UNKNOWN ERROR]"
	}
}

// Error is a Go error wrapping an RPC error code and message, so handler
// and client code can use errors.As to recover the original code instead
// of string-matching messages.
type Error struct {
	Code    Code
	Message string
}

// New returns an *Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewDefault returns an *Error with code's default message.
func NewDefault(code Code) *Error {
	return &Error{Code: code, Message: code.DefaultMessage()}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code.Name(), e.Message)
}

// As supports errors.As(err, *Code) by matching the target's dynamic type.
func (e *Error) As(target any) bool {
	if codePtr, ok := target.(*Code); ok {
		*codePtr = e.Code
		return true
	}
	return false
}
