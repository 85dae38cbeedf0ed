package client

import "github.com/marmos91/frtrpc/internal/frt/rpcrequest"

// RequestWaiter is notified when an outstanding call completes, with
// whatever terminal state (reply, error, timeout, abort) the Request now
// carries.
type RequestWaiter interface {
	RequestDone(req *rpcrequest.Request)
}

// WaiterFunc adapts a plain function to RequestWaiter.
type WaiterFunc func(req *rpcrequest.Request)

// RequestDone implements RequestWaiter.
func (f WaiterFunc) RequestDone(req *rpcrequest.Request) { f(req) }

// SingleRequestWaiter blocks one caller goroutine until its request
// completes. It replaces the original's mutex/condition-variable pair with
// a buffered channel, Go's idiomatic single-use rendezvous: RequestDone
// never blocks (the buffer always has room) and Wait returns as soon as a
// value is available.
type SingleRequestWaiter struct {
	done chan *rpcrequest.Request
}

// NewSingleRequestWaiter returns a waiter good for exactly one call.
func NewSingleRequestWaiter() *SingleRequestWaiter {
	return &SingleRequestWaiter{done: make(chan *rpcrequest.Request, 1)}
}

// RequestDone implements RequestWaiter.
func (w *SingleRequestWaiter) RequestDone(req *rpcrequest.Request) {
	w.done <- req
}

// Wait blocks until RequestDone is called and returns the completed
// request.
func (w *SingleRequestWaiter) Wait() *rpcrequest.Request {
	return <-w.done
}
