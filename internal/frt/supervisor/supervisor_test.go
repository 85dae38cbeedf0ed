package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/marmos91/frtrpc/internal/frt/client"
	"github.com/marmos91/frtrpc/internal/frt/frterr"
	"github.com/marmos91/frtrpc/internal/frt/reflection"
	"github.com/marmos91/frtrpc/internal/frt/rpcrequest"
)

// startSupervisor brings up a Supervisor listening on an ephemeral loopback
// port and returns it alongside a func that stops the accept loop and
// blocks until it has fully shut down.
func startSupervisor(t *testing.T) (*Supervisor, func()) {
	t.Helper()
	sup := New(0, nil)
	if err := sup.Listen("tcp", "127.0.0.1:0"); err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sup.Serve(ctx)
		close(done)
	}()

	return sup, func() {
		cancel()
		<-done
	}
}

// Scenario A: echo round-trip.
func TestEndToEndEchoRoundTrip(t *testing.T) {
	sup, stop := startSupervisor(t)
	defer stop()

	target := sup.GetTarget("tcp", sup.Addr(), time.Second)
	req := rpcrequest.New()
	req.SetMethodName(reflection.MethodEcho)
	req.Params().AddInt32(42)
	req.Params().AddString("hi")

	result := target.InvokeSync(req, time.Second)
	if result.IsError() {
		t.Fatalf("unexpected error: %d %s", result.ErrorCode(), result.ErrorMessage())
	}
	if result.Return().Int32(0) != 42 {
		t.Fatalf("expected int32 42, got %d", result.Return().Int32(0))
	}
	if result.Return().String(1) != "hi" {
		t.Fatalf("expected string %q, got %q", "hi", result.Return().String(1))
	}
}

// Scenario B: unknown method.
func TestEndToEndUnknownMethod(t *testing.T) {
	sup, stop := startSupervisor(t)
	defer stop()

	target := sup.GetTarget("tcp", sup.Addr(), time.Second)
	req := rpcrequest.New()
	req.SetMethodName("no.such.thing")

	result := target.InvokeSync(req, time.Second)
	if frterr.Code(result.ErrorCode()) != frterr.NoSuchMethod {
		t.Fatalf("expected NoSuchMethod, got %d", result.ErrorCode())
	}
	if result.ErrorMessage() != frterr.NoSuchMethod.DefaultMessage() {
		t.Fatalf("unexpected message %q", result.ErrorMessage())
	}
}

// Scenario C: type mismatch.
func TestEndToEndTypeMismatch(t *testing.T) {
	sup, stop := startSupervisor(t)
	defer stop()

	sup.Builder().DefineMethod("add", "i", "i", func(req *rpcrequest.Request) {
		req.Return().AddInt32(req.Params().Int32(0) + 1)
	})
	sup.Builder().Close()

	target := sup.GetTarget("tcp", sup.Addr(), time.Second)
	req := rpcrequest.New()
	req.SetMethodName("add")
	req.Params().AddString("oops")

	result := target.InvokeSync(req, time.Second)
	if frterr.Code(result.ErrorCode()) != frterr.WrongParams {
		t.Fatalf("expected WrongParams, got %d", result.ErrorCode())
	}
}

// Scenario D: timeout, with a late handler completion that must not
// deliver a second time.
func TestEndToEndTimeoutThenLateReturnIsDiscarded(t *testing.T) {
	sup, stop := startSupervisor(t)
	defer stop()

	release := make(chan struct{})
	sup.Builder().DefineMethod("slow", "", "", func(req *rpcrequest.Request) {
		req = req.Detach()
		go func() {
			<-release
			req.NotifyReturn()
		}()
	})
	sup.Builder().Close()

	target := sup.GetTarget("tcp", sup.Addr(), time.Second)
	req := rpcrequest.New()
	req.SetMethodName("slow")

	start := time.Now()
	result := target.InvokeSync(req, 250*time.Millisecond)
	if time.Since(start) < 250*time.Millisecond {
		t.Fatal("expected InvokeSync to block for the full timeout")
	}
	if frterr.Code(result.ErrorCode()) != frterr.Timeout {
		t.Fatalf("expected Timeout, got %d", result.ErrorCode())
	}

	// Let the handler finish late; its reply has nowhere to land (the
	// timeout already won the completion race and closed the channel) and
	// must not panic or hang the test.
	close(release)
	time.Sleep(50 * time.Millisecond)
}

// Scenario E: abort, with a late handler completion that must be
// discarded.
func TestEndToEndAbortDiscardsLateReply(t *testing.T) {
	sup, stop := startSupervisor(t)
	defer stop()

	release := make(chan struct{})
	sup.Builder().DefineMethod("never", "", "", func(req *rpcrequest.Request) {
		req = req.Detach()
		go func() {
			<-release
			req.NotifyReturn()
		}()
	})
	sup.Builder().Close()

	target := sup.GetTarget("tcp", sup.Addr(), time.Second)
	req := rpcrequest.New()
	req.SetMethodName("never")
	waiter := client.NewSingleRequestWaiter()

	if err := target.InvokeAsync(req, time.Hour, waiter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(20 * time.Millisecond) // give the request time to reach the handler
	if !req.Abort() {
		t.Fatal("expected Abort to succeed")
	}

	result := waiter.Wait()
	if frterr.Code(result.ErrorCode()) != frterr.Abort {
		t.Fatalf("expected Abort, got %d", result.ErrorCode())
	}

	close(release)
	time.Sleep(50 * time.Millisecond)
}

// Scenario F: metadata introspection via frt.rpc.getMethodInfo.
func TestEndToEndMetadataIntrospection(t *testing.T) {
	sup, stop := startSupervisor(t)
	defer stop()

	sup.Builder().DefineMethod("m", "is", "d", func(req *rpcrequest.Request) {})
	sup.Builder().MethodDesc("adds")
	sup.Builder().ParamDesc("n", "the first operand")
	sup.Builder().ParamDesc("s", "a label")
	sup.Builder().ReturnDesc("r", "the result")
	sup.Builder().Close()

	target := sup.GetTarget("tcp", sup.Addr(), time.Second)
	req := rpcrequest.New()
	req.SetMethodName(reflection.MethodGetMethodInfo)
	req.Params().AddString("m")

	result := target.InvokeSync(req, time.Second)
	if result.IsError() {
		t.Fatalf("unexpected error: %d", result.ErrorCode())
	}

	ret := result.Return()
	if ret.String(0) != "adds" {
		t.Fatalf("expected description %q, got %q", "adds", ret.String(0))
	}
	if ret.String(1) != "is" || ret.String(2) != "d" {
		t.Fatalf("expected specs (is, d), got (%q, %q)", ret.String(1), ret.String(2))
	}
	if got := ret.StringArray(3); len(got) != 2 || got[0] != "n" || got[1] != "s" {
		t.Fatalf("unexpected param names: %v", got)
	}
	if got := ret.StringArray(5); len(got) != 1 || got[0] != "r" {
		t.Fatalf("unexpected return names: %v", got)
	}
}
