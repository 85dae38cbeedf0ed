package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "frtrpc", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Enabled = false

	shutdown, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	err = shutdown(ctx)
	assert.NoError(t, err)

	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	tracer = nil
	enabled = false

	tr := Tracer()
	require.NotNil(t, tr)
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)

	span.End()
}

func TestSpanFromContext(t *testing.T) {
	ctx := context.Background()

	span := SpanFromContext(ctx)
	require.NotNil(t, span)
}

func TestAddEvent(t *testing.T) {
	ctx := context.Background()

	require.NotPanics(t, func() {
		AddEvent(ctx, "test.event")
	})
}

func TestStartInvokeSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartInvokeSpan(ctx, "frt.rpc.ping", Channel("c-1"))
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestAttributeHelpers(t *testing.T) {
	t.Run("PeerAddr", func(t *testing.T) {
		attr := PeerAddr("192.168.1.100:12345")
		assert.Equal(t, AttrPeerAddr, string(attr.Key))
		assert.Equal(t, "192.168.1.100:12345", attr.Value.AsString())
	})

	t.Run("Channel", func(t *testing.T) {
		attr := Channel("chan-7")
		assert.Equal(t, AttrChannel, string(attr.Key))
		assert.Equal(t, "chan-7", attr.Value.AsString())
	})

	t.Run("Method", func(t *testing.T) {
		attr := Method("frt.rpc.echo")
		assert.Equal(t, AttrMethod, string(attr.Key))
		assert.Equal(t, "frt.rpc.echo", attr.Value.AsString())
	})

	t.Run("ParamSpec", func(t *testing.T) {
		attr := ParamSpec("is")
		assert.Equal(t, AttrParamSpec, string(attr.Key))
		assert.Equal(t, "is", attr.Value.AsString())
	})

	t.Run("ReturnSpec", func(t *testing.T) {
		attr := ReturnSpec("d")
		assert.Equal(t, AttrReturnSpec, string(attr.Key))
		assert.Equal(t, "d", attr.Value.AsString())
	})

	t.Run("ErrorCode", func(t *testing.T) {
		attr := ErrorCode(106)
		assert.Equal(t, AttrErrorCode, string(attr.Key))
		assert.Equal(t, int64(106), attr.Value.AsInt64())
	})

	t.Run("Detached", func(t *testing.T) {
		attr := Detached(true)
		assert.Equal(t, AttrDetached, string(attr.Key))
		assert.True(t, attr.Value.AsBool())
	})

	t.Run("NoReply", func(t *testing.T) {
		attr := NoReply(false)
		assert.Equal(t, AttrNoReply, string(attr.Key))
		assert.False(t, attr.Value.AsBool())
	})
}

func TestFormatSpanAttr(t *testing.T) {
	assert.Equal(t, "01020304", FormatSpanAttr([]byte{0x01, 0x02, 0x03, 0x04}))
	assert.Equal(t, "", FormatSpanAttr(nil))
}
