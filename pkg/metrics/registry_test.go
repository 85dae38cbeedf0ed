package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRegistry(t *testing.T) {
	Reset()
	defer Reset()

	assert.False(t, IsEnabled())

	reg := InitRegistry()
	require.NotNil(t, reg)
	assert.True(t, IsEnabled())

	// Calling again is a no-op and returns the same registry.
	reg2 := InitRegistry()
	assert.Same(t, reg, reg2)
}

func TestGetRegistry_LazyInit(t *testing.T) {
	Reset()
	defer Reset()

	reg := GetRegistry()
	require.NotNil(t, reg)
}

func TestHandler_ServesExposition(t *testing.T) {
	Reset()
	defer Reset()
	InitRegistry()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()

	Handler().ServeHTTP(rec, req)
	assert.Equal(t, 200, rec.Code)
}
