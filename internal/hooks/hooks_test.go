package hooks

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/envelope/internal/api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(v any) Func {
	return func(*http.Request) (any, error) { return v, nil }
}

func TestRegister(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register("a", constant(1)))
	assert.Error(t, reg.Register("a", constant(2)), "duplicate names are rejected")
	assert.Error(t, reg.Register("", constant(3)), "empty names are rejected")
	assert.Error(t, reg.Register("b", nil), "nil functions are rejected")

	fn, ok := reg.Lookup("a")
	require.True(t, ok)
	v, err := fn(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("a", constant(1))

	assert.Panics(t, func() { reg.MustRegister("a", constant(1)) })
}

func TestResolve(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("version", constant("1.2.3"))
	reg.MustRegister("region", constant("eu"))

	resolved, err := reg.Resolve(
		map[string]string{"zz_version": "version", "aa_region": "region"},
		map[string]string{"tenant": "region"},
	)
	require.NoError(t, err)

	require.Len(t, resolved.Monitor, 2)
	assert.Equal(t, "aa_region", resolved.Monitor[0].Key, "bindings are sorted by key")
	assert.Equal(t, "zz_version", resolved.Monitor[1].Key)
	require.Len(t, resolved.PreRequest, 1)
	assert.Equal(t, "region", resolved.PreRequest[0].Hook)
}

func TestResolveUnknownHook(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Resolve(map[string]string{"version": "missing"}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `hook "missing" is not registered`)
}

func TestSkip(t *testing.T) {
	err := fmt.Errorf("monitor: %w", Skip("cache cold"))

	assert.True(t, errors.Is(err, ErrSkip))
	assert.Equal(t, "cache cold", SkipReason(err))
	assert.Equal(t, "plain", SkipReason(errors.New("plain")))
	assert.False(t, errors.Is(errors.New("other"), ErrSkip))
}

func TestBuiltins(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterBuiltins(reg))
	assert.Error(t, RegisterBuiltins(reg), "builtins cannot be registered twice")

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	t.Run("trace id skips without a trace", func(t *testing.T) {
		fn, _ := reg.Lookup(TraceID)
		_, err := fn(req)
		assert.ErrorIs(t, err, ErrSkip)
	})

	t.Run("trace id from context", func(t *testing.T) {
		fn, _ := reg.Lookup(TraceID)
		traced := req.WithContext(shared.SetTraceID(req.Context()))
		v, err := fn(traced)
		require.NoError(t, err)
		assert.Equal(t, shared.GetTraceID(traced.Context()), v)
	})

	t.Run("request id from chi middleware", func(t *testing.T) {
		fn, _ := reg.Lookup(RequestID)
		var got any
		chimw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = fn(r)
		})).ServeHTTP(httptest.NewRecorder(), req)
		assert.NotEmpty(t, got)
	})

	t.Run("client ip", func(t *testing.T) {
		fn, _ := reg.Lookup(ClientIP)
		v, err := fn(req)
		require.NoError(t, err)
		assert.Equal(t, req.RemoteAddr, v)
	})
}

func TestServerTime(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))

	v, err := serverTime(func() time.Time { return fixed })(nil)

	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T11:00:00Z", v)
}
