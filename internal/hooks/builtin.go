package hooks

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/envelope/internal/api/shared"
)

// Names of the hooks registered by RegisterBuiltins.
const (
	TraceID    = "trace_id"
	RequestID  = "request_id"
	ServerTime = "server_time"
	ClientIP   = "client_ip"
)

// RegisterBuiltins registers the hooks every deployment gets.
func RegisterBuiltins(reg *Registry) error {
	builtins := map[string]Func{
		TraceID:    traceID,
		RequestID:  requestID,
		ServerTime: serverTime(time.Now),
		ClientIP:   clientIP,
	}
	for _, name := range []string{TraceID, RequestID, ServerTime, ClientIP} {
		if err := reg.Register(name, builtins[name]); err != nil {
			return err
		}
	}
	return nil
}

func traceID(r *http.Request) (any, error) {
	id := shared.GetTraceID(r.Context())
	if id == "" {
		return nil, Skip("no trace id on request")
	}
	return id, nil
}

func requestID(r *http.Request) (any, error) {
	id := chimw.GetReqID(r.Context())
	if id == "" {
		return nil, Skip("no request id on request")
	}
	return id, nil
}

func serverTime(now func() time.Time) Func {
	return func(*http.Request) (any, error) {
		return now().UTC().Format(time.RFC3339), nil
	}
}

func clientIP(r *http.Request) (any, error) {
	if r.RemoteAddr == "" {
		return nil, Skip("remote address unknown")
	}
	return r.RemoteAddr, nil
}
