package api

import (
	"net/http"

	"github.com/phrazzld/envelope/internal/api/shared"
)

// HeaderMockServerStatus switches a view to its mock server when the request
// carries a non-empty value.
const HeaderMockServerStatus = "Mock-Server-Status"

// Authenticator identifies the caller of a view.
type Authenticator interface {
	// Authenticate returns the caller's subject, or an authentication
	// APIError.
	Authenticate(r *http.Request) (string, error)
	// Challenge is the WWW-Authenticate value for 401 responses. An empty
	// challenge turns authentication failures into 403s.
	Challenge() string
}

// UncaughtHandler writes the response for an error the classifier hands
// back in strict mode.
type UncaughtHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultUncaughtHandler writes a plain 500 error response and logs the
// redacted error.
func DefaultUncaughtHandler(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
		"An unexpected error occurred", err)
}

// MockServer serves canned responses for a view whose real implementation
// is not ready. It only answers while On is set.
type MockServer struct {
	On      bool
	Handler http.Handler
}

// StaticMock returns a handler that always writes body as JSON with status.
func StaticMock(status int, body any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, status, body)
	})
}

type viewOptions struct {
	noPagination bool
	auth         Authenticator
	ownerParam   string
	mock         MockServer
	uncaught     UncaughtHandler
}

// ViewOption customizes a single view.
type ViewOption func(*viewOptions)

// WithoutPagination renders v2 collections as a bare result.
func WithoutPagination() ViewOption {
	return func(o *viewOptions) { o.noPagination = true }
}

// WithAuthenticator requires callers to authenticate with a.
func WithAuthenticator(a Authenticator) ViewOption {
	return func(o *viewOptions) { o.auth = a }
}

// WithOwnerCheck requires the URL parameter param to equal the
// authenticated subject. It needs WithAuthenticator to be useful.
func WithOwnerCheck(param string) ViewOption {
	return func(o *viewOptions) { o.ownerParam = param }
}

// WithMockServer attaches a mock server to the view.
func WithMockServer(m MockServer) ViewOption {
	return func(o *viewOptions) { o.mock = m }
}

// WithUncaughtHandler overrides the dispatcher's uncaught-error handler for
// the view.
func WithUncaughtHandler(h UncaughtHandler) ViewOption {
	return func(o *viewOptions) { o.uncaught = h }
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithMediaURL sets the prefix used by Context.MediaURL.
func WithMediaURL(prefix string) DispatcherOption {
	return func(d *Dispatcher) { d.mediaURL = prefix }
}

// WithDefaultUncaughtHandler replaces DefaultUncaughtHandler for every view.
func WithDefaultUncaughtHandler(h UncaughtHandler) DispatcherOption {
	return func(d *Dispatcher) { d.uncaught = h }
}
