package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/phrazzld/envelope/internal/message"
)

// Default codes of the framework-level errors.
const (
	CodeInvalid              = "invalid"
	CodeParseError           = "parse_error"
	CodeNotFound             = "not_found"
	CodePermissionDenied     = "permission_denied"
	CodeNotAuthenticated     = "not_authenticated"
	CodeAuthenticationFailed = "authentication_failed"
	CodeThrottled            = "throttled"
	CodeInvalidPageSize      = "invalid_page_size"
)

// Sentinel errors that views may return or wrap. The classifier converts them
// to the matching APIError.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
)

// ErrInvalidPageSize is returned when a paginated result declares a page size
// of zero or less.
var ErrInvalidPageSize = New(http.StatusBadRequest, CodeInvalidPageSize,
	"page_size must be greater than zero.")

// ErrInvalidPagination is returned when a paginated result carries a count,
// page size or page number that is not an integer.
var ErrInvalidPagination = New(http.StatusBadRequest, CodeInvalid,
	"count, page_size and page_number must be integers.")

// Detail is one coded piece of error detail. It is also an error-severity
// string message, so views may embed it directly in their output.
type Detail struct {
	Text string
	Code string
}

func (d Detail) Severity() message.Severity { return message.SeverityError }
func (d Detail) MessageCode() any { return d.Code }
func (d Detail) MessageText() string { return d.Text }
func (d Detail) String() string { return d.Text }

// APIError is a framework-level error with an HTTP status and a detail
// payload. Detail is a string, a Detail, a []any of details, or a
// map[string]any of field name to details.
type APIError struct {
	StatusCode int
	Code       string
	Detail     any
	// Wait is the Retry-After hint in seconds for throttled requests.
	Wait int
}

// New creates an APIError with a string detail.
func New(status int, code, detail string) *APIError {
	return &APIError{StatusCode: status, Code: code, Detail: detail}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.MessageDetail())
}

// MessageCode implements message.Coded.
func (e *APIError) MessageCode() any { return e.Code }

// MessageDetail implements message.Detailer. Structured details are reduced
// to their first text.
func (e *APIError) MessageDetail() string {
	if s, ok := firstDetailText(e.Detail); ok {
		return s
	}
	return message.UnknownProblem
}

// IsAuthentication reports whether e is a not-authenticated or
// authentication-failed error.
func (e *APIError) IsAuthentication() bool {
	return e.Code == CodeNotAuthenticated || e.Code == CodeAuthenticationFailed
}

// WithStatus returns a copy of e with a different status code.
func (e *APIError) WithStatus(status int) *APIError {
	cp := *e
	cp.StatusCode = status
	return &cp
}

func firstDetailText(d any) (string, bool) {
	switch x := d.(type) {
	case string:
		return x, true
	case Detail:
		return x.Text, true
	case []any:
		for _, v := range x {
			if s, ok := firstDetailText(v); ok {
				return s, true
			}
		}
	case []string:
		if len(x) > 0 {
			return x[0], true
		}
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s, ok := firstDetailText(x[k]); ok {
				return s, true
			}
		}
	}
	return "", false
}

// NotFound returns a 404 error.
func NotFound(detail string) *APIError {
	if detail == "" {
		detail = "Not found."
	}
	return New(http.StatusNotFound, CodeNotFound, detail)
}

// PermissionDenied returns a 403 error.
func PermissionDenied(detail string) *APIError {
	if detail == "" {
		detail = "You do not have permission to perform this action."
	}
	return New(http.StatusForbidden, CodePermissionDenied, detail)
}

// NotAuthenticated returns a 401 error for requests without credentials.
func NotAuthenticated(detail string) *APIError {
	if detail == "" {
		detail = "Authentication credentials were not provided."
	}
	return New(http.StatusUnauthorized, CodeNotAuthenticated, detail)
}

// AuthenticationFailed returns a 401 error for invalid credentials.
func AuthenticationFailed(detail string) *APIError {
	if detail == "" {
		detail = "Incorrect authentication credentials."
	}
	return New(http.StatusUnauthorized, CodeAuthenticationFailed, detail)
}

// Throttled returns a 429 error carrying a Retry-After hint.
func Throttled(wait int) *APIError {
	e := New(http.StatusTooManyRequests, CodeThrottled, "Request was throttled.")
	e.Wait = wait
	return e
}

// ParseError returns a 400 error for malformed request bodies.
func ParseError(detail string) *APIError {
	if detail == "" {
		detail = "Malformed request."
	}
	return New(http.StatusBadRequest, CodeParseError, detail)
}

// Validation returns a 400 error with per-field details. Each message gets
// the "invalid" code.
func Validation(fields map[string][]string) *APIError {
	detail := make(map[string]any, len(fields))
	for field, msgs := range fields {
		items := make([]any, 0, len(msgs))
		for _, m := range msgs {
			items = append(items, Detail{Text: m, Code: CodeInvalid})
		}
		detail[field] = items
	}
	return &APIError{StatusCode: http.StatusBadRequest, Code: CodeInvalid, Detail: detail}
}

// Translate converts the not-found and permission-denied sentinels into
// APIErrors and unwraps any APIError in err's chain. It returns nil when err
// is not a framework-level error.
func Translate(err error) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, ErrNotFound):
		return NotFound(wrappedText(err, ErrNotFound))
	case errors.Is(err, ErrPermissionDenied):
		return PermissionDenied(wrappedText(err, ErrPermissionDenied))
	default:
		return nil
	}
}

// wrappedText keeps the caller's wording when the sentinel was wrapped, and
// falls back to the default detail otherwise.
func wrappedText(err, sentinel error) string {
	if err == sentinel {
		return ""
	}
	return err.Error()
}
