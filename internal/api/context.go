package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/phrazzld/envelope/internal/api/shared"
	"github.com/phrazzld/envelope/internal/apierror"
	"github.com/phrazzld/envelope/internal/envelope"
	"github.com/phrazzld/envelope/internal/message"
)

// hookValueKey scopes pre-request hook values in the request context.
type hookValueKey string

// Context is what a view sees of the current request and its response
// state.
type Context struct {
	r        *http.Request
	st       *envelope.State
	mediaURL string
}

// Request returns the request, including values attached by pre-request
// hooks and authentication.
func (c *Context) Request() *http.Request { return c.r }

// SetStatus sets the response status.
func (c *Context) SetStatus(status int) { c.st.SetStatus(status) }

// SetHeader sets a response header.
func (c *Context) SetHeader(key, value string) { c.st.Header().Set(key, value) }

// SetContentType overrides the response content type.
func (c *Context) SetContentType(ct string) { c.st.SetContentType(ct) }

// AddFail appends a FAIL messenger entry.
func (c *Context) AddFail(msg, code any) { c.st.AddEntry(message.EntryFail, code, msg) }

// AddError appends an ERROR messenger entry.
func (c *Context) AddError(msg, code any) { c.st.AddEntry(message.EntryError, code, msg) }

// AddWarning appends a WARNING messenger entry.
func (c *Context) AddWarning(msg, code any) { c.st.AddEntry(message.EntryWarning, code, msg) }

// AddSuccess appends a SUCCESS messenger entry.
func (c *Context) AddSuccess(msg, code any) { c.st.AddEntry(message.EntrySuccess, code, msg) }

// Log records a development message at log severity. Development messages
// only reach the body when the development state is on.
func (c *Context) Log(code any, text string) { c.st.AddMessage(message.SeverityLog, code, text) }

// Info records a development message at info severity.
func (c *Context) Info(code any, text string) { c.st.AddMessage(message.SeverityInfo, code, text) }

// Warn records a development message at warning severity.
func (c *Context) Warn(code any, text string) { c.st.AddMessage(message.SeverityWarning, code, text) }

// Error records a development message at error severity.
func (c *Context) Error(code any, text string) { c.st.AddMessage(message.SeverityError, code, text) }

// Exception records a development message at exception severity.
func (c *Context) Exception(code any, text string) {
	c.st.AddMessage(message.SeverityException, code, text)
}

// SetMonitor stores a monitor value; keys outside the configured monitor
// keys are dropped and reported with false.
func (c *Context) SetMonitor(key string, v any) bool { return c.st.SetMonitor(key, v) }

// Value returns the value a pre-request hook attached under key.
func (c *Context) Value(key string) any {
	return c.r.Context().Value(hookValueKey(key))
}

// Host returns scheme://host of the request.
func (c *Context) Host() string { return envelope.RequestBase(c.r) }

// AbsoluteURL prefixes path with the request's scheme and host.
func (c *Context) AbsoluteURL(path string) string { return c.Host() + path }

// MediaURL turns a stored file name into a media URL. An empty name yields
// an empty URL.
func (c *Context) MediaURL(name string) string {
	if name == "" {
		return ""
	}
	return c.mediaURL + name
}

// LocalMediaURL is MediaURL made absolute with the request host.
func (c *Context) LocalMediaURL(name string) string {
	if name == "" {
		return ""
	}
	return c.AbsoluteURL(c.MediaURL(name))
}

// QueryFields returns the comma-separated "fields" query parameter, or nil
// when it is absent.
func (c *Context) QueryFields() []string {
	q := c.r.URL.Query()
	if !q.Has("fields") {
		return nil
	}
	return strings.Split(q.Get("fields"), ",")
}

// PageParams reads the page_size and page query parameters as decimal
// integers. Missing values default to defaultSize and 1.
func (c *Context) PageParams(defaultSize int) (size, number int, err error) {
	q := c.r.URL.Query()

	size, number = defaultSize, 1
	if raw := q.Get("page_size"); raw != "" {
		if size, err = strconv.Atoi(strings.TrimSpace(raw)); err != nil {
			return 0, 0, apierror.Validation(map[string][]string{"page_size": {"A valid integer is required."}})
		}
	}
	if raw := q.Get("page"); raw != "" {
		if number, err = strconv.Atoi(strings.TrimSpace(raw)); err != nil {
			return 0, 0, apierror.Validation(map[string][]string{"page": {"A valid integer is required."}})
		}
	}
	if size <= 0 {
		return 0, 0, apierror.ErrInvalidPageSize
	}
	return size, number, nil
}

// UserID returns the authenticated subject.
func (c *Context) UserID() (string, bool) {
	return shared.GetUserID(c.r.Context())
}
