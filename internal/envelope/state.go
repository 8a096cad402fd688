package envelope

import (
	"net/http"

	"github.com/phrazzld/envelope/internal/message"
)

// State is the mutable response state of a single request. It is created by
// the dispatcher, written by the view and the classifier, and read by the
// builder. A State must not be shared between requests.
type State struct {
	status      int
	contentType string
	exception   bool

	headers       http.Header
	setCookies    []*http.Cookie
	deleteCookies []string

	messages  map[message.Severity][]message.Message
	messenger []message.Entry

	monitor        map[string]any
	allowedMonitor map[string]struct{}

	err  error
	many bool
}

// NewState returns an empty state. Only keys in allowedMonitorKeys may be set
// on the monitor map.
func NewState(allowedMonitorKeys []string) *State {
	allowed := make(map[string]struct{}, len(allowedMonitorKeys))
	for _, k := range allowedMonitorKeys {
		allowed[k] = struct{}{}
	}
	return &State{
		headers:        make(http.Header),
		messages:       make(map[message.Severity][]message.Message),
		monitor:        make(map[string]any),
		allowedMonitor: allowed,
	}
}

// Status returns the response status; an unset status means 200.
func (s *State) Status() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

// SetStatus sets the status unconditionally.
func (s *State) SetStatus(status int) {
	s.status = status
}

// ResolveStatus adopts status when it is a valid HTTP status other than 200,
// then returns the effective status. A default 200 never overwrites a status
// set earlier.
func (s *State) ResolveStatus(status int) int {
	if status >= 100 && status < 600 && status != http.StatusOK {
		s.status = status
	}
	return s.Status()
}

// ContentType returns the content type chosen by the view, if any.
func (s *State) ContentType() string { return s.contentType }

// SetContentType overrides the response content type.
func (s *State) SetContentType(ct string) { s.contentType = ct }

// Exception reports whether an error was classified for this request.
func (s *State) Exception() bool { return s.exception }

// SetException sets the exception flag.
func (s *State) SetException(v bool) { s.exception = v }

// Header returns the headers written with the response.
func (s *State) Header() http.Header { return s.headers }

// SetCookie queues a cookie to be set on the response.
func (s *State) SetCookie(c *http.Cookie) {
	s.setCookies = append(s.setCookies, c)
}

// DeleteCookie queues a cookie for deletion.
func (s *State) DeleteCookie(name string) {
	s.deleteCookies = append(s.deleteCookies, name)
}

// Cookies returns the queued cookies in insertion order.
func (s *State) Cookies() []*http.Cookie { return s.setCookies }

// DeletedCookies returns the names of cookies queued for deletion.
func (s *State) DeletedCookies() []string { return s.deleteCookies }

// AddMessage appends a developer message to the list of its severity.
func (s *State) AddMessage(severity message.Severity, code any, text string) {
	s.messages[severity] = append(s.messages[severity], message.New(severity, code, text))
}

// Messages returns the messages of one severity in arrival order.
func (s *State) Messages(severity message.Severity) []message.Message {
	return s.messages[severity]
}

// AddEntry appends a messenger entry. The code and message go through the
// extraction chains, so any carrier type is accepted.
func (s *State) AddEntry(typ message.EntryType, code any, msg any) {
	s.messenger = append(s.messenger, message.NewEntry(typ, code, msg))
}

// Messenger returns the messenger entries in arrival order.
func (s *State) Messenger() []message.Entry { return s.messenger }

// SetMonitor stores a monitor value. Keys that are not allowed are ignored
// and reported with false.
func (s *State) SetMonitor(key string, v any) bool {
	if _, ok := s.allowedMonitor[key]; !ok {
		return false
	}
	s.monitor[key] = v
	return true
}

// Monitor returns the monitor values set so far.
func (s *State) Monitor() map[string]any { return s.monitor }

// Err returns the last classified error.
func (s *State) Err() error { return s.err }

// SetErr records the error being classified.
func (s *State) SetErr(err error) { s.err = err }

// Many reports whether the last built envelope carried a collection.
func (s *State) Many() bool { return s.many }

func (s *State) hasEntry(types ...message.EntryType) bool {
	for _, e := range s.messenger {
		for _, t := range types {
			if e.Type == t {
				return true
			}
		}
	}
	return false
}

// Success reports whether the response counts as successful: any 2xx
// status, or no error, exception or failure recorded at all.
func (s *State) Success() bool {
	if st := s.Status(); st >= 200 && st < 300 {
		return true
	}
	return len(s.messages[message.SeverityError]) == 0 &&
		len(s.messages[message.SeverityException]) == 0 &&
		!s.exception &&
		!s.hasEntry(message.EntryFail, message.EntryError)
}

// HasWarning reports whether both a warning message and a WARNING messenger
// entry exist.
func (s *State) HasWarning() bool {
	return len(s.messages[message.SeverityWarning]) > 0 && s.hasEntry(message.EntryWarning)
}
