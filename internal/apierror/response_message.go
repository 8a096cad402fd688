package apierror

import (
	"fmt"
	"net/http"
)

// Audience tells who a response message is written for.
type Audience string

// Audiences.
const (
	Developer Audience = "developer"
	Enduser   Audience = "enduser"
)

// Kind is the flavor of a response message.
type Kind string

// Kinds. Developers get error, warning and exception messages; end users get
// error, fail and warning messages.
const (
	KindError     Kind = "error"
	KindWarning   Kind = "warning"
	KindException Kind = "exception"
	KindFail      Kind = "fail"
)

// ResponseMessage is an error that a view returns to put exactly one
// structured message into the response and set its status code.
type ResponseMessage struct {
	Audience   Audience
	Kind       Kind
	StatusCode int
	Code       any
	Message    string
}

func (e *ResponseMessage) Error() string {
	return fmt.Sprintf("%s %s (%v): %s", e.Audience, e.Kind, e.Code, e.Message)
}

// MessageCode implements message.Coded.
func (e *ResponseMessage) MessageCode() any { return e.Code }

// MessageText implements message.MessageCarrier.
func (e *ResponseMessage) MessageText() string { return e.Message }

// WithStatus returns a copy of e with a different status code.
func (e *ResponseMessage) WithStatus(status int) *ResponseMessage {
	cp := *e
	cp.StatusCode = status
	return &cp
}

func newResponseMessage(a Audience, k Kind, status int, code any, msg string) *ResponseMessage {
	return &ResponseMessage{Audience: a, Kind: k, StatusCode: status, Code: code, Message: msg}
}

// DeveloperError reports a developer-facing error (400 by default).
func DeveloperError(code any, msg string) *ResponseMessage {
	return newResponseMessage(Developer, KindError, http.StatusBadRequest, code, msg)
}

// DeveloperWarning reports a developer-facing warning; the request still
// succeeds (200 by default).
func DeveloperWarning(code any, msg string) *ResponseMessage {
	return newResponseMessage(Developer, KindWarning, http.StatusOK, code, msg)
}

// DeveloperException reports a developer-facing exception (500 by default).
func DeveloperException(code any, msg string) *ResponseMessage {
	return newResponseMessage(Developer, KindException, http.StatusInternalServerError, code, msg)
}

// EnduserError reports an end-user-facing error (400 by default).
func EnduserError(code any, msg string) *ResponseMessage {
	return newResponseMessage(Enduser, KindError, http.StatusBadRequest, code, msg)
}

// EnduserFail reports an end-user-facing failure (400 by default).
func EnduserFail(code any, msg string) *ResponseMessage {
	return newResponseMessage(Enduser, KindFail, http.StatusBadRequest, code, msg)
}

// EnduserWarning reports an end-user-facing warning (200 by default).
func EnduserWarning(code any, msg string) *ResponseMessage {
	return newResponseMessage(Enduser, KindWarning, http.StatusOK, code, msg)
}
