// Package message defines the message model shared by the envelope builder
// and the error classifier: developer-facing messages with a severity,
// end-user-facing messenger entries, typed string messages that views can
// embed in their output, and the canned texts used for status-code defaults.
package message

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// Severity classifies a developer-facing message.
type Severity string

// Supported severities. Each severity has its own list in the response state.
const (
	SeverityLog       Severity = "log"
	SeverityInfo      Severity = "info"
	SeverityWarning   Severity = "warning"
	SeverityError     Severity = "error"
	SeverityException Severity = "exception"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLog, SeverityInfo, SeverityWarning, SeverityError, SeverityException:
		return true
	default:
		return false
	}
}

// Message is a single developer-facing message. It is immutable once
// appended to a response state.
type Message struct {
	Code     string
	Text     string
	Severity Severity
}

// New creates a message. Non-string codes are rendered with fmt.
func New(severity Severity, code any, text string) Message {
	return Message{
		Code:     codeKey(code),
		Text:     text,
		Severity: severity,
	}
}

// Map renders the message the way it appears in the envelope: a single-key
// object mapping the code to the text.
func (m Message) Map() map[string]any {
	return map[string]any{m.Code: m.Text}
}

// MarshalJSON renders the message as {"<code>": "<text>"}.
func (m Message) MarshalJSON() ([]byte, error) {
	return jsoniter.Marshal(m.Map())
}

func codeKey(code any) string {
	switch c := code.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}
