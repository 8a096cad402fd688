package message

import jsoniter "github.com/json-iterator/go"

// StringMessage is a string value that carries a severity and a code.
//
// Views may return StringMessages anywhere inside their output; the envelope
// builder moves them into the matching message list and replaces them with
// null in the data tree.
type StringMessage interface {
	Severity() Severity
	MessageCode() any
	MessageText() string
}

// String is the concrete StringMessage returned by the constructors below.
type String struct {
	severity Severity
	code     any
	text     string
}

// InfoString wraps text as an info message.
func InfoString(code any, text string) String { return String{SeverityInfo, code, text} }

// ErrorString wraps text as an error message.
func ErrorString(code any, text string) String { return String{SeverityError, code, text} }

// WarningString wraps text as a warning message.
func WarningString(code any, text string) String { return String{SeverityWarning, code, text} }

// LogString wraps text as a log message.
func LogString(code any, text string) String { return String{SeverityLog, code, text} }

// ExceptionString wraps text as an exception message.
func ExceptionString(code any, text string) String { return String{SeverityException, code, text} }

func (s String) Severity() Severity { return s.severity }
func (s String) MessageCode() any { return s.code }
func (s String) MessageText() string { return s.text }
func (s String) String() string { return s.text }

// MarshalJSON renders the wrapper as its bare text, so a String that ends up
// inside an opaque struct still serializes like the string it wraps.
func (s String) MarshalJSON() ([]byte, error) {
	return jsoniter.Marshal(s.text)
}

// FromString converts a StringMessage into a Message.
func FromString(s StringMessage) Message {
	return New(s.Severity(), s.MessageCode(), s.MessageText())
}
