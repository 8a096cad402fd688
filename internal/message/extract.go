package message

// UnknownCode is returned by ParseCode when no code can be found.
const UnknownCode = "-1"

// UnknownProblem is returned by ParseMessage when no message can be found.
const UnknownProblem = "Unknown problem. Please report to support."

// Coded is implemented by values that carry a messenger code.
type Coded interface {
	MessageCode() any
}

// Detailer is implemented by values that carry a single detail text.
type Detailer interface {
	MessageDetail() string
}

// DetailsCarrier is implemented by values that carry a list of details.
type DetailsCarrier interface {
	MessageDetails() []string
}

// MessagesCarrier is implemented by values that carry a list of messages.
type MessagesCarrier interface {
	MessageList() []string
}

// MessageCarrier is implemented by values that carry one message text.
type MessageCarrier interface {
	MessageText() string
}

// ParseCode extracts a messenger code from v. Strings and integers are used
// as they are; Coded values and maps with a "code" key are unwrapped. The
// result is never nil.
func ParseCode(v any) any {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case Coded:
		if c := x.MessageCode(); c != nil {
			return ParseCode(c)
		}
	case map[string]any:
		if c, ok := x["code"]; ok && c != nil {
			return ParseCode(c)
		}
	case map[string]string:
		if c, ok := x["code"]; ok {
			return c
		}
	}
	return UnknownCode
}

// ParseMessage extracts a human-readable message from v. The lookup order is
// detail, first of details, details, first of messages, messages, message,
// then the same keys on a map. The first match wins and the result is never
// empty of meaning: UnknownProblem is returned when nothing matches.
func ParseMessage(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := fromCarrier(v); ok {
		return s
	}
	switch x := v.(type) {
	case map[string]any:
		if s, ok := fromMap(x); ok {
			return s
		}
	case map[string]string:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[k] = val
		}
		if s, ok := fromMap(m); ok {
			return s
		}
	}
	return UnknownProblem
}

func fromCarrier(v any) (string, bool) {
	if d, ok := v.(Detailer); ok {
		return d.MessageDetail(), true
	}
	if d, ok := v.(DetailsCarrier); ok {
		if details := d.MessageDetails(); len(details) > 0 {
			return details[0], true
		}
	}
	if m, ok := v.(MessagesCarrier); ok {
		if msgs := m.MessageList(); len(msgs) > 0 {
			return msgs[0], true
		}
	}
	if m, ok := v.(MessageCarrier); ok {
		return m.MessageText(), true
	}
	return "", false
}

func fromMap(m map[string]any) (string, bool) {
	for _, key := range []string{"detail", "details", "messages", "message"} {
		val, ok := m[key]
		if !ok || val == nil {
			continue
		}
		if s, ok := firstString(val); ok {
			return s, true
		}
	}
	return "", false
}

// firstString returns val itself when it is a string, or the first element
// when it is a non-empty list.
func firstString(val any) (string, bool) {
	switch x := val.(type) {
	case string:
		return x, true
	case []string:
		if len(x) > 0 {
			return x[0], true
		}
	case []any:
		if len(x) > 0 {
			if s, ok := x[0].(string); ok {
				return s, true
			}
			if s, ok := fromCarrier(x[0]); ok {
				return s, true
			}
		}
	}
	if s, ok := fromCarrier(val); ok {
		return s, true
	}
	return "", false
}
