package message

// EntryType is the type of an end-user-facing messenger entry.
type EntryType string

// Messenger entry types.
const (
	EntryFail    EntryType = "FAIL"
	EntryError   EntryType = "ERROR"
	EntryWarning EntryType = "WARNING"
	EntrySuccess EntryType = "SUCCESS"
)

// Entry is one item of the envelope's messenger list.
//
// Code is either a string or an int; Message is always populated.
type Entry struct {
	Type    EntryType `json:"type"`
	Code    any       `json:"code"`
	Message string    `json:"message"`
}

// NewEntry builds a messenger entry, running both extraction chains so that
// arbitrary codes and message carriers are reduced to plain values.
func NewEntry(typ EntryType, code any, msg any) Entry {
	return Entry{
		Type:    typ,
		Code:    ParseCode(code),
		Message: ParseMessage(msg),
	}
}

// Failure reports whether the entry marks the request as failed.
func (e Entry) Failure() bool {
	return e.Type == EntryFail || e.Type == EntryError
}

// Map renders the entry as a plain map for the envelope tree.
func (e Entry) Map() map[string]any {
	return map[string]any{
		"type":    string(e.Type),
		"code":    e.Code,
		"message": e.Message,
	}
}
