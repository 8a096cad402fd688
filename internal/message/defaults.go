package message

// UnexpectedError is the canned text used for status 421 and for errors the
// classifier does not recognize.
const UnexpectedError = "An unexpected error has occurred based on your request type.\n" +
	"Please do not repeat this request without changing your request.\n" +
	"Be sure to read the documents on how to use this service correctly.\n" +
	"In any case, discuss the issue with software support.\n"

// Band is the default messaging for one status-code band.
type Band struct {
	// Key is the developer message key, e.g. "status_code_4xx".
	Key string
	// Severity selects the message list the default text goes to.
	Severity Severity
	// Text is the developer-facing default text.
	Text string
	// Entry is the default messenger entry; nil outside [100, 600).
	Entry *Entry
}

// ForStatus returns the default messaging for status. It is total over int.
func ForStatus(status int) Band {
	switch {
	case status >= 100 && status < 200:
		return band("status_code_1xx", SeverityWarning, EntryFail, 100, "please wait...")
	case status >= 200 && status < 300:
		if status == 201 {
			return band("status_code_2xx", SeverityInfo, EntrySuccess, 201,
				"The desired object was created correctly.")
		}
		return band("status_code_2xx", SeverityInfo, EntrySuccess, 200,
			"Your request has been successfully registered.")
	case status >= 300 && status < 400:
		return band("status_code_3xx", SeverityError, EntryFail, 300,
			"The requirements for your request are not available.")
	case status >= 400 && status < 500:
		return clientBand(status)
	case status >= 500 && status < 600:
		return band("status_code_5xx", SeverityError, EntryFail, 500,
			"The server is unable to respond to your request.")
	default:
		return Band{Key: "status_code_xxx", Severity: SeverityError, Text: "Undefined."}
	}
}

func clientBand(status int) Band {
	const key = "status_code_4xx"
	switch status {
	case 400:
		return band(key, SeverityError, EntryFail, 400, "Bad Request...")
	case 401:
		return band(key, SeverityError, EntryFail, 401, "Your authentication information is not available.")
	case 403:
		return band(key, SeverityError, EntryFail, 403, "You do not have access to this section.")
	case 404:
		return band(key, SeverityError, EntryFail, 404, "There is no information about your request.")
	case 421:
		return band(key, SeverityError, EntryFail, 421, UnexpectedError)
	default:
		// The messenger falls back to the 400 entry while the developer text
		// stays generic.
		b := band(key, SeverityError, EntryFail, 400, "Bad Request...")
		b.Text = "There was an error in how to send the request."
		return b
	}
}

func band(key string, sev Severity, typ EntryType, code int, text string) Band {
	return Band{
		Key:      key,
		Severity: sev,
		Text:     text,
		Entry:    &Entry{Type: typ, Code: code, Message: text},
	}
}
