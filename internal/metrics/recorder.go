package metrics

import "time"

// Recorder defines observability hooks for envelope building and error
// classification. Implementations must be safe for concurrent use.
type Recorder interface {
	// IncEnvelope counts one written envelope.
	IncEnvelope(schema string, status int, success, many bool)
	// IncClassifiedError counts one error handed to the classifier.
	IncClassifiedError(category string)
	// ObserveViewDuration records how long a view took, envelope included.
	ObserveViewDuration(schema string, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) IncEnvelope(string, int, bool, bool) {}
func (NoopRecorder) IncClassifiedError(string) {}
func (NoopRecorder) ObserveViewDuration(string, time.Duration) {}

// StatusClass buckets an HTTP status as "1xx" through "5xx", or "other".
func StatusClass(status int) string {
	switch {
	case status >= 100 && status < 200:
		return "1xx"
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	default:
		return "other"
	}
}
