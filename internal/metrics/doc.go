// Package metrics records response-envelope metrics. The Recorder interface
// keeps the dispatcher independent of the backend; PrometheusRecorder is the
// production implementation and NoopRecorder the default.
package metrics
