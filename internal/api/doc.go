// Package api turns view functions into HTTP handlers that answer with
// response envelopes. A Dispatcher runs the pre-request hooks, the optional
// authentication and owner check, and the view itself; it classifies any
// returned error, builds the envelope for the requested schema version, and
// writes status, headers, cookies and body.
//
// Views receive a Context exposing the request and the response state:
// status, headers, cookies, developer messages, messenger entries, monitor
// values and pagination helpers.
package api
