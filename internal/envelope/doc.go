// Package envelope turns view output and view errors into the uniform JSON
// response body returned by every endpoint.
//
// A request owns one State. Views write status, headers, cookies, messages
// and monitor values to it; the Classifier maps a failed view's error onto
// it; the Builder finally renders the State and the view output as a v1 or
// v2 envelope, chosen by the Response-Schema-Version request header.
package envelope
