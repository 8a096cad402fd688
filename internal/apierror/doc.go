// Package apierror defines the closed set of errors the envelope classifier
// recognizes: response-message errors aimed at developers or end users, and
// framework-level API errors (not found, permission denied, authentication,
// throttling, validation). Anything else returned by a view is treated as an
// unexpected error.
package apierror
