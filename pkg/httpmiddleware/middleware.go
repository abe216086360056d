// Package httpmiddleware provides composable net/http middleware: request
// identity, logging, CORS, rate limiting, panic recovery, and tracing.
package httpmiddleware

import "net/http"

// Middleware wraps an http.Handler with additional behaviour.
type Middleware func(http.Handler) http.Handler

// Wrap applies middlewares to handler in order: the first middleware becomes
// the outermost layer.
func Wrap(handler http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
