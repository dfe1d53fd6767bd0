// Package transport composes the outbound HTTP pipeline of the console.
package transport

import (
	"net/http"
	"time"
)

// Middleware wraps a RoundTripper with extra behavior.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Chain wraps base so that the first middleware is the outermost: it sees the
// request first and the response last.
func Chain(base http.RoundTripper, middlewares ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	rt := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			rt = middlewares[i](rt)
		}
	}
	return rt
}

// NewClient builds an http.Client whose transport is the composed chain.
func NewClient(timeout time.Duration, base http.RoundTripper, middlewares ...Middleware) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: Chain(base, middlewares...),
	}
}
