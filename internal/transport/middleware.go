package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/admin-console/internal/observability"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-ID"

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestIDFromContext returns the id assigned by RequestID, if any.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestID stamps every request with an X-Request-ID header unless the caller
// already set one.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			id := req.Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			out := req.Clone(context.WithValue(req.Context(), requestIDKey, id))
			out.Header.Set(HeaderRequestID, id)
			return next.RoundTrip(out)
		})
	}
}

// Logging logs each exchange and records it in metrics.
func Logging(logger *zap.Logger, metrics *observability.Metrics) Middleware {
	logger = observability.OrNop(logger)
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)
			duration := time.Since(start)

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Duration("duration", duration),
				zap.String("request_id", req.Header.Get(HeaderRequestID)),
			}
			if err != nil {
				metrics.RecordError(req.URL.Path, req.Method, "transport")
				logger.Warn("backend request failed", append(fields, zap.Error(err))...)
				return resp, err
			}

			metrics.RecordRequest(req.URL.Path, req.Method, resp.StatusCode, duration)
			fields = append(fields, zap.Int("status", resp.StatusCode))
			if resp.StatusCode >= http.StatusBadRequest {
				metrics.RecordError(req.URL.Path, req.Method, http.StatusText(resp.StatusCode))
				logger.Info("backend request rejected", fields...)
			} else {
				logger.Debug("backend request", fields...)
			}
			return resp, err
		})
	}
}

// RateLimit delays requests beyond rps (with burst). A zero or negative rps
// disables limiting.
func RateLimit(rps float64, burst int) Middleware {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if err := limiter.Wait(req.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(req)
		})
	}
}
