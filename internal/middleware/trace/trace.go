package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	applog "paghetta/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"

	// RequestIDHeader is echoed on every response.
	RequestIDHeader = "X-Request-ID"
)

// Recorder counts finished requests.
type Recorder interface {
	HTTPRequest(method, route string, status int)
}

// Middleware handles request tracing and logging
type Middleware struct {
	extractIP func(*http.Request) string
	routeOf   func(*http.Request) string
	logger    *applog.Logger
	recorder  Recorder
	now       func() time.Time

	requests    atomic.Int64
	completed   atomic.Int64
	totalMicros atomic.Int64
}

// Metrics is a snapshot of the requests seen so far.
type Metrics struct {
	TotalRequests int64
	// AverageResponseTime is the mean over completed requests, in
	// microseconds.
	AverageResponseTime int64
}

// Option configures the middleware.
type Option func(*Middleware)

// WithRecorder reports each finished request to r.
func WithRecorder(r Recorder) Option {
	return func(m *Middleware) { m.recorder = r }
}

// WithRouteFunc maps a request to a bounded route label. Defaults to the
// URL path.
func WithRouteFunc(f func(*http.Request) string) Option {
	return func(m *Middleware) { m.routeOf = f }
}

// NewMiddleware creates a new trace middleware
func NewMiddleware(logger *applog.Logger, extractIP func(*http.Request) string, opts ...Option) *Middleware {
	m := &Middleware{
		extractIP: extractIP,
		routeOf:   func(r *http.Request) string { return r.URL.Path },
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Middleware returns HTTP middleware for request tracing. The request ID is
// stored in the context and echoed in the response headers.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := m.now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := r.Header.Get(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = GenerateRequestID()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		r = r.WithContext(ctx)

		sl := applog.NewStructuredLogger(m.logger.With(applog.FieldRequestID, requestID))
		sl.LogHTTPStart(ctx, r, clientIP)
		m.requests.Add(1)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := m.now().Sub(start)
		m.completed.Add(1)
		m.totalMicros.Add(duration.Microseconds())

		sl.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
		if m.recorder != nil {
			m.recorder.HTTPRequest(r.Method, m.routeOf(r), rw.statusCode)
		}
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// validRequestID accepts short client-supplied IDs made of safe characters.
func validRequestID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetMetrics returns current metrics
func (m *Middleware) GetMetrics() Metrics {
	out := Metrics{TotalRequests: m.requests.Load()}
	if n := m.completed.Load(); n > 0 {
		out.AverageResponseTime = m.totalMicros.Load() / n
	}
	return out
}
