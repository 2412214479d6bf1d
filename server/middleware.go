package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql"
)

// responseWriter captures the HTTP status code for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs every HTTP request with its status and timing.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Printf("[HTTP] %s %s %d %s from %s", r.Method, r.URL.Path, rw.statusCode, duration, r.RemoteAddr)
	})
}

// ResolverTimerExtension logs resolver execution times.
type ResolverTimerExtension struct{}

// ExtensionName implements graphql.HandlerExtension
func (e *ResolverTimerExtension) ExtensionName() string {
	return "ResolverTimer"
}

// Validate implements graphql.HandlerExtension
func (e *ResolverTimerExtension) Validate(schema graphql.ExecutableSchema) error {
	return nil
}

// InterceptField logs each resolver duration and errors
func (e *ResolverTimerExtension) InterceptField(ctx context.Context, next graphql.Resolver) (res interface{}, err error) {
	start := time.Now()
	res, err = next(ctx)
	duration := time.Since(start).Seconds() * 1000
	fc := graphql.GetFieldContext(ctx)
	log.Printf("[GRAPHQL] %s.%s took %.3fms, error: %v", fc.Object, fc.Field.Name, duration, err)
	return res, err
}
