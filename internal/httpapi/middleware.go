package httpapi

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Middleware wraps a handler, mirroring pkg/mid's chain idiom from the
// HTTP reference repo but built against plain log rather than log/slog.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares in order so the first one listed runs first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Logger logs method, path, status, duration, and a per-request trace id.
func Logger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)
			logger.Printf("%s %s %s -> %d (%s)", id, r.Method, r.URL.Path, sw.status, time.Since(start))
		})
	}
}

// Recover converts a panic in the handler chain into a 500 response instead
// of taking down the whole server.
func Recover(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Printf("panic recovered: %v", rec)
					writeError(w, http.StatusInternalServerError, "internal error", "")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CORS allows origin (use "*" for any) on every response.
func CORS(origin string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
