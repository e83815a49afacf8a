package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxLoggedBody caps request and response bodies in debug logs
const maxLoggedBody = 4 << 10

// statusRecorder captures the status code and, at debug level, the response body
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
	body    *bytes.Buffer
}

func (rw *statusRecorder) WriteHeader(statusCode int) {
	if rw.written {
		return
	}
	rw.status = statusCode
	rw.written = true
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	if rw.body != nil && rw.body.Len() < maxLoggedBody {
		rw.body.Write(b[:min(len(b), maxLoggedBody-rw.body.Len())])
	}
	return rw.ResponseWriter.Write(b)
}

// Logging logs every request. Completion is logged at INFO, 4xx at WARN and
// 5xx at ERROR; with DEBUG enabled request and response bodies are included.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		debug := slog.Default().Enabled(r.Context(), slog.LevelDebug)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		attrs := []any{
			"remote_ip", ClientIP(r),
			"user_agent", r.UserAgent(),
			"method", r.Method,
			"path", r.URL.Path,
		}

		if debug {
			rec.body = &bytes.Buffer{}
			debugAttrs := append([]any{}, attrs...)
			if len(r.URL.RawQuery) > 0 {
				debugAttrs = append(debugAttrs, "query", r.URL.Query())
			}
			if r.Body != nil {
				requestBody, _ := io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewReader(requestBody))
				if len(requestBody) > 0 {
					debugAttrs = append(debugAttrs, "request_body", string(requestBody[:min(len(requestBody), maxLoggedBody)]))
				}
			}
			slog.Debug("Incoming request", debugAttrs...)
		}

		next.ServeHTTP(rec, r)

		level, message := slog.LevelInfo, "Request completed"
		switch {
		case rec.status >= 500:
			level, message = slog.LevelError, "Request failed with error"
		case rec.status >= 400:
			level, message = slog.LevelWarn, "Request failed"
		}

		attrs = append(attrs,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		if debug && rec.body.Len() > 0 {
			attrs = append(attrs, "response_body", rec.body.String())
		}

		slog.Log(r.Context(), level, message, attrs...)
	})
}
