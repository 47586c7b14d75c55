package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/travel-agency/pkg/logger"
)

const (
	maxLoggedBody = 4 << 10
	masked        = "[FILTERED]"
)

// Any key containing one of these is masked in logged bodies and queries.
var sensitiveKeys = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"api_key",
	"cookie",
	"session",
	"credential",
}

// LoggingMiddleware writes one access line per request through the
// request-scoped logger. Small JSON bodies are included with credentials
// masked; headers are never logged.
func LoggingMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			body := captureBody(r)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.statusCode()
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", rec.size,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			}
			if q := maskQuery(r); q != "" {
				attrs = append(attrs, "query", q)
			}
			if body != "" {
				attrs = append(attrs, "body", body)
			}

			logger.Or(r.Context(), base).Log(r.Context(), levelFor(status), "http request", attrs...)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.status == 0 {
		rw.status = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func (rw *statusRecorder) statusCode() int {
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// captureBody reads a small body for logging and restores it for the handler.
func captureBody(r *http.Request) string {
	if r.Body == nil || r.ContentLength == 0 || r.ContentLength > maxLoggedBody {
		return ""
	}
	raw, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody))
	r.Body = io.NopCloser(bytes.NewReader(raw))
	return maskBody(raw)
}

func isSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, key := range sensitiveKeys {
		if strings.Contains(lower, key) {
			return true
		}
	}
	return false
}

// invitation links carry the token in the query string
func maskQuery(r *http.Request) string {
	q := r.URL.Query()
	for key := range q {
		if isSensitive(key) {
			q.Set(key, masked)
		}
	}
	return q.Encode()
}

func maskBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		if isSensitive(string(body)) {
			return masked
		}
		return string(body)
	}

	out, err := json.Marshal(maskJSON(doc))
	if err != nil {
		return masked
	}
	return string(out)
}

func maskJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				out[key] = masked
			} else {
				out[key] = maskJSON(value)
			}
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = maskJSON(item)
		}
		return out
	default:
		return v
	}
}
