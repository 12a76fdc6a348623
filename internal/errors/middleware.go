package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5/middleware"

	"jitu/internal/mapping"
)

const (
	// maxCapturedBody bounds the JSON bodies kept for failure logs. Uploads
	// are multipart and never captured.
	maxCapturedBody = 64 << 10
	maxLoggedLabels = 8
	maxLabelRunes   = 32
)

// ErrorMiddleware turns panics into problem documents and writes one access
// log line per API request. Failed mapping requests also log a bounded
// summary of the submitted header layout so they can be matched against the
// confirmed-mapping store by fingerprint.
type ErrorMiddleware struct {
	handler *ErrorHandler
	logger  *slog.Logger
}

// NewErrorMiddleware creates the middleware
func NewErrorMiddleware(handler *ErrorHandler, logger *slog.Logger) *ErrorMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorMiddleware{
		handler: handler,
		logger:  logger.With(slog.String("component", "error_middleware")),
	}
}

// Handler returns the middleware handler function
func (m *ErrorMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		body := captureJSONBody(r)
		start := time.Now()

		defer func() {
			if rec := recover(); rec != nil {
				m.handler.HandlePanic(ww, r, rec)
			}
			m.logRequest(r, ww, time.Since(start), body)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (m *ErrorMiddleware) logRequest(r *http.Request, ww middleware.WrapResponseWriter, elapsed time.Duration, body []byte) {
	status := ww.Status()
	if status == 0 {
		status = http.StatusOK
	}

	attrs := []slog.Attr{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Duration("duration", elapsed),
		slog.Int("bytes", ww.BytesWritten()),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	}
	if r.URL.RawQuery != "" {
		attrs = append(attrs, slog.String("query", r.URL.RawQuery))
	}
	if status >= http.StatusBadRequest {
		if body != nil {
			attrs = append(attrs, mappingBodyAttrs(body)...)
		} else if r.ContentLength > 0 {
			attrs = append(attrs,
				slog.String("content_type", r.Header.Get("Content-Type")),
				slog.Int64("content_length", r.ContentLength))
		}
	}

	m.logger.LogAttrs(r.Context(), statusLevel(status), "http request", attrs...)
}

func statusLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// captureJSONBody reads a small JSON body and puts it back for the handler
func captureJSONBody(r *http.Request) []byte {
	if r.Body == nil || r.ContentLength <= 0 || r.ContentLength > maxCapturedBody {
		return nil
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body
}

// mappingBody covers the confirm and forget request bodies
type mappingBody struct {
	Columns []string          `json:"columns"`
	Mapping map[string]string `json:"mapping"`
}

// mappingBodyAttrs summarizes a mapping request instead of logging it raw:
// column count, header fingerprint, a truncated label list and the roles
// that were assigned
func mappingBodyAttrs(body []byte) []slog.Attr {
	var b mappingBody
	if err := json.Unmarshal(body, &b); err != nil {
		return []slog.Attr{
			slog.Int("body_bytes", len(body)),
			slog.Bool("body_malformed", true),
		}
	}

	attrs := []slog.Attr{slog.Int("body_columns", len(b.Columns))}
	if len(b.Columns) > 0 {
		attrs = append(attrs,
			slog.String("body_fingerprint", mapping.Fingerprint(b.Columns)),
			slog.String("body_labels", summarizeLabels(b.Columns)))
	}
	if len(b.Mapping) > 0 {
		roles := make([]string, 0, len(b.Mapping))
		for role := range b.Mapping {
			roles = append(roles, role)
		}
		sort.Strings(roles)
		attrs = append(attrs, slog.String("body_roles", strings.Join(roles, ",")))
	}
	return attrs
}

// summarizeLabels joins at most maxLoggedLabels labels, each cut to
// maxLabelRunes runes
func summarizeLabels(labels []string) string {
	shown := labels
	if len(shown) > maxLoggedLabels {
		shown = shown[:maxLoggedLabels]
	}
	parts := make([]string, len(shown))
	for i, l := range shown {
		if utf8.RuneCountInString(l) > maxLabelRunes {
			l = string([]rune(l)[:maxLabelRunes]) + "…"
		}
		parts[i] = l
	}
	out := strings.Join(parts, "|")
	if extra := len(labels) - len(shown); extra > 0 {
		out += fmt.Sprintf("|+%d more", extra)
	}
	return out
}
