package errors

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jitu/internal/mapping"
	"jitu/internal/shared/testutil"
)

const confirmBody = `{"columns":["Tanggal","Produk","Harga"],"mapping":{"price":"Harga","date":"Tanggal","product":"Produk"}}`

func TestErrorMiddlewareLogsByStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel slog.Level
		wantBody  bool
	}{
		{"success", http.StatusNoContent, slog.LevelInfo, false},
		{"client error", http.StatusUnprocessableEntity, slog.LevelWarn, true},
		{"server error", http.StatusInternalServerError, slog.LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			mw := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

			var seen string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				seen = string(b)
				w.WriteHeader(tt.status)
			})
			r := httptest.NewRequest(http.MethodPost, "/api/v1/mapping/confirm?x=1", strings.NewReader(confirmBody))
			r.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			mw.Handler(next).ServeHTTP(w, r)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, confirmBody, seen, "handler must still see the body")
			testutil.AssertLogContains(t, logs, tt.wantLevel, "http request")
			testutil.AssertLogAttr(t, logs, "query", "x=1")

			fingerprint := mapping.Fingerprint([]string{"Tanggal", "Produk", "Harga"})
			assert.Equal(t, tt.wantBody, logs.ContainsAttr("body_fingerprint", fingerprint))
			if tt.wantBody {
				testutil.AssertLogAttr(t, logs, "body_columns", int64(3))
				testutil.AssertLogAttr(t, logs, "body_roles", "date,price,product")
				testutil.AssertLogAttr(t, logs, "body_labels", "Tanggal|Produk|Harga")
			}
		})
	}
}

func TestErrorMiddlewareRecoversPanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	mw := NewErrorMiddleware(NewErrorHandler(logger, false), logger)
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), TypeInternal)
	testutil.AssertLogContains(t, logs, slog.LevelError, "panic recovered")
	testutil.AssertLogContains(t, logs, slog.LevelError, "http request")
	testutil.AssertLogAttr(t, logs, "status", int64(http.StatusInternalServerError))
}

func TestErrorMiddlewareUploadFailure(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	mw := NewErrorMiddleware(NewErrorHandler(logger, false), logger)
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader("--x\r\n"))
	r.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	handler.ServeHTTP(httptest.NewRecorder(), r)

	testutil.AssertLogAttr(t, logs, "content_length", int64(5))
	for _, rec := range logs.GetRecords() {
		assert.NotContains(t, rec.Attrs, "body_columns")
	}
}

func TestMappingBodyAttrs(t *testing.T) {
	attrs := func(body string) map[string]any {
		out := map[string]any{}
		for _, a := range mappingBodyAttrs([]byte(body)) {
			out[a.Key] = a.Value.Any()
		}
		return out
	}

	forget := attrs(`{"columns":["Tanggal","Produk"]}`)
	assert.Equal(t, int64(2), forget["body_columns"])
	assert.Equal(t, mapping.Fingerprint([]string{"Produk", "Tanggal"}), forget["body_fingerprint"])
	assert.NotContains(t, forget, "body_roles")

	malformed := attrs(`{"columns":`)
	assert.Equal(t, true, malformed["body_malformed"])
	assert.Equal(t, int64(11), malformed["body_bytes"])

	empty := attrs(`{}`)
	assert.Equal(t, int64(0), empty["body_columns"])
	assert.NotContains(t, empty, "body_fingerprint")
}

func TestSummarizeLabels(t *testing.T) {
	labels := make([]string, 10)
	for i := range labels {
		labels[i] = string(rune('a' + i))
	}
	assert.Equal(t, "a|b|c|d|e|f|g|h|+2 more", summarizeLabels(labels))

	long := strings.Repeat("é", maxLabelRunes+5)
	got := summarizeLabels([]string{long})
	require.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, maxLabelRunes+1, len([]rune(got)))
}
