package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "jitu/internal/errors"
	"jitu/internal/shared/testutil"
	"jitu/pkg/contracts/domain"
)

type confirmBody struct {
	Columns     []string               `json:"columns" validate:"required,min=1,dive,required"`
	Mapping     map[domain.Role]string `json:"mapping" validate:"required,dive,keys,role,endkeys,required"`
	Granularity string                 `json:"granularity" validate:"granularity"`
}

func TestValidateStruct(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	vm := NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false), 0)

	tests := []struct {
		name      string
		body      confirmBody
		wantField string
	}{
		{
			name: "valid",
			body: confirmBody{
				Columns: []string{"Tanggal", "Produk", "Harga"},
				Mapping: map[domain.Role]string{domain.RoleDate: "Tanggal"},
			},
		},
		{
			name:      "missing columns",
			body:      confirmBody{Mapping: map[domain.Role]string{domain.RoleDate: "Tanggal"}},
			wantField: "columns",
		},
		{
			name: "unknown role",
			body: confirmBody{
				Columns: []string{"a"},
				Mapping: map[domain.Role]string{"discount": "a"},
			},
			wantField: "mapping[discount]",
		},
		{
			name: "bad granularity",
			body: confirmBody{
				Columns:     []string{"a"},
				Mapping:     map[domain.Role]string{domain.RoleDate: "a"},
				Granularity: "hourly",
			},
			wantField: "granularity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := vm.ValidateStruct(tt.body)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			details := apiErr.Details.(apierrors.ValidationErrors)
			require.NotEmpty(t, details.Errors)
			assert.Equal(t, tt.wantField, details.Errors[0].Field)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	vm := NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false), 64)

	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
	}{
		{"valid json", "application/json", `{"columns":["a"]}`, http.StatusOK},
		{"invalid json", "application/json", `{"columns":`, http.StatusBadRequest},
		{"too large", "application/json", `{"x":"` + strings.Repeat("a", 100) + `"}`, http.StatusRequestEntityTooLarge},
		{"multipart passes", "multipart/form-data; boundary=x", "not json at all", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body string
			handler := vm.ValidateRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var sb strings.Builder
				_, _ = io.Copy(&sb, r.Body)
				body = sb.String()
			}))

			r := httptest.NewRequest(http.MethodPost, "/api/v1/mapping/confirm", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.body, body, "body restored for the handler")
			}
		})
	}
}

func TestContentTypeValidator(t *testing.T) {
	handler := ContentTypeValidator("application/json", "multipart/form-data")(okHandler())

	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{"get skipped", http.MethodGet, "", http.StatusOK},
		{"missing", http.MethodPost, "", http.StatusBadRequest},
		{"json", http.MethodPost, "application/json; charset=utf-8", http.StatusOK},
		{"xml", http.MethodPost, "application/xml", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, "/", nil)
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestQueryParamValidator(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	qv := NewQueryParamValidator(logger, apierrors.NewErrorHandler(logger, false))

	t.Run("int", func(t *testing.T) {
		w := httptest.NewRecorder()
		n, ok := qv.ValidateInt(w, httptest.NewRequest(http.MethodGet, "/?top_n=7", nil), "top_n", 1, 100, 10)
		assert.True(t, ok)
		assert.Equal(t, 7, n)

		n, ok = qv.ValidateInt(w, httptest.NewRequest(http.MethodGet, "/", nil), "top_n", 1, 100, 10)
		assert.True(t, ok)
		assert.Equal(t, 10, n)

		w = httptest.NewRecorder()
		_, ok = qv.ValidateInt(w, httptest.NewRequest(http.MethodGet, "/?top_n=abc", nil), "top_n", 1, 100, 10)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("float", func(t *testing.T) {
		w := httptest.NewRecorder()
		f, ok := qv.ValidateFloat(w, httptest.NewRequest(http.MethodGet, "/?pareto_target=1", nil), "pareto_target", 0, 1, 0.8)
		assert.True(t, ok)
		assert.Equal(t, 1.0, f)

		w = httptest.NewRecorder()
		_, ok = qv.ValidateFloat(w, httptest.NewRequest(http.MethodGet, "/?pareto_target=0", nil), "pareto_target", 0, 1, 0.8)
		assert.False(t, ok)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, apierrors.TypeValidation, body["type"])
	})

	t.Run("enum", func(t *testing.T) {
		w := httptest.NewRecorder()
		s, ok := qv.ValidateEnum(w, httptest.NewRequest(http.MethodGet, "/?format=CSV", nil), "format", []string{"json", "csv"}, "json")
		assert.True(t, ok)
		assert.Equal(t, "csv", s)

		_, ok = qv.ValidateEnum(w, httptest.NewRequest(http.MethodGet, "/?format=pdf", nil), "format", []string{"json", "csv"}, "json")
		assert.False(t, ok)
	})
}
