package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pintapoa/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "missing", query: "", want: DefaultLimit},
		{name: "valid", query: "limit=3", want: 3},
		{name: "zero", query: "limit=0", want: DefaultLimit},
		{name: "negative", query: "limit=-2", want: DefaultLimit},
		{name: "not a number", query: "limit=abc", want: DefaultLimit},
		{name: "above max", query: "limit=500", want: MaxLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/locations/past?"+tt.query, nil)
			assert.Equal(t, tt.want, ParseLimit(r))
		})
	}
}

func TestWriteDomainError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "validation", err: &domain.ValidationError{Fields: []string{"name is required"}}, wantStatus: http.StatusBadRequest, wantCode: ErrCodeBadRequest},
		{name: "invalid status", err: fmt.Errorf("%w: %q", domain.ErrInvalidStatus, "x"), wantStatus: http.StatusBadRequest, wantCode: ErrCodeBadRequest},
		{name: "not found", err: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: ErrCodeNotFound},
		{name: "credentials", err: domain.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized, wantCode: ErrCodeUnauthorized},
		{name: "token", err: domain.ErrInvalidToken, wantStatus: http.StatusUnauthorized, wantCode: ErrCodeUnauthorized},
		{name: "unavailable", err: fmt.Errorf("op: %w: %w", domain.ErrUnavailable, errors.New("dial tcp")), wantStatus: http.StatusServiceUnavailable, wantCode: ErrCodeUnavailable},
		{name: "other", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			WriteDomainError(rr, r, logger, tt.err)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantCode, envelope.Error.Code)
			assert.Nil(t, envelope.Data)
		})
	}
}

type testRequest struct {
	Name string `json:"name"`
}

func (r testRequest) Validate() []string {
	if r.Name == "" {
		return []string{"name is required"}
	}
	return nil
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantOK bool
	}{
		{name: "valid", body: `{"name":"x"}`, wantOK: true},
		{name: "fails validation", body: `{"name":""}`},
		{name: "unknown field", body: `{"name":"x","extra":1}`},
		{name: "malformed", body: `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dest testRequest

			ok := DecodeAndValidate(rr, r, &dest)

			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, rr.Code)
			}
		})
	}
}
