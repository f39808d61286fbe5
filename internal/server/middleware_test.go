package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "nutricalc/internal/log"
)

func TestRequestIDMiddleware(t *testing.T) {
	t.Parallel()

	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = applog.RequestID(r.Context())
	}))

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generated", "", false},
		{"kept", "3f1c7a52-8f9e-4c38-9d8e-52a0c5d1b2a4", true},
		{"replaced when malformed", "not-a-uuid", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.incoming != "" {
			req.Header.Set(requestIDHeader, tt.incoming)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		got := rr.Header().Get(requestIDHeader)
		_, err := uuid.Parse(got)
		require.NoError(t, err, tt.name)
		assert.Equal(t, got, seen, tt.name)
		if tt.keep {
			assert.Equal(t, tt.incoming, got, tt.name)
		} else {
			assert.NotEqual(t, tt.incoming, got, tt.name)
		}
	}
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	t.Parallel()

	handler := panicRecoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rr.Body.String())
}

func TestResponseWriterRecordsFirstStatus(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	rw := newResponseWriter(rr)
	assert.Equal(t, http.StatusOK, rw.Status())

	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusInternalServerError)
	_, err := rw.Write([]byte("short and stout"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, rw.Status())
	assert.Equal(t, http.StatusTeapot, rr.Code)
}
