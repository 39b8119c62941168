package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/pinshelf/pinshelf-server/internal/errors"
	"github.com/pinshelf/pinshelf-server/internal/store"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	JSON(w, http.StatusOK, map[string]string{"message": "test"}, logger)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	body := decode(t, w)
	assert.Equal(t, float64(Version), body["v"])
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"message": "test"}, body["data"])
	assert.NotContains(t, body, "error")
}

func TestJSON_NilLogger(t *testing.T) {
	w := httptest.NewRecorder()
	Success(w, []int{1, 2}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatusCodeBoundary(t *testing.T) {
	tests := []struct {
		status  int
		success bool
	}{
		{http.StatusOK, true},
		{http.StatusCreated, true},
		{399, true},
		{http.StatusBadRequest, false},
		{http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		JSON(w, tt.status, nil, nil)
		assert.Equal(t, tt.success, decode(t, w)["success"], "status %d", tt.status)
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		code   domainerrors.Code
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "bad", nil) }, http.StatusBadRequest, domainerrors.CodeValidation},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "who", nil) }, http.StatusUnauthorized, domainerrors.CodeUnauthorized},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "gone", nil) }, http.StatusNotFound, domainerrors.CodeNotFound},
		{"too many requests", func(w http.ResponseWriter) { TooManyRequests(w, "slow down", nil) }, http.StatusTooManyRequests, domainerrors.CodeRateLimited},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "boom", nil) }, http.StatusInternalServerError, domainerrors.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, string(tt.code), body["code"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    domainerrors.Code
		message string
	}{
		{
			name:    "domain error",
			err:     domainerrors.Validation("width out of range"),
			status:  http.StatusBadRequest,
			code:    domainerrors.CodeValidation,
			message: "width out of range",
		},
		{
			name:    "wrapped store error",
			err:     errors.Join(errors.New("get recipe"), store.ErrNotFound),
			status:  http.StatusNotFound,
			code:    domainerrors.CodeNotFound,
			message: "resource not found",
		},
		{
			name:    "unknown error hides message",
			err:     errors.New("disk on fire"),
			status:  http.StatusInternalServerError,
			code:    domainerrors.CodeInternal,
			message: "internal server error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err, slog.New(slog.DiscardHandler))

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, string(tt.code), body["code"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestHandleError_Details(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, domainerrors.ValidationWithDetails("invalid", map[string]string{"title": "required"}), nil)

	body := decode(t, w)
	assert.Equal(t, map[string]any{"title": "required"}, body["details"])
}
