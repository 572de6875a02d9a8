package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/l2obin/dekbind/internal/errors"
)

type codedError struct {
	code     string
	category error
}

func (e *codedError) Error() string     { return e.code }
func (e *codedError) ErrorCode() string { return e.code }
func (e *codedError) Unwrap() error     { return e.category }

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/dek/wrap", nil)
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestHandleErrorGin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
		expectedCode   string
	}{
		{
			name:           "precondition failed",
			err:            &codedError{code: "no_dek_available", category: apperrors.ErrPreconditionFailed},
			expectedStatus: http.StatusPreconditionFailed,
			expectedError:  "precondition_failed",
			expectedCode:   "no_dek_available",
		},
		{
			name:           "forbidden",
			err:            &codedError{code: "hardware_secret_unavailable", category: apperrors.ErrForbidden},
			expectedStatus: http.StatusForbidden,
			expectedError:  "forbidden",
			expectedCode:   "hardware_secret_unavailable",
		},
		{
			name:           "forbidden wins over wrapped unavailable cause",
			err:            errors.Join(apperrors.ErrForbidden, apperrors.ErrUnavailable),
			expectedStatus: http.StatusForbidden,
			expectedError:  "forbidden",
		},
		{
			name:           "invalid input",
			err:            &codedError{code: "unwrap_auth_failure", category: apperrors.ErrInvalidInput},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "invalid_input",
			expectedCode:   "unwrap_auth_failure",
		},
		{
			name:           "unavailable",
			err:            &codedError{code: "credential_creation", category: apperrors.ErrUnavailable},
			expectedStatus: http.StatusServiceUnavailable,
			expectedError:  "unavailable",
			expectedCode:   "credential_creation",
		},
		{
			name:           "not found",
			err:            fmt.Errorf("lookup: %w", apperrors.ErrNotFound),
			expectedStatus: http.StatusNotFound,
			expectedError:  "not_found",
		},
		{
			name:           "conflict",
			err:            apperrors.ErrConflict,
			expectedStatus: http.StatusConflict,
			expectedError:  "conflict",
		},
		{
			name:           "unauthorized",
			err:            apperrors.ErrUnauthorized,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "unauthorized",
		},
		{
			name:           "internal error hides details",
			err:            &codedError{code: "storage", category: errors.New("disk full")},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal_error",
			expectedCode:   "storage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()

			HandleErrorGin(c, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)
			response := decodeError(t, w)
			assert.Equal(t, tt.expectedError, response.Error)
			assert.Equal(t, tt.expectedCode, response.Code)
			if tt.expectedStatus == http.StatusInternalServerError {
				assert.NotContains(t, response.Message, "disk full")
			}
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := newTestContext()

		HandleErrorGin(c, nil, logger)

		assert.Empty(t, w.Body.String())
	})
}

func TestHandleBadRequestGin(t *testing.T) {
	c, w := newTestContext()

	HandleBadRequestGin(c, errors.New("unexpected EOF"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeError(t, w)
	assert.Equal(t, "bad_request", response.Error)
	assert.Equal(t, "unexpected EOF", response.Message)
}

func TestHandleValidationErrorGin(t *testing.T) {
	c, w := newTestContext()

	HandleValidationErrorGin(c, errors.New("wrapped: is too short"), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	response := decodeError(t, w)
	assert.Equal(t, "validation_error", response.Error)
}
