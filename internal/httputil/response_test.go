package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/ticketsentry/internal/errors"
)

func TestHandleErrorGin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedCode    string
		expectedMessage string
	}{
		{
			name:            "invalid input exposes message",
			err:             fmt.Errorf("bad code: %w", apperrors.ErrInvalidInput),
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedCode:    "invalid_input",
			expectedMessage: "bad code: invalid input",
		},
		{
			name:            "not found",
			err:             fmt.Errorf("printer AABB: %w", apperrors.ErrNotFound),
			expectedStatus:  http.StatusNotFound,
			expectedCode:    "not_found",
			expectedMessage: "printer AABB: not found",
		},
		{
			name:            "failed precondition maps to conflict status",
			err:             fmt.Errorf("issuer not paired: %w", apperrors.ErrFailedPrecondition),
			expectedStatus:  http.StatusConflict,
			expectedCode:    "failed_precondition",
			expectedMessage: "issuer not paired: failed precondition",
		},
		{
			name:            "conflict hides details",
			err:             fmt.Errorf("row 7: %w", apperrors.ErrConflict),
			expectedStatus:  http.StatusConflict,
			expectedCode:    "conflict",
			expectedMessage: "A conflict occurred with existing data",
		},
		{
			name:            "internal error hides details",
			err:             errors.New("connection refused"),
			expectedStatus:  http.StatusInternalServerError,
			expectedCode:    "internal_error",
			expectedMessage: "An internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleErrorGin(c, tt.err, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedCode, response.Error)
			assert.Equal(t, tt.expectedMessage, response.Message)
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		HandleErrorGin(c, nil, nil)

		assert.Empty(t, w.Body.String())
	})
}

func TestHandleBadRequestGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleBadRequestGin(c, errors.New("unexpected EOF"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"bad_request","message":"unexpected EOF"}`, w.Body.String())
}

func TestHandleValidationErrorGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleValidationErrorGin(c, errors.New("code: cannot be blank."), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"validation_error","message":"code: cannot be blank."}`, w.Body.String())
}
