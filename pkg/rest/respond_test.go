package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbort(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   Error
	}{
		{
			name:           "validation keeps detail",
			err:            Validation("invalid timezone"),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   Error{Message: "listing failed", Err: []string{"validation error: invalid timezone"}},
		},
		{
			name:           "not found",
			err:            NotFound("class abc"),
			expectedStatus: http.StatusNotFound,
			expectedBody:   Error{Message: "listing failed", Err: []string{"not found: class abc"}},
		},
		{
			name:           "internal detail is hidden",
			err:            errors.New("dial tcp 10.0.0.4:5432: connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   Error{Message: "internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/classes", nil)

			Abort(c, "listing failed", tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, c.IsAborted())

			var body Error
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedBody, body)
		})
	}
}
