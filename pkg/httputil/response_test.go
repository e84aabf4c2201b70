package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medcore/clinic-api/pkg/errors"
)

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondWithError(c, err)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestRespondWithError_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{errors.Validation("cancellation requires a reason"), http.StatusBadRequest},
		{errors.Unauthorized(nil), http.StatusUnauthorized},
		{errors.IncompleteProfile("patient"), http.StatusPreconditionFailed},
		{errors.NotFound("appointment", nil), http.StatusNotFound},
		{errors.AccessDenied("outside scope"), http.StatusNotFound},
		{errors.InvalidTransition("cancelled", "confirm"), http.StatusConflict},
		{errors.Conflict("slot taken"), http.StatusConflict},
		{errors.StaleState("appointment"), http.StatusConflict},
		{anError(), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w, body := respond(t, tc.err)
		assert.Equal(t, tc.status, w.Code, "error %v", tc.err)
		assert.False(t, body.Success)
		require.NotNil(t, body.Error)
	}
}

// Not-found and access-denied render identically, so a caller cannot tell
// a record outside their scope from one that does not exist.
func TestRespondWithError_NoExistenceLeak(t *testing.T) {
	wMissing, missing := respond(t, errors.NotFound("appointment", nil))
	wDenied, denied := respond(t, errors.AccessDenied("belongs to another patient"))

	assert.Equal(t, wMissing.Code, wDenied.Code)
	assert.Equal(t, missing.Error.Message, denied.Error.Message)
	assert.NotContains(t, denied.Error.Message, "another patient")
}

func TestRespondWithSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondWithSuccess(c, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, w.Code)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
}

func anError() error {
	return json.Unmarshal([]byte("{"), &struct{}{})
}
