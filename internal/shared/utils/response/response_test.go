package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondJSON_StampsEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/ping", func(c *gin.Context) {
		RespondJSON(c, "success", http.StatusOK, "pong", gin.H{"value": 1}, nil)
	})

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "cinebook", body["service"])
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(http.StatusOK), body["status_code"])
	assert.NotEmpty(t, body["timestamp"])
	assert.NotContains(t, body, "errors", "empty error details are omitted")
}
