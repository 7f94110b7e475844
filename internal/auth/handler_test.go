package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func tokenRouter(apiKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewJWTService("test-secret", 1), apiKey, zap.NewNop())
	r := gin.New()
	r.POST("/auth/token", h.Token)
	return r
}

func postToken(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestTokenExchange(t *testing.T) {
	r := tokenRouter("bridge-key")
	w := postToken(t, r, `{"api_key":"bridge-key","service":"canvas"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)

	claims, err := NewJWTService("test-secret", 1).Validate(body.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, "canvas", claims.Service)
}

func TestTokenRejectsBadKey(t *testing.T) {
	r := tokenRouter("bridge-key")
	w := postToken(t, r, `{"api_key":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenRejectsWhenUnconfigured(t *testing.T) {
	// An empty configured key must not mean "accept anything".
	r := tokenRouter("")
	w := postToken(t, r, `{"api_key":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postToken(t, r, `{"api_key":"anything"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenDefaultService(t *testing.T) {
	r := tokenRouter("bridge-key")
	w := postToken(t, r, `{"api_key":"bridge-key"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	claims, err := NewJWTService("test-secret", 1).Validate(body.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, "lms", claims.Service)
}
