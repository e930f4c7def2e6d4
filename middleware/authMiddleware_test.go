package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storepos/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var key = []byte("test-key")

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(key), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"cashier": CashierID(c), "token": AccessToken(c)})
	})
	return r
}

func TestAuthMiddleware_BearerHeader(t *testing.T) {
	token, err := utils.GenerateToken("7", key, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	setupRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cashier":"7","token":"`+token+`"}`, w.Body.String())
}

func TestAuthMiddleware_Cookie(t *testing.T) {
	token, err := utils.GenerateToken("8", key, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	setupRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cashier":"8"`)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired, err := utils.GenerateToken("7", key, -time.Minute)
	require.NoError(t, err)

	cases := map[string]struct {
		header string
		want   string
	}{
		"missing":    {"", "Authorization token not provided"},
		"not bearer": {"Basic abc", "Invalid Authorization header format"},
		"garbage":    {"Bearer abc", "Invalid authorization token"},
		"expired":    {"Bearer " + expired, "Invalid authorization token"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			setupRouter().ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"`+tc.want+`"}`, w.Body.String())
		})
	}
}
