package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("middleware-test-secret")

func sign(t *testing.T, claims jwt.MapClaims, key []byte) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(uid, role string) jwt.MapClaims {
	return jwt.MapClaims{
		"uid":  uid,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetUint("userID"),
			"role":    c.GetString("userRole"),
		})
	})
	router.GET("/", handlers...)
	return router
}

func do(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOAuth2Auth(t *testing.T) {
	router := newRouter(OAuth2Auth(secret))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer " + sign(t, validClaims("7", models.RoleUser), secret), http.StatusOK, `"user_id":7`},
		{"missing header", "", http.StatusUnauthorized, "authorization_required"},
		{"wrong scheme", "Token abc", http.StatusUnauthorized, "invalid_request"},
		{"wrong key", "Bearer " + sign(t, validClaims("7", models.RoleUser), []byte("other")), http.StatusUnauthorized, "invalid_token"},
		{"unknown role", "Bearer " + sign(t, validClaims("7", "chef"), secret), http.StatusUnauthorized, "invalid role"},
		{"missing uid", "Bearer " + sign(t, jwt.MapClaims{"role": "user", "exp": time.Now().Add(time.Hour).Unix()}, secret), http.StatusUnauthorized, "uid"},
		{"expired", "Bearer " + sign(t, jwt.MapClaims{"uid": "7", "role": "user", "exp": time.Now().Add(-time.Hour).Unix()}, secret), http.StatusUnauthorized, "invalid_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, tt.header)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	router := newRouter(OptionalAuth(secret))

	w := do(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":0`)

	w = do(router, "Bearer "+sign(t, validClaims("3", models.RoleAdmin), secret))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)

	w = do(router, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	router := newRouter(OAuth2Auth(secret), RequireRole(models.RoleAdmin))

	w := do(router, "Bearer "+sign(t, validClaims("3", models.RoleAdmin), secret))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, "Bearer "+sign(t, validClaims("4", models.RoleUser), secret))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrForbidden)

	unauthenticated := newRouter(RequireRole(models.RoleAdmin))
	w = do(unauthenticated, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestIDAndLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	router := newRouter(RequestID(), RequestLogger(logger))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "req-123", hook.LastEntry().Data["request_id"])
	assert.Equal(t, http.StatusOK, hook.LastEntry().Data["status"])

	w = do(router, "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}
