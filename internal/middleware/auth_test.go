package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func init() { gin.SetMode(gin.TestMode) }

func signToken(t *testing.T, secret, role string, dur time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"uid": "6f1c1a6e-6f3e-4a53-9a39-3a4e3f0f8b11", "username": "recepcion", "role": role,
		"exp": time.Now().Add(dur).Unix(), "iat": time.Now().Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newProtectedEngine(roles ...string) *gin.Engine {
	r := gin.New()
	r.GET("/protegido", JWTAuth(testSecret), RequireRole(roles...), func(c *gin.Context) {
		claims := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"username": claims.Username, "role": claims.Role})
	})
	return r
}

func doGet(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := newProtectedEngine("Admin", "Employee")

	cases := []struct {
		name   string
		token  string
		status int
		body   string
	}{
		{"missing token", "", http.StatusUnauthorized, "Token no proporcionado"},
		{"garbage token", "abc.def.ghi", http.StatusUnauthorized, "Token inválido o expirado"},
		{"wrong secret", signToken(t, "otro-secreto", "Admin", time.Hour), http.StatusUnauthorized, "Token inválido o expirado"},
		{"expired", signToken(t, testSecret, "Admin", -time.Minute), http.StatusUnauthorized, "Token inválido o expirado"},
		{"valid", signToken(t, testSecret, "Employee", time.Hour), http.StatusOK, `"role":"Employee"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doGet(r, tc.token)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.body)
		})
	}
}

func TestJWTAuth_RejectsNonHMAC(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": "x", "role": "Admin"})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	w := doGet(newProtectedEngine("Admin"), s)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := newProtectedEngine("Admin")

	w := doGet(r, signToken(t, testSecret, "Employee", time.Hour))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "No tiene permisos")

	w = doGet(r, signToken(t, testSecret, "Admin", time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_WithoutJWTAuth(t *testing.T) {
	r := gin.New()
	r.GET("/protegido", RequireRole("Admin"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doGet(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
