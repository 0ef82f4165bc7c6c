package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/urugendo/student-performance-api/internal/service"
)

func jwtContext(t *testing.T, authorization string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/resource", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	c.Request = req
	return c, w
}

func testAuthService() *service.AuthService {
	return service.NewAuthService(nil, nil, nil, service.AuthConfig{Secret: "test-secret", Expiration: time.Hour})
}

func TestJWTMissingHeader(t *testing.T) {
	c, w := jwtContext(t, "")
	JWT(testAuthService())(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMalformedHeader(t *testing.T) {
	c, w := jwtContext(t, "Token abc")
	JWT(testAuthService())(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTInvalidToken(t *testing.T) {
	c, w := jwtContext(t, "Bearer not.a.token")
	JWT(testAuthService())(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
