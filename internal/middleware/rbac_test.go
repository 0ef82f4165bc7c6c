package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/urugendo/student-performance-api/internal/models"
)

func rbacContext(t *testing.T, claims *models.JWTClaims, paramID string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/resource", nil)
	c.Request = req
	if paramID != "" {
		c.Params = gin.Params{{Key: "id", Value: paramID}}
	}
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}
	return c, w
}

func TestRBACAllowsRole(t *testing.T) {
	c, w := rbacContext(t, &models.JWTClaims{UserID: "u-1", Role: models.RoleAdmin}, "")
	RBAC("admin")(c)
	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRBACRejectsRole(t *testing.T) {
	c, w := rbacContext(t, &models.JWTClaims{UserID: "u-1", Role: models.RoleParent}, "")
	RBAC("admin", "teacher")(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACAllowsSelf(t *testing.T) {
	c, w := rbacContext(t, &models.JWTClaims{UserID: "u-1", Role: models.RoleParent}, "u-1")
	RBAC("admin", "SELF")(c)
	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRBACRejectsOtherUser(t *testing.T) {
	c, w := rbacContext(t, &models.JWTClaims{UserID: "u-1", Role: models.RoleParent}, "u-2")
	RBAC("SELF")(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACMissingClaims(t *testing.T) {
	c, w := rbacContext(t, nil, "")
	RBAC("admin")(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles(t *testing.T) {
	c, w := rbacContext(t, &models.JWTClaims{UserID: "u-1", Role: models.RoleTeacher}, "")
	RequireRoles(models.RoleAdmin, models.RoleTeacher)(c)
	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, w.Code)
}
