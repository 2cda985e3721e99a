package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type stubValidator map[string]*models.JWTClaims

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func newAuthRouter(roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tokens := stubValidator{
		"teacher-token": {UserID: "t1", Role: models.RoleTeacher},
		"parent-token":  {UserID: "p1", Role: models.RoleParent},
	}
	router := gin.New()
	router.GET("/lists", JWT(tokens), RequireRoles(roles...), func(c *gin.Context) {
		c.String(http.StatusOK, Claims(c).UserID)
	})
	return router
}

func TestJWTAndRoles(t *testing.T) {
	router := newAuthRouter(models.RoleTeacher, models.RoleAdmin)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing header", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic teacher-token", status: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer ", status: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer forged", status: http.StatusUnauthorized},
		{name: "role not allowed", header: "Bearer parent-token", status: http.StatusForbidden},
		{name: "allowed", header: "bearer teacher-token", status: http.StatusOK},
	}
	for _, tc := range cases {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/lists", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		router.ServeHTTP(recorder, req)
		if recorder.Code != tc.status {
			t.Fatalf("%s: unexpected status %d", tc.name, recorder.Code)
		}
	}
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RequireRoles(models.RoleAdmin)(c)
	if !c.IsAborted() || recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized abort, got %d", recorder.Code)
	}
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	SetCacheHit(c, true)
	meta := ExtractMeta(c)
	if meta[cacheHitKey] != true {
		t.Fatalf("expected cache hit to be recorded, got %v", meta)
	}
}
