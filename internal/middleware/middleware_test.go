package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nep-timetable-api/internal/models"
	"github.com/noah-isme/nep-timetable-api/internal/service"
)

const testSecret = "secret"

func signedToken(t *testing.T, role models.UserRole, schoolID string) string {
	t.Helper()
	claims := models.JWTClaims{
		UserID:   "user-1",
		Role:     role,
		SchoolID: schoolID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService(testSecret)
	router := gin.New()
	router.POST("/timetable/generate", JWT(tokens), RequireRoles(models.RoleAdmin, models.RoleSuperAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/teachers", OptionalJWT(tokens), SchoolScope(func(c *gin.Context) string { return c.Query("school_id") }), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func serve(router *gin.Engine, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAndRoles(t *testing.T) {
	router := protectedRouter()

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodPost, "/timetable/generate", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodPost, "/timetable/generate", "garbage").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPost, "/timetable/generate", signedToken(t, models.RoleTeacher, "")).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/timetable/generate", signedToken(t, models.RoleAdmin, "")).Code)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	router := protectedRouter()
	req := httptest.NewRequest(http.MethodPost, "/timetable/generate", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid authorization header")
}

func TestSchoolScope(t *testing.T) {
	router := protectedRouter()

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/teachers?school_id=school-2", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/teachers?school_id=school-1", signedToken(t, models.RoleTeacher, "school-1")).Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/teachers?school_id=school-2", signedToken(t, models.RoleTeacher, "school-1")).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/teachers?school_id=school-2", signedToken(t, models.RoleSuperAdmin, "school-1")).Code)
}

func TestMetricsMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics))
	router.GET("/timetable/:class_id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/timetable/class-1", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	count, err := testutil.GatherAndCount(metrics.Registry(), "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetricsMiddlewareSkipsProbesAndFoldsUnmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, target := range []string{"/health", "/nope/1", "/nope/2"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	count, err := testutil.GatherAndCount(metrics.Registry(), "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
