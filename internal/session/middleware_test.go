package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestRouter(m *Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/whoami", func(c *gin.Context) {
		id, ok := IDFromContext(c)
		if !ok {
			c.String(http.StatusInternalServerError, "missing")
			return
		}
		c.String(http.StatusOK, id)
	})
	return router
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestMiddlewareIssuesNewSession(t *testing.T) {
	m := NewManager("", time.Hour)
	router := newTestRouter(m)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	_, err := uuid.Parse(rec.Body.String())
	require.NoError(t, err)

	ck := sessionCookie(t, rec, m.CookieName())
	require.Equal(t, rec.Body.String(), ck.Value)
	require.True(t, ck.HttpOnly)
	require.Equal(t, 3600, ck.MaxAge)
}

func TestMiddlewareReusesExistingSession(t *testing.T) {
	m := NewManager("sid", time.Hour)
	router := newTestRouter(m)
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: id})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, id, rec.Body.String())
	require.Equal(t, id, sessionCookie(t, rec, "sid").Value)
}

func TestMiddlewareReplacesMalformedSession(t *testing.T) {
	m := NewManager("sid", time.Hour)
	router := newTestRouter(m)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "../../etc/passwd"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.NotEqual(t, "../../etc/passwd", rec.Body.String())
	_, err := uuid.Parse(rec.Body.String())
	require.NoError(t, err)
}

func TestIDFromContextWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := IDFromContext(c)
	require.False(t, ok)
}
