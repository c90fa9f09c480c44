// Package session gives every browser a stable, opaque session id.
package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionIDContextKey = "session_id"

// Manager issues and reads the session cookie.
type Manager struct {
	cookieName string
	maxAge     time.Duration
}

// NewManager constructs a session manager. A non-positive maxAge defaults to 31 days.
func NewManager(cookieName string, maxAge time.Duration) *Manager {
	if cookieName == "" {
		cookieName = "edumate_session"
	}
	if maxAge <= 0 {
		maxAge = 31 * 24 * time.Hour
	}
	return &Manager{cookieName: cookieName, maxAge: maxAge}
}

// Middleware resolves the session id from the cookie, issuing a new one when the
// cookie is missing or malformed, and stores it in the gin context.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := m.extractID(c)
		if !ok {
			id = uuid.NewString()
		}
		// Refresh on every request so active sessions do not expire.
		m.setCookie(c, id)
		c.Set(sessionIDContextKey, id)
		c.Next()
	}
}

// CookieName returns the cookie storing session ids.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// IDFromContext retrieves the session id captured by the middleware.
func IDFromContext(c *gin.Context) (string, bool) {
	val, ok := c.Get(sessionIDContextKey)
	if !ok {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}

func (m *Manager) extractID(c *gin.Context) (string, bool) {
	raw, err := c.Cookie(m.cookieName)
	if err != nil || raw == "" {
		return "", false
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func (m *Manager) setCookie(c *gin.Context, id string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cookieName,
		Value:    id,
		MaxAge:   int(m.maxAge.Seconds()),
		Path:     "/",
		Secure:   gin.Mode() == gin.ReleaseMode,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
