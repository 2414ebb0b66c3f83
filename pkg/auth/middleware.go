package auth

import (
	"net/http"
	"strings"

	"github.com/RigelNana/gazotheque/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	// CookieName is the cookie the browser front end keeps the token in.
	CookieName = "gaz_session"

	sessionKey = "session"
)

// RequireAuth ensures the request carries a valid token via header, cookie or
// query parameter and stores the Session in the gin context.
func RequireAuth(issuer *Issuer, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := resolve(c, issuer, logger)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		store(c, session)
		c.Next()
	}
}

// OptionalAuth stores a Session when a valid token is present and an
// anonymous one otherwise.
func OptionalAuth(issuer *Issuer, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := resolve(c, issuer, logger)
		if !ok {
			session = NewSession(models.User{}, "", issuer)
		}
		store(c, session)
		c.Next()
	}
}

// RequireRole restricts a route to the given roles. Administrators (role
// admin or staff) always pass. It must run after RequireAuth.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFrom(c)
		if session == nil || !session.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "role context missing"})
			return
		}
		user := session.CurrentUser()
		if user.Role == models.RoleAdmin || user.IsStaff {
			c.Next()
			return
		}
		for _, role := range allowedRoles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: you lack the required permissions"})
	}
}

// SessionFrom returns the Session stored by the middleware, or nil.
func SessionFrom(c *gin.Context) *Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*Session)
	return session
}

func store(c *gin.Context, session *Session) {
	c.Set(sessionKey, session)
	if session.Authenticated() {
		user := session.CurrentUser()
		c.Set("user_id", user.UserID)
		c.Set("user_role", user.Role)
	}
}

func resolve(c *gin.Context, issuer *Issuer, logger *logrus.Logger) (*Session, bool) {
	tokenString := extractToken(c)
	if tokenString == "" {
		return nil, false
	}
	claims, err := issuer.Parse(tokenString)
	if err != nil {
		logger.WithError(err).Debug("rejected session token")
		return nil, false
	}
	user, err := claims.User()
	if err != nil {
		logger.WithError(err).Debug("rejected session token")
		return nil, false
	}
	return NewSession(*user, tokenString, issuer), true
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if after, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
	}
	if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
		return cookie
	}
	return c.Query("token")
}
