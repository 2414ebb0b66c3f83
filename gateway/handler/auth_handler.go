package handler

import (
	"net/http"

	"github.com/RigelNana/gazotheque/pkg/auth"
	"github.com/RigelNana/gazotheque/pkg/inventory"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthHandler exposes the session. Sign-in itself happens at the identity
// provider, which hands out tokens signed with the shared secret.
type AuthHandler struct {
	issuer       *auth.Issuer
	secureCookie bool
	logger       *logrus.Logger
}

func NewAuthHandler(issuer *auth.Issuer, secureCookie bool, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{issuer: issuer, secureCookie: secureCookie, logger: logger}
}

// Me returns the signed-in user, or authenticated=false.
// GET /api/session/me
func (h *AuthHandler) Me(c *gin.Context) {
	session := auth.SessionFrom(c)
	if session == nil || !session.Authenticated() {
		c.JSON(http.StatusOK, gin.H{"success": true, "authenticated": false})
		return
	}
	user := session.CurrentUser()
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"authenticated": true,
		"data":          user,
		"is_admin":      inventory.IsAdmin(user),
	})
}

// Logout drops the session cookie. The token itself stays valid until it
// expires; clients must forget it.
// POST /api/session/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	authenticated := false
	if session := auth.SessionFrom(c); session != nil && session.Authenticated() {
		h.logger.WithField("user_id", session.CurrentUser().UserID).Info("user signed out")
		authenticated = session.SignOut().Authenticated()
	}
	h.clearCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "authenticated": authenticated, "redirect": "/auth/login"})
}

func (h *AuthHandler) setCookie(c *gin.Context, session *auth.Session) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, session.Token(), int(h.issuer.TTL().Seconds()), "/", "", h.secureCookie, true)
}

func (h *AuthHandler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", h.secureCookie, true)
}
