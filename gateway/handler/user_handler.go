package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/RigelNana/gazotheque/pkg/auth"
	"github.com/RigelNana/gazotheque/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxPictureSize = 5 << 20

var pictureExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}

// UserHandler manages the signed-in user's own account. Every change goes
// through the session so the caller gets a token matching the new identity.
type UserHandler struct {
	api      auth.UserUpdater
	sessions *AuthHandler
	logger   *logrus.Logger
}

func NewUserHandler(api auth.UserUpdater, sessions *AuthHandler, logger *logrus.Logger) *UserHandler {
	return &UserHandler{api: api, sessions: sessions, logger: logger}
}

// UpdateRole 修改当前用户角色
// PUT /api/account/role
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}
	if !validRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role", "detail": strings.Join(models.AccountRoles, ", ")})
		return
	}

	session := auth.SessionFrom(c)
	renewed, err := session.UpdateUser(upstreamContext(c), h.api, map[string]any{"role": req.Role})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.logger.WithFields(logrus.Fields{"user_id": renewed.CurrentUser().UserID, "role": req.Role}).Info("role updated")
	h.respondSession(c, renewed, "Rôle mis à jour avec succès")
}

// UploadPicture 上传头像
// POST /api/account/picture (multipart, field profil_pic)
func (h *UserHandler) UploadPicture(c *gin.Context) {
	header, err := c.FormFile("profil_pic")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profil_pic is required", "detail": err.Error()})
		return
	}
	if header.Size > maxPictureSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "picture too large"})
		return
	}
	if !pictureExts[strings.ToLower(filepath.Ext(header.Filename))] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported picture type"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file", "detail": err.Error()})
		return
	}
	defer file.Close()

	session := auth.SessionFrom(c)
	renewed, err := session.UpdatePicture(upstreamContext(c), h.api, filepath.Base(header.Filename), file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.respondSession(c, renewed, "Photo de profil mise à jour")
}

func (h *UserHandler) respondSession(c *gin.Context, session *auth.Session, message string) {
	h.sessions.setCookie(c, session)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data":    session.CurrentUser(),
		"token":   session.Token(),
	})
}

func validRole(role string) bool {
	for _, r := range models.AccountRoles {
		if r == role {
			return true
		}
	}
	return false
}
