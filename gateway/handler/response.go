package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/RigelNana/gazotheque/pkg/auth"
	"github.com/RigelNana/gazotheque/pkg/gazapi"
	"github.com/RigelNana/gazotheque/pkg/inventory"
	"github.com/RigelNana/gazotheque/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// genericFailure is shown when the record service could not be reached or
// answered with something unreadable.
const genericFailure = "Une erreur s'est produite, réessayez plus tard"

// respondError maps controller and API errors onto the JSON error envelope.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var (
		validation *inventory.ValidationError
		apiErr     *gazapi.APIError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "fields": validation.Fields})
	case errors.Is(err, inventory.ErrNotConfirmed):
		c.JSON(http.StatusConflict, gin.H{"error": "confirmation required"})
	case errors.Is(err, inventory.ErrConsigned):
		c.JSON(http.StatusConflict, gin.H{"error": "material is consigned", "detail": err.Error()})
	case errors.Is(err, inventory.ErrInvalidValue):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid value", "detail": err.Error()})
	case errors.Is(err, inventory.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "detail": err.Error()})
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": apiErr.Display(), "detail": apiErr.Key})
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to write
		c.Status(499)
	default:
		logger.WithError(err).WithField("path", c.FullPath()).Error("upstream call failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": genericFailure})
	}
}

// upstreamContext forwards the caller's token to the record service.
func upstreamContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if session := auth.SessionFrom(c); session != nil && session.Authenticated() {
		ctx = gazapi.WithToken(ctx, session.Token())
	}
	return ctx
}

// currentUser is nil for anonymous callers.
func currentUser(c *gin.Context) *models.User {
	session := auth.SessionFrom(c)
	if session == nil || !session.Authenticated() {
		return nil
	}
	return session.CurrentUser()
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid material id"})
		return 0, false
	}
	return id, true
}

func redirectFields(h gin.H, path string, after time.Duration) gin.H {
	h["redirect"] = path
	h["redirect_after_ms"] = after.Milliseconds()
	return h
}
