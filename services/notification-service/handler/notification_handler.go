package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/RigelNana/gazotheque/services/notification-service/repository"
	"github.com/RigelNana/gazotheque/services/notification-service/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type NotificationHandler struct {
	svc    service.NotificationService
	logger *logrus.Logger
}

func NewNotificationHandler(svc service.NotificationService, logger *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, logger: logger}
}

func userID(c *gin.Context) (int64, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return 0, false
	}
	id, ok := v.(int64)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid user_id format"})
		return 0, false
	}
	return id, true
}

// ListNotifications 获取当前用户通知
// GET /api/notifications?unread=true&page=1&page_size=20
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(service.DefaultPageSize)))
	unreadOnly := c.Query("unread") == "true"

	items, total, err := h.svc.List(c.Request.Context(), uid, unreadOnly, page, pageSize)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", uid).Error("list notifications failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "detail": err.Error()})
		return
	}
	unread, err := h.svc.CountUnread(c.Request.Context(), uid)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", uid).Error("count unread failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"total":   total,
		"unread":  unread,
	})
}

// MarkRead 标记已读
// POST /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), id, uid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		h.logger.WithError(err).WithField("notification_id", id).Error("mark read failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkAllRead POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	n, err := h.svc.MarkAllRead(c.Request.Context(), uid)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", uid).Error("mark all read failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": n})
}
