package router

import (
	"net/http"

	"github.com/RigelNana/gazotheque/pkg/auth"
	ginMetrics "github.com/RigelNana/gazotheque/pkg/metrics/gin"
	"github.com/RigelNana/gazotheque/services/notification-service/handler"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const serviceName = "notification-service"

func Setup(h *handler.NotificationHandler, issuer *auth.Issuer, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginMetrics.PrometheusMiddleware(serviceName))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	})

	api := r.Group("/api/notifications")
	api.Use(auth.RequireAuth(issuer, logger))
	{
		api.GET("", h.ListNotifications)
		api.POST("/read-all", h.MarkAllRead)
		api.POST("/:id/read", h.MarkRead)
	}
	return r
}
