package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RigelNana/gazotheque/pkg/auth"
	"github.com/RigelNana/gazotheque/pkg/events"
	"github.com/RigelNana/gazotheque/pkg/metrics"
	"github.com/RigelNana/gazotheque/services/notification-service/config"
	"github.com/RigelNana/gazotheque/services/notification-service/database"
	"github.com/RigelNana/gazotheque/services/notification-service/handler"
	"github.com/RigelNana/gazotheque/services/notification-service/repository"
	"github.com/RigelNana/gazotheque/services/notification-service/router"
	"github.com/RigelNana/gazotheque/services/notification-service/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 初始化日志
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("加载配置失败: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}
	gin.SetMode(gin.ReleaseMode)

	metrics.StartMetricsServer(cfg.HTTP.MetricsPort)
	logger.Infof("Prometheus metrics server started on :%s", cfg.HTTP.MetricsPort)

	// 初始化数据库
	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Fatalf("初始化数据库失败: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatalf("%v", err)
	}
	logger.Info("数据库连接成功")

	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo, logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	consumer := events.NewConsumer(events.SplitBrokers(cfg.Kafka.Brokers), cfg.Kafka.Topic, cfg.Kafka.GroupID, "notification-service", logger)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Run(ctx, svc.HandleMaterialConsigned); err != nil {
			logger.WithError(err).Error("kafka consumer stopped")
		}
	}()

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router.Setup(handler.NewNotificationHandler(svc, logger), issuer, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("Notification service listening on %s", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server failed: %v", err)
		}
	}()

	// 等待中断信号
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("Notification service shutting down...")
	stop()
	<-consumerDone
	if err := consumer.Close(); err != nil {
		logger.WithError(err).Warn("close kafka reader")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
