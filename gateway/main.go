package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RigelNana/gazotheque/gateway/config"
	"github.com/RigelNana/gazotheque/gateway/handler"
	"github.com/RigelNana/gazotheque/gateway/router"
	"github.com/RigelNana/gazotheque/pkg/auth"
	"github.com/RigelNana/gazotheque/pkg/events"
	"github.com/RigelNana/gazotheque/pkg/gazapi"
	"github.com/RigelNana/gazotheque/pkg/inventory"
	"github.com/RigelNana/gazotheque/pkg/labels"
	"github.com/RigelNana/gazotheque/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 初始化日志
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("加载配置失败: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}
	gin.SetMode(cfg.Server.Mode)

	metrics.StartMetricsServer(cfg.Server.MetricsPort)
	logger.Infof("Prometheus metrics server started on :%s", cfg.Server.MetricsPort)

	api := gazapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger)
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// consignment events are optional: without brokers the detail view
	// simply does not notify
	var notifier inventory.ConsignmentNotifier
	if cfg.Kafka.Enabled() {
		publisher := events.NewPublisher(events.SplitBrokers(cfg.Kafka.Brokers), cfg.Kafka.Topic, logger)
		defer publisher.Close()
		notifier = publisher
		logger.WithField("topic", cfg.Kafka.Topic).Info("consignment events enabled")
	}

	var archive labels.Archiver
	if cfg.MinIO.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err := labels.NewMinioArchive(ctx, labels.Config{
			Endpoint:        cfg.MinIO.Endpoint,
			AccessKeyID:     cfg.MinIO.AccessKeyID,
			SecretAccessKey: cfg.MinIO.SecretAccessKey,
			BucketName:      cfg.MinIO.BucketName,
			UseSSL:          cfg.MinIO.UseSSL,
			URLExpiry:       cfg.MinIO.URLExpiry,
		}, logger)
		cancel()
		if err != nil {
			logger.WithError(err).Warn("label archive disabled")
		} else {
			archive = store
		}
	}

	authHandler := handler.NewAuthHandler(issuer, cfg.Server.Mode == gin.ReleaseMode, logger)
	handlers := router.Handlers{
		Auth: authHandler,
		User: handler.NewUserHandler(api, authHandler, logger),
		Material: handler.NewMaterialHandler(
			inventory.NewFormController(api, logger),
			inventory.NewDetailController(api, notifier, logger),
			inventory.NewCatalog(api),
			api,
			archive,
			logger,
		),
		Overview: handler.NewOverviewHandler(inventory.NewOverview(api), logger),
	}
	server := router.New(handlers, issuer, cfg.Server.Origins(), logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("Gateway listening on %s (api %s)", cfg.Server.Port, api.BaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("gateway failed: %v", err)
		}
	}()

	// 等待中断信号
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("Gateway shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
