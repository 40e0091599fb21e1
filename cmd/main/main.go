package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hirebridge/recruit-backend/config"
	"github.com/hirebridge/recruit-backend/pkg/handler"
	"github.com/hirebridge/recruit-backend/pkg/logger"
	"github.com/hirebridge/recruit-backend/pkg/middleware"
	"github.com/hirebridge/recruit-backend/pkg/repository"
	"github.com/hirebridge/recruit-backend/pkg/repository/object"
	"github.com/hirebridge/recruit-backend/pkg/service"

	database "github.com/hirebridge/recruit-backend/pkg/db"
)

func main() {
	// gorm's autoUpdate will use local timezone by default, so we need to set it to UTC
	time.Local = time.UTC

	if err := config.Init(config.ParseConfigFlag()); err != nil {
		log.Fatal(err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zapLogger, _ := logger.GetZapLogger(ctx)
	defer func() {
		// can't handle the error due to https://github.com/uber-go/zap/issues/880
		_ = zapLogger.Sync()
	}()

	db := database.GetConnection(config.Config.Database)
	defer database.Close(db)

	redisClient := redis.NewClient(&config.Config.Cache.Redis.RedisOptions)
	defer redisClient.Close()

	storage, err := newStorage(ctx, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	svc := service.NewService(repository.NewRepository(db), storage, zapLogger)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(zapLogger)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.BodyLimit(fmt.Sprintf("%dM", config.Config.Server.MaxDataSize)))
	e.Use(middleware.RequestLogger(zapLogger))

	handler.NewPublicHandler(svc).Register(e, middleware.CandidateAuth(redisClient))

	go func() {
		addr := fmt.Sprintf(":%d", config.Config.Server.PublicPort)
		var err error
		if config.Config.Server.HTTPS.Cert != "" && config.Config.Server.HTTPS.Key != "" {
			err = e.StartTLS(addr, config.Config.Server.HTTPS.Cert, config.Config.Server.HTTPS.Key)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	zapLogger.Info("recruit-backend started", zap.Int("port", config.Config.Server.PublicPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// newStorage picks the object storage backend. GCS takes precedence when a
// bucket is configured; MinIO is the default.
func newStorage(ctx context.Context, zapLogger *zap.Logger) (object.Storage, error) {
	if config.Config.GCS.Bucket != "" {
		return object.NewGCSStorage(ctx, config.Config.GCS, zapLogger)
	}
	return object.NewMinIOStorage(ctx, config.Config.Minio, config.Config.Blob.HostPort, zapLogger)
}
