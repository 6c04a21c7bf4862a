package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/devotionhub/media-service/internal/config"
	"github.com/devotionhub/media-service/internal/logger"
	"github.com/devotionhub/media-service/internal/media"
	"github.com/devotionhub/media-service/internal/server"
	"github.com/devotionhub/media-service/internal/storage"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.Init()
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer dbPool.Close()

	minioClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		log.Fatal("connect minio", zap.Error(err))
	}

	if err := storage.EnsureBucket(ctx, minioClient, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
		log.Fatal("ensure bucket", zap.Error(err))
	}

	mediaRepo := media.NewRepository(dbPool)
	origin := media.NewMinIOOrigin(minioClient, cfg.MinIO.Bucket, storage.PublicBaseURL(cfg.MinIO))

	mediaService := media.NewService(mediaRepo, origin, cfg.Media, log)
	mediaResolver := media.NewResolver(mediaRepo, cfg.Media.UploadsRoot, log)
	mediaMigrator := media.NewMigrator(mediaRepo, cfg.Media.UploadsRoot, log)

	router := server.NewRouter(server.Dependencies{
		Config:        cfg,
		Log:           log,
		DB:            dbPool,
		ObjectStore:   minioClient,
		MediaService:  mediaService,
		MediaResolver: mediaResolver,
		MediaMigrator: mediaMigrator,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("media API listening", zap.String("address", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}
