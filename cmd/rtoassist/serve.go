package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rtoassist/internal/db"
	"rtoassist/internal/metrics"
	"rtoassist/internal/rto"
	"rtoassist/internal/server"
	"rtoassist/internal/storage"
	"rtoassist/internal/store"
	"rtoassist/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	requests, closeStore, err := buildStore(ctx, config, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	files, err := buildStorage(ctx, config)
	if err != nil {
		return err
	}

	srv, err := server.New(config, logger, requests, files, metrics.New())
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

func buildStore(ctx context.Context, config *types.Config, logger *logrus.Logger) (server.RequestStore, func(), error) {
	if config.StoreBackend == storeBackendMemory {
		logger.Warn("using in-memory request store, requests are lost on restart")
		return store.NewMemoryRequestRepository(), func() {}, nil
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return nil, nil, err
	}

	return store.NewRequestRepository(pool), pool.Close, nil
}

func buildStorage(ctx context.Context, config *types.Config) (rto.FileStorage, error) {
	switch config.StorageBackend {
	case storageBackendSupabase:
		if config.SupabaseProject == "" || config.SupabaseAPIKey == "" {
			return nil, fmt.Errorf("set SUPABASE_PROJECT_ID and SUPABASE_API_KEY")
		}
		return storage.NewSupabaseStorage(config.SupabaseProject, config.SupabaseAPIKey, config.SupabaseBucket), nil
	case storageBackendS3:
		if config.S3BucketName == "" {
			return nil, fmt.Errorf("set S3_BUCKET_NAME")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", config.StorageBackend)
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	return storage.NewS3Storage(s3.NewFromConfig(awsConfig), config.S3BucketName, config.S3PublicBaseURL), nil
}
