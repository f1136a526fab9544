package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/powervate/admin-api/internal/config"
	"github.com/powervate/admin-api/internal/handlers"
	"github.com/powervate/admin-api/internal/middleware"
	"github.com/powervate/admin-api/internal/paging"
	"github.com/powervate/admin-api/internal/services"
	"github.com/powervate/admin-api/internal/store"
	"github.com/powervate/admin-api/internal/utils"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

// openMongo connects, checks the deployment and makes sure the indexes exist.
func openMongo(ctx context.Context, c *config.Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Mongo.Timeout())
	defer cancel()

	client, err := store.Connect(ctx, c.Mongo.URI)
	if err != nil {
		return nil, nil, err
	}
	db := client.Database(c.Mongo.Database)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, db, nil
}

func openRedis(ctx context.Context, c config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("pinging Redis at %s: %w", c.Addr, err)
	}
	return rdb, nil
}

func newUploader(ctx context.Context, c config.MediaConfig, logger *slog.Logger) (services.Uploader, error) {
	switch c.Backend {
	case "s3":
		s3cfg := services.S3Config{
			Bucket:          c.S3.Bucket,
			Region:          c.S3.Region,
			Prefix:          c.S3.Prefix,
			PublicURL:       c.S3.PublicURL,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			Endpoint:        c.S3.Endpoint,
		}
		client, err := services.NewS3Client(ctx, s3cfg)
		if err != nil {
			return nil, err
		}
		return services.NewS3Uploader(client, s3cfg, logger), nil
	case "cloudinary":
		return services.NewCloudinaryUploader(services.CloudinaryConfig{
			CloudName:    c.Cloudinary.CloudName,
			UploadPreset: c.Cloudinary.UploadPreset,
			BaseURL:      c.Cloudinary.BaseURL,
		}, logger)
	}
	return nil, fmt.Errorf("unknown media backend %q", c.Backend)
}

func serve(ctx context.Context, c *config.Config, logger *slog.Logger) error {
	client, db, err := openMongo(ctx, c)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("disconnecting from MongoDB", "error", err)
		}
	}()
	logger.Info("connected to MongoDB", "database", c.Mongo.Database)

	var (
		sessions services.SessionStore
		pages    paging.StateStore
		rdb      *redis.Client
	)
	if c.Redis.Enabled() {
		rdb, err = openRedis(ctx, c.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessions = services.NewRedisSessionStore(rdb)
		pages = paging.NewRedisStateStore(rdb, c.Redis.PagingTTL())
		logger.Info("sessions and page cursors kept in Redis", "addr", c.Redis.Addr)
	} else {
		sessions = services.NewMemorySessionStore()
		pages = paging.NewMemoryStateStore(c.Redis.PagingTTL())
		logger.Warn("REDIS_ADDR not set, sessions and page cursors kept in memory")
	}

	uploader, err := newUploader(ctx, c.Media, logger)
	if err != nil {
		return err
	}

	users := store.NewUserStore(db)
	tokens := utils.NewTokenManager(c.Auth.JWTSecret, c.Auth.TokenTTL())
	auth := services.NewAuthService(store.NewCredentialStore(db), users, sessions, tokens, services.AuthOptions{
		BcryptCost:  c.Auth.BcryptCost,
		RecentLogin: c.Auth.RecentLogin(),
		Logger:      logger,
	})

	h := handlers.NewHandler(handlers.Deps{
		Users:          users,
		Products:       store.NewProductStore(db),
		Doctors:        store.NewDoctorStore(db),
		Pricing:        store.NewPricingStore(db),
		Discount:       store.NewDiscountStore(db),
		Auth:           auth,
		Media:          uploader,
		Pages:          pages,
		Logger:         logger,
		BcryptCost:     c.Auth.BcryptCost,
		MaxUploadBytes: c.Media.MaxUploadBytes(),
	})

	if c.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(h, handlers.RouterConfig{
		AllowOrigins: c.Server.AllowOrigins,
		Auth:         middleware.AuthMiddleware(tokens, auth),
		Logger:       logger,
		Health: func(ctx context.Context) error {
			if err := client.Ping(ctx, nil); err != nil {
				return fmt.Errorf("mongo: %w", err)
			}
			if rdb != nil {
				if err := rdb.Ping(ctx).Err(); err != nil {
					return fmt.Errorf("redis: %w", err)
				}
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:              ":" + c.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("admin API listening", "addr", srv.Addr, "media", c.Media.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return nil
}
