package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/portfolio/config"
	"github.com/yoockh/portfolio/internal/api/handlers"
	"github.com/yoockh/portfolio/internal/api/routes"
	"github.com/yoockh/portfolio/internal/auth"
	"github.com/yoockh/portfolio/internal/logger"
	"github.com/yoockh/portfolio/internal/ratelimit"
	mongorepo "github.com/yoockh/portfolio/internal/repositories/mongo"
	"github.com/yoockh/portfolio/internal/services"
	"github.com/yoockh/portfolio/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	client, err := config.InitMongo(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()
	log.WithField("db", cfg.Mongo.DB).Info("MongoDB connected")

	db := client.Database(cfg.Mongo.DB)
	if err := config.EnsureMongoIndexes(ctx, db); err != nil {
		return err
	}

	files, closeFiles, err := newStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFiles()

	rdb, err := config.InitRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		log.Info("Redis connected, rate limiting enabled")
	} else {
		log.Warn("REDIS_ADDR not set, rate limiting disabled")
	}

	users := mongorepo.NewUserRepo(db)
	comments := mongorepo.NewCommentRepo(db)
	cvs := mongorepo.NewCVRepo(db)
	contacts := mongorepo.NewContactRepo(db)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	authSvc := services.NewAuthService(users, tokens)
	cvSvc := services.NewCVService(cvs, users, files, log, cfg.Upload.MaxBytes)
	commentSvc := services.NewCommentService(comments, users)
	contactSvc := services.NewContactService(contacts, log)
	userSvc := services.NewUserService(users, comments, cvSvc, log)

	if cfg.Admin.Email != "" {
		admin, err := authSvc.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			return err
		}
		log.WithField("user_id", admin.ID.Hex()).Info("admin account ready")
	}

	deps := routes.Deps{
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
		AuthSvc:     authSvc,
		Auth:        handlers.NewAuthHandler(authSvc),
		Comments:    handlers.NewCommentHandler(commentSvc),
		CV:          handlers.NewCVHandler(cvSvc, cfg.Upload.MaxBytes),
		Contact:     handlers.NewContactHandler(contactSvc),
		Users:       handlers.NewUserHandler(userSvc),
	}
	if rdb != nil {
		deps.LoginLimiter = limiter(rdb, "login", cfg)
		deps.RegisterLimiter = limiter(rdb, "register", cfg)
		deps.ContactLimiter = limiter(rdb, "contact", cfg)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("http server listening")
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

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, func(), error) {
	if cfg.Storage.Driver == "gcs" {
		s, err := storage.NewGCSStorage(ctx, cfg.Storage.GCSBucket, cfg.Storage.GCSPrefix, cfg.Storage.GCSCredentials)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}

	s, err := storage.NewLocalStorage(cfg.Upload.Dir)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {}, nil
}

func limiter(rdb *redis.Client, prefix string, cfg *config.Config) ratelimit.Limiter {
	return ratelimit.NewRedisLimiter(rdb, prefix, cfg.Redis.RateLimit, cfg.Redis.RateWindow)
}
