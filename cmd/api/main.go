package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"pintapoa/config"
	_ "pintapoa/docs"
	"pintapoa/internal/adapters/auth"
	"pintapoa/internal/adapters/email"
	delivery "pintapoa/internal/delivery/http"
	"pintapoa/internal/delivery/http/controllers"
	"pintapoa/internal/delivery/http/middleware"
	"pintapoa/internal/domain"
	"pintapoa/internal/repository/mongodb"
	"pintapoa/internal/repository/postgres"
	"pintapoa/internal/services"
)

const shutdownTimeout = 15 * time.Second

// stores bundles the repositories of the selected driver with its lifecycle hooks.
type stores struct {
	locations domain.LocationRepository
	status    domain.StatusRepository
	admins    domain.AdminRepository
	ping      func(ctx context.Context) error
	close     func(ctx context.Context) error
}

// @title PINTA POA API
// @version 1.0
// @description Event status, locations and admin sessions for the PINTA POA site.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger(cfg)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			logger.Warn("closing store", "err", err)
		}
	}()
	logger.Info("store connected", "driver", cfg.StoreDriver)

	revoker, closeRevoker, err := newRevoker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRevoker()

	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("email templates: %w", err)
	}
	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailConfig.Provider,
		FromAddress: cfg.EmailConfig.FromAddress,
		FromName:    cfg.EmailConfig.FromName,
		SES: email.SESConfig{
			Region:             cfg.EmailConfig.AWSRegion,
			AccessKeyID:        cfg.EmailConfig.AWSAccessKeyID,
			SecretAccessKey:    cfg.EmailConfig.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.EmailConfig.SESInsecureSkipVerify,
		},
	}, logger)

	metrics := middleware.NewMetrics()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret)
	locationService := services.NewLocationService(st.locations, st.status, logger, cfg.StoreTimeout)
	authService := services.NewAuthService(st.admins, auth.NewBcryptHasher(auth.DefaultBcryptCost), jwtManager, jwtManager, revoker, logger, services.AuthOptions{
		SessionTTL:    cfg.SessionTTL,
		EmailService:  services.NewEmailService(mailer, renderer, logger),
		FailedSignIns: metrics.FailedSignIns,
	})

	bootCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	err = authService.EnsureAdmin(bootCtx, cfg.AdminEmail, cfg.AdminPassword)
	cancel()
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	pages, err := controllers.NewPagesController(logger, authService, locationService, cfg.SecureCookies)
	if err != nil {
		return fmt.Errorf("page templates: %w", err)
	}
	handler := delivery.NewRouter(delivery.RouterDeps{
		Logger:         logger,
		Verifier:       authService,
		Metrics:        metrics,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		HealthCheck:    st.ping,
		Locations:      controllers.NewLocationController(logger, locationService),
		Status:         controllers.NewStatusController(logger, locationService),
		Auth:           controllers.NewAuthController(logger, authService, cfg.SecureCookies, metrics.SubscribersOpen),
		Pages:          pages,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts end with the signal so open event streams let Shutdown finish.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
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
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		store, err := mongodb.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureIndexes(connectCtx); err != nil {
			_ = store.Close(connectCtx)
			return nil, err
		}
		return &stores{
			locations: mongodb.NewLocationRepository(store.DB),
			status:    mongodb.NewStatusRepository(store.DB),
			admins:    mongodb.NewAdminRepository(store.DB),
			ping:      store.Ping,
			close:     store.Close,
		}, nil
	default:
		db, err := sql.Open("postgres", cfg.DBUrl)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(connectCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return &stores{
			locations: postgres.NewLocationRepository(db),
			status:    postgres.NewStatusRepository(db),
			admins:    postgres.NewAdminRepository(db),
			ping:      db.PingContext,
			close:     func(context.Context) error { return db.Close() },
		}, nil
	}
}

func newRevoker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.TokenRevoker, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, signed-out sessions are tracked in memory")
		return auth.NewMemoryRevoker(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn("closing redis", "err", err)
		}
	}
	return auth.NewRedisRevoker(client), closeFn, nil
}
