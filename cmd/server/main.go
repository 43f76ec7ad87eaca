// @title        Account Service API
// @version      1.0
// @description  User accounts: signup, sessions, profile, password reset and admin management.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/lusail/account-service/internal/api"
	"github.com/lusail/account-service/internal/api/handler"
	"github.com/lusail/account-service/internal/core/ports"
	"github.com/lusail/account-service/internal/core/service"
	mongostore "github.com/lusail/account-service/internal/infrastructure/db/mongo"
	redisstore "github.com/lusail/account-service/internal/infrastructure/db/redis"
	"github.com/lusail/account-service/internal/infrastructure/http/handlers"
	"github.com/lusail/account-service/internal/infrastructure/imagehost"
	"github.com/lusail/account-service/internal/infrastructure/lock"
	"github.com/lusail/account-service/internal/infrastructure/mail"
	"github.com/lusail/account-service/internal/infrastructure/queue"
	"github.com/lusail/account-service/internal/infrastructure/security"
	"github.com/lusail/account-service/internal/pkg/clock"
	"github.com/lusail/account-service/internal/pkg/config"
	"github.com/lusail/account-service/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: cfg.AppName,
		Env:     cfg.Env,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Account store ---
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		AppName:     cfg.AppName,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
		Timeout:     cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongostore.Disconnect(client, shutdownTimeout); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	clk := clock.New()

	accounts := mongostore.NewAccountRepository(db, clk)
	if err := accounts.EnsureIndexes(ctx); err != nil {
		return err
	}

	readiness := map[string]handlers.PingFunc{"mongo": handlers.MongoPing(db)}

	// --- Account lock ---
	var locker ports.AccountLocker
	switch cfg.LockDriver {
	case "redis":
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			ClientName: cfg.AppName,
		})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		locker = redisstore.NewLocker(rdb, 0, 0, logger.Component("lock"))
		readiness["redis"] = handlers.RedisPing(rdb)
	default:
		log.Warn().Msg("using in-process account lock, run a single replica")
		locker = lock.NewLocal()
	}

	// --- Outbound: mail and image host ---
	mailer, err := mail.New(cfg.Mail, logger.Component("mail"))
	if err != nil {
		return err
	}

	host, err := imagehost.New(ctx, cfg.ImageHost)
	if err != nil {
		return err
	}
	images := queue.NewImageCleanup(cfg.ImageHost.CleanupWorkers, host, logger.Component("image-cleanup"))
	images.Start(ctx)

	// --- Services ---
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	signer := security.NewJWTSigner(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clk)

	otp := service.NewOTPService(accounts, mailer, locker, clk, service.OTPOptions{
		TTL:     cfg.OTP.TTL,
		Digits:  cfg.OTP.Digits,
		AppName: cfg.AppName,
	}, logger.Component("otp"))

	accountService := service.NewAccountService(accounts, hasher, signer, otp, images, clk, service.AccountOptions{
		RequireEmailVerification: cfg.Auth.RequireEmailVerification,
		AdminEmails:              cfg.Auth.AdminEmails,
	}, logger.Component("accounts"))

	resetService := service.NewPasswordResetService(accounts, hasher, otp, locker, logger.Component("password-reset"))

	// --- HTTP ---
	router := api.NewRouter(api.RouterConfig{
		Accounts:  accountService,
		Admin:     accountService,
		Reset:     resetService,
		Readiness: readiness,
		Logger:    logger.Component("http"),
		Cookie:    handler.CookieOptions{Secure: cfg.Auth.CookieSecure},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := images.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("image cleanup queue not drained")
	}

	log.Info().Msg("server exited properly")
	return nil
}
