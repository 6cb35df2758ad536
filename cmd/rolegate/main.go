// Command rolegate serves the login, registration and role-gated areas.
//
// @title        rolegate
// @version      1.0
// @description  Session-based authentication with role-gated areas.
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

	"github.com/rolegate/rolegate/internal/api"
	"github.com/rolegate/rolegate/internal/api/handler"
	"github.com/rolegate/rolegate/internal/api/sessioncookie"
	"github.com/rolegate/rolegate/internal/core/service"
	"github.com/rolegate/rolegate/internal/infrastructure/config"
	mongodb "github.com/rolegate/rolegate/internal/infrastructure/db/mongo"
	redisdb "github.com/rolegate/rolegate/internal/infrastructure/db/redis"
	"github.com/rolegate/rolegate/internal/infrastructure/hashing"
	"github.com/rolegate/rolegate/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log := logger.Get()
		log.Error().Err(err).Msg("rolegate stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet.
		logger.Init(logger.Options{Service: "rolegate"})
		return err
	}

	log := logger.Init(logger.Options{
		Service: "rolegate",
		Level:   cfg.LogLevel,
		Pretty:  !cfg.Production(),
	})

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "rolegate",
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	credentials := mongodb.NewCredentialStore(db)
	if err := credentials.EnsureIndexes(ctx); err != nil {
		return err
	}

	redisClient, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer redisClient.Close()

	pool := hashing.NewPool(cfg.Hashing.Workers, hashing.NewBcrypt(cfg.Hashing.BcryptCost), logger.Component("hashing"))
	// The pool outlives ctx so requests drained by Shutdown can still hash.
	poolCtx, stopPool := context.WithCancel(context.Background())
	defer stopPool()
	pool.Start(poolCtx)

	sessions := service.NewSessionManager(redisdb.NewSessionStore(redisClient), credentials, cfg.Session.TTL, logger.Component("session"))
	registrar := service.NewRegistrar(credentials, pool, logger.Component("registrar"))
	authenticator := service.NewAuthenticator(credentials, pool, logger.Component("auth"))
	login := service.NewLoginService(authenticator, sessions, logger.Component("login"))

	if b := cfg.Bootstrap; b.Email != "" {
		created, err := service.EnsureAdmin(ctx, registrar, b.Name, b.Email, b.Password)
		if err != nil {
			return err
		}
		log.Info().Bool("created", created).Msg("bootstrap admin ensured")
	}

	e := api.NewRouter(api.Deps{
		Login:     login,
		Registrar: registrar,
		Sessions:  sessions,
		Codec:     sessioncookie.NewCodec(cfg.Session.CookieName, cfg.Session.Secret, cfg.Session.CookieSecure || cfg.Production()),
		Health: []handler.Dependency{
			{Name: "mongo", Ping: mongodb.Pinger(mongoClient)},
			{Name: "redis", Ping: redisdb.Pinger(redisClient)},
		},
		Log: logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = e.Shutdown(sctx)
	stopPool()
	return err
}
