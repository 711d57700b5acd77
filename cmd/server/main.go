package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/todo-app/internal/config"   // Internal config loader
	"github.com/iliyamo/todo-app/internal/database" // MySQL connection and migrations
	"github.com/iliyamo/todo-app/internal/handler"
	"github.com/iliyamo/todo-app/internal/logging"
	"github.com/iliyamo/todo-app/internal/repository"
	"github.com/iliyamo/todo-app/internal/router" // Internal router setup
	"github.com/iliyamo/todo-app/internal/utils"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	boot := logging.New(os.Stderr, os.Getenv("APP_ENV"))
	cfg, err := config.Load()
	if err != nil {
		boot.Error(context.Background(), "load config", "err", err)
		return err
	}
	log := logging.New(os.Stderr, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.UsesInsecureSecret() {
		log.Warn(ctx, "JWT_SECRET not set, signing tokens with the insecure development default")
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		log.Error(ctx, "open database", "host", cfg.DBHost, "db", cfg.DBName, "err", err)
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Error(ctx, "migrate database", "err", err)
		return err
	}

	cacheCfg := config.LoadCacheConfig()
	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		log.Warn(ctx, "redis unavailable, todo list cache disabled", "err", err)
	} else {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	todos := repository.NewTodoRepo(db)
	tokens := utils.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	e := router.New(router.Deps{
		Log:         log,
		Auth:        handler.NewAuthHandler(users, tokens, cfg.BcryptCost, log),
		Todos:       handler.NewTodoHandler(todos, log),
		Tokens:      tokens,
		Users:       users,
		DB:          db,
		Cache:       cacheCfg,
		Redis:       rdb,
		CORSOrigins: cfg.CORSOrigins,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error(ctx, "http server", "err", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "shutdown", "err", err)
		return err
	}
	return nil
}
