package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/all-in-users/internal/auth"
	"github.com/hongminglow/all-in-users/internal/config"
	"github.com/hongminglow/all-in-users/internal/logging"
	"github.com/hongminglow/all-in-users/internal/models"
	"github.com/hongminglow/all-in-users/internal/server"
	"github.com/hongminglow/all-in-users/internal/storage"
	"github.com/hongminglow/all-in-users/internal/storage/postgres"
	"github.com/hongminglow/all-in-users/internal/storage/sqlite"
	"github.com/hongminglow/all-in-users/internal/users"
)

// backend is the storage surface shared by every driver.
type backend interface {
	storage.Transactor
	Users() storage.UserRepository
	Profiles() storage.ProfileRepository
}

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	ctx := context.Background()
	store, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}
	defer closeStore()

	passwords, err := auth.SchemeByName(cfg.PasswordHashing)
	if err != nil {
		log.Fatalf("password hashing: %v", err)
	}
	svc := users.NewService(store.Users(), store.Profiles(), passwords, users.WithTransactor(store))

	if cfg.SeedAdmin.Enabled() {
		created, err := svc.EnsureUser(ctx, users.CreateUserInput{
			Username: cfg.SeedAdmin.Username,
			Password: cfg.SeedAdmin.Password,
			Roles:    []string{models.RoleAdmin},
		})
		if err != nil {
			log.Fatalf("seed admin: %v", err)
		}
		if created {
			logger.Info(ctx, "seeded admin user", "username", cfg.SeedAdmin.Username)
		}
	}

	srv := server.New(cfg, svc, logger)

	go func() {
		logger.Info(ctx, "users service listening", "addr", cfg.HTTPAddress(), "storage", cfg.StorageDriver)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error(ctxShutdown, "graceful shutdown error", "error", err)
	}
}

func openStorage(ctx context.Context, cfg config.Config) (backend, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.DriverPostgres:
		store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
