// Package main initializes and starts the GophTodo HTTP server,
// setting up configuration, logging, storage, services, handlers, and TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/GophTodo/internal/auth"
	"github.com/atinyakov/GophTodo/internal/config"
	"github.com/atinyakov/GophTodo/internal/db"
	"github.com/atinyakov/GophTodo/internal/logger"
	"github.com/atinyakov/GophTodo/internal/repository"
	"github.com/atinyakov/GophTodo/internal/server/handler/http"
	"github.com/atinyakov/GophTodo/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// storage groups the repositories the services are built from.
type storage struct {
	users   service.UserRepository
	tasks   service.TaskRepository
	revoked service.RevocationStore
}

func main() {
	// Parse command-line, file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, options, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot init storage", zap.Error(err))
	}

	// Initialize business-logic services.
	authService := service.NewAuthService(
		store.users,
		store.revoked,
		auth.NewPasswordHasher(bcrypt.DefaultCost),
		auth.NewTokenService([]byte(options.SecretKey)),
	)
	taskService := service.NewTaskService(store.tasks)

	views, err := http.NewViews(zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot parse templates", zap.Error(err))
	}

	// Create HTTP handlers for auth and task pages.
	authHandler := &http.AuthHandler{
		AuthService:  authService,
		Views:        views,
		Logger:       zapLogger,
		SecureCookie: options.TLSEnabled(),
	}
	todoHandler := &http.TodoHandler{TaskService: taskService, Views: views, Logger: zapLogger}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, todoHandler, authService, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSEnabled() {
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

// openStorage selects the backing stores. Without a DSN everything lives in
// memory. With a DSN, revocations go to Redis when an address is configured
// and to PostgreSQL otherwise.
func openStorage(ctx context.Context, options *config.Options, log *zap.Logger) (*storage, error) {
	if options.DatabaseDSN == "" {
		log.Warn("no database configured, data is kept in memory only")
		mem := repository.NewMemoryStore()
		return &storage{users: mem, tasks: mem, revoked: mem}, nil
	}

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	store := &storage{
		users: repository.NewPostgresAuthRepository(postgresDB),
		tasks: repository.NewPostgresTaskRepository(postgresDB),
	}

	if options.RedisAddr != "" {
		client, err := repository.NewRedisClient(ctx, options.RedisAddr)
		if err != nil {
			return nil, err
		}
		store.revoked = repository.NewRedisRevocationRepository(client)
		return store, nil
	}

	db.StartRevocationCleaner(ctx, postgresDB, time.Hour, log)
	store.revoked = repository.NewPostgresRevocationRepository(postgresDB)
	return store, nil
}
