package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"fsanano/inventory-cart/internal/auth"
	"fsanano/inventory-cart/internal/config"
	"fsanano/inventory-cart/internal/handler"
	"fsanano/inventory-cart/internal/logging"
	"fsanano/inventory-cart/internal/repository"
	"fsanano/inventory-cart/internal/repository/memory"
	"fsanano/inventory-cart/internal/service"
)

type storage struct {
	tx     service.Transactor
	pinger handler.Pinger
	users  service.UserRepository
	tokens service.TokenRepository
	items  service.ItemRepository
	carts  service.CartRepository
	close  func()
}

func openStorage(ctx context.Context, cfg *config.Config, log logging.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		log.Warn(ctx, "using in-memory storage, data is lost on restart")
		store := memory.New()
		return &storage{
			tx:     store,
			pinger: store,
			users:  store,
			tokens: store,
			items:  store,
			carts:  store,
			close:  func() {},
		}, nil
	}

	pool, err := repository.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info(ctx, "connected to database")

	db := repository.NewDB(pool)
	return &storage{
		tx:     db,
		pinger: db,
		users:  repository.NewUserRepository(db),
		tokens: repository.NewTokenRepository(db),
		items:  repository.NewItemRepository(db),
		carts:  repository.NewCartRepository(db),
		close:  pool.Close,
	}, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.NewJSON(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Setup storage
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.close()

	// 3. Setup logic
	hasher := auth.NewHasher(cfg.Auth.HashWorkers, cfg.Auth.BcryptCost)
	defer hasher.Close()

	authService := service.NewAuthService(
		store.tx, store.users, store.tokens,
		hasher,
		auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer),
		service.AuthConfig{
			SessionTTL:  cfg.Auth.SessionTTL,
			RememberTTL: cfg.Auth.RememberTTL,
			RegisterTTL: cfg.Auth.RegisterTTL,
		},
	)
	itemService := service.NewItemService(store.items)
	cartService := service.NewCartService(store.tx, store.carts)

	h := handler.NewHandler(log, store.pinger, authService, itemService, cartService, handler.CookieConfig{
		Secure: cfg.Auth.CookieSecure,
	})

	// 4. Setup server
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           h,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	// 5. Run server with graceful shutdown
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info(context.Background(), "server exiting")
	return nil
}
