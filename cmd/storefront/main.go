package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/SigNoz/storefront-go-app/internal/cart"
	"github.com/SigNoz/storefront-go-app/internal/client"
	"github.com/SigNoz/storefront-go-app/internal/logger"
	"github.com/SigNoz/storefront-go-app/internal/storefront"
	"github.com/SigNoz/storefront-go-app/pkg/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, envErr := config.LoadConfig()

	log, err := logger.NewCLI(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return storefront.ExitError
	}
	defer log.Sync()

	if envErr != nil {
		log.Warn("Ignoring .env file", zap.Error(envErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openCartStore(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return storefront.ExitError
	}
	defer closeStore()

	c := cart.Open(ctx, store, log)
	app := storefront.New(client.New(cfg.APIURL), c, os.Stdout, os.Stderr, log)
	return app.Run(ctx, os.Args[1:])
}

// openCartStore picks the configured cart store. An unreachable Redis is only
// logged: the cart then opens empty and saves report their own errors.
func openCartStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (cart.Store, func(), error) {
	switch cfg.CartStore {
	case "redis":
		rdb, err := cart.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		store := cart.NewRedisStore(rdb, cfg.CartKey, 0)
		if err := store.Ping(ctx); err != nil {
			log.Warn("Redis cart store unavailable, cart changes will not be saved", zap.Error(err))
		}
		return store, func() { rdb.Close() }, nil
	case "file", "":
		return cart.NewFileStore(cfg.CartPath), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cart store %q", cfg.CartStore)
	}
}
