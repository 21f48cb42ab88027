// cartctl drives a cart store from the command line. Mode is selected by
// environment:
//
//	CART_MODE=local  (default) file-backed cart under CART_DIR
//	CART_MODE=redis  local cart persisted in Redis at REDIS_ADDR
//	CART_MODE=remote server-owned cart at CART_API_URL, bearer CART_TOKEN
//
// Commands:
//
//	cartctl add <productId> <quantity> [name] [price]
//	cartctl update <productId> <quantity>
//	cartctl remove <productId>
//	cartctl clear
//	cartctl show
//	cartctl watch
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/SuleimanKh97/test2Master/internal/api"
	"github.com/SuleimanKh97/test2Master/internal/cart"
	"github.com/SuleimanKh97/test2Master/internal/domain"
	"github.com/SuleimanKh97/test2Master/internal/persist"
)

type Config struct {
	Mode      string
	CartDir   string
	RedisAddr string
	APIURL    string
	Token     string
}

func loadConfig() *Config {
	return &Config{
		Mode:      getEnv("CART_MODE", "local"),
		CartDir:   getEnv("CART_DIR", defaultCartDir()),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		APIURL:    getEnv("CART_API_URL", "http://localhost:7158"),
		Token:     getEnv("CART_TOKEN", uuid.NewString()),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultCartDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cart"
	}
	return home + "/.cart"
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := loadConfig()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	store, err := buildStore(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := run(ctx, store, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func buildStore(ctx context.Context, cfg *Config, logger *zap.Logger) (cart.Store, error) {
	switch cfg.Mode {
	case "local":
		kv, err := persist.NewFileStore(cfg.CartDir)
		if err != nil {
			return nil, err
		}
		return cart.NewLocalStore(ctx, kv, logger), nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		kv := persist.NewRedisStore(client, "cartctl")
		return cart.NewLocalStore(ctx, kv, logger), nil

	case "remote":
		token := cfg.Token
		client := api.NewClient(cfg.APIURL,
			api.WithToken(func(context.Context) (string, error) { return token, nil }),
			api.WithLogger(logger),
		)
		store := cart.NewRemoteStore(client, logger)
		if _, err := store.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("initial cart load: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown CART_MODE %q", cfg.Mode)
	}
}

func run(ctx context.Context, store cart.Store, command string, args []string) error {
	switch command {
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("usage: add <productId> <quantity> [name] [price]")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad productId: %w", err)
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("bad quantity: %w", err)
		}
		product := domain.Product{ID: id}
		if len(args) > 2 {
			product.Name = args[2]
		}
		if len(args) > 3 {
			price, err := decimal.NewFromString(args[3])
			if err != nil {
				return fmt.Errorf("bad price: %w", err)
			}
			product.Price = price
		}
		snapshot, err := store.AddItem(ctx, product, qty)
		if err != nil {
			return err
		}
		printSnapshot(snapshot)
		return nil

	case "update":
		if len(args) != 2 {
			return fmt.Errorf("usage: update <productId> <quantity>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad productId: %w", err)
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("bad quantity: %w", err)
		}
		snapshot, err := store.UpdateQuantity(ctx, id, qty)
		if err != nil {
			return err
		}
		printSnapshot(snapshot)
		return nil

	case "remove":
		if len(args) != 1 {
			return fmt.Errorf("usage: remove <productId>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad productId: %w", err)
		}
		snapshot, err := store.RemoveItem(ctx, id)
		if err != nil {
			return err
		}
		printSnapshot(snapshot)
		return nil

	case "clear":
		snapshot, err := store.Clear(ctx)
		if err != nil {
			return err
		}
		printSnapshot(snapshot)
		return nil

	case "show":
		snapshot, err := store.Refresh(ctx)
		if err != nil {
			return err
		}
		printSnapshot(snapshot)
		return nil

	case "watch":
		return watch(store)

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// watch streams cart updates until interrupted, the way the storefront
// header keeps its cart badge live.
func watch(store cart.Store) error {
	items, cancel := store.Items().Subscribe()
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case lines, ok := <-items:
			if !ok {
				return nil
			}
			printSnapshot(domain.NewSnapshot(lines))
		case <-quit:
			return nil
		}
	}
}

func printSnapshot(s domain.Snapshot) {
	if len(s.Lines) == 0 {
		fmt.Println("cart is empty")
		return
	}
	for _, l := range s.Lines {
		fmt.Printf("%6d  %-30s x%-3d  %s\n", l.ProductID, l.ProductName, l.Quantity, l.Subtotal().StringFixed(2))
	}
	fmt.Printf("total: %s (%d items)\n", s.TotalPrice.StringFixed(2), s.TotalCount)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: cartctl <add|update|remove|clear|show|watch> [args]")
}
