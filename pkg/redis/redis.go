package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

type Client struct {
	*goredis.Client
}

// New подключается к Redis и ждет, пока сервер ответит на PING.
func New(ctx context.Context, cfg Config, attempts int) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	var err error
	for i := range max(attempts, 1) {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			return &Client{Client: rdb}, nil
		}

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			rdb.Close()
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}

	rdb.Close()
	return nil, fmt.Errorf("redis: failed to connect to %s: %w", cfg.Addr, err)
}
