package config

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis dials redis when REDIS_ADDRESS is set. Redis is optional here:
// a nil client disables the order read cache and the cross-instance sync
// guard, nothing else.
func ConnectRedis() (*redis.Client, *redislock.Client) {
	address := strings.TrimSpace(os.Getenv("REDIS_ADDRESS"))
	if address == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis unreachable at %s: %v; continuing without cache", address, err)
		return nil, nil
	}

	return rdb, redislock.New(rdb)
}
