package config

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

var RDB *redis.Client

func ConnectRedis(addr, password string, db int) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RDB.Ping(ctx).Err(); err != nil {
		panic("Failed to connect redis: " + err.Error())
	}
}
