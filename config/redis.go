package config

import (
	"blogapp/global"

	"github.com/go-redis/redis"
)

func initRedis() {
	addr := AppConfig.Redis.Addr
	if addr == "" {
		global.Logger.Warn("redis addr empty, like ranking disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       AppConfig.Redis.DB,
		Password: AppConfig.Redis.Password,
	})

	if _, err := client.Ping().Result(); err != nil {
		global.Logger.Fatalf("Failed to connect to Redis: %v", err)
	}

	global.RedisDB = client
	global.Logger.WithField("addr", addr).Info("redis initialized")
}
