package database

import (
	"fmt"
	"log"
	"strconv"

	"chat-service/config"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

func RedisConnect() {
	dbNumber, _ := strconv.Atoi(config.Config("REDIS_DB"))

	options := &redis.Options{
		Addr: fmt.Sprintf(
			"%s:%s",
			config.Config("REDIS_HOST"),
			config.Config("REDIS_PORT"),
		),
		Password: config.Config("REDIS_PASSWORD"),
		DB:       dbNumber,
	}

	Redis = redis.NewClient(options)

	log.Printf("Connection opened to Redis")
}
