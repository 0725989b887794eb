package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"chat-service/chathub"
	"chat-service/config"
	"chat-service/controller"
	"chat-service/database"
	"chat-service/federation"
	"chat-service/presence"
	"chat-service/router"
	"chat-service/socketio"
	"chat-service/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

func main() {
	zlog, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zlog.Sync()
	log := zlog.Sugar()

	uploadDir := filepath.Join(config.DataDir(), "uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Fatalw("upload dir create failed", "dir", uploadDir, "err", err)
	}

	rest := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		StrictRouting:         true,
		AppName:               "chat-service",
		BodyLimit:             12 << 20,
	})

	rest.Use(cors.New())

	database.PostgresConnect()
	database.RedisConnect()

	st := store.NewService(database.Postgres)
	reg := presence.NewRegistry()

	bridge := federation.NewBridge(
		federation.NewClient(config.VortexBase()),
		federation.NewRedisCache(database.Redis, "vortex"),
		st,
		config.FederatedRoom(),
		log,
	)

	socket := socketio.Init(rest)
	hub := chathub.NewHub(st, reg, bridge, socketio.NewBroadcaster(socket), config.Rooms(), log)

	router.Rest(rest, controller.NewChat(st, reg, uploadDir), config.PublicDir(), uploadDir)
	router.Socket(socket, hub)

	go func() {
		if err := rest.Listen(fmt.Sprintf(":%s", config.ServerPort())); err != nil {
			log.Fatalw("server listen failed", "err", err)
		}
	}()
	log.Infow("chat server running", "port", config.ServerPort())

	exit := make(chan struct{})
	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	socket.Close(nil)
	rest.Shutdown()
}
