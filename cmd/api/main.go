package main

import (
	"context"
	"log"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/config"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/db"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/events"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/logger"
	appmw "github.com/ProgrammerOm1407/farm-marketplace/internal/middleware"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/repository"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/server"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/storage"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer zlog.Sync()

	conn, err := db.Connect(cfg)
	if err != nil {
		zlog.Fatal("db connect failed", zap.Error(err))
	}
	if err := conn.AutoMigrate(
		&model.Profile{},
		&model.Listing{},
		&model.Order{},
		&model.OrderHistory{},
		&model.Transaction{},
		&model.Review{},
		&model.Conversation{},
		&model.Message{},
	); err != nil {
		zlog.Warn("auto migrate failed", zap.Error(err))
	}

	ctx := context.Background()

	var authMw *appmw.AuthMiddleware
	if cfg.FirebaseProjectID != "" {
		authMw, err = appmw.NewAuthMiddleware(ctx, cfg.FirebaseProjectID)
		if err != nil {
			zlog.Fatal("firebase auth init failed", zap.Error(err))
		}
	} else {
		zlog.Warn("FIREBASE_PROJECT_ID not set; running without authentication")
	}

	var publisher events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			zlog.Warn("nats connect failed; events disabled", zap.Error(err))
			publisher = nil
		}
	}

	var views repository.ViewCounter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			zlog.Warn("redis ping failed; view counter falls back to SQL", zap.Error(err))
		} else {
			views = repository.NewRedisViewCounter(client)
		}
	}

	var uploader storage.Uploader
	if cfg.StorageBucket != "" {
		uploader, err = storage.NewGCSUploader(ctx, cfg.StorageBucket)
		if err != nil {
			zlog.Warn("storage init failed; image uploads disabled", zap.Error(err))
			uploader = nil
		}
	}

	srv := server.New(server.Deps{
		DB:        conn,
		Auth:      authMw,
		Publisher: publisher,
		Views:     views,
		Uploader:  uploader,
		Log:       zlog,
	})

	addr := ":" + cfg.Port
	zlog.Info("starting server", zap.String("addr", addr))
	if err := srv.Start(addr); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
