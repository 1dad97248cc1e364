// Package main API Server 入口
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-panel/internal/apiserver/bootstrap"
	"blog-panel/internal/apiserver/server"
	"blog-panel/internal/config"
	rediscache "blog-panel/internal/shared/cache/redis"
	objstore "blog-panel/internal/shared/minio"
	"blog-panel/internal/shared/storage/mongostore"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换数据库和桶）
	cfg := config.Load()

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// 初始化 MongoDB（业务数据）
	store, err := mongostore.NewStore(cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer store.Close()
	log.Println("Connected to MongoDB")

	// 初始化 Redis（令牌吊销名单）
	sessions, err := rediscache.NewStore(cfg.Redis.Addr, os.Getenv("REDIS_PASSWORD"), cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer sessions.Close()
	log.Println("Connected to Redis")

	// 初始化 MinIO（媒体对象）
	blob, err := objstore.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("Failed to create MinIO client: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := blob.EnsureBucket(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to ensure MinIO bucket: %v", err)
	}
	cancel()
	log.Printf("Object storage ready [bucket=%s]", blob.Bucket())

	// 首次启动播种默认数据
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	if err := bootstrap.Seed(ctx, store); err != nil {
		cancel()
		log.Fatalf("Failed to seed initial data: %v", err)
	}
	cancel()

	h := server.NewHandler(store, sessions, blob, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("API Server listening on :%s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}
