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

	"github.com/gorilla/mux"

	"github.com/Krimson/gait-monitory/internal/analysis"
	"github.com/Krimson/gait-monitory/internal/config"
	"github.com/Krimson/gait-monitory/internal/handler"
	"github.com/Krimson/gait-monitory/internal/repository"
	"github.com/Krimson/gait-monitory/internal/service"
	"github.com/Krimson/gait-monitory/internal/websocket"
)

func main() {
	log.Printf("[INFO] Starting gait analysis server...")

	cfg := config.Load()
	log.Printf("[INFO] Configuration loaded: http_port=%s detection_method=%s",
		cfg.HTTPPort, cfg.Analysis.DetectionMethod)

	ttl := time.Duration(cfg.ResultTTLSeconds) * time.Second

	// Redis для кеша результатов, при недоступности - in-memory заглушка
	var cacheRepo service.CacheRepository
	redisRepo := repository.NewRedisRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, ttl)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisRepo.Ping(pingCtx); err != nil {
		log.Printf("[WARN] Redis unavailable at %s, using in-memory cache stub: %v", cfg.RedisAddr, err)
		cacheRepo = repository.NewRedisStub(ttl)
	} else {
		log.Printf("[INFO] Connected to Redis at %s", cfg.RedisAddr)
		cacheRepo = redisRepo
	}
	pingCancel()

	// PostgreSQL для сохраненных анализов, при недоступности - заглушка
	var dbRepo service.DBRepository
	if pgRepo, err := repository.NewPostgresRepository(cfg.PostgresDSN); err != nil {
		log.Printf("[WARN] PostgreSQL unavailable, using in-memory database stub: %v", err)
		dbRepo = repository.NewPostgresStub()
	} else {
		log.Printf("[INFO] Connected to PostgreSQL")
		dbRepo = pgRepo
	}
	defer cacheRepo.Close()
	defer dbRepo.Close()

	hub := websocket.NewHub()
	go hub.Run()

	analyzer := analysis.NewAnalyzer(cfg.Analysis)
	svc := service.NewAnalysisService(analyzer, cacheRepo, dbRepo, hub)

	router := mux.NewRouter()
	httpHandler := handler.NewHTTPHandler(svc)
	httpHandler.RegisterRoutes(router)
	router.HandleFunc("/ws", hub.HandleWebSocket)

	address := fmt.Sprintf(":%s", cfg.HTTPPort)
	httpServer := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("[INFO] HTTP server listening on %s", address)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrChan:
		log.Printf("[ERROR] Server error: %v", err)

	case sig := <-shutdownChan:
		log.Printf("[INFO] Received signal %v, starting graceful shutdown...", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] Graceful shutdown timeout, forcing stop: %v", err)
			httpServer.Close()
		}

		log.Printf("[INFO] Graceful shutdown completed")
	}

	log.Printf("[INFO] Server stopped")
}
