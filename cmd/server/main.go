package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chesspost/chesspost/internal/api"
	"github.com/chesspost/chesspost/internal/config"
	"github.com/chesspost/chesspost/internal/db"
	"github.com/chesspost/chesspost/internal/game"
	"github.com/chesspost/chesspost/internal/jobs"
	"github.com/chesspost/chesspost/internal/logger"
	"github.com/chesspost/chesspost/internal/notify"
	"github.com/chesspost/chesspost/internal/repository/sqlite"
	"github.com/chesspost/chesspost/internal/services"
	"github.com/chesspost/chesspost/internal/sweeper"
	"github.com/chesspost/chesspost/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("Chesspost Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("sweep_interval=%ds", cfg.SweepInterval)
	log.Debug("notify_worker_count=%d", cfg.NotifyWorkerCount)
	log.Debug("notify_queue_size=%d", cfg.NotifyQueueSize)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Repositories
	gameRepo := sqlite.NewGameRepository(database.DB)
	userRepo := sqlite.NewUserRepository(database.DB)
	requestRepo := sqlite.NewGameRequestRepository(database.DB)
	chatRepo := sqlite.NewChatRepository(database.DB)

	// Background notification delivery
	notifyPool := worker.NewPool(cfg.NotifyWorkerCount, cfg.NotifyQueueSize)
	jobQueue := jobs.NewWorkerQueue(notifyPool, notify.New(cfg))

	// Services
	manager := game.NewManager()
	gameService := services.NewGameService(gameRepo, userRepo, manager, jobQueue)
	userService := services.NewUserService(userRepo)
	matchmakingService := services.NewMatchmakingService(requestRepo, userRepo, jobQueue)
	chatService := services.NewChatService(chatRepo, gameRepo)

	srv := &api.Server{
		UserService:        userService,
		GameService:        gameService,
		MatchmakingService: matchmakingService,
		ChatService:        chatService,
	}

	ctx, cancel := context.WithCancel(context.Background())
	notifyPool.Start(ctx)

	// Periodic turn-clock sweep
	sw := sweeper.New(gameService, time.Duration(cfg.SweepInterval)*time.Second)
	go sw.Run(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping background tasks")
	cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping notification pool")
	notifyPool.Stop()

	log.Info("===========================================")
	log.Info("Chesspost Server Stopped")
	log.Info("===========================================")
}
