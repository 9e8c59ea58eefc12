package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fundline/allocator/internal/config"
	"github.com/fundline/allocator/internal/database"
	"github.com/fundline/allocator/internal/events"
	"github.com/fundline/allocator/internal/modules/optimizer"
	"github.com/fundline/allocator/internal/scheduler"
	"github.com/fundline/allocator/internal/server"
	"github.com/fundline/allocator/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting allocation optimizer service")

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	eventManager := events.NewManager(log)

	optimizerService, err := optimizer.NewService(optimizer.DefaultBands(), eventManager, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize optimizer")
	}
	runRepo := optimizer.NewRepository(db.Conn(), log)
	optimizerHandler := optimizer.NewHandler(optimizerService, runRepo, log)

	sched := scheduler.New(log)
	retention := scheduler.NewRetentionJob(runRepo, eventManager, cfg.RunRetentionDays, log)
	if err := sched.AddJob("@daily", retention); err != nil {
		log.Fatal().Err(err).Msg("Failed to register retention job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:      cfg.Port,
		Log:       log,
		DB:        db,
		Config:    cfg,
		DevMode:   cfg.DevMode,
		Optimizer: optimizerHandler,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
