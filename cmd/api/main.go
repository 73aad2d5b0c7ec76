package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardhaus/giveaway-backend/api/routes"
	"github.com/cardhaus/giveaway-backend/internal/config"
	"github.com/cardhaus/giveaway-backend/internal/handlers"
	"github.com/cardhaus/giveaway-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/exp/slog"

	mongorepo "github.com/cardhaus/giveaway-backend/internal/repositories/mongodb"
	"github.com/cardhaus/giveaway-backend/pkg/mongodb"
)

func main() {
	// .env is optional; real deployments set environment variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	mongoClient, err := mongodb.Connect(cfg.MongoDB.URI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongodb.Disconnect(mongoClient); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	giveawayRepo := mongorepo.NewGiveawayRepository(db)
	pickRepo := mongorepo.NewPickRepository(db)
	userRepo := mongorepo.NewUserRepository(db)
	winnerRepo := mongorepo.NewWinnerRepository(db)
	adminUserRepo := mongorepo.NewAdminUserRepository(db)

	// The unique (giveaway, slot, number) index is what makes pick
	// allocation safe under concurrency. Refuse to start without it.
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 10*time.Second)
	if err := pickRepo.EnsureIndexes(indexCtx); err != nil {
		cancelIndex()
		slog.Error("Failed to create pick indexes", "error", err)
		os.Exit(1)
	}
	cancelIndex()

	ledger := services.NewLedgerService(userRepo, pickRepo)
	pickService := services.NewPickService(giveawayRepo, pickRepo, userRepo, ledger)
	giveawayService := services.NewGiveawayService(giveawayRepo, pickRepo, winnerRepo, userRepo, ledger)
	userService := services.NewUserService(userRepo, pickRepo, winnerRepo)
	authService := services.NewAuthService(adminUserRepo, cfg)

	handlerDeps := routes.HandlerDependencies{
		PickHandler:     handlers.NewPickHandler(pickService),
		GiveawayHandler: handlers.NewGiveawayHandler(giveawayService),
		UserHandler:     handlers.NewUserHandler(userService),
		AuthHandler:     handlers.NewAuthHandler(authService),
	}

	router := routes.SetupRouter(cfg, handlerDeps)

	// Periodic sweep closes FILLING giveaways whose entry cutoff has passed
	sweeper := cron.New()
	_, err = sweeper.AddFunc(cfg.Giveaway.CutoffSweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		closed, err := giveawayService.CloseExpiredGiveaways(ctx)
		if err != nil {
			slog.Error("Cutoff sweep failed", "error", err)
			return
		}
		if closed > 0 {
			slog.Info("Cutoff sweep closed giveaways", "count", closed)
		}
	})
	if err != nil {
		slog.Error("Invalid cutoff sweep schedule", "schedule", cfg.Giveaway.CutoffSweepSchedule, "error", err)
		os.Exit(1)
	}
	sweeper.Start()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	sweepCtx := sweeper.Stop()
	<-sweepCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// setupLogger installs a JSON slog handler at the configured level
func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
