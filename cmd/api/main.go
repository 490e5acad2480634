package main

import (
	"campusbuddy/internal/config"
	"campusbuddy/internal/database"
	"campusbuddy/internal/handlers"
	"campusbuddy/internal/logging"
	"campusbuddy/internal/match"
	"campusbuddy/internal/monitoring"
	"campusbuddy/internal/recommend"
	"campusbuddy/internal/utils"
	"campusbuddy/internal/wellness"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "campusbuddy: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("close store", zap.Error(closeErr))
		}
	}()

	location, err := cfg.Location()
	if err != nil {
		return err
	}

	tokens, err := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("token manager: %w", err)
	}

	metrics := monitoring.NewMetrics()
	monitor := monitoring.NewService(time.Now(), store, metrics)

	advisor := wellness.NewAdvisor(
		wellness.WithTips(cfg.Wellness.Tips),
		wellness.WithFallbackTip(cfg.Wellness.FallbackTip),
	)
	ledger := wellness.NewLedger(store, advisor,
		wellness.WithPolicy(wellness.Policy{
			Points:     cfg.Wellness.CheckinPoints,
			MaxGapDays: cfg.Wellness.StreakMaxGapDays,
		}),
		wellness.WithClock(time.Now, location),
		wellness.WithObserver(metrics),
		wellness.WithLogger(logger.Named("ledger")),
	)

	gin.SetMode(cfg.HTTP.Mode)
	api := handlers.New(handlers.Deps{
		Config:      cfg,
		Store:       store,
		Matcher:     match.NewEngine(match.WithWeights(cfg.Match.SkillWeight, cfg.Match.InterestWeight), match.WithLimit(cfg.Match.Limit)),
		Recommender: recommend.New(recommend.WithLimit(cfg.Events.FeedLimit)),
		Advisor:     advisor,
		Ledger:      ledger,
		Tokens:      tokens,
		Monitor:     monitor,
		Logger:      logger.Named("http"),
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      api.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("CampusBuddy API starting",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("store", cfg.Database.Driver),
			zap.String("timezone", location.String()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
