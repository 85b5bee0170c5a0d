package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"parking_ledger/internal/api"
	"parking_ledger/internal/api/handler"
	"parking_ledger/internal/api/middleware"
	"parking_ledger/internal/clock"
	"parking_ledger/internal/config"
	"parking_ledger/internal/domain"
	"parking_ledger/internal/logging"
	"parking_ledger/internal/repository/memory"
	"parking_ledger/internal/service"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	// 2. Repositories
	lotRepo := memory.NewParkingLotRepository()
	profileRepo := memory.NewCarProfileRepository()
	sessionRepo := memory.NewParkingSessionRepository()

	// 3. WebSocket manager
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wsManager := handler.NewWebSocketManager(logger)
	go wsManager.Start(ctx)

	// 4. Services
	systemClock := clock.NewSystem()
	ledger := service.NewLedger(lotRepo, profileRepo, sessionRepo, systemClock,
		service.WithFeeRate(cfg.FeeRatePerMinute),
		service.WithLocation(cfg.DisplayLocation),
		service.WithLogger(logger),
		service.WithNotifier(wsManager),
	)
	for _, dto := range cfg.Lots {
		if _, err := ledger.RegisterLot(ctx, dto); err != nil {
			logger.Fatal("register parking lot", zap.Int("lot", dto.ID), zap.Error(err))
		}
	}

	authService := service.NewAuthService(domain.Operator{
		Username:     cfg.OperatorUsername,
		PasswordHash: cfg.OperatorPasswordHash,
	}, cfg.JWTSecret, cfg.JWTExpirationHours, systemClock)
	if !authService.Enabled() {
		logger.Warn("no operator configured, entry and exit routes are unauthenticated")
	}
	authMiddleware := middleware.NewAuthMiddleware(authService, logger)

	// 5. HTTP server
	router := api.SetupRouter(ledger, authService, authMiddleware, wsManager)
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Info("server listening",
			zap.String("port", cfg.ServerPort),
			zap.String("fee_rate", cfg.FeeRatePerMinute.String()),
			zap.Int("lots", len(cfg.Lots)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen and serve", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	cancel()

	logger.Info("server stopped")
}
