package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/loyalty-ledger/internal/config"
	"github.com/fairyhunter13/loyalty-ledger/internal/handler"
	"github.com/fairyhunter13/loyalty-ledger/internal/repository"
	"github.com/fairyhunter13/loyalty-ledger/internal/service"
	"github.com/fairyhunter13/loyalty-ledger/internal/validator"
	"github.com/fairyhunter13/loyalty-ledger/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	initLogger(cfg)

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}

	app := fiber.New(fiber.Config{
		AppName:      "Loyalty Ledger",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // 1MB
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())

	// Shared validator with the custom utorid/notblank validations
	validate := validator.New()

	userRepo := repository.NewUserRepository(pool)
	promotionRepo := repository.NewPromotionRepository(pool)
	transactionRepo := repository.NewTransactionRepository(pool)

	resolver := service.NewPromotionResolver(promotionRepo)
	calculator := service.NewCalculator(cfg.Ledger.BaseRate)
	ledgerService := service.NewLedgerService(pool, userRepo, transactionRepo, promotionRepo, resolver, calculator)
	promotionService := service.NewPromotionService(promotionRepo)
	userService := service.NewUserService(userRepo)

	transactionHandler := handler.NewTransactionHandler(ledgerService, validate)
	promotionHandler := handler.NewPromotionHandler(promotionService, validate)
	userHandler := handler.NewUserHandler(userService, validate)
	healthHandler := handler.NewHealthHandler(pool)

	app.Get("/health", healthHandler.Check)

	// Ledger routes
	app.Post("/api/transactions", transactionHandler.CreateTransaction)
	app.Get("/api/transactions", transactionHandler.ListTransactions)
	app.Get("/api/transactions/:id", transactionHandler.GetTransaction)
	app.Post("/api/transactions/:id/processed", transactionHandler.ProcessRedemption)
	app.Patch("/api/transactions/:id/suspicious", transactionHandler.SetSuspicious)
	app.Post("/api/users/me/redemptions", transactionHandler.CreateRedemption)
	app.Post("/api/users/me/transfers", transactionHandler.CreateTransfer)

	// Promotion catalog routes
	app.Post("/api/promotions", promotionHandler.CreatePromotion)
	app.Get("/api/promotions", promotionHandler.ListPromotions)
	app.Get("/api/promotions/:id", promotionHandler.GetPromotion)
	app.Delete("/api/promotions/:id", promotionHandler.DeletePromotion)

	// Account routes
	app.Post("/api/users", userHandler.RegisterUser)
	app.Get("/api/users/:utorid", userHandler.GetUser)
	app.Patch("/api/users/:utorid/suspicious", userHandler.SetUserSuspicious)

	// Prometheus scrape endpoint on its own listener, kept off the API surface
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: ":" + cfg.Metrics.Port, Handler: mux}
		go func() {
			log.Info().Str("port", cfg.Metrics.Port).Msg("starting metrics listener")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("metrics listener failed")
			}
		}()
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().
		Str("signal", sig.String()).
		Int("timeout_seconds", cfg.Server.ShutdownTimeout).
		Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Drain in-flight requests before touching the pool
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error during metrics shutdown")
		}
	}

	pool.Close()
	log.Info().Msg("server stopped")
}

// initLogger applies the configured level and output format to the global
// zerolog logger.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
