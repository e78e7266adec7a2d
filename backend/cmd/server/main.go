package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/user/investrack/backend/internal/auth"
	"github.com/user/investrack/backend/internal/config"
	"github.com/user/investrack/backend/internal/database"
	"github.com/user/investrack/backend/internal/handlers"
	"github.com/user/investrack/backend/internal/marketdata"
	"github.com/user/investrack/backend/internal/middleware"
	"github.com/user/investrack/backend/internal/reconciler"
	internalws "github.com/user/investrack/backend/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := newLogger(cfg.LogLevel)

	secret := cfg.JWTSecret
	if secret == "" {
		logger.Warn().Msg("JWT_SECRET not set, using insecure development secret")
		secret = "!!REPLACE_THIS_WITH_A_STRONG_SECRET_KEY!!"
	}
	auth.Init(secret, cfg.JWTTTL)

	ctx := context.Background()
	if err := database.InitDB(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer database.CloseDB()
	logger.Info().Msg("Connected to database")

	if err := marketdata.SeedListings(ctx, logger); err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed market data")
	}

	// WebSocket hub for the price feed.
	hub := internalws.NewHub(logger)
	go hub.Run()

	// Market data refresh: external quotes when a key is configured,
	// simulated random walk otherwise.
	var source marketdata.QuoteSource
	if cfg.AlphaVantageAPIKey != "" {
		source = marketdata.NewAlphaVantageClient(cfg.AlphaVantageBaseURL, cfg.AlphaVantageAPIKey, cfg.QuoteRequestTimeout)
	} else {
		logger.Info().Msg("ALPHA_VANTAGE_API_KEY not set, simulating market prices")
	}
	refresher := marketdata.NewRefresher(source, hub, logger)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.MarketRefreshSchedule, func() {
		if err := refresher.Run(); err != nil {
			logger.Error().Err(err).Str("job", refresher.Name()).Msg("Scheduled refresh failed")
		}
	}); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.MarketRefreshSchedule).Msg("Invalid refresh schedule")
	}
	scheduler.Start()

	rec := reconciler.New(database.NewLedger(), logger)
	handlers.Init(rec, hub, logger)

	app := fiber.New()

	// --- WebSocket Routes ---
	wsGroup := app.Group("/ws")
	wsGroup.Use("/", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	wsGroup.Get("/prices", websocket.New(handlers.PriceWSEndpoint))

	// --- API Routes ---
	api := app.Group("/api")

	// Health check (Public)
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("Investrack API is healthy!")
	})

	// Market data (Public)
	api.Get("/market", handlers.ListMarket)
	api.Get("/market/:symbol", handlers.GetMarketItem)

	// Auth routes (Public)
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", handlers.Signup)
	authGroup.Post("/login", handlers.Login)

	// --- Protected Routes ---
	api.Use(middleware.Protected())

	api.Get("/me", func(c *fiber.Ctx) error {
		userID := c.Locals("userID")
		username := c.Locals("username")
		return c.JSON(fiber.Map{
			"user_id":  userID,
			"username": username,
		})
	})

	tradesGroup := api.Group("/trades")
	tradesGroup.Post("/buy", handlers.Buy)
	tradesGroup.Post("/sell", handlers.Sell)
	tradesGroup.Post("/deposit", handlers.Deposit)
	tradesGroup.Get("/", handlers.GetTrades)

	api.Get("/portfolio", handlers.GetPortfolio)

	watchlistGroup := api.Group("/watchlist")
	watchlistGroup.Get("/", handlers.GetWatchlist)
	watchlistGroup.Post("/", handlers.AddToWatchlist)
	watchlistGroup.Delete("/:symbol", handlers.RemoveFromWatchlist)

	// Shut down cleanly on SIGINT/SIGTERM.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info().Msg("Shutting down")
		stopCtx := scheduler.Stop()
		<-stopCtx.Done()
		_ = app.Shutdown()
	}()

	logger.Info().Str("addr", cfg.ListenAddr).Msg("Starting server")
	if err := app.Listen(cfg.ListenAddr); err != nil {
		logger.Fatal().Err(err).Msg("Server stopped")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger()
}
