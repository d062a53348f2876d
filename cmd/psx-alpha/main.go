package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/config"
	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/domain"
	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/engine"
	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/handler"
	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/service"
	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	scenario := flag.Bool("scenario", false, "Replay the seed scenario against a fresh book and exit")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load .env if present; real env vars take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Stores.
	orderStore := store.NewOrderStore()
	tradeStore := store.NewTradeStore()

	// Engine.
	book := engine.NewOrderBook()
	matcher := engine.NewMatcher(book, orderStore, tradeStore, logger)

	// Services.
	orderSvc := service.NewOrderService(matcher, orderStore)
	marketSvc := service.NewMarketService(tradeStore, book, matcher, cfg.VWAPWindow, cfg.MaxDepth)

	if *scenario {
		runScenario(orderSvc, marketSvc)
		return
	}

	// Router.
	router := handler.NewRouter(orderSvc, marketSvc, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

// scenarioOrder is one step of the seed scenario.
type scenarioOrder struct {
	id    string
	side  domain.Side
	price float64
	qty   int64
}

// runScenario replays the canonical seed sequence against a fresh book and
// prints the resulting trades and book snapshots to stdout: two resting
// asks, a resting bid, then an aggressive buy that sweeps the best ask
// level and rests its remainder.
func runScenario(orderSvc *service.OrderService, marketSvc *service.MarketService) {
	fmt.Println("Initializing PSX-Alpha simulation...")
	fmt.Println()

	steps := []scenarioOrder{
		{id: "101", side: domain.SideSell, price: 105.50, qty: 100},
		{id: "102", side: domain.SideSell, price: 106.00, qty: 50},
		{id: "201", side: domain.SideBuy, price: 104.00, qty: 200},
	}

	for _, s := range steps {
		submitScenarioOrder(orderSvc, s)
	}
	printBook(marketSvc)

	// The aggressor: sweeps the 105.50 ask level, rests the remaining 20.
	submitScenarioOrder(orderSvc, scenarioOrder{id: "301", side: domain.SideBuy, price: 105.50, qty: 120})
	printBook(marketSvc)
}

func submitScenarioOrder(orderSvc *service.OrderService, s scenarioOrder) {
	fmt.Printf("[REQ] New order: %s %d @ %.2f (id=%s)\n", s.side, s.qty, s.price, s.id)

	price := s.price
	order, err := orderSvc.SubmitOrder(service.SubmitOrderRequest{
		OrderID:  s.id,
		Side:     s.side,
		Price:    &price,
		Quantity: s.qty,
	})
	if err != nil {
		fmt.Printf("[ERR] %v\n", err)
		return
	}

	for _, t := range order.Trades {
		fmt.Printf(">>> [TRADE] %d @ %s (taker=%s, maker=%s)\n",
			t.Quantity, domain.FormatTicks(t.Price), t.TakerOrderID, t.MakerOrderID)
	}
	if order.RemainingQuantity > 0 {
		fmt.Printf("    resting: %d remaining on book\n", order.RemainingQuantity)
	}
}

func printBook(marketSvc *service.MarketService) {
	book, err := marketSvc.Book(0)
	if err != nil {
		fmt.Printf("[ERR] %v\n", err)
		return
	}

	fmt.Println()
	fmt.Println("--- CURRENT ORDER BOOK ---")
	fmt.Println("ASKS:")
	// Highest ask first, best ask closest to the spread.
	for i := len(book.Asks) - 1; i >= 0; i-- {
		l := book.Asks[i]
		fmt.Printf("  %s | vol %d (%d orders)\n", domain.FormatTicks(l.Price), l.TotalQuantity, l.OrderCount)
	}
	fmt.Println("BIDS:")
	for _, l := range book.Bids {
		fmt.Printf("  %s | vol %d (%d orders)\n", domain.FormatTicks(l.Price), l.TotalQuantity, l.OrderCount)
	}
	fmt.Println("--------------------------")
	fmt.Println()
}
