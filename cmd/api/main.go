package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/sanjaibalajee/weebsworldxplorers/docs"
	"github.com/sanjaibalajee/weebsworldxplorers/internal/auth"
	"github.com/sanjaibalajee/weebsworldxplorers/internal/config"
	"github.com/sanjaibalajee/weebsworldxplorers/internal/database"
	"github.com/sanjaibalajee/weebsworldxplorers/internal/expense"
	"github.com/sanjaibalajee/weebsworldxplorers/internal/history"
	"github.com/sanjaibalajee/weebsworldxplorers/internal/metrics"
	"github.com/sanjaibalajee/weebsworldxplorers/internal/pot"
	"github.com/sanjaibalajee/weebsworldxplorers/internal/settlement"
	"github.com/sanjaibalajee/weebsworldxplorers/internal/user"
	"github.com/sanjaibalajee/weebsworldxplorers/internal/wallet"
	"github.com/sanjaibalajee/weebsworldxplorers/pkg/logging"
	mw "github.com/sanjaibalajee/weebsworldxplorers/pkg/middleware"
)

// @title        Trip Ledger API
// @version      1.0
// @description  Shared-expense and settlement tracker for a trip group.
// @BasePath     /api/v1
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	logging.Setup()
	cfg := config.Load()

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("connected to database")

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, 30*24*time.Hour)

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, jwtManager)
	userHandler := user.NewHandler(userService)

	// Wallet feature
	walletRepo := wallet.NewRepository(db)
	walletService := wallet.NewService(walletRepo, cfg.ExchangeRate)
	walletHandler := wallet.NewHandler(walletService)

	// Pot feature (loads move money out of wallets)
	potRepo := pot.NewRepository(db, walletRepo)
	potService := pot.NewService(potRepo)
	potHandler := pot.NewHandler(potService)

	// Expense feature (side effects hit wallets and pots)
	expenseRepo := expense.NewRepository(db, walletRepo, potRepo)
	expenseService := expense.NewService(expenseRepo)
	expenseHandler := expense.NewHandler(expenseService)

	// Settlement feature
	settlementRepo := settlement.NewRepository(db, walletRepo)
	settlementService := settlement.NewService(settlementRepo, walletRepo)
	settlementHandler := settlement.NewHandler(settlementService)

	// History feature
	historyRepo := history.NewRepository(db)
	historyService := history.NewService(historyRepo)
	historyHandler := history.NewHandler(historyService)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Mount("/auth", userHandler.AuthRoutes())

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(mw.Auth(jwtManager))

			r.Mount("/users", userHandler.Routes())
			r.Mount("/wallet", walletHandler.Routes())
			r.Mount("/pot", potHandler.Routes())
			r.Mount("/expenses", expenseHandler.Routes())
			r.Mount("/settlements", settlementHandler.Routes())
			r.Mount("/history", historyHandler.Routes())
		})
	})

	slog.Info("server starting", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
