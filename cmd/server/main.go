package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ethvault/vault-engine/internal/metrics"
	"github.com/ethvault/vault-engine/internal/oracle"
	"github.com/ethvault/vault-engine/internal/store"
	"github.com/ethvault/vault-engine/internal/vault"
)

// defaultBankCap is 50 ETH in wei, used when BANK_CAP_WEI is unset.
const defaultBankCap = "50000000000000000000"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bankCapStr := os.Getenv("BANK_CAP_WEI")
	if bankCapStr == "" {
		bankCapStr = defaultBankCap
	}
	bankCap, err := decimal.NewFromString(bankCapStr)
	if err != nil {
		slog.Error("invalid BANK_CAP_WEI", "err", err)
		os.Exit(1)
	}

	// --- Initialize store ---
	var st store.Store
	var cleanup []func()

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(context.Background(), dbURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		st = store.NewPostgresStore(pool)
		slog.Info("connected to PostgreSQL")

		// Wrap with Redis read-through cache if configured.
		if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
			opt, err := redis.ParseURL(redisURL)
			if err != nil {
				slog.Error("invalid REDIS_URL", "err", err)
				os.Exit(1)
			}
			rdb := redis.NewClient(opt)
			cleanup = append(cleanup, func() { rdb.Close() })
			st = store.NewCachedStore(st, rdb, 30*time.Second)
			slog.Info("Redis cache enabled")
		}
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory store (data will not persist)")
		st = store.NewMemoryStore()
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- Price feed ---
	var feed oracle.PriceFeed
	if feedURL := os.Getenv("PRICE_FEED_URL"); feedURL != "" {
		feed = oracle.NewHTTPFeed(feedURL, nil)
		slog.Info("using HTTP price feed", "url", feedURL)
	} else {
		reading := int64(2000 * oracle.PriceScale)
		if raw := os.Getenv("ETH_USD_PRICE"); raw != "" {
			p, err := decimal.NewFromString(raw)
			if err != nil {
				slog.Error("invalid ETH_USD_PRICE", "err", err)
				os.Exit(1)
			}
			reading = p.Mul(decimal.NewFromInt(oracle.PriceScale)).IntPart()
		}
		feed = oracle.NewStaticFeed(reading)
		slog.Warn("PRICE_FEED_URL not set, using static price feed", "reading", reading)
	}

	// --- Restore persisted ledger state ---
	accounts, err := st.LoadAccounts(context.Background())
	if err != nil {
		slog.Error("failed to load accounts", "err", err)
		os.Exit(1)
	}
	totals, err := st.LoadTotals(context.Background())
	if err != nil {
		slog.Error("failed to load totals", "err", err)
		os.Exit(1)
	}
	slog.Info("ledger state restored", "accounts", len(accounts),
		"total_deposits_wei", totals.TotalDeposits.String())

	// --- Event hub ---
	hub := vault.NewHub()
	go hub.Run()

	// --- Vault core ---
	v, err := vault.New(vault.Config{
		BankCap:  bankCap,
		Feed:     feed,
		Transfer: vault.LogTransferer{},
		Journal:  st,
		Hub:      hub,
		Accounts: accounts,
		Totals:   totals,
	})
	if err != nil {
		slog.Error("vault init failed", "err", err)
		os.Exit(1)
	}
	svc := vault.NewService(v, st)

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"vault-engine"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket endpoint for real-time ledger events.
		r.Get("/ws", hub.HandleWS)

		// Mutations.
		r.Post("/deposit", svc.Deposit)
		r.Post("/withdraw", svc.Withdraw)

		// Account queries.
		r.Get("/accounts/{address}/balance", svc.GetBalance)
		r.Get("/accounts/{address}/record", svc.GetAccountRecord)
		r.Get("/accounts/{address}/history", svc.GetAccountHistory)

		// Vault-wide queries.
		r.Get("/vault/totals", svc.GetTotals)
		r.Get("/price", svc.GetPrice)
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("vault-engine listening", "port", port, "bank_cap_wei", bankCap.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down vault-engine...")
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("vault-engine stopped")
}
