package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/pocket/internal/app"
	"github.com/MrJamesThe3rd/pocket/internal/config"
	"github.com/MrJamesThe3rd/pocket/internal/events"
	pocketHttp "github.com/MrJamesThe3rd/pocket/internal/http"
	accountHandler "github.com/MrJamesThe3rd/pocket/internal/http/account"
	"github.com/MrJamesThe3rd/pocket/internal/http/auth"
	categoryHandler "github.com/MrJamesThe3rd/pocket/internal/http/category"
	exportHandler "github.com/MrJamesThe3rd/pocket/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/pocket/internal/http/importcsv"
	"github.com/MrJamesThe3rd/pocket/internal/http/live"
	matchingHandler "github.com/MrJamesThe3rd/pocket/internal/http/matching"
	paymentMethodHandler "github.com/MrJamesThe3rd/pocket/internal/http/paymentmethod"
	summaryHandler "github.com/MrJamesThe3rd/pocket/internal/http/summary"
	txHandler "github.com/MrJamesThe3rd/pocket/internal/http/transaction"
	"github.com/MrJamesThe3rd/pocket/internal/ledger"
	"github.com/MrJamesThe3rd/pocket/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(cfg))

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hub *live.Hub

	notifiers := events.Multi{
		events.Func(func(ctx context.Context, e ledger.Event) error { return hub.Notify(ctx, e) }),
	}

	if cfg.AMQP.URL != "" {
		publisher, err := events.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return fmt.Errorf("connecting to broker: %w", err)
		}
		defer publisher.Close()

		notifiers = append(notifiers, publisher)
	}

	a, err := app.New(cfg, notifiers)
	if err != nil {
		return err
	}
	defer a.Close()

	hub = live.NewHub(a.Ledger, live.AllowOrigins(cfg.CORS.AllowedOrigins))

	opts := pocketHttp.Options{AllowedOrigins: cfg.CORS.AllowedOrigins}
	if cfg.Auth.JWTSecret != "" {
		opts.Verifier = auth.NewVerifier(cfg.Auth.JWTSecret)
	}

	router := pocketHttp.New(opts, pocketHttp.Handlers{
		Transactions:   txHandler.NewHandler(a.Ledger),
		Summary:        summaryHandler.NewHandler(a.Ledger),
		Accounts:       accountHandler.NewHandler(a.Ledger),
		Categories:     categoryHandler.NewHandler(a.Ledger),
		PaymentMethods: paymentMethodHandler.NewHandler(a.Ledger),
		Matching:       matchingHandler.NewHandler(a.Matching),
		Import:         importHandler.NewHandler(a.Import),
		Export:         exportHandler.NewHandler(a.Export, a.Ledger),
		Live:           hub,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})

	g.Go(func() error {
		slog.Info("starting server",
			"port", cfg.App.Port,
			"backend", cfg.Storage.Backend,
			"auth", opts.Verifier != nil,
			"events", cfg.AMQP.URL != "")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
