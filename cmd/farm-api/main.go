package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/butecodosdevs/buteco-core/internal/auth"
	"github.com/butecodosdevs/buteco-core/internal/config"
	"github.com/butecodosdevs/buteco-core/internal/farm"
	farmrepo "github.com/butecodosdevs/buteco-core/internal/farm/repo"
	"github.com/butecodosdevs/buteco-core/internal/metrics"
	"github.com/butecodosdevs/buteco-core/internal/router"
	"github.com/butecodosdevs/buteco-core/pkg/database"
	"github.com/butecodosdevs/buteco-core/pkg/utilities"
)

const (
	defaultPort = 3000
	serviceName = "farm-api"
)

func main() {
	app := &cli.App{
		Name:  serviceName,
		Usage: "farm inventory and balance API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the YAML configuration file"},
			&cli.BoolFlag{Name: "migrate", Usage: "create the farm schema and tables before serving"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), defaultPort)
	if err != nil {
		return err
	}
	cfg.Log.Service = serviceName
	lg, err := utilities.Init(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer lg.Sync()
	sugar := lg.Sugar()
	sugar.Infow("starting farm-api", "addr", cfg.Addr(), "schema", cfg.Database.Schema, "balance_url", cfg.Balance.URL)

	connCtx, cancel := context.WithTimeout(c.Context, cfg.Database.Timeout)
	db, err := database.Connect(connCtx, cfg.Database)
	cancel()
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	repo := farmrepo.NewFarmRepo(db, cfg.Database.Schema)
	if c.Bool("migrate") {
		if err := repo.EnsureTable(c.Context); err != nil {
			return fmt.Errorf("ensure farm tables: %w", err)
		}
		sugar.Infow("farm tables ready")
	}

	svc := farm.NewService(repo, farm.NewBalanceClient(cfg.Balance.URL, cfg.Balance.Timeout), sugar)
	deps := router.Deps{
		Logger:      sugar,
		Metrics:     metrics.New(serviceName),
		Limiter:     router.NewIPRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst),
		CORSOrigins: cfg.HTTP.CORSOrigins,
	}
	if tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer); tokens.Enabled() {
		deps.Guard = tokens.Middleware(sugar)
	}
	handler := router.RegisterFarmRoutes(deps, farm.NewHandler(svc, cfg.Database.Schema, sugar))

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Errorw("http server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	sugar.Info("shutting down")

	doneCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancelShutdown()
	if err := db.PingContext(doneCtx); err != nil {
		sugar.Warnw("db ping on shutdown failed", "err", err)
	}
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnw("http server shutdown failed", "err", err)
	}
	sugar.Info("goodbye")
	return nil
}
