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

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/butecodosdevs/buteco-core/internal/auth"
	"github.com/butecodosdevs/buteco-core/internal/challenge"
	challengerepo "github.com/butecodosdevs/buteco-core/internal/challenge/repo"
	"github.com/butecodosdevs/buteco-core/internal/config"
	"github.com/butecodosdevs/buteco-core/internal/metrics"
	"github.com/butecodosdevs/buteco-core/internal/position"
	positionrepo "github.com/butecodosdevs/buteco-core/internal/position/repo"
	"github.com/butecodosdevs/buteco-core/internal/router"
	userrepo "github.com/butecodosdevs/buteco-core/internal/user/repo"
	"github.com/butecodosdevs/buteco-core/pkg/database"
	"github.com/butecodosdevs/buteco-core/pkg/utilities"
)

const defaultPort = 5000

func main() {
	app := &cli.App{
		Name:  "buteco-api",
		Usage: "political position and challenge API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the YAML configuration file"},
		},
		Action: serve,
		Commands: []*cli.Command{
			{Name: "serve", Usage: "run the HTTP server (default)", Action: serve},
			{
				Name:  "migrate",
				Usage: "create tables and indexes if missing",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "skip-users", Usage: "do not create the \"user\" table (owned by the registration service)"},
				},
				Action: migrate,
			},
			{
				Name:  "token",
				Usage: "issue a bearer token for a bot or operator",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Required: true, Usage: "token subject, e.g. discord-bot"},
					&cli.DurationFlag{Name: "ttl", Value: 30 * 24 * time.Hour, Usage: "token lifetime"},
				},
				Action: issueToken,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) (*config.Config, *zap.SugaredLogger, func(), error) {
	cfg, err := config.Load(c.String("config"), defaultPort)
	if err != nil {
		return nil, nil, nil, err
	}
	cfg.Log.Service = position.ServiceName
	lg, err := utilities.Init(cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, lg.Sugar(), func() { _ = lg.Sync() }, nil
}

func connect(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Database.Timeout)
	defer cancel()
	return database.Connect(ctx, cfg.Database)
}

func serve(c *cli.Context) error {
	cfg, sugar, sync, err := setup(c)
	if err != nil {
		return err
	}
	defer sync()
	sugar.Infow("starting political-api", "addr", cfg.Addr(), "driver", cfg.Database.Driver)

	db, err := connect(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	m := metrics.New(position.ServiceName)
	users := userrepo.NewUserRepo(db)
	positions := position.NewService(positionrepo.NewPositionRepo(db), users, sugar, m)
	challenges := challenge.NewService(challengerepo.NewChallengeRepo(db), sugar, m)

	deps := router.Deps{
		Logger:      sugar,
		Metrics:     m,
		Limiter:     router.NewIPRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst),
		CORSOrigins: cfg.HTTP.CORSOrigins,
	}
	if tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer); tokens.Enabled() {
		deps.Guard = tokens.Middleware(sugar)
	} else {
		sugar.Warnw("AUTH_JWT_SECRET not set; mutating routes are open")
	}
	handler := router.RegisterRoutes(deps,
		position.NewHandler(positions, sugar),
		challenge.NewHandler(challenges, sugar),
	)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	sugar.Info("service is running; press Ctrl+C to stop")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	sugar.Info("shutting down")
	doneCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnw("http server shutdown failed", "err", err)
	}
	sugar.Info("goodbye")
	return nil
}

func migrate(c *cli.Context) error {
	cfg, sugar, sync, err := setup(c)
	if err != nil {
		return err
	}
	defer sync()

	db, err := connect(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	type ensurer interface {
		EnsureTable(ctx context.Context) error
	}
	steps := []struct {
		name string
		repo ensurer
	}{
		{"user", userrepo.NewUserRepo(db)},
		{"political_position", positionrepo.NewPositionRepo(db)},
		{"challenge", challengerepo.NewChallengeRepo(db)},
	}
	for _, s := range steps {
		if s.name == "user" && c.Bool("skip-users") {
			continue
		}
		if err := s.repo.EnsureTable(c.Context); err != nil {
			return fmt.Errorf("ensure %s: %w", s.name, err)
		}
		sugar.Infow("table ready", "table", s.name)
	}
	return nil
}

func issueToken(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), defaultPort)
	if err != nil {
		return err
	}
	tok, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer).Issue(c.String("subject"), c.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, tok)
	return nil
}
