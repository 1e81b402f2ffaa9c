// Package server initializes and runs the identity server: it wires the
// repository, key material, token service and mailer together, bootstraps
// the system user and serves the HTTP endpoint until shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/identity/internal/logging"
	"github.com/dmitrijs2005/identity/internal/server/auth"
	"github.com/dmitrijs2005/identity/internal/server/config"
	"github.com/dmitrijs2005/identity/internal/server/httpapi"
	"github.com/dmitrijs2005/identity/internal/server/mail"
	"github.com/dmitrijs2005/identity/internal/server/repositories"
	"github.com/dmitrijs2005/identity/internal/server/services"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	repo       repositories.Repository
	service    *services.Service
	httpServer *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	repo, err := repositories.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	keys := auth.NewKeyChain(cfg.PrivateKeyPath, cfg.PublicKeyPath)
	tokens := auth.NewTokenService(keys, cfg.PrivateKeyPassword, cfg.Issuer, cfg.TokenValidity)
	hasher := auth.NewHasher(cfg.PasswordHashCost)
	mailer := mail.NewSMTPMailer(cfg.SMTP, cfg.Issuer)

	svc := services.NewService(repo, keys, tokens, hasher, mailer, cfg, logger)
	httpServer := httpapi.NewServer(cfg, svc, tokens, logger)

	return &App{
		config:     cfg,
		logger:     logger,
		repo:       repo,
		service:    svc,
		httpServer: httpServer,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting identity server")

	app.initSignalHandler(cancelFunc)

	// A bootstrap failure is logged but does not stop the server: an
	// operator can still fix the database and restart.
	if err := app.service.EnsureSystemUser(ctx); err != nil {
		app.logger.Error(ctx, "system user bootstrap failed", "error", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server stopped", "error", err)
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.repo.Close(); err != nil {
		app.logger.Error(ctx, "closing repository", "error", err)
	}
}
