package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/erptask/taskdeck/internal/core/service"
	"github.com/erptask/taskdeck/internal/infrastructure/api"
	"github.com/erptask/taskdeck/internal/infrastructure/credstore"
	"github.com/erptask/taskdeck/internal/infrastructure/ws"
	"github.com/erptask/taskdeck/internal/pkg/config"
	"github.com/erptask/taskdeck/pkg/logger"
)

// app wires the full dependency graph behind every command: config, logger,
// credential store, gateway, session, guard, and the channel dialer.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   *credstore.FileStore
	gateway *api.Client
	session *service.Session
	guard   *service.Guard
	dialer  *ws.Dialer
}

func newApp(pretty bool) (*app, error) {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: pretty})

	credPath, err := cfg.CredentialsPath()
	if err != nil {
		return nil, err
	}
	store := credstore.NewFileStore(credPath, log)

	gateway, err := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, store, log)
	if err != nil {
		return nil, err
	}

	session := service.NewSession(store, gateway, log)
	gateway.OnAuthExpired(session.ForceExpire)

	wsURL := cfg.WSURL
	if wsURL == "" {
		if wsURL, err = ws.DeriveURL(cfg.APIBaseURL); err != nil {
			return nil, err
		}
	}

	return &app{
		cfg:     cfg,
		log:     log,
		store:   store,
		gateway: gateway,
		session: session,
		guard:   service.NewGuard(service.DefaultRoutes()),
		dialer:  ws.NewDialer(wsURL, log),
	}, nil
}

// requireSession restores the stored credential and fails when it doesn't
// resolve to an authenticated session.
func (a *app) requireSession(ctx context.Context) (service.Snapshot, error) {
	snap := a.session.Restore(ctx)
	if snap.State != service.StateAuthenticated {
		return snap, fmt.Errorf("not logged in, run `%s login` first", appName)
	}
	return snap, nil
}
