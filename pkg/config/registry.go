package config

import (
	"context"
	"fmt"

	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/pkg/accounts"
	"github.com/marmos91/dittodrive/pkg/drive/service"
	"github.com/marmos91/dittodrive/pkg/metrics"

	// Registers the Prometheus implementation of metrics.DriveMetrics.
	_ "github.com/marmos91/dittodrive/pkg/metrics/prometheus"
)

// Runtime bundles the components a command needs to serve drive requests.
type Runtime struct {
	Config   *Config
	Accounts *accounts.GORMStore
	Service  *service.Service
	Metrics  metrics.DriveMetrics

	// RootPassword is the initial root password when Open created the
	// root account, and "" otherwise.
	RootPassword string
}

// Open builds a Runtime from cfg:
//  1. opens the accounts database and makes sure the root account exists
//  2. initializes the metrics registry when metrics are enabled
//  3. opens the snapshot store and loads (or creates) the drive
//
// Close releases everything Open acquired.
func Open(ctx context.Context, cfg *Config) (*Runtime, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	accts, err := accounts.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open accounts database: %w", err)
	}
	logger.Debug("Accounts database opened", logger.Database(string(cfg.Database.Type)))

	password, err := accts.EnsureRootUser(ctx, cfg.Drive.RootUser, cfg.Drive.RootUmask)
	if err != nil {
		_ = accts.Close()
		return nil, err
	}
	if password != "" {
		logger.Info("Root account created", logger.Username(cfg.Drive.RootUser))
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}
	m := metrics.NewDriveMetrics()

	st, err := CreateStore(ctx, cfg.Store)
	if err != nil {
		_ = accts.Close()
		return nil, err
	}
	logger.Debug("Snapshot store opened", logger.StoreType(string(cfg.Store.Type)))

	svc, err := service.New(ctx, accts, st, cfg.ServiceConfig(), m)
	if err != nil {
		_ = st.Close()
		_ = accts.Close()
		return nil, fmt.Errorf("failed to open drive: %w", err)
	}

	return &Runtime{
		Config:       cfg,
		Accounts:     accts,
		Service:      svc,
		Metrics:      m,
		RootPassword: password,
	}, nil
}

// Close shuts the service (and its store) down, then the accounts database.
func (r *Runtime) Close() error {
	svcErr := r.Service.Close()
	acctErr := r.Accounts.Close()
	if svcErr != nil {
		return svcErr
	}
	return acctErr
}

// ServiceConfig maps the drive and store settings onto service.Config.
func (c *Config) ServiceConfig() service.Config {
	return service.Config{
		RootUser:     c.Drive.RootUser,
		RootName:     c.Drive.RootName,
		MaxLinkDepth: c.Drive.MaxLinkDepth,
		StoreType:    c.Store.Type,
	}
}
