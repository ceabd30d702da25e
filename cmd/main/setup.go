package main

import (
	"context"
	"time"

	"series-proxy/src/config"
	"series-proxy/src/data_source/fred"
	"series-proxy/src/helpers"
	"series-proxy/src/interfaces"
	"series-proxy/src/logger"
	"series-proxy/src/models"
	"series-proxy/src/network"
	"series-proxy/src/storage"
)

const (
	dbInitRetries   = 3
	dbInitBaseDelay = time.Second
)

// -----------------------------------------------------------------------------

// setupDatabase initializes the fetch log. It returns nil when storage is disabled.
func setupDatabase(ctx context.Context, cfg *models.MConfig, appLogger *logger.Logger) (interfaces.IDatabase, error) {
	var db interfaces.IDatabase
	var err error

	switch cfg.Storage.DBType {
	case "postgres":
		db, err = storage.NewPostgresDB(cfg, logger.NewLogger(cfg, "PostgresDB"))
	case "sqlite":
		db, err = storage.NewAsyncSQLiteDB(cfg, logger.NewLogger(cfg, "SQLiteDB"))
	default:
		appLogger.Info("Storage disabled, fetch log will not be recorded")
		return nil, nil
	}
	if err != nil {
		appLogger.Error("Failed to init db: %v", err)
		return nil, err
	}

	err = helpers.RetryWithBackoff(ctx, appLogger, "database initialization", dbInitRetries, dbInitBaseDelay, db.Initialize)
	if err != nil {
		appLogger.Error("Failed to initialize db: %v", err)
		return nil, err
	}
	return db, nil
}

// -----------------------------------------------------------------------------

// setupNetwork initializes the network manager
func setupNetwork(cfg *models.MConfig) interfaces.INetworkManager {
	return network.NewAsyncNetworkManager(cfg, logger.NewLogger(cfg, "NetworkManager"))
}

// -----------------------------------------------------------------------------

// setupSource builds the FRED source from the resolved configuration
func setupSource(conf *config.Config, netMgr interfaces.INetworkManager, appLogger *logger.Logger) *fred.FredSource {
	if conf.APIKey() == "" {
		appLogger.Warning("%s is not set, series requests will fail with 500", conf.CredentialName())
	}

	return fred.NewFredSource(fred.Options{
		BaseURL:        conf.Upstream.BaseURL,
		APIKey:         conf.APIKey(),
		CredentialName: conf.CredentialName(),
		Concurrency:    conf.Network.ConcurrentRequests,
		AsOfLocation:   conf.AsOfLocation(),
	}, netMgr, logger.NewLogger(conf.MConfig, "FredSource"))
}
