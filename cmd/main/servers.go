package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"series-proxy/src/config"
	datasource "series-proxy/src/data_source"
	"series-proxy/src/interfaces"
	"series-proxy/src/logger"
	"series-proxy/src/models"
	"series-proxy/src/server"
	"series-proxy/src/storage"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// -----------------------------------------------------------------------------

func loadConfig() (*config.Config, error) {
	conf, err := config.NewConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return conf, nil
}

// -----------------------------------------------------------------------------

func runServe(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := setupDatabase(ctx, conf.MConfig, appLogger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	source := setupSource(conf, setupNetwork(conf.MConfig), appLogger)
	srv := server.NewAPIServer(conf.MConfig, source, db, logger.NewLogger(conf.MConfig, "APIServer"))

	var wg sync.WaitGroup
	updatesChan := make(chan *models.MLatestData, 16)

	var refresher *datasource.WatchlistRefresher
	if conf.Watchlist.Enabled {
		refresher = datasource.NewWatchlistRefresher(conf.Watchlist, source, logger.NewLogger(conf.MConfig, "Watchlist"))
		srv.Watchlist = refresher
		if err := refresher.Start(ctx, updatesChan, &wg); err != nil {
			return err
		}
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	err = runDataLoop(ctx, updatesChan, serverErr, db, srv, appLogger)

	appLogger.Info("Shutting down...")
	if refresher != nil {
		refresher.Stop()
	}
	wg.Wait()
	if stopErr := srv.Stop(); stopErr != nil {
		appLogger.Warning("Server shutdown: %v", stopErr)
	}
	appLogger.Info("Shutdown complete.")
	return err
}

// -----------------------------------------------------------------------------

// runDataLoop publishes watchlist snapshots until the context ends or the
// server stops.
func runDataLoop(
	ctx context.Context,
	updatesChan <-chan *models.MLatestData,
	serverErr <-chan error,
	db interfaces.IDatabase,
	srv interfaces.IDataExchanger,
	appLogger *logger.Logger,
) error {
	appLogger.Info("Starting data loop...")

	for {
		select {
		case snapshot := <-updatesChan:
			srv.Broadcast(snapshot)

			if db == nil {
				continue
			}
			records := storage.RecordsFromResults(snapshot.Results, uuid.NewString(), models.FetchSourceWatchlist, time.Now())
			if err := db.SaveFetchRecords(records); err != nil {
				appLogger.Warning("Failed to record watchlist refresh: %v", err)
			}
			if err := db.CleanupOldData(); err != nil {
				appLogger.Warning("Fetch log cleanup failed: %v", err)
			}

		case err := <-serverErr:
			if err != nil {
				appLogger.Error("Server failed: %v", err)
			}
			return err

		case <-ctx.Done():
			return nil
		}
	}
}

// -----------------------------------------------------------------------------

func runFetch(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)
	source := setupSource(conf, setupNetwork(conf.MConfig), appLogger)

	results, err := source.FetchSeries(cmd.Context(), models.ParseSeriesIDs(strings.Join(args, ",")))
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// -----------------------------------------------------------------------------

func runConfigInit(cmd *cobra.Command, args []string) error {
	conf, err := config.FromModel(config.Default())
	if err != nil {
		return err
	}
	if err := conf.Save(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", args[0])
	return nil
}
