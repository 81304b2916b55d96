// Command batchqd serves the query-batching client over HTTP.
//
// Configuration is read from a YAML file:
//
//	batchqd -config /etc/batchqd/config.yaml
//
// or from the path in BATCHQD_CONFIG when the flag is absent.
package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/sathwikv/batchq/internal/batch"
	"github.com/sathwikv/batchq/internal/config"
	"github.com/sathwikv/batchq/internal/database"
	"github.com/sathwikv/batchq/internal/database/mysql"
	"github.com/sathwikv/batchq/internal/database/postgres"
	"github.com/sathwikv/batchq/internal/logger"
	"github.com/sathwikv/batchq/internal/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("BATCHQD_CONFIG"), "path to the YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.New(nil).Fatalf("failed to load config: %v", err)
	}

	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})

	dbCfg := cfg.Database.Build()
	connector, err := buildConnector(dbCfg)
	if err != nil {
		log.Fatalf("failed to initialise database driver: %v", err)
	}
	// mysql keeps a shared handle behind its sessions; release it on exit.
	// Registered before the client's defer so the sessions close first.
	if closer, ok := connector.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Errorf("failed to close database handle: %v", err)
			}
		}()
	}

	client := batch.New(connector, batch.WithLogger(log))
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			log.Errorf("failed to close pooled connections: %v", err)
		}
	}()

	srv := server.New(client, log, server.WithQueryTimeout(dbCfg.QueryTimeout))

	log.With().
		Str("driver", cfg.Database.Driver).
		Str("addr", cfg.Server.Addr).
		Logger().
		Info("starting batchqd")

	if err := srv.Listen(cfg.Server.Addr, cfg.Server.ReadTimeout.Std(), cfg.Server.WriteTimeout.Std()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// buildConnector selects the driver package for the configured engine.
func buildConnector(cfg *database.Config) (database.Connector, error) {
	switch cfg.Driver {
	case database.DriverMySQL:
		return mysql.NewConnector(cfg), nil
	default:
		return postgres.NewConnector(cfg)
	}
}
