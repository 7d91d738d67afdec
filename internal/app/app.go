package app

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/lovault/lovault/internal/config"
	"github.com/lovault/lovault/internal/db"
	httpserver "github.com/lovault/lovault/internal/http"
	"github.com/lovault/lovault/internal/storage"
)

type Container struct {
	Config  config.Config
	Storage *storage.Storage
	Router  *fiber.App
}

// Build wires the process once at startup: connection pools, the store
// façade, the router. Returns a cleanup that releases the pools.
func Build(cfg config.Config, logger *slog.Logger) (*Container, func() error, error) {
	writePool, err := db.OpenPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	readPool := writePool
	if cfg.DatabaseReadURL != cfg.DatabaseURL {
		readPool, err = db.OpenPostgres(cfg.DatabaseReadURL)
		if err != nil {
			_ = writePool.Close()
			return nil, nil, err
		}
	}
	cleanup := func() error {
		err := writePool.Close()
		if readPool != writePool {
			if rerr := readPool.Close(); err == nil {
				err = rerr
			}
		}
		return err
	}

	st := storage.New(storage.NewSQLDB(readPool, writePool), cfg.BaseURL)
	router := httpserver.NewRouter(cfg, st, logger)

	return &Container{
		Config:  cfg,
		Storage: st,
		Router:  router,
	}, cleanup, nil
}
