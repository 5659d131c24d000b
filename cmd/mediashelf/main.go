package main

import (
	"context"
	"net/http"

	"mediashelf/internal/store"
	"mediashelf/shared/go/config"
	"mediashelf/shared/go/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal(err, "load config")
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logging.SetGlobalLogger(logger)

	db, err := openDatabase(context.Background(), cfg.Database)
	if err != nil {
		logger.Fatal(err, "open database")
	}
	defer db.Close()

	dataStore := store.New(db)

	if err := bootstrapDemoData(context.Background(), db, dataStore); err != nil {
		logger.Fatal(err, "bootstrap demo data")
	}

	handler := newHTTPHandler(cfg, dataStore)

	logger.Info("API available at http://localhost" + cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, handler); err != nil {
		logger.Fatal(err, "server error")
	}
}
