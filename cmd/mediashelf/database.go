package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"mediashelf/shared/go/config"
)

// openDatabase opens a connection pool and waits for the instance to answer
// a ping, doubling the sleep between attempts until cfg.ConnectWait elapses.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	deadline := time.Now().Add(cfg.ConnectWait)
	backoff := 500 * time.Millisecond

	for {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return db, nil
		}

		if ctx.Err() != nil || time.Now().After(deadline) {
			_ = db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}

		time.Sleep(backoff)
		if backoff < 5*time.Second {
			backoff *= 2
		}
	}
}
